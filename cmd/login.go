package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mialabs/mia-session/internal/domain"
	"github.com/mialabs/mia-session/internal/session"
)

func newLoginCmd(app *app) *cobra.Command {
	var providerFlag string
	var checkOnly bool

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in with Google or Meta",
		RunE: func(cmd *cobra.Command, _ []string) error {
			provider, err := providerFlagValue(providerFlag)
			if err != nil {
				return err
			}

			coord, err := app.initSession(cmd.Context())
			if err != nil {
				return err
			}

			if snapshot := coord.Snapshot(); alreadyConnected(snapshot, provider) {
				who := ""
				if user := snapshot.User(); user != nil {
					who = " as " + user.Email
				}
				_, err = fmt.Fprintf(cmd.OutOrStdout(), "already signed in with %s%s\n", provider, who)
				return err
			}

			var ok bool
			if checkOnly {
				switch provider {
				case domain.ProviderMeta:
					ok = coord.CheckMetaAuth(cmd.Context())
				default:
					ok = coord.CheckExistingAuth(cmd.Context())
				}
				if !ok {
					return fmt.Errorf("no existing %s credentials for this device", provider)
				}
			} else {
				switch provider {
				case domain.ProviderMeta:
					ok = coord.LoginMeta(cmd.Context())
				default:
					ok = coord.Login(cmd.Context())
				}
				if !ok {
					if err := snapshotError(coord.Snapshot()); err != nil {
						return err
					}
					return fmt.Errorf("%s sign-in did not complete", provider)
				}
			}

			snapshot := coord.Snapshot()
			who := ""
			if user := snapshot.User(); user != nil {
				who = " as " + user.Email
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "signed in with %s%s\n", provider, who)
			return err
		},
	}

	cmd.Flags().StringVar(&providerFlag, "provider", "google", "Identity provider (google or meta)")
	cmd.Flags().BoolVar(&checkOnly, "check", false, "Adopt existing device credentials without opening a browser")

	return cmd
}

func alreadyConnected(snapshot session.State, provider domain.Provider) bool {
	switch provider {
	case domain.ProviderMeta:
		return snapshot.Meta.Authenticated
	default:
		return snapshot.Google.Authenticated
	}
}

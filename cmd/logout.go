package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newLogoutCmd(app *app) *cobra.Command {
	var metaOnly bool

	cmd := &cobra.Command{
		Use:   "logout",
		Short: "Sign out, or disconnect only the Meta identity",
		RunE: func(cmd *cobra.Command, _ []string) error {
			coord, err := app.initSession(cmd.Context())
			if err != nil {
				return err
			}

			if !coord.Snapshot().Authenticated() {
				_, err = fmt.Fprintln(cmd.OutOrStdout(), "not signed in")
				return err
			}

			if metaOnly {
				coord.LogoutMeta(cmd.Context())
				_, err = fmt.Fprintln(cmd.OutOrStdout(), "meta identity disconnected")
				return err
			}

			coord.Logout(cmd.Context())
			_, err = fmt.Fprintln(cmd.OutOrStdout(), "signed out")
			return err
		},
	}

	cmd.Flags().BoolVar(&metaOnly, "meta", false, "Disconnect only the Meta identity")

	return cmd
}

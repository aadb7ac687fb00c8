package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mialabs/mia-session/internal/domain"
)

func newAccountsCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "accounts",
		Short: "List and select marketing accounts",
	}

	cmd.AddCommand(newAccountsListCmd(app), newAccountsSelectCmd(app))

	return cmd
}

func newAccountsListCmd(app *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the accounts available to this session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			coord, err := app.initSession(cmd.Context())
			if err != nil {
				return err
			}
			coord.RefreshAccounts(cmd.Context())
			return writeSnapshot(cmd, app, coord.Snapshot(), asJSON, false)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")

	return cmd
}

func newAccountsSelectCmd(app *app) *cobra.Command {
	var industry string

	cmd := &cobra.Command{
		Use:   "select <account-id>",
		Short: "Select an account for this session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			coord, err := app.initSession(cmd.Context())
			if err != nil {
				return err
			}

			if !coord.SelectAccount(cmd.Context(), domain.AccountID(args[0]), industry) {
				if err := snapshotError(coord.Snapshot()); err != nil {
					return err
				}
				return fmt.Errorf("could not select account %s", args[0])
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "selected account %s\n", args[0])
			return err
		},
	}

	cmd.Flags().StringVar(&industry, "industry", "", "Industry hint for first-time workspace provisioning")

	return cmd
}

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newWorkspacesCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "workspaces",
		Short: "List, create, switch, and delete workspaces",
	}

	cmd.AddCommand(
		newWorkspacesListCmd(app),
		newWorkspacesCreateCmd(app),
		newWorkspacesSwitchCmd(app),
		newWorkspacesDeleteCmd(app),
	)

	return cmd
}

func newWorkspacesListCmd(app *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List workspace membership",
		RunE: func(cmd *cobra.Command, _ []string) error {
			coord, err := app.initSession(cmd.Context())
			if err != nil {
				return err
			}
			coord.RefreshWorkspaces(cmd.Context())
			return writeSnapshot(cmd, app, coord.Snapshot(), asJSON, false)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")

	return cmd
}

func newWorkspacesCreateCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "create <name>",
		Short: "Create a workspace and make it active",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			coord, err := app.initSession(cmd.Context())
			if err != nil {
				return err
			}

			created := coord.CreateWorkspace(cmd.Context(), args[0])
			if created == nil {
				if err := snapshotError(coord.Snapshot()); err != nil {
					return err
				}
				return fmt.Errorf("could not create workspace %q", args[0])
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "created workspace %s (%s)\n", created.Name, created.TenantID)
			return err
		},
	}
}

func newWorkspacesSwitchCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "switch <tenant-id>",
		Short: "Make another workspace active",
		RunE: func(cmd *cobra.Command, args []string) error {
			coord, err := app.initSession(cmd.Context())
			if err != nil {
				return err
			}

			if !coord.SwitchWorkspace(cmd.Context(), args[0]) {
				if err := snapshotError(coord.Snapshot()); err != nil {
					return err
				}
				return fmt.Errorf("could not switch to workspace %s", args[0])
			}

			// The switch requests a reload; settle it so the printed state
			// reflects the new tenant.
			coord, err = app.settleReload(cmd.Context(), coord)
			if err != nil {
				return err
			}

			active := "none"
			if ws := coord.Snapshot().ActiveWorkspace; ws != nil {
				active = fmt.Sprintf("%s (%s)", ws.Name, ws.TenantID)
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "active workspace: %s\n", active)
			return err
		},
		Args: cobra.ExactArgs(1),
	}
}

func newWorkspacesDeleteCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <tenant-id>",
		Short: "Delete a workspace",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			coord, err := app.initSession(cmd.Context())
			if err != nil {
				return err
			}

			if !coord.DeleteWorkspace(cmd.Context(), args[0]) {
				if err := snapshotError(coord.Snapshot()); err != nil {
					return err
				}
				return fmt.Errorf("could not delete workspace %s", args[0])
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "deleted workspace %s\n", args[0])
			return err
		},
	}
}

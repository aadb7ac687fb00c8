package cmd

import "github.com/spf13/cobra"

func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "mia",
		Short:         "Mia session CLI: sign in, pick accounts, manage workspaces",
		Long:          "mia keeps one coordinated session across Google and Meta sign-in, account selection, and workspace membership, and shows it from the terminal.",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	app, err := wireApp()
	if err != nil {
		rootCmd.RunE = func(_ *cobra.Command, _ []string) error {
			return err
		}
		return rootCmd
	}

	rootCmd.AddCommand(
		newVersionCmd(),
		newStatusCmd(app),
		newLoginCmd(app),
		newLogoutCmd(app),
		newAccountsCmd(app),
		newWorkspacesCmd(app),
	)

	return rootCmd
}

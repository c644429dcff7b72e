package cmd

import "github.com/spf13/cobra"

func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "counter",
		Short:         "Solana counter: view and change an on-chain Anchor counter",
		Long:          "counter reads the counter account of an Anchor program on Solana, follows its changes live, and submits increment or decrement transactions signed by a delegated wallet.",
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

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, _ []string) error {
		if cmd.Name() == "version" {
			return nil
		}
		if _, err := app.programs.Setup(); err != nil {
			return err
		}
		return app.sessions.Restore(cmd.Context())
	}

	rootCmd.AddCommand(
		newVersionCmd(),
		newShowCmd(app),
		newWatchCmd(app),
		newSubmitCmd(app, "increment", "Add one to the counter"),
		newSubmitCmd(app, "decrement", "Subtract one from the counter"),
		newBalanceCmd(app),
		newAuthCmd(app),
	)

	return rootCmd
}

package main

import "github.com/spf13/cobra"

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "valpal",
		Short:        "Equip a random loadout whenever you lock an agent",
		SilenceUsage: true,
	}

	serve := newServeCmd()
	rootCmd.RunE = serve.RunE

	rootCmd.AddCommand(
		serve,
		newEquipCmd(),
		newSessionCmd(),
		newVersionCmd(),
	)
	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := cmd.OutOrStdout().Write([]byte(version + "\n"))
			return err
		},
	}
}

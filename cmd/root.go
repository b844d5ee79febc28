package cmd

import "github.com/spf13/cobra"

// Execute runs the groupsplit command line.
func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "groupsplit",
		Short:        "Conversational bot that splits group expenses",
		Long:         "groupsplit records who paid for what in a group and suggests the fewest payments that settle everyone up.",
		SilenceUsage: true,
	}
	rootCmd.AddCommand(
		newRunCmd(),
		newConsoleCmd(),
		newVersionCmd(),
	)
	return rootCmd
}

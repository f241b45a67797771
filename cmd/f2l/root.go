package main

import (
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	var pipeFlag string
	var configFlag string

	ctx := newCommandContext(&pipeFlag, &configFlag)

	rootCmd := &cobra.Command{
		Use:           "f2l",
		Short:         "Filelink control CLI",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVar(&pipeFlag, "pipe", "", "Path to the daemon control pipe")
	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Configuration file path")

	rootCmd.AddCommand(newRunCommand(ctx))
	rootCmd.AddCommand(newUpdatePermissionsCommand(ctx))
	rootCmd.AddCommand(newShutdownCommand(ctx))
	rootCmd.AddCommand(newStatusCommand(ctx))
	rootCmd.AddCommand(newQueueCommand(ctx))
	rootCmd.AddCommand(newHistoryCommand(ctx))
	rootCmd.AddCommand(newConfigCommand(ctx))

	return rootCmd
}

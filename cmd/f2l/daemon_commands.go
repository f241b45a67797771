package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"filelink/internal/control"
	"filelink/internal/daemon"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	var logLevel string
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the filelink daemon in the foreground",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			err = daemon.Run(cmd.Context(), cfg, daemon.Options{LogLevel: logLevel})
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}
	cmd.Flags().StringVar(&logLevel, "log-level", "", "Override the configured log level")
	return cmd
}

func newUpdatePermissionsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "update-permissions",
		Short: "Ask the daemon to reload its permissions file",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := ctx.pipePath()
			if err != nil {
				return err
			}
			if err := control.Send(path, control.CommandUpdatePermissions); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Permissions reload requested")
			return nil
		},
	}
}

func newShutdownCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "shutdown",
		Short: "Ask the daemon to shut down",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := ctx.pipePath()
			if err != nil {
				return err
			}
			if err := control.Send(path, control.CommandShutdown); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Shutdown requested")
			return nil
		},
	}
}

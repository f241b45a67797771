package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"filelink/internal/api"
)

const (
	ansiReset = "\x1b[0m"
	ansiGreen = "\x1b[32m"
	ansiRed   = "\x1b[31m"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show daemon status",
		RunE: func(cmd *cobra.Command, args []string) error {
			var payload api.DaemonStatus
			if err := ctx.fetchJSON("/api/status", &payload); err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if asJSON {
				return writeJSON(out, payload)
			}

			state := "running"
			if isTerminal(out) {
				state = ansiGreen + state + ansiReset
			}
			fmt.Fprintf(out, "Daemon:     %s (pid %d)\n", state, payload.PID)
			fmt.Fprintf(out, "Bind:       %s\n", payload.Bind)
			fmt.Fprintf(out, "Storage:    %s\n", payload.StorageDir)
			fmt.Fprintf(out, "Queue:      %d pending\n", payload.QueueLength)
			fmt.Fprintf(out, "Completed:  %d\n", payload.Completed)
			fmt.Fprintf(out, "Failed:     %d\n", payload.Failed)
			if payload.StartedAt != "" {
				fmt.Fprintf(out, "Started at: %s\n", payload.StartedAt)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit machine-readable JSON")
	return cmd
}

func writeJSON(out io.Writer, payload any) error {
	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(payload)
}

package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"filelink/internal/api"
)

func newQueueCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "queue",
		Short: "List pending transfers",
		RunE: func(cmd *cobra.Command, args []string) error {
			var payload api.QueueListResponse
			if err := ctx.fetchJSON("/api/queue", &payload); err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if asJSON {
				return writeJSON(out, payload)
			}
			if len(payload.Items) == 0 {
				fmt.Fprintln(out, "Queue is empty")
				return nil
			}

			rows := make([][]string, 0, len(payload.Items))
			for _, item := range payload.Items {
				rows = append(rows, []string{
					strconv.Itoa(item.Position),
					item.Source,
					queueItemName(item),
					strconv.FormatInt(item.ChatID, 10),
					item.EnqueuedAt,
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"#", "Source", "Name", "Chat", "Enqueued"},
				rows,
				[]columnAlignment{alignRight, alignLeft, alignLeft, alignRight, alignLeft},
			))
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit machine-readable JSON")
	return cmd
}

func queueItemName(item api.QueueItem) string {
	if item.FileName != "" {
		return item.FileName
	}
	if item.URL != "" {
		return item.URL
	}
	return "(unnamed)"
}

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List finished transfers, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			var payload api.HistoryListResponse
			if err := ctx.fetchJSON(fmt.Sprintf("/api/history?limit=%d", limit), &payload); err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if asJSON {
				return writeJSON(out, payload)
			}
			if len(payload.Entries) == 0 {
				fmt.Fprintln(out, "No finished transfers")
				return nil
			}

			rows := make([][]string, 0, len(payload.Entries))
			for _, entry := range payload.Entries {
				detail := entry.Link
				if entry.Status != "completed" {
					detail = entry.Error
				}
				rows = append(rows, []string{
					strconv.FormatInt(entry.ID, 10),
					entry.Status,
					entry.FileName,
					strconv.FormatInt(entry.SizeBytes, 10),
					detail,
					entry.FinishedAt,
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"ID", "Status", "Name", "Bytes", "Link / Error", "Finished"},
				rows,
				[]columnAlignment{alignRight, alignLeft, alignLeft, alignRight, alignLeft, alignLeft},
			))
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit machine-readable JSON")
	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of entries to show")
	return cmd
}

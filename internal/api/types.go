// Package api defines the JSON payloads shared by the daemon HTTP API and
// the CLI.
package api

import (
	"time"

	"filelink/internal/history"
	"filelink/internal/queue"
)

// dateTimeFormat is used for RFC3339 timestamps in API payloads.
const dateTimeFormat = "2006-01-02T15:04:05.000Z07:00"

// QueueItem describes a pending transfer in a transport-friendly format.
type QueueItem struct {
	ID         string `json:"id"`
	Position   int    `json:"position"`
	Source     string `json:"source"`
	FileName   string `json:"fileName,omitempty"`
	URL        string `json:"url,omitempty"`
	ChatID     int64  `json:"chatId"`
	UserID     int64  `json:"userId,omitempty"`
	EnqueuedAt string `json:"enqueuedAt,omitempty"`
}

// QueueListResponse wraps the pending queue, head first.
type QueueListResponse struct {
	Items []QueueItem `json:"items"`
}

// HistoryEntry describes one finished transfer.
type HistoryEntry struct {
	ID         int64  `json:"id"`
	JobID      string `json:"jobId"`
	Source     string `json:"source"`
	FileName   string `json:"fileName,omitempty"`
	Link       string `json:"link,omitempty"`
	SizeBytes  int64  `json:"sizeBytes"`
	Status     string `json:"status"`
	Error      string `json:"error,omitempty"`
	ChatID     int64  `json:"chatId"`
	FinishedAt string `json:"finishedAt,omitempty"`
}

// HistoryListResponse wraps the transfer ledger, newest first.
type HistoryListResponse struct {
	Entries []HistoryEntry `json:"entries"`
}

// DaemonStatus summarizes the running daemon for the status endpoint.
type DaemonStatus struct {
	Running     bool   `json:"running"`
	PID         int    `json:"pid"`
	QueueLength int    `json:"queueLength"`
	Completed   int64  `json:"completed"`
	Failed      int64  `json:"failed"`
	StartedAt   string `json:"startedAt,omitempty"`
	Bind        string `json:"bind,omitempty"`
	StorageDir  string `json:"storageDir,omitempty"`
}

// ErrorResponse is the uniform error payload.
type ErrorResponse struct {
	Error string `json:"error"`
}

// FromJob converts a queued job to its API shape. Position is 1-based.
func FromJob(job queue.Job, position int) QueueItem {
	item := QueueItem{
		ID:       job.ID,
		Position: position,
		Source:   string(job.Source.Kind),
		FileName: job.Source.FileName,
		URL:      job.Source.Address,
		ChatID:   job.Origin.ChatID,
		UserID:   job.Origin.UserID,
	}
	if !job.EnqueuedAt.IsZero() {
		item.EnqueuedAt = job.EnqueuedAt.UTC().Format(dateTimeFormat)
	}
	return item
}

// FromHistoryEntry converts a ledger row to its API shape.
func FromHistoryEntry(entry history.Entry) HistoryEntry {
	out := HistoryEntry{
		ID:        entry.ID,
		JobID:     entry.JobID,
		Source:    entry.SourceKind,
		FileName:  entry.FileName,
		Link:      entry.Link,
		SizeBytes: entry.SizeBytes,
		Status:    string(entry.Status),
		Error:     entry.Error,
		ChatID:    entry.ChatID,
	}
	if !entry.FinishedAt.IsZero() {
		out.FinishedAt = entry.FinishedAt.UTC().Format(dateTimeFormat)
	}
	return out
}

// FormatTime renders a timestamp the way API payloads do. Zero times render
// as an empty string.
func FormatTime(ts time.Time) string {
	if ts.IsZero() {
		return ""
	}
	return ts.UTC().Format(dateTimeFormat)
}

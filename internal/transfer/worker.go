// Package transfer runs the single worker that drains the job queue. Jobs
// are processed strictly one at a time, in arrival order; a failed job is
// logged and dropped, never retried, so one bad download cannot wedge the
// queue.
package transfer

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"filelink/internal/config"
	"filelink/internal/history"
	"filelink/internal/logging"
	"filelink/internal/notifications"
	"filelink/internal/queue"
	"filelink/internal/transport"
)

const (
	editAttempts     = 3
	metadataAttempts = 3
	metadataDelay    = 5 * time.Second
	progressInterval = 2 * time.Second
)

// Worker consumes the queue and streams each job's bytes to local storage.
type Worker struct {
	store    *queue.Store
	client   transport.Client
	cfg      *config.Config
	ledger   *history.Store
	notifier notifications.Service
	logger   *slog.Logger
	httpc    *http.Client

	// sleep is swapped out by tests to observe retry delays.
	sleep func(context.Context, time.Duration) error
	// progressEvery is the wall-clock interval between progress log lines.
	progressEvery time.Duration
}

// NewWorker wires the consumer side of the queue. The ledger may be nil when
// history persistence is disabled.
func NewWorker(store *queue.Store, client transport.Client, cfg *config.Config, ledger *history.Store, notifier notifications.Service, logger *slog.Logger) *Worker {
	if notifier == nil {
		notifier = notifications.NewService(cfg)
	}
	return &Worker{
		store:    store,
		client:   client,
		cfg:      cfg,
		ledger:   ledger,
		notifier: notifier,
		logger:   logging.NewComponentLogger(logger, "transfer"),
		// No overall Timeout: a transfer runs until the stream completes
		// or an I/O error ends it.
		httpc: &http.Client{
			Transport: &http.Transport{
				DialContext:           (&net.Dialer{Timeout: 5 * time.Second}).DialContext,
				ResponseHeaderTimeout: 30 * time.Second,
			},
		},
		sleep:         sleepContext,
		progressEvery: progressInterval,
	}
}

// Run blocks until ctx is canceled, draining the queue on every wake signal.
func (w *Worker) Run(ctx context.Context) error {
	w.logger.Info("transfer worker started")
	for {
		select {
		case <-ctx.Done():
			w.logger.Info("transfer worker stopped")
			return ctx.Err()
		case <-w.store.Wake():
			w.drain(ctx)
		}
	}
}

// drain processes jobs until the queue is empty. Wake tokens coalesce, so a
// single token must account for every job enqueued before it arrived.
func (w *Worker) drain(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}
		job, ok := w.store.PeekFront()
		if !ok {
			return
		}
		w.processOne(ctx, job)
		w.store.PopFront()
		w.announceNextHead(ctx)
	}
}

// ProcessNext handles exactly one queued job, if any. Exposed for tests; Run
// is the production entry point.
func (w *Worker) ProcessNext(ctx context.Context) bool {
	job, ok := w.store.PeekFront()
	if !ok {
		return false
	}
	w.processOne(ctx, job)
	w.store.PopFront()
	w.announceNextHead(ctx)
	return true
}

func (w *Worker) processOne(ctx context.Context, job queue.Job) {
	logger := w.logger.With(
		logging.String("job_id", job.ID),
		logging.String("source", string(job.Source.Kind)),
	)
	logger.Info("processing job", logging.Int64("chat_id", job.Origin.ChatID))

	w.editWithRetry(ctx, job.Status, "Processing file...", logger)

	result, err := w.download(ctx, job, logger)
	if err != nil {
		w.recordOutcome(ctx, job, result, err, logger)
		return
	}

	link := w.cfg.FileLink(result.FileName)
	text := fmt.Sprintf("Downloaded. Size: %d bytes\n\n<b><a href=\"%s\">%s</a></b>", result.Size, link, link)
	if editErr := w.client.EditMessageHTML(ctx, job.Status, text); editErr != nil {
		// The file is saved; a missing confirmation edit does not fail the job.
		logger.Error("edit completion message", logging.Error(editErr))
	}

	w.recordOutcome(ctx, job, result, nil, logger)
}

// announceNextHead tells the new head of the queue, when there is one, that
// it moved up. Best-effort: the edit is attempted once.
func (w *Worker) announceNextHead(ctx context.Context) {
	head, ok := w.store.PeekFront()
	if !ok {
		return
	}
	remaining := w.store.Len()
	text := fmt.Sprintf("File processed. Remaining files in queue: %d", remaining)
	if err := w.client.EditMessage(ctx, head.Status, text); err != nil {
		w.logger.Warn("edit next head status", logging.Error(err))
	}
}

// editWithRetry updates the status message with exponential backoff (1s, 2s
// between the three attempts). Exhaustion is cosmetic: the transfer proceeds
// without the status update.
func (w *Worker) editWithRetry(ctx context.Context, ref transport.MessageRef, text string, logger *slog.Logger) {
	for attempt := 1; attempt <= editAttempts; attempt++ {
		err := w.client.EditMessage(ctx, ref, text)
		if err == nil {
			return
		}
		if attempt == editAttempts {
			logger.Warn("edit status message exhausted retries",
				logging.Int("attempts", editAttempts),
				logging.Error(err),
			)
			return
		}
		delay := time.Duration(1<<(attempt-1)) * time.Second
		logger.Warn("edit status message failed, retrying",
			logging.Int("attempt", attempt),
			logging.Duration("delay", delay),
			logging.Error(err),
		)
		if w.sleep(ctx, delay) != nil {
			return
		}
	}
}

// resolveWithRetry fetches file metadata with a fixed 5s delay between the
// three attempts. Exhaustion fails the job.
func (w *Worker) resolveWithRetry(ctx context.Context, fileID string, logger *slog.Logger) (transport.FileInfo, error) {
	var lastErr error
	for attempt := 1; attempt <= metadataAttempts; attempt++ {
		info, err := w.client.ResolveFile(ctx, fileID)
		if err == nil {
			return info, nil
		}
		lastErr = err
		if attempt == metadataAttempts {
			break
		}
		logger.Warn("fetch file metadata failed, retrying",
			logging.Int("attempt", attempt),
			logging.Error(err),
		)
		if sleepErr := w.sleep(ctx, metadataDelay); sleepErr != nil {
			return transport.FileInfo{}, sleepErr
		}
	}
	return transport.FileInfo{}, fmt.Errorf("fetch file metadata after %d attempts: %w", metadataAttempts, lastErr)
}

func (w *Worker) recordOutcome(ctx context.Context, job queue.Job, result downloadResult, jobErr error, logger *slog.Logger) {
	entry := history.Entry{
		JobID:      job.ID,
		SourceKind: string(job.Source.Kind),
		FileName:   result.FileName,
		SizeBytes:  result.Size,
		ChatID:     job.Origin.ChatID,
		UserID:     job.Origin.UserID,
		Status:     history.OutcomeCompleted,
	}
	if jobErr != nil {
		entry.Status = history.OutcomeFailed
		entry.Error = jobErr.Error()
	} else {
		entry.Link = w.cfg.FileLink(result.FileName)
	}

	attrs := []logging.Attr{
		logging.String("file_name", entry.FileName),
		logging.Int64("size_bytes", entry.SizeBytes),
	}
	if jobErr != nil {
		attrs = append(attrs, logging.Any("source_detail", job.Source), logging.Error(jobErr))
		logger.Error("job failed", logging.Args(attrs...)...)
	} else {
		attrs = append(attrs, logging.String("link", entry.Link))
		logger.Info("job completed", logging.Args(attrs...)...)
	}

	if w.ledger != nil {
		if err := w.ledger.Record(ctx, &entry); err != nil {
			logger.Error("record transfer history", logging.Error(err))
		}
	}

	if jobErr != nil {
		label := job.Source.FileName
		if label == "" {
			label = job.Source.Address
		}
		if err := w.notifier.NotifyTransferFailed(ctx, jobErr, label); err != nil {
			logger.Warn("send failure notification", logging.Error(err))
		}
		return
	}
	if err := w.notifier.NotifyTransferCompleted(ctx, result.FileName, entry.Link, result.Size); err != nil {
		logger.Warn("send completion notification", logging.Error(err))
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

package ingress

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"filelink/internal/logging"
	"filelink/internal/queue"
	"filelink/internal/transport"
)

const urlCommand = "/url"

var linkPattern = regexp.MustCompile(`https?://\S+`)

// Handler enqueues transfer jobs for recognized messages.
type Handler struct {
	client transport.Client
	store  *queue.Store
	logger *slog.Logger
}

// NewHandler wires the ingress side of the queue.
func NewHandler(client transport.Client, store *queue.Store, logger *slog.Logger) *Handler {
	return &Handler{
		client: client,
		store:  store,
		logger: logging.NewComponentLogger(logger, "ingress"),
	}
}

// Handle classifies the message and, for a transfer job, replies with the
// queue position, appends the job, and signals the worker. Non-job messages
// return nil without side effects. A failed initial reply is returned to the
// caller: the transport is unusable for this job.
func (h *Handler) Handle(ctx context.Context, msg transport.Message) error {
	source, ok := Classify(msg)
	if !ok {
		h.logger.Debug("ignoring non-transfer message",
			logging.Int64("chat_id", msg.Ref.ChatID),
			logging.Int("message_id", msg.Ref.MessageID),
		)
		return nil
	}

	position := h.store.Len() + 1
	status, err := h.client.SendReply(ctx, msg.Ref.ChatID, msg.Ref.MessageID, fmt.Sprintf("Queue position: %d", position))
	if err != nil {
		return fmt.Errorf("send queue position reply: %w", err)
	}

	job := queue.NewJob(msg.Ref, status, source)
	h.store.Enqueue(job)
	h.store.Signal()

	h.logger.Info("job enqueued",
		logging.String("job_id", job.ID),
		logging.String("source", string(source.Kind)),
		logging.Int("position", position),
	)
	return nil
}

// Classify extracts a transfer source from the message. The second return
// is false when the message is not a transfer request.
func Classify(msg transport.Message) (queue.Source, bool) {
	switch {
	case msg.Document != nil:
		return queue.FileSource(msg.Document.FileID, msg.Document.FileName), true
	case msg.Photo != nil:
		return queue.FileSource(msg.Photo.FileID, ""), true
	case msg.Video != nil:
		return queue.FileSource(msg.Video.FileID, msg.Video.FileName), true
	case msg.Animation != nil:
		return queue.FileSource(msg.Animation.FileID, msg.Animation.FileName), true
	case strings.HasPrefix(msg.Text, urlCommand):
		if address, ok := urlFromMessage(msg); ok {
			return queue.URLSource(address), true
		}
		return queue.Source{}, false
	default:
		return queue.Source{}, false
	}
}

// urlFromMessage finds the first well-formed absolute URL in the command
// argument, or in the replied-to message when the command has no argument.
func urlFromMessage(msg transport.Message) (string, bool) {
	argument := strings.TrimPrefix(msg.Text, urlCommand)
	if strings.TrimSpace(argument) == "" {
		if match := linkPattern.FindString(msg.ReplyText); match != "" {
			return match, true
		}
		return "", false
	}
	if match := linkPattern.FindString(argument); match != "" {
		return match, true
	}
	return "", false
}

// Package notifications publishes transfer lifecycle events to an ntfy
// topic. Notifications are best-effort: callers log failures and move on.
package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"filelink/internal/config"
)

const userAgent = "filelink/0.1.0"

// Service defines the notification surface exposed to the daemon and worker.
type Service interface {
	NotifyTransferCompleted(ctx context.Context, fileName, link string, size int64) error
	NotifyTransferFailed(ctx context.Context, err error, label string) error
	NotifyDaemonStarted(ctx context.Context, bind string) error
	TestNotification(ctx context.Context) error
}

// NewService builds a notification service backed by ntfy when configured.
// When no ntfy topic is configured, a noop implementation is returned.
func NewService(cfg *config.Config) Service {
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopService{}
	}

	timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &ntfyService{
		endpoint: topic,
		client:   &http.Client{Timeout: timeout},
	}
}

type payload struct {
	title    string
	message  string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint string
	client   *http.Client
}

func (n *ntfyService) NotifyTransferCompleted(ctx context.Context, fileName, link string, size int64) error {
	fileName = strings.TrimSpace(fileName)
	message := fmt.Sprintf("Transfer complete: %s (%d bytes)", fileName, size)
	if link = strings.TrimSpace(link); link != "" {
		message = fmt.Sprintf("%s\n%s", message, link)
	}
	data := payload{
		title:   "Filelink - Transfer Complete",
		message: message,
		tags:    []string{"filelink", "transfer", "completed"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyTransferFailed(ctx context.Context, err error, label string) error {
	var builder strings.Builder
	builder.WriteString("Transfer failed")
	if label = strings.TrimSpace(label); label != "" {
		builder.WriteString(": ")
		builder.WriteString(label)
	}
	builder.WriteString(": ")
	if err != nil {
		builder.WriteString(strings.TrimSpace(err.Error()))
	} else {
		builder.WriteString("unknown")
	}

	data := payload{
		title:    "Filelink - Transfer Failed",
		message:  builder.String(),
		tags:     []string{"filelink", "transfer", "failed"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyDaemonStarted(ctx context.Context, bind string) error {
	data := payload{
		title:   "Filelink - Started",
		message: fmt.Sprintf("Daemon started, serving on %s", strings.TrimSpace(bind)),
		tags:    []string{"filelink", "daemon", "started"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) TestNotification(ctx context.Context) error {
	data := payload{
		title:    "Filelink - Test",
		message:  "Notification system test",
		tags:     []string{"filelink", "test"},
		priority: "low",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) send(ctx context.Context, data payload) error {
	if n == nil || n.client == nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(data.message))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if data.title != "" {
		req.Header.Set("Title", data.title)
	}
	if len(data.tags) > 0 {
		req.Header.Set("Tags", strings.Join(data.tags, ","))
	}
	if data.priority != "" && data.priority != "default" {
		req.Header.Set("Priority", data.priority)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

type noopService struct{}

func (noopService) NotifyTransferCompleted(context.Context, string, string, int64) error { return nil }
func (noopService) NotifyTransferFailed(context.Context, error, string) error            { return nil }
func (noopService) NotifyDaemonStarted(context.Context, string) error                    { return nil }
func (noopService) TestNotification(context.Context) error                               { return nil }

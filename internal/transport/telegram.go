package transport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"filelink/internal/config"
	"filelink/internal/logging"
)

const (
	connectTimeout  = 5 * time.Second
	requestTimeout  = 300 * time.Second
	headerTimeout   = 30 * time.Second
	longPollTimeout = 60
)

// Telegram implements Client on top of the Bot API.
type Telegram struct {
	api      *tgbotapi.BotAPI
	http     *http.Client
	fileBase string
	logger   *slog.Logger
}

// NewTelegram connects to the Bot API endpoint from config. A custom
// api_url supports self-hosted Bot API servers.
func NewTelegram(cfg *config.Config, logger *slog.Logger) (*Telegram, error) {
	if cfg.Telegram.Token == "" {
		return nil, errors.New("telegram token is not configured")
	}

	apiClient := &http.Client{
		Timeout: requestTimeout,
		Transport: &http.Transport{
			DialContext: (&net.Dialer{Timeout: connectTimeout}).DialContext,
		},
	}
	// The stream client has no overall Timeout: file downloads run until
	// the body ends or an I/O error cuts them short.
	streamClient := &http.Client{
		Transport: &http.Transport{
			DialContext:           (&net.Dialer{Timeout: connectTimeout}).DialContext,
			ResponseHeaderTimeout: headerTimeout,
		},
	}

	endpoint := cfg.Telegram.APIURL + "/bot%s/%s"
	api, err := tgbotapi.NewBotAPIWithClient(cfg.Telegram.Token, endpoint, apiClient)
	if err != nil {
		return nil, fmt.Errorf("connect bot api: %w", err)
	}

	return &Telegram{
		api:      api,
		http:     streamClient,
		fileBase: fmt.Sprintf(cfg.Telegram.APIURL+"/file/bot%s/", cfg.Telegram.Token),
		logger:   logging.NewComponentLogger(logger, "telegram"),
	}, nil
}

// Username returns the bot account name reported by the platform.
func (t *Telegram) Username() string {
	return t.api.Self.UserName
}

// SendReply posts text as a reply to the given message.
func (t *Telegram) SendReply(ctx context.Context, chatID int64, replyTo int, text string) (MessageRef, error) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyToMessageID = replyTo

	sent, err := t.api.Send(msg)
	if err != nil {
		return MessageRef{}, fmt.Errorf("send reply: %w", err)
	}
	return MessageRef{ChatID: sent.Chat.ID, MessageID: sent.MessageID}, nil
}

// EditMessage replaces the text of a previously sent message.
func (t *Telegram) EditMessage(ctx context.Context, ref MessageRef, text string) error {
	edit := tgbotapi.NewEditMessageText(ref.ChatID, ref.MessageID, text)
	if _, err := t.api.Send(edit); err != nil {
		return fmt.Errorf("edit message: %w", err)
	}
	return nil
}

// EditMessageHTML replaces the text with HTML-formatted content.
func (t *Telegram) EditMessageHTML(ctx context.Context, ref MessageRef, text string) error {
	edit := tgbotapi.NewEditMessageText(ref.ChatID, ref.MessageID, text)
	edit.ParseMode = tgbotapi.ModeHTML
	if _, err := t.api.Send(edit); err != nil {
		return fmt.Errorf("edit message: %w", err)
	}
	return nil
}

// ResolveFile looks up the storage path and size for a file reference.
func (t *Telegram) ResolveFile(ctx context.Context, fileID string) (FileInfo, error) {
	file, err := t.api.GetFile(tgbotapi.FileConfig{FileID: fileID})
	if err != nil {
		return FileInfo{}, fmt.Errorf("get file: %w", err)
	}
	return FileInfo{Path: file.FilePath, Size: int64(file.FileSize)}, nil
}

// OpenFile streams a file previously resolved with ResolveFile.
func (t *Telegram) OpenFile(ctx context.Context, path string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, t.fileBase+path, nil)
	if err != nil {
		return nil, fmt.Errorf("build download request: %w", err)
	}
	resp, err := t.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("open download stream: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("open download stream: unexpected status %s", resp.Status)
	}
	return resp.Body, nil
}

// Poll runs the long-poll update loop until ctx is cancelled. Each inbound
// message is handled in its own goroutine so a slow handler never stalls the
// poller; the queue store serializes any concurrent enqueues.
func (t *Telegram) Poll(ctx context.Context, handle func(context.Context, Message)) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = longPollTimeout
	updates := t.api.GetUpdatesChan(u)

	t.logger.Info("update polling started", logging.String("username", t.Username()))

	for {
		select {
		case <-ctx.Done():
			t.api.StopReceivingUpdates()
			t.logger.Info("update polling stopped")
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			if update.Message == nil {
				continue
			}
			msg := fromTelegramMessage(update.Message)
			go handle(ctx, msg)
		}
	}
}

func fromTelegramMessage(msg *tgbotapi.Message) Message {
	out := Message{
		Ref:  MessageRef{ChatID: msg.Chat.ID, MessageID: msg.MessageID},
		Text: msg.Text,
	}
	if msg.From != nil {
		out.Ref.UserID = msg.From.ID
	}
	if msg.ReplyToMessage != nil {
		out.ReplyText = msg.ReplyToMessage.Text
	}
	if msg.Document != nil {
		out.Document = &Attachment{FileID: msg.Document.FileID, FileName: msg.Document.FileName}
	}
	if len(msg.Photo) > 0 {
		// Telegram sends several resolutions; the last entry is the largest.
		largest := msg.Photo[len(msg.Photo)-1]
		out.Photo = &Attachment{FileID: largest.FileID}
	}
	if msg.Video != nil {
		out.Video = &Attachment{FileID: msg.Video.FileID, FileName: msg.Video.FileName}
	}
	if msg.Animation != nil {
		out.Animation = &Attachment{FileID: msg.Animation.FileID, FileName: msg.Animation.FileName}
	}
	return out
}

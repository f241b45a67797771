package transport

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"filelink/internal/config"
	"filelink/internal/logging"
)

func TestFromTelegramMessagePicksLargestPhoto(t *testing.T) {
	msg := &tgbotapi.Message{
		MessageID: 10,
		Chat:      &tgbotapi.Chat{ID: 42},
		From:      &tgbotapi.User{ID: 7},
		Photo: []tgbotapi.PhotoSize{
			{FileID: "small", Width: 90},
			{FileID: "medium", Width: 320},
			{FileID: "large", Width: 1280},
		},
	}

	out := fromTelegramMessage(msg)
	if out.Photo == nil || out.Photo.FileID != "large" {
		t.Fatalf("expected largest photo, got %+v", out.Photo)
	}
	if out.Ref.ChatID != 42 || out.Ref.MessageID != 10 || out.Ref.UserID != 7 {
		t.Fatalf("unexpected ref: %+v", out.Ref)
	}
}

func TestFromTelegramMessageCarriesAttachmentsAndReply(t *testing.T) {
	msg := &tgbotapi.Message{
		MessageID: 11,
		Chat:      &tgbotapi.Chat{ID: 42},
		Text:      "/url",
		ReplyToMessage: &tgbotapi.Message{
			MessageID: 9,
			Chat:      &tgbotapi.Chat{ID: 42},
			Text:      "see https://example.com/file.bin",
		},
		Document: &tgbotapi.Document{FileID: "F1", FileName: "report.pdf"},
	}

	out := fromTelegramMessage(msg)
	if out.Document == nil || out.Document.FileName != "report.pdf" {
		t.Fatalf("unexpected document: %+v", out.Document)
	}
	if out.ReplyText != "see https://example.com/file.bin" {
		t.Fatalf("unexpected reply text: %q", out.ReplyText)
	}
}

func TestFromTelegramMessageWithoutSender(t *testing.T) {
	msg := &tgbotapi.Message{
		MessageID: 12,
		Chat:      &tgbotapi.Chat{ID: 42},
		Text:      "hello",
	}
	out := fromTelegramMessage(msg)
	if out.Ref.UserID != 0 {
		t.Fatalf("expected zero user id, got %d", out.Ref.UserID)
	}
}

func TestFileStreamClientHasNoOverallDeadline(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.URL.Path, "/file/bot") {
			_, _ = io.WriteString(w, "payload")
			return
		}
		_, _ = io.WriteString(w, `{"ok":true,"result":{"id":1,"is_bot":true,"first_name":"relay","username":"relaybot"}}`)
	}))
	defer server.Close()

	cfg := &config.Config{}
	cfg.Telegram.Token = "123:abc"
	cfg.Telegram.APIURL = server.URL

	tg, err := NewTelegram(cfg, logging.NewNop())
	if err != nil {
		t.Fatalf("NewTelegram failed: %v", err)
	}
	// The stream client may wait indefinitely on a body that is still
	// producing bytes.
	if tg.http.Timeout != 0 {
		t.Fatalf("stream client carries an overall deadline: %v", tg.http.Timeout)
	}

	body, err := tg.OpenFile(context.Background(), "documents/file.bin")
	if err != nil {
		t.Fatalf("OpenFile failed: %v", err)
	}
	defer func() { _ = body.Close() }()
	data, err := io.ReadAll(body)
	if err != nil || string(data) != "payload" {
		t.Fatalf("stream = %q, %v", data, err)
	}
}

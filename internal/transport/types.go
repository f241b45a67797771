package transport

import (
	"context"
	"io"
)

// MessageRef addresses one chat message: the pair every edit call needs,
// plus the sender for permission checks.
type MessageRef struct {
	ChatID    int64
	MessageID int
	UserID    int64
}

// FileInfo is the platform's metadata for a file reference.
type FileInfo struct {
	Path string
	Size int64
}

// Attachment is a file carried by an inbound message.
type Attachment struct {
	FileID   string
	FileName string
}

// Message is the platform-neutral view of an inbound chat message.
type Message struct {
	Ref       MessageRef
	Text      string
	Document  *Attachment
	Photo     *Attachment
	Video     *Attachment
	Animation *Attachment
	// ReplyText is the text of the message this one replies to, when any.
	ReplyText string
}

// Client is the messaging capability consumed by the ingress handler and the
// transfer worker.
type Client interface {
	// SendReply posts text to the chat as a reply to the given message and
	// returns a handle to the sent message.
	SendReply(ctx context.Context, chatID int64, replyTo int, text string) (MessageRef, error)
	// EditMessage replaces the text of a previously sent message.
	EditMessage(ctx context.Context, ref MessageRef, text string) error
	// EditMessageHTML replaces the text with HTML-formatted content.
	EditMessageHTML(ctx context.Context, ref MessageRef, text string) error
	// ResolveFile looks up the storage path and size for a file reference.
	ResolveFile(ctx context.Context, fileID string) (FileInfo, error)
	// OpenFile opens a byte stream for a path returned by ResolveFile.
	OpenFile(ctx context.Context, path string) (io.ReadCloser, error)
}

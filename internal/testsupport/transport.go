package testsupport

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"filelink/internal/transport"
)

// FakeClient is a scripted transport.Client for tests. All fields are
// optional; by default SendReply hands out sequential message IDs and the
// remaining calls succeed with zero values. Calls are recorded for assertions.
type FakeClient struct {
	mu sync.Mutex

	// SendReplyErr, when set, is returned by every SendReply call.
	SendReplyErr error
	// EditErrs maps message text to the error returned when editing to it.
	EditErrs map[string]error
	// EditFailures maps message text to a number of initial edit attempts
	// that fail before the edit starts succeeding.
	EditFailures map[string]int
	// Files maps file IDs to the metadata ResolveFile returns.
	Files map[string]transport.FileInfo
	// ResolveErr, when set, is returned by every ResolveFile call.
	ResolveErr error
	// Contents maps storage paths to the bytes OpenFile streams.
	Contents map[string]string
	// OpenErr, when set, is returned by every OpenFile call.
	OpenErr error
	// OpenFunc, when set, overrides OpenFile entirely. The call is still
	// recorded in Opened.
	OpenFunc func(path string) (io.ReadCloser, error)

	nextMessageID int

	Sent     []SentMessage
	Edits    []Edit
	Resolved []string
	Opened   []string
}

// SentMessage records one SendReply call.
type SentMessage struct {
	ChatID  int64
	ReplyTo int
	Text    string
}

// Edit records one EditMessage or EditMessageHTML call.
type Edit struct {
	Ref  transport.MessageRef
	Text string
	HTML bool
}

var _ transport.Client = (*FakeClient)(nil)

func (c *FakeClient) SendReply(_ context.Context, chatID int64, replyTo int, text string) (transport.MessageRef, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.SendReplyErr != nil {
		return transport.MessageRef{}, c.SendReplyErr
	}
	c.nextMessageID++
	c.Sent = append(c.Sent, SentMessage{ChatID: chatID, ReplyTo: replyTo, Text: text})
	return transport.MessageRef{ChatID: chatID, MessageID: c.nextMessageID}, nil
}

func (c *FakeClient) EditMessage(_ context.Context, ref transport.MessageRef, text string) error {
	return c.recordEdit(ref, text, false)
}

func (c *FakeClient) EditMessageHTML(_ context.Context, ref transport.MessageRef, text string) error {
	return c.recordEdit(ref, text, true)
}

func (c *FakeClient) recordEdit(ref transport.MessageRef, text string, html bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err, ok := c.EditErrs[text]; ok && err != nil {
		return err
	}
	if remaining, ok := c.EditFailures[text]; ok && remaining > 0 {
		c.EditFailures[text] = remaining - 1
		return fmt.Errorf("transient edit failure for %q", text)
	}
	c.Edits = append(c.Edits, Edit{Ref: ref, Text: text, HTML: html})
	return nil
}

func (c *FakeClient) ResolveFile(_ context.Context, fileID string) (transport.FileInfo, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Resolved = append(c.Resolved, fileID)
	if c.ResolveErr != nil {
		return transport.FileInfo{}, c.ResolveErr
	}
	info, ok := c.Files[fileID]
	if !ok {
		return transport.FileInfo{}, fmt.Errorf("unknown file id %q", fileID)
	}
	return info, nil
}

func (c *FakeClient) OpenFile(_ context.Context, path string) (io.ReadCloser, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Opened = append(c.Opened, path)
	if c.OpenFunc != nil {
		return c.OpenFunc(path)
	}
	if c.OpenErr != nil {
		return nil, c.OpenErr
	}
	content, ok := c.Contents[path]
	if !ok {
		return nil, fmt.Errorf("no content for path %q", path)
	}
	return io.NopCloser(strings.NewReader(content)), nil
}

// SentTexts returns the text of every SendReply call in order.
func (c *FakeClient) SentTexts() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	texts := make([]string, len(c.Sent))
	for i, sent := range c.Sent {
		texts[i] = sent.Text
	}
	return texts
}

// EditTexts returns the text of every successful edit in order.
func (c *FakeClient) EditTexts() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	texts := make([]string, len(c.Edits))
	for i, edit := range c.Edits {
		texts[i] = edit.Text
	}
	return texts
}

package queue

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"filelink/internal/transport"
)

// SourceKind discriminates the two places a transfer can stream from.
type SourceKind string

const (
	// SourceFile downloads from the bot platform's file storage.
	SourceFile SourceKind = "file"
	// SourceURL downloads from an arbitrary HTTP(S) address.
	SourceURL SourceKind = "url"
)

// Source identifies where a job's bytes come from. Exactly one variant is
// populated; use the constructors rather than building the struct by hand.
type Source struct {
	Kind SourceKind
	// FileID is the provider file identifier. Set when Kind == SourceFile.
	FileID string
	// FileName is the user-declared attachment name, when the platform
	// supplied one. Optional.
	FileName string
	// Address is the absolute URL to fetch. Set when Kind == SourceURL.
	Address string
}

// FileSource builds a Source for a platform file reference.
func FileSource(fileID, fileName string) Source {
	return Source{Kind: SourceFile, FileID: fileID, FileName: fileName}
}

// URLSource builds a Source for a direct URL download.
func URLSource(address string) Source {
	return Source{Kind: SourceURL, Address: address}
}

// Validate reports whether exactly one source variant is populated.
func (s Source) Validate() error {
	switch s.Kind {
	case SourceFile:
		if s.FileID == "" {
			return errors.New("file source requires a file id")
		}
		if s.Address != "" {
			return errors.New("file source must not carry a url")
		}
	case SourceURL:
		if s.Address == "" {
			return errors.New("url source requires an address")
		}
		if s.FileID != "" {
			return errors.New("url source must not carry a file id")
		}
	default:
		return errors.New("unknown source kind")
	}
	return nil
}

// Job is one queued file transfer.
//
// Origin is the inbound chat message that triggered the job; it is read-only
// after creation. Status is the bot's own "Queue position: N" reply, created
// before the job enters the queue so the worker can always address it.
type Job struct {
	ID         string
	Origin     transport.MessageRef
	Status     transport.MessageRef
	Source     Source
	EnqueuedAt time.Time
}

// NewJob assembles a Job with a fresh correlation ID.
func NewJob(origin, status transport.MessageRef, source Source) Job {
	return Job{
		ID:         uuid.NewString(),
		Origin:     origin,
		Status:     status,
		Source:     source,
		EnqueuedAt: time.Now().UTC(),
	}
}

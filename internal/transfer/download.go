package transfer

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	neturl "net/url"
	"os"
	"path"
	"strings"
	"sync/atomic"
	"time"

	"filelink/internal/fileutil"
	"filelink/internal/logging"
	"filelink/internal/naming"
	"filelink/internal/queue"
)

// downloadResult carries the on-disk outcome of one job. FileName is set as
// soon as a name was derived, so failed jobs can still be reported by name.
type downloadResult struct {
	FileName string
	Size     int64
}

func (w *Worker) download(ctx context.Context, job queue.Job, logger *slog.Logger) (downloadResult, error) {
	switch job.Source.Kind {
	case queue.SourceFile:
		return w.downloadFromPlatform(ctx, job, logger)
	case queue.SourceURL:
		return w.downloadFromURL(ctx, job, logger)
	default:
		return downloadResult{}, fmt.Errorf("unknown source kind %q", job.Source.Kind)
	}
}

func (w *Worker) downloadFromPlatform(ctx context.Context, job queue.Job, logger *slog.Logger) (downloadResult, error) {
	info, err := w.resolveWithRetry(ctx, job.Source.FileID, logger)
	if err != nil {
		return downloadResult{}, err
	}
	logger.Info("file metadata resolved",
		logging.String("path", info.Path),
		logging.Int64("size_bytes", info.Size),
	)

	finalName, err := naming.FinalName(job.Source.FileName, info.Path)
	if err != nil {
		return downloadResult{}, err
	}

	stream, err := w.client.OpenFile(ctx, info.Path)
	if err != nil {
		return downloadResult{FileName: finalName}, fmt.Errorf("open file stream: %w", err)
	}
	defer func() { _ = stream.Close() }()

	written, err := w.saveStream(ctx, finalName, stream, info.Size, logger)
	if err != nil {
		return downloadResult{FileName: finalName, Size: written}, err
	}
	return downloadResult{FileName: finalName, Size: written}, nil
}

func (w *Worker) downloadFromURL(ctx context.Context, job queue.Job, logger *slog.Logger) (downloadResult, error) {
	address := job.Source.Address
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, address, nil)
	if err != nil {
		return downloadResult{}, fmt.Errorf("build download request: %w", err)
	}
	resp, err := w.httpc.Do(req)
	if err != nil {
		return downloadResult{}, fmt.Errorf("download from url: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return downloadResult{}, fmt.Errorf("download from url: unexpected status %s", resp.Status)
	}

	derived := fileNameFromResponse(resp, address)
	if derived == "" {
		return downloadResult{}, naming.ErrNoBaseName
	}

	finalName, err := naming.FinalName(job.Source.FileName, derived)
	if err != nil {
		return downloadResult{}, err
	}

	// Size is unknown in this path; progress lines report bytes-so-far only.
	written, err := w.saveStream(ctx, finalName, resp.Body, 0, logger)
	if err != nil {
		return downloadResult{FileName: finalName, Size: written}, err
	}
	return downloadResult{FileName: finalName, Size: written}, nil
}

// fileNameFromResponse derives a file name from the Content-Disposition
// header when present, else from the final path segment of the request URL.
// An empty return means no name could be derived.
func fileNameFromResponse(resp *http.Response, address string) string {
	if cd := resp.Header.Get("Content-Disposition"); cd != "" {
		if _, params, err := mime.ParseMediaType(cd); err == nil {
			if name := strings.TrimSpace(params["filename"]); name != "" {
				return name
			}
		}
	}
	parsed, err := neturl.Parse(address)
	if err != nil {
		return ""
	}
	base := path.Base(parsed.Path)
	if base == "." || base == "/" {
		return ""
	}
	return base
}

// saveStream writes src to a new file under the storage directory, logging
// cumulative progress on a wall-clock interval. A partial file is left in
// place on failure.
func (w *Worker) saveStream(ctx context.Context, finalName string, src io.Reader, total int64, logger *slog.Logger) (int64, error) {
	if err := fileutil.EnsureDir(w.cfg.Paths.StorageDir); err != nil {
		return 0, err
	}
	target, err := fileutil.SafeJoin(w.cfg.Paths.StorageDir, finalName)
	if err != nil {
		return 0, err
	}
	dst, err := os.Create(target)
	if err != nil {
		return 0, fmt.Errorf("create file: %w", err)
	}
	defer func() { _ = dst.Close() }()

	var written atomic.Int64
	done := make(chan struct{})
	defer close(done)
	go w.logProgress(done, &written, total, logger)

	buf := make([]byte, 128*1024)
	for {
		if err := ctx.Err(); err != nil {
			return written.Load(), err
		}
		n, readErr := src.Read(buf)
		if n > 0 {
			if _, writeErr := dst.Write(buf[:n]); writeErr != nil {
				return written.Load(), fmt.Errorf("write file: %w", writeErr)
			}
			written.Add(int64(n))
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			return written.Load(), fmt.Errorf("read stream: %w", readErr)
		}
	}

	if err := dst.Close(); err != nil {
		return written.Load(), fmt.Errorf("close file: %w", err)
	}
	return written.Load(), nil
}

func (w *Worker) logProgress(done <-chan struct{}, written *atomic.Int64, total int64, logger *slog.Logger) {
	ticker := time.NewTicker(w.progressEvery)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			if total > 0 {
				logger.Info("download progress",
					logging.Int64("transferred_bytes", written.Load()),
					logging.Int64("total_bytes", total),
				)
			} else {
				logger.Info("download progress",
					logging.Int64("transferred_bytes", written.Load()),
				)
			}
		}
	}
}

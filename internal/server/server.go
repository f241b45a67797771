// Package server exposes the daemon's HTTP surface: a health line at the
// root, the downloaded files, and a small JSON API consumed by the CLI.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"filelink/internal/api"
	"filelink/internal/config"
	"filelink/internal/fileutil"
	"filelink/internal/history"
	"filelink/internal/logging"
	"filelink/internal/queue"
)

// Server is the daemon HTTP endpoint.
type Server struct {
	cfg       *config.Config
	store     *queue.Store
	ledger    *history.Store
	logger    *slog.Logger
	startedAt time.Time

	listener net.Listener
	server   *http.Server
}

// New assembles the HTTP server. The ledger may be nil; history endpoints
// then return empty results.
func New(cfg *config.Config, store *queue.Store, ledger *history.Store, logger *slog.Logger) *Server {
	srv := &Server{
		cfg:       cfg,
		store:     store,
		ledger:    ledger,
		logger:    logging.NewComponentLogger(logger, "server"),
		startedAt: time.Now().UTC(),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/", srv.handleRoot)
	if cfg.Server.EnableFilesRoute {
		mux.HandleFunc("/files/", srv.handleFile)
	}
	mux.HandleFunc("/api/status", srv.handleStatus)
	mux.HandleFunc("/api/queue", srv.handleQueue)
	mux.HandleFunc("/api/history", srv.handleHistory)

	srv.server = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return srv
}

// Handler exposes the routing table for tests.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// Start begins serving on the configured bind address and arranges shutdown
// when ctx is canceled.
func (s *Server) Start(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.cfg.Server.Bind)
	if err != nil {
		return fmt.Errorf("http listen: %w", err)
	}
	s.listener = listener

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("http server error", logging.Error(err))
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}()

	s.logger.Info("http server listening", logging.String("address", listener.Addr().String()))
	return nil
}

// Stop shuts the server down outside of context cancellation.
func (s *Server) Stop() {
	if s == nil || s.server == nil {
		return
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = s.server.Shutdown(shutdownCtx)
	if s.listener != nil {
		_ = s.listener.Close()
		s.listener = nil
	}
}

// Addr reports the bound address once Start has succeeded.
func (s *Server) Addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("Server working"))
}

func (s *Server) handleFile(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	name := strings.TrimPrefix(r.URL.Path, "/files/")
	target, err := fileutil.SafeJoin(s.cfg.Paths.StorageDir, name)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	if !fileutil.FileExists(target) {
		http.NotFound(w, r)
		return
	}

	if ctype := mime.TypeByExtension(filepath.Ext(name)); ctype != "" {
		w.Header().Set("Content-Type", ctype)
	} else {
		w.Header().Set("Content-Type", "application/octet-stream")
	}
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))

	file, err := os.Open(target)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "open file")
		return
	}
	defer func() { _ = file.Close() }()
	info, err := file.Stat()
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "stat file")
		return
	}
	http.ServeContent(w, r, name, info.ModTime(), file)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	payload := api.DaemonStatus{
		Running:     true,
		PID:         os.Getpid(),
		QueueLength: s.store.Len(),
		StartedAt:   api.FormatTime(s.startedAt),
		Bind:        s.cfg.Server.Bind,
		StorageDir:  s.cfg.Paths.StorageDir,
	}
	if s.ledger != nil {
		completed, failed, err := s.ledger.Counts(r.Context())
		if err != nil {
			s.logger.Warn("read history counts", logging.Error(err))
		} else {
			payload.Completed = completed
			payload.Failed = failed
		}
	}
	s.writeJSON(w, http.StatusOK, payload)
}

func (s *Server) handleQueue(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	jobs := s.store.Snapshot()
	items := make([]api.QueueItem, len(jobs))
	for i, job := range jobs {
		items[i] = api.FromJob(job, i+1)
	}
	s.writeJSON(w, http.StatusOK, api.QueueListResponse{Items: items})
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if s.ledger == nil {
		s.writeJSON(w, http.StatusOK, api.HistoryListResponse{Entries: nil})
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	entries, err := s.ledger.Recent(r.Context(), limit)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	out := make([]api.HistoryEntry, len(entries))
	for i, entry := range entries {
		out[i] = api.FromHistoryEntry(entry)
	}
	s.writeJSON(w, http.StatusOK, api.HistoryListResponse{Entries: out})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Warn("encode response", logging.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, api.ErrorResponse{Error: message})
}

// Package toolserver exposes the fetch pipeline as a small JSON tool API for
// assistant integrations. Tool failures are reported in the response body
// with status "error"; the HTTP status stays 200 so callers only need to
// inspect one envelope.
package toolserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/shrihari-lab/chipatlas/internal/pipeline"
	"github.com/shrihari-lab/chipatlas/internal/table"
	"github.com/shrihari-lab/chipatlas/pkg/buildinfo"
	"github.com/shrihari-lab/chipatlas/pkg/logger"
)

const (
	// DefaultPort is used when the configuration does not name one.
	DefaultPort = 8750

	// previewRows caps how many matched rows a fetch response carries inline.
	previewRows = 10

	serverName = "chipatlas"
)

// HelloResponse is returned from the /hello liveness endpoint.
type HelloResponse struct {
	Name      string    `json:"name"`
	Version   string    `json:"version"`
	StartedAt time.Time `json:"started_at"`
}

// FetchRequest is the body of POST /tools/fetch_chip_atlas.
type FetchRequest struct {
	Gene         string `json:"gene"`
	MetadataType string `json:"metadata_type,omitempty"`
}

// FetchResponse reports the outcome of one pipeline run.
type FetchResponse struct {
	Status       string              `json:"status"`
	Gene         string              `json:"gene"`
	MetadataType string              `json:"metadata_type"`
	RowsFound    int                 `json:"rows_found"`
	Columns      []string            `json:"columns,omitempty"`
	Preview      []map[string]string `json:"preview,omitempty"`
	SavedTo      string              `json:"saved_to,omitempty"`
	Message      string              `json:"message,omitempty"`
}

// PingRequest is the body of POST /tools/ping.
type PingRequest struct {
	Message string `json:"message"`
}

// PingResponse echoes the ping message back.
type PingResponse struct {
	Reply string `json:"reply"`
}

// VersionResponse is returned from GET /tools/version_info.
type VersionResponse struct {
	Version string `json:"version"`
	Author  string `json:"author"`
}

// Server hosts the tool endpoints on a local TCP port.
type Server struct {
	runner     *pipeline.Runner
	listener   net.Listener
	httpServer *http.Server
	started    time.Time
	done       chan error
	once       sync.Once
}

// New binds a Server to 127.0.0.1 on the given port without starting it.
func New(runner *pipeline.Runner, port int) (*Server, error) {
	if port <= 0 {
		port = DefaultPort
	}
	listener, err := net.Listen("tcp", fmt.Sprintf("127.0.0.1:%d", port))
	if err != nil {
		return nil, fmt.Errorf("bind tool server port %d: %w", port, err)
	}

	srv := &Server{
		runner:   runner,
		listener: listener,
		started:  time.Now().UTC(),
		done:     make(chan error, 1),
	}
	srv.httpServer = &http.Server{
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return srv, nil
}

// Handler returns the routed tool API, usable without the TCP lifecycle.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/hello", s.handleHello)
	mux.HandleFunc("/tools/fetch_chip_atlas", s.handleFetch)
	mux.HandleFunc("/tools/ping", s.handlePing)
	mux.HandleFunc("/tools/version_info", s.handleVersion)
	return mux
}

// Port reports the bound TCP port.
func (s *Server) Port() int {
	return s.listener.Addr().(*net.TCPAddr).Port
}

// Start serves requests in the background and shuts down when ctx is
// cancelled.
func (s *Server) Start(ctx context.Context) {
	go s.serve()
	go s.watchContext(ctx)
	logger.Info("tool server listening",
		logger.Int("port", s.Port()),
		logger.String("version", buildinfo.BinaryVersion))
}

// Wait blocks until the server stops.
func (s *Server) Wait() error {
	err := <-s.done
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown stops the server proactively.
func (s *Server) Shutdown(ctx context.Context) error {
	s.once.Do(func() {
		_ = s.httpServer.Shutdown(ctx)
	})
	return s.Wait()
}

func (s *Server) serve() {
	err := s.httpServer.Serve(s.listener)
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Warn("tool server ended unexpectedly", logger.Err(err))
	}
	s.done <- err
	close(s.done)
}

func (s *Server) watchContext(ctx context.Context) {
	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s.once.Do(func() {
		_ = s.httpServer.Shutdown(shutdownCtx)
	})
}

func (s *Server) handleHello(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, HelloResponse{
		Name:      serverName,
		Version:   buildinfo.BinaryVersion,
		StartedAt: s.started,
	})
}

func (s *Server) handleFetch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req FetchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, FetchResponse{
			Status:  string(pipeline.StatusError),
			Message: fmt.Sprintf("invalid request body: %v", err),
		})
		return
	}
	if req.MetadataType == "" {
		req.MetadataType = "experiment_list"
	}

	resp := FetchResponse{
		Status:       string(pipeline.StatusError),
		Gene:         req.Gene,
		MetadataType: req.MetadataType,
	}
	defer func() {
		if rec := recover(); rec != nil {
			logger.Error("fetch tool panicked", logger.String("panic", fmt.Sprint(rec)))
			resp.Message = fmt.Sprintf("internal error: %v", rec)
			writeJSON(w, resp)
		}
	}()

	if req.Gene == "" {
		resp.Message = "gene is required"
		writeJSON(w, resp)
		return
	}

	out := s.runner.Fetch(req.MetadataType, req.Gene)
	resp.Status = string(out.Status)
	switch out.Status {
	case pipeline.StatusSuccess:
		resp.RowsFound = out.Matches.Len()
		resp.Columns = out.Matches.Columns
		resp.Preview = preview(out.Matches.Rows, out.Matches.Columns)
		resp.SavedTo = out.SavedPath
		if out.Err != nil {
			resp.Message = fmt.Sprintf("results could not be saved: %v", out.Err)
		}
	default:
		resp.Message = fmt.Sprintf("no data found for %q in %s", req.Gene, req.MetadataType)
		if out.Err != nil {
			resp.Message = out.Err.Error()
		}
	}
	writeJSON(w, resp)
}

func (s *Server) handlePing(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req PingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	writeJSON(w, PingResponse{Reply: "pong: " + req.Message})
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, VersionResponse{
		Version: buildinfo.BinaryVersion,
		Author:  buildinfo.Author,
	})
}

func preview(rows []table.Row, columns []string) []map[string]string {
	if len(rows) > previewRows {
		rows = rows[:previewRows]
	}
	out := make([]map[string]string, 0, len(rows))
	for _, row := range rows {
		entry := make(map[string]string, len(columns))
		for _, col := range columns {
			if value, ok := row[col]; ok {
				entry[col] = value
			}
		}
		out = append(out, entry)
	}
	return out
}

func writeJSON(w http.ResponseWriter, payload any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(payload)
}

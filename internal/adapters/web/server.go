package web

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/corey/bbfs/internal/adapters/socket"
	"github.com/corey/bbfs/internal/domain/bbfs"
	"github.com/corey/bbfs/internal/domain/chat"
	"go.uber.org/zap"
)

// maxBodyBytes caps request bodies (history text or chat message JSON).
const maxBodyBytes = 16 << 20

// Server serves the page and JSON API over HTTP.
type Server struct {
	queries  socket.AppQueries
	log      *zap.Logger
	listener net.Listener
	httpSrv  *http.Server
	port     int
	started  time.Time
	stopOnce sync.Once

	portFilePath string // .bbfs/run/http.port
}

// NewServer creates an HTTP server. The portFilePath is where the bound port
// is written for discovery; empty disables it.
func NewServer(queries socket.AppQueries, portFilePath string, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{
		queries:      queries,
		log:          log,
		portFilePath: portFilePath,
	}
}

// DefaultPort computes a project-specific port: 19000 + (hash(abs_path) % 1000).
func DefaultPort(projectRoot string) int {
	abs, err := filepath.Abs(projectRoot)
	if err != nil {
		abs = projectRoot
	}
	h := sha256.Sum256([]byte(abs))
	// Use first 4 bytes as uint32
	n := uint32(h[0])<<24 | uint32(h[1])<<16 | uint32(h[2])<<8 | uint32(h[3])
	return 19000 + int(n%1000)
}

// Handler returns the routing table. Exposed for httptest.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("GET /", http.FileServerFS(staticRoot()))
	mux.HandleFunc("GET /api/health", s.handleHealth)
	mux.HandleFunc("POST /api/analyze", s.handleAnalyze)
	mux.HandleFunc("POST /api/messages", s.handleMessage)
	return mux
}

// Start begins listening on the preferred port. Writes the port to the port file.
func (s *Server) Start(preferredPort int) error {
	addr := fmt.Sprintf("127.0.0.1:%d", preferredPort)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	s.listener = ln
	s.port = ln.Addr().(*net.TCPAddr).Port
	s.started = time.Now()

	s.httpSrv = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	if s.portFilePath != "" {
		os.WriteFile(s.portFilePath, []byte(fmt.Sprintf("%d", s.port)), 0644)
	}

	go s.httpSrv.Serve(ln)
	return nil
}

// Stop gracefully shuts down the HTTP server. Idempotent.
func (s *Server) Stop() {
	s.stopOnce.Do(func() {
		if s.httpSrv != nil {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			s.httpSrv.Shutdown(ctx)
		}
		if s.portFilePath != "" {
			os.Remove(s.portFilePath)
		}
	})
}

// Port returns the bound port number.
func (s *Server) Port() int {
	return s.port
}

// URL returns the base URL.
func (s *Server) URL() string {
	return fmt.Sprintf("http://localhost:%d", s.port)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	result := socket.HealthResult{Status: "ok"}
	if s.queries != nil {
		result = s.queries.Health()
	}
	if !s.started.IsZero() {
		result.Uptime = time.Since(s.started).Round(time.Second).String()
	}
	writeJSON(w, http.StatusOK, result)
}

// handleAnalyze takes plain-text history in the body and an optional ?top=N.
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	history, err := bbfs.Load(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		s.log.Warn("history body unreadable", zap.Error(err))
		history = []string{}
	}
	// No ?top leaves the choice to the daemon's configured default.
	topN := 0
	if r.URL.Query().Has("top") {
		topN = bbfs.ParseTopN(r.URL.Query().Get("top"))
	}

	var a *bbfs.Analysis
	if s.queries != nil {
		a = s.queries.Analyze(history, topN)
	} else {
		a = bbfs.Run(history, topN)
	}

	writeJSON(w, http.StatusOK, socket.AnalyzeResult{
		Entries:  a.Entries,
		TopN:     a.TopN,
		Report:   a.Report(),
		Analysis: a,
	})
}

func (s *Server) handleMessage(w http.ResponseWriter, r *http.Request) {
	if s.queries == nil {
		writeError(w, http.StatusServiceUnavailable, "chat not available")
		return
	}
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusRequestEntityTooLarge, "message too large")
		return
	}
	var m chat.Message
	if err := json.Unmarshal(body, &m); err != nil {
		writeError(w, http.StatusBadRequest, "invalid message JSON")
		return
	}
	writeJSON(w, http.StatusOK, s.queries.HandleMessage(m))
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

package socket

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"os"
	"sync"
	"time"

	"github.com/corey/bbfs/internal/domain/bbfs"
	"github.com/corey/bbfs/internal/domain/chat"
	"go.uber.org/zap"
)

// AppQueries is what the server needs from the application.
// Thread safety is the implementor's responsibility.
type AppQueries interface {
	HandleMessage(m chat.Message) chat.Reply
	Analyze(history []string, topN int) *bbfs.Analysis
	Health() HealthResult
}

// Server is the daemon that listens on a Unix socket and serves requests.
type Server struct {
	queries  AppQueries
	log      *zap.Logger
	listener net.Listener
	sockPath string
	started  time.Time

	done         chan struct{}
	shutdownCh   chan struct{} // closed when a remote shutdown request is received
	shutdownOnce sync.Once
	stopOnce     sync.Once
	wg           sync.WaitGroup

	connMu sync.Mutex
	conns  map[net.Conn]struct{}
}

// NewServer creates a daemon server. A nil logger disables logging.
func NewServer(sockPath string, queries AppQueries, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{
		queries:    queries,
		log:        log,
		sockPath:   sockPath,
		done:       make(chan struct{}),
		shutdownCh: make(chan struct{}),
		conns:      make(map[net.Conn]struct{}),
	}
}

// Start begins listening on the Unix socket. It handles stale sockets by
// attempting a connection first. If the connection fails, the stale socket
// is removed before binding.
func (s *Server) Start() error {
	if _, err := os.Stat(s.sockPath); err == nil {
		conn, err := net.DialTimeout("unix", s.sockPath, 500*time.Millisecond)
		if err == nil {
			conn.Close()
			return fmt.Errorf("daemon already running at %s", s.sockPath)
		}
		// Stale socket, remove it
		os.Remove(s.sockPath)
	}

	ln, err := net.Listen("unix", s.sockPath)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	s.listener = ln
	s.started = time.Now()

	s.wg.Add(1)
	go s.acceptLoop()

	return nil
}

// Stop gracefully shuts down the server, closing the listener, any idle
// connections and removing the socket file. Idempotent.
func (s *Server) Stop() error {
	s.stopOnce.Do(func() {
		close(s.done)
		if s.listener != nil {
			s.listener.Close()
		}
		s.connMu.Lock()
		for c := range s.conns {
			c.Close()
		}
		s.connMu.Unlock()
		s.wg.Wait()
		os.Remove(s.sockPath)
	})
	return nil
}

// ShutdownCh returns a channel that is closed when a remote shutdown request
// is received. The daemon's main goroutine should select on this alongside
// OS signals so the process actually exits after a remote stop.
func (s *Server) ShutdownCh() <-chan struct{} {
	return s.shutdownCh
}

// Addr returns the socket path the server is listening on.
func (s *Server) Addr() string {
	return s.sockPath
}

func (s *Server) acceptLoop() {
	defer s.wg.Done()
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			select {
			case <-s.done:
				return
			default:
				continue
			}
		}
		s.connMu.Lock()
		select {
		case <-s.done:
			s.connMu.Unlock()
			conn.Close()
			return
		default:
		}
		s.conns[conn] = struct{}{}
		s.connMu.Unlock()

		s.wg.Add(1)
		go s.handleConn(conn)
	}
}

func (s *Server) handleConn(conn net.Conn) {
	defer s.wg.Done()
	defer func() {
		s.connMu.Lock()
		delete(s.conns, conn)
		s.connMu.Unlock()
		conn.Close()
	}()

	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 64*1024), maxMessageBytes)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var req Request
		if err := json.Unmarshal(line, &req); err != nil {
			s.writeResponse(conn, Response{Error: "invalid request JSON"})
			continue
		}

		resp := s.safeHandle(req)
		s.writeResponse(conn, resp)

		if req.Method == MethodShutdown {
			s.shutdownOnce.Do(func() { close(s.shutdownCh) })
			return
		}
	}
}

// safeHandle converts a panicking handler into an error response so one bad
// request cannot take the daemon down.
func (s *Server) safeHandle(req Request) (resp Response) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("request handler panicked",
				zap.String("method", req.Method), zap.Any("panic", r))
			resp = Response{ID: req.ID, Error: "internal error"}
		}
	}()
	return s.handleRequest(req)
}

func (s *Server) handleRequest(req Request) Response {
	switch req.Method {
	case MethodHealth:
		return s.handleHealth(req)
	case MethodShutdown:
		return Response{ID: req.ID, Result: struct{}{}}
	case MethodMessage:
		return s.handleMessage(req)
	case MethodAnalyze:
		return s.handleAnalyze(req)
	default:
		return Response{ID: req.ID, Error: fmt.Sprintf("unknown method: %s", req.Method)}
	}
}

func (s *Server) handleHealth(req Request) Response {
	result := HealthResult{Status: "ok"}
	if s.queries != nil {
		result = s.queries.Health()
	}
	result.Uptime = time.Since(s.started).Round(time.Second).String()
	return Response{ID: req.ID, Result: result}
}

func (s *Server) handleMessage(req Request) Response {
	if s.queries == nil {
		return Response{ID: req.ID, Error: "chat not available"}
	}
	var params MessageParams
	if err := decodeParams(req.Params, &params); err != nil {
		return Response{ID: req.ID, Error: "invalid message params"}
	}
	reply := s.queries.HandleMessage(params)
	return Response{ID: req.ID, Result: MessageResult(reply)}
}

func (s *Server) handleAnalyze(req Request) Response {
	var params AnalyzeParams
	if err := decodeParams(req.Params, &params); err != nil {
		return Response{ID: req.ID, Error: "invalid analyze params"}
	}

	history := bbfs.LoadLines(params.Lines)
	var a *bbfs.Analysis
	if s.queries != nil {
		a = s.queries.Analyze(history, params.TopN)
	} else {
		a = bbfs.Run(history, params.TopN)
	}

	return Response{
		ID: req.ID,
		Result: AnalyzeResult{
			Entries:  a.Entries,
			TopN:     a.TopN,
			Report:   a.Report(),
			Analysis: a,
		},
	}
}

// decodeParams re-marshals generic params into a typed struct.
func decodeParams(params interface{}, out interface{}) error {
	paramsJSON, err := json.Marshal(params)
	if err != nil {
		return err
	}
	return json.Unmarshal(paramsJSON, out)
}

func (s *Server) writeResponse(conn net.Conn, resp Response) {
	data, err := json.Marshal(resp)
	if err != nil {
		s.log.Error("marshal response", zap.Error(err))
		return
	}
	data = append(data, '\n')
	conn.Write(data)
}

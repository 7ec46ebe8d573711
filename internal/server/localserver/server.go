package localserver

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"os"
	"sync"
	"sync/atomic"
)

// maxLineSize bounds one command line.
const maxLineSize = 64 << 10

// Server represents the control channel server.
type Server struct {
	path    string
	handler *Handler
	logger  *slog.Logger

	listener net.Listener
	running  atomic.Bool
	wg       sync.WaitGroup

	mu    sync.Mutex
	conns map[net.Conn]struct{}
}

// New creates a control server for the socket at socketPath.
func New(socketPath string, handler *Handler, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		path:    socketPath,
		handler: handler,
		logger:  logger,
		conns:   make(map[net.Conn]struct{}),
	}
}

// Listen binds the socket, replacing a stale socket file left by a
// previous run.
func (s *Server) Listen() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	ln, err := net.Listen("unix", s.path)
	if err != nil {
		return err
	}
	if err := os.Chmod(s.path, 0o600); err != nil {
		ln.Close()
		return err
	}
	s.listener = ln
	s.running.Store(true)
	return nil
}

// Serve accepts connections until Shutdown. Listen must be called first.
func (s *Server) Serve() error {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if !s.running.Load() || errors.Is(err, net.ErrClosed) {
				return nil
			}
			return err
		}

		s.track(conn, true)
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			defer s.track(conn, false)
			s.handleConnection(conn)
		}()
	}
}

// ListenAndServe binds the socket and serves it.
func (s *Server) ListenAndServe() error {
	if err := s.Listen(); err != nil {
		return err
	}
	return s.Serve()
}

// Addr returns the socket path.
func (s *Server) Addr() string {
	return s.path
}

// Shutdown stops accepting connections, closes open ones and waits for
// their goroutines, bounded by ctx.
func (s *Server) Shutdown(ctx context.Context) error {
	s.running.Store(false)

	var closeErr error
	if s.listener != nil {
		closeErr = s.listener.Close()
	}

	s.mu.Lock()
	for conn := range s.conns {
		conn.Close()
	}
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return closeErr
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Server) track(conn net.Conn, add bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if add {
		if !s.running.Load() {
			conn.Close()
			return
		}
		s.conns[conn] = struct{}{}
	} else {
		delete(s.conns, conn)
	}
}

func (s *Server) handleConnection(conn net.Conn) {
	defer conn.Close()

	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 4096), maxLineSize)
	enc := json.NewEncoder(conn)

	for scanner.Scan() {
		line := scanner.Text()
		reply := s.handler.Execute(context.Background(), line)
		if !reply.OK {
			s.logger.Debug("control command failed", "command", line, "error", reply.Error)
		}
		if err := enc.Encode(reply); err != nil {
			s.logger.Warn("control reply failed", "error", err)
			return
		}
	}
}

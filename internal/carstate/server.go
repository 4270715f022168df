// server.go — Unix domain socket front end for a car's shared state.
//
// Protocol: newline-delimited JSON over a Unix domain socket at
// <socket_dir>/car<name>.sock, created and owned by the car process.
// Other processes (the safety monitor, the internal override tool)
// connect as clients; none of them ever touch the state except through
// this socket.
//
// Commands (JSON request -> JSON response), one per line; a connection may
// carry any number of them:
//
//	{"cmd":"snapshot"}
//	  -> current state, immediately.
//	{"cmd":"watch","timeout_ms":5000}
//	  -> blocks until the state changes or the timeout elapses, then
//	     returns the resulting state.
//	{"cmd":"safety_check"}
//	  -> runs the safety invariant check and returns any messages it
//	     produced, plus whether a correction was applied.
//	{"cmd":"open"} {"cmd":"close"} {"cmd":"stop"}
//	{"cmd":"service_on"} {"cmd":"service_off"}
//	{"cmd":"up"} {"cmd":"down"}
//	  -> the seven operator overrides; {"ok":false,"error":"..."} if the
//	     precondition for the requested override isn't met.
package carstate

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"os"
	"time"

	"go.uber.org/zap"
)

const (
	maxConcurrentConns = 4
	connTimeout        = 10 * time.Second
)

// Request is the JSON structure for a carstate command.
type Request struct {
	Cmd       string `json:"cmd"`
	TimeoutMs int    `json:"timeout_ms,omitempty"`
}

// Response is the JSON structure for a carstate command's result.
type Response struct {
	OK       bool     `json:"ok"`
	Error    string   `json:"error,omitempty"`
	Snapshot *Snapshot `json:"snapshot,omitempty"`
	Changed  bool     `json:"changed,omitempty"`
	Messages []string `json:"messages,omitempty"`
}

// Server exposes a Store over a Unix domain socket.
type Server struct {
	socketPath string
	store      *Store
	overrides  Overrides
	log        *zap.Logger
	sem        chan struct{}
}

// Overrides are the car-side operations the seven operator commands
// dispatch to; implemented by the car's control loop so the socket server
// itself stays free of motion/door policy.
type Overrides interface {
	Open() error
	Close() error
	Stop() error
	ServiceOn() error
	ServiceOff() error
	Up() error
	Down() error
}

// NewServer creates a carstate Server. overrides may be nil for a
// read-only server, which then rejects the seven override commands.
func NewServer(socketPath string, store *Store, overrides Overrides, log *zap.Logger) *Server {
	return &Server{
		socketPath: socketPath,
		store:      store,
		overrides:  overrides,
		log:        log,
		sem:        make(chan struct{}, maxConcurrentConns),
	}
}

// ListenAndServe binds the socket (removing any stale file left behind by
// a previous run) and serves until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	if err := os.Remove(s.socketPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("carstate: remove stale socket %q: %w", s.socketPath, err)
	}

	lis, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return fmt.Errorf("carstate: listen %q: %w", s.socketPath, err)
	}
	defer lis.Close()

	if err := os.Chmod(s.socketPath, 0o600); err != nil {
		return fmt.Errorf("carstate: chmod %q: %w", s.socketPath, err)
	}

	s.log.Info("carstate socket listening", zap.String("path", s.socketPath))

	go func() {
		<-ctx.Done()
		lis.Close()
	}()

	for {
		conn, err := lis.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				return nil
			default:
				s.log.Error("carstate: accept error", zap.Error(err))
				continue
			}
		}

		select {
		case s.sem <- struct{}{}:
		default:
			s.log.Warn("carstate: max connections reached, rejecting")
			_ = conn.Close()
			continue
		}

		go func(c net.Conn) {
			defer func() { <-s.sem }()
			defer c.Close()
			s.handleConn(c)
		}(conn)
	}
}

func (s *Server) handleConn(conn net.Conn) {
	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 0, 4096), 4096)

	for scanner.Scan() {
		_ = conn.SetDeadline(time.Now().Add(connTimeout))

		var req Request
		if err := json.Unmarshal(scanner.Bytes(), &req); err != nil {
			s.write(conn, Response{OK: false, Error: "invalid JSON: " + err.Error()})
			continue
		}
		s.write(conn, s.dispatch(req))
	}
}

func (s *Server) dispatch(req Request) Response {
	switch req.Cmd {
	case "snapshot":
		snap := s.store.Snapshot()
		return Response{OK: true, Snapshot: &snap}
	case "watch":
		timeout := time.Duration(req.TimeoutMs) * time.Millisecond
		snap := s.store.Wait(timeout)
		return Response{OK: true, Snapshot: &snap}
	case "safety_check":
		msgs, changed := s.store.RunSafetyCheck()
		return Response{OK: true, Changed: changed, Messages: msgs}
	case "open", "close", "stop", "service_on", "service_off", "up", "down":
		return s.dispatchOverride(req.Cmd)
	default:
		return Response{OK: false, Error: fmt.Sprintf("unknown command %q", req.Cmd)}
	}
}

func (s *Server) dispatchOverride(cmd string) Response {
	if s.overrides == nil {
		return Response{OK: false, Error: "overrides not available on this server"}
	}
	var err error
	switch cmd {
	case "open":
		err = s.overrides.Open()
	case "close":
		err = s.overrides.Close()
	case "stop":
		err = s.overrides.Stop()
	case "service_on":
		err = s.overrides.ServiceOn()
	case "service_off":
		err = s.overrides.ServiceOff()
	case "up":
		err = s.overrides.Up()
	case "down":
		err = s.overrides.Down()
	}
	if err != nil {
		return Response{OK: false, Error: err.Error()}
	}
	return Response{OK: true}
}

func (s *Server) write(conn net.Conn, resp Response) {
	data, _ := json.Marshal(resp)
	data = append(data, '\n')
	_, _ = conn.Write(data)
}

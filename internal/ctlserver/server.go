// Package ctlserver implements the controller's TCP front end: accepting
// connections from call pads and cars, and dispatching each to the
// scheduler.
package ctlserver

import (
	"context"
	"fmt"
	"net"
	"syscall"

	"go.uber.org/zap"
	"golang.org/x/sys/unix"

	"github.com/liftctl/liftctl/internal/ledger"
	"github.com/liftctl/liftctl/internal/observability"
	"github.com/liftctl/liftctl/internal/scheduler"
	"github.com/liftctl/liftctl/internal/wire"
)

// ListenBacklog mirrors the original controller's MAX_CLIENTS listen
// backlog. ListenAndServe does not pass it to the listener, which uses the
// system's default backlog.
const ListenBacklog = 10

// Server is the controller's TCP listener and dispatcher.
type Server struct {
	Addr     string
	Registry *scheduler.Registry
	Log      *zap.Logger
	Metrics  *observability.ControllerMetrics
	Ledger   *ledger.Ledger
}

// ListenAndServe binds Addr with SO_REUSEADDR set (so a restarted
// controller doesn't have to wait out TIME_WAIT on a prior listener) and
// accepts connections until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	lc := net.ListenConfig{
		Control: func(network, address string, c syscall.RawConn) error {
			var sockErr error
			err := c.Control(func(fd uintptr) {
				sockErr = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_REUSEADDR, 1)
			})
			if err != nil {
				return err
			}
			return sockErr
		},
	}

	lis, err := lc.Listen(ctx, "tcp", s.Addr)
	if err != nil {
		return fmt.Errorf("ctlserver: listen %q: %w", s.Addr, err)
	}
	defer lis.Close()

	s.Log.Info("controller listening", zap.String("addr", s.Addr))

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
				s.Log.Error("ctlserver: accept error", zap.Error(err))
				continue
			}
		}
		go s.handleClient(ctx, conn)
	}
}

// handleClient reads the first frame off a new connection and branches
// to the CALL or CAR handler, exactly as the original dispatcher does;
// anything else gets an INVALID response.
func (s *Server) handleClient(ctx context.Context, conn net.Conn) {
	msg, err := wire.Receive(conn)
	if err != nil {
		conn.Close()
		return
	}

	tokens := wire.Tokenize(msg)
	if len(tokens) == 0 {
		_ = wire.Send(conn, "INVALID")
		conn.Close()
		return
	}

	switch tokens[0] {
	case "CALL":
		if len(tokens) != 3 {
			_ = wire.Send(conn, "INVALID")
			conn.Close()
			return
		}
		s.handleCall(conn, tokens[1], tokens[2])
		conn.Close()
	case "CAR":
		if len(tokens) != 4 {
			_ = wire.Send(conn, "INVALID")
			conn.Close()
			return
		}
		// manageCar owns the connection for the car's whole lifetime.
		s.manageCar(ctx, conn, tokens[1], tokens[2], tokens[3])
	default:
		_ = wire.Send(conn, "INVALID")
		conn.Close()
	}
}

package ctlserver

import (
	"context"
	"net"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/liftctl/liftctl/internal/scheduler"
	"github.com/liftctl/liftctl/internal/wire"
)

func startTestServer(t *testing.T) (addr string, shutdown func()) {
	t.Helper()
	srv := &Server{
		Addr:     "127.0.0.1:0",
		Registry: scheduler.NewRegistry(),
		Log:      zap.NewNop(),
	}

	lis, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	srv.Addr = lis.Addr().String()

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		<-ctx.Done()
		lis.Close()
	}()
	go func() {
		for {
			conn, err := lis.Accept()
			if err != nil {
				return
			}
			go srv.handleClient(ctx, conn)
		}
	}()

	return srv.Addr, cancel
}

func mustDial(t *testing.T, addr string) net.Conn {
	t.Helper()
	conn, err := net.DialTimeout("tcp", addr, time.Second)
	if err != nil {
		t.Fatalf("dial %q: %v", addr, err)
	}
	return conn
}

// Scenario 1: single-car happy path — a call is answered by the only
// registered car, which receives the first queued floor.
func TestSingleCarHappyPath(t *testing.T) {
	addr, shutdown := startTestServer(t)
	defer shutdown()

	carConn := mustDial(t, addr)
	defer carConn.Close()
	if err := wire.Send(carConn, "CAR A 1 10"); err != nil {
		t.Fatalf("register car: %v", err)
	}

	// Give the controller a moment to register the car before calling.
	time.Sleep(50 * time.Millisecond)

	callConn := mustDial(t, addr)
	defer callConn.Close()
	if err := wire.Send(callConn, "CALL 1 5"); err != nil {
		t.Fatalf("send call: %v", err)
	}

	resp, err := wire.Receive(callConn)
	if err != nil {
		t.Fatalf("receive call response: %v", err)
	}
	if resp != "CAR A" {
		t.Fatalf("expected \"CAR A\", got %q", resp)
	}

	floorMsg, err := wire.Receive(carConn)
	if err != nil {
		t.Fatalf("receive floor dispatch: %v", err)
	}
	if floorMsg != "FLOOR 1" {
		t.Fatalf("expected \"FLOOR 1\", got %q", floorMsg)
	}

	if err := wire.Send(carConn, "STATUS Opening 1 1"); err != nil {
		t.Fatalf("send status: %v", err)
	}

	nextFloor, err := wire.Receive(carConn)
	if err != nil {
		t.Fatalf("receive next floor dispatch: %v", err)
	}
	if nextFloor != "FLOOR 5" {
		t.Fatalf("expected \"FLOOR 5\", got %q", nextFloor)
	}
}

// Scenario 2: the only registered car cannot serve the floors — the call
// is answered with UNAVAILABLE.
func TestCallUnavailableWhenNoCarFits(t *testing.T) {
	addr, shutdown := startTestServer(t)
	defer shutdown()

	carConn := mustDial(t, addr)
	defer carConn.Close()
	if err := wire.Send(carConn, "CAR A 5 10"); err != nil {
		t.Fatalf("register car: %v", err)
	}
	time.Sleep(50 * time.Millisecond)

	callConn := mustDial(t, addr)
	defer callConn.Close()
	if err := wire.Send(callConn, "CALL 1 3"); err != nil {
		t.Fatalf("send call: %v", err)
	}

	resp, err := wire.Receive(callConn)
	if err != nil {
		t.Fatalf("receive call response: %v", err)
	}
	if resp != "UNAVAILABLE" {
		t.Fatalf("expected \"UNAVAILABLE\", got %q", resp)
	}
}

// Scenario 5 (partial, controller side): once a car disconnects by
// announcing EMERGENCY, it is removed from the registry and a subsequent
// call finds no eligible car.
func TestEmergencyAnnouncementRemovesCarFromRegistry(t *testing.T) {
	addr, shutdown := startTestServer(t)
	defer shutdown()

	carConn := mustDial(t, addr)
	if err := wire.Send(carConn, "CAR A 1 10"); err != nil {
		t.Fatalf("register car: %v", err)
	}
	time.Sleep(50 * time.Millisecond)

	if err := wire.Send(carConn, "EMERGENCY"); err != nil {
		t.Fatalf("send emergency: %v", err)
	}
	carConn.Close()
	time.Sleep(50 * time.Millisecond)

	callConn := mustDial(t, addr)
	defer callConn.Close()
	if err := wire.Send(callConn, "CALL 2 4"); err != nil {
		t.Fatalf("send call: %v", err)
	}
	resp, err := wire.Receive(callConn)
	if err != nil {
		t.Fatalf("receive call response: %v", err)
	}
	if resp != "UNAVAILABLE" {
		t.Fatalf("expected \"UNAVAILABLE\" after car left, got %q", resp)
	}
}

func TestInvalidCallFrameIsRejected(t *testing.T) {
	addr, shutdown := startTestServer(t)
	defer shutdown()

	conn := mustDial(t, addr)
	defer conn.Close()
	if err := wire.Send(conn, "CALL 1"); err != nil {
		t.Fatalf("send malformed call: %v", err)
	}
	resp, err := wire.Receive(conn)
	if err != nil {
		t.Fatalf("receive: %v", err)
	}
	if resp != "INVALID" {
		t.Fatalf("expected \"INVALID\", got %q", resp)
	}
}

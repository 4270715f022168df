package carstate

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap"
)

// fakeOverrides is a minimal Overrides implementation used to exercise
// the server's dispatch without pulling in the cardrive control loop.
type fakeOverrides struct {
	store *Store
}

func (f *fakeOverrides) Open() error  { f.store.Mutate(func(s *Snapshot) { s.OpenButton = true }); return nil }
func (f *fakeOverrides) Close() error { f.store.Mutate(func(s *Snapshot) { s.CloseButton = true }); return nil }
func (f *fakeOverrides) Stop() error  { f.store.Mutate(func(s *Snapshot) { s.EmergencyStop = true }); return nil }
func (f *fakeOverrides) ServiceOn() error {
	f.store.Mutate(func(s *Snapshot) { s.IndividualServiceMode = true })
	return nil
}
func (f *fakeOverrides) ServiceOff() error {
	f.store.Mutate(func(s *Snapshot) { s.IndividualServiceMode = false })
	return nil
}

// Up and Down enforce the same gating the real cardrive.Car.stepService
// does, for scenario 6 (individual service motion gating).
func (f *fakeOverrides) Up() error   { return f.stepService() }
func (f *fakeOverrides) Down() error { return f.stepService() }

func (f *fakeOverrides) stepService() error {
	snap := f.store.Snapshot()
	if !snap.IndividualServiceMode {
		return errString("Operation only allowed in service mode.")
	}
	if snap.Status == "Between" {
		return errString("Operation not allowed while elevator is moving.")
	}
	if snap.Status != "Closed" {
		return errString("Operation not allowed while doors are open.")
	}
	f.store.Mutate(func(s *Snapshot) { s.DestinationFloor = "4" })
	return nil
}

type errString string

func (e errString) Error() string { return string(e) }

func startTestCarstateServer(t *testing.T, store *Store, overrides Overrides) (socketPath string, shutdown func()) {
	t.Helper()
	socketPath = filepath.Join(t.TempDir(), "carA.sock")
	srv := NewServer(socketPath, store, overrides, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	started := make(chan struct{})
	go func() {
		close(started)
		_ = srv.ListenAndServe(ctx)
	}()
	<-started
	// ListenAndServe binds synchronously at the top of its call, but the
	// goroutine above only guarantees it has started running — give it a
	// moment to finish the bind before clients dial.
	time.Sleep(50 * time.Millisecond)

	return socketPath, cancel
}

func TestSnapshotRoundTrip(t *testing.T) {
	store := New("1")
	socketPath, shutdown := startTestCarstateServer(t, store, &fakeOverrides{store: store})
	defer shutdown()

	client, err := Dial(socketPath)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer client.Close()

	snap, err := client.Snapshot()
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if snap.CurrentFloor != "1" || snap.Status != "Closed" {
		t.Fatalf("unexpected snapshot: %+v", snap)
	}
}

// Scenario 6: individual service motion gating.
func TestIndividualServiceMotionGating(t *testing.T) {
	store := New("3")
	overrides := &fakeOverrides{store: store}
	socketPath, shutdown := startTestCarstateServer(t, store, overrides)
	defer shutdown()

	client, err := Dial(socketPath)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer client.Close()

	// "up" outside service mode is rejected.
	if err := client.Override("up"); err == nil {
		t.Fatal("expected up to be rejected outside service mode")
	}

	if err := client.Override("service_on"); err != nil {
		t.Fatalf("service_on: %v", err)
	}

	if err := client.Override("up"); err != nil {
		t.Fatalf("up in service mode: %v", err)
	}
	snap, err := client.Snapshot()
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if snap.DestinationFloor != "4" {
		t.Fatalf("expected destination 4, got %q", snap.DestinationFloor)
	}

	// Simulate doors open: "up" should now be rejected.
	store.Mutate(func(s *Snapshot) { s.Status = "Open" })
	err = client.Override("up")
	if err == nil {
		t.Fatal("expected up to be rejected while doors are open")
	}
	if err.Error() != "Operation not allowed while doors are open." {
		t.Fatalf("unexpected error message: %q", err.Error())
	}
}

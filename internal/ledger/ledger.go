// Package ledger is an ephemeral, run-scoped audit trail of ride
// lifecycle events, backed by BoltDB.
//
// Schema (BoltDB bucket layout):
//
//	/events
//	    key:   UTC timestamp (fixed-width nanoseconds) + "_" + monotonic sequence [sortable]
//	    value: JSON-encoded Event
//
//	/meta
//	    key:   "schema_version"
//	    value: "1"
//
// The database file lives under os.TempDir() by default and is removed
// on clean shutdown — this ledger exists to make one run's ride history
// inspectable while the controller is up, not to persist state across
// restarts. A stale file left behind by a prior crash is truncated (not
// appended to) the next time Open is called.
package ledger

import (
	"encoding/json"
	"fmt"
	"os"
	"sync/atomic"
	"time"

	bolt "go.etcd.io/bbolt"
)

const (
	// SchemaVersion is the current database schema version.
	SchemaVersion = "1"

	bucketEvents = "events"
	bucketMeta   = "meta"
)

// EventKind identifies the kind of ride lifecycle event recorded.
type EventKind string

const (
	EventCallReceived    EventKind = "call_received"
	EventCallUnavailable EventKind = "call_unavailable"
	EventFloorDispatched EventKind = "floor_dispatched"
	EventFloorArrival    EventKind = "floor_arrival"
	EventCarRegistered   EventKind = "car_registered"
	EventCarRemoved      EventKind = "car_removed"
)

// Event is a single audit ledger record.
type Event struct {
	Timestamp time.Time `json:"timestamp"`
	Kind      EventKind `json:"kind"`
	Car       string    `json:"car,omitempty"`
	FloorA    string    `json:"floor_a,omitempty"`
	FloorB    string    `json:"floor_b,omitempty"`
}

// Ledger wraps a BoltDB instance holding this run's ride event history.
type Ledger struct {
	db   *bolt.DB
	path string
	seq  atomic.Uint64
}

// Open creates (truncating any stale file at path) a fresh ledger
// database. If path is empty, a fresh temp file is used.
func Open(path string) (*Ledger, error) {
	if path == "" {
		f, err := os.CreateTemp("", "liftctl-ledger-*.db")
		if err != nil {
			return nil, fmt.Errorf("ledger: create temp file: %w", err)
		}
		path = f.Name()
		f.Close()
	}
	// Truncate any stale file from a prior crashed run: this ledger is
	// run-scoped, not a persistence layer across restarts.
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("ledger: remove stale file %q: %w", path, err)
	}

	bdb, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 5 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("ledger: bolt.Open(%q): %w", path, err)
	}

	l := &Ledger{db: bdb, path: path}

	if err := l.db.Update(func(tx *bolt.Tx) error {
		for _, name := range []string{bucketEvents, bucketMeta} {
			if _, err := tx.CreateBucketIfNotExists([]byte(name)); err != nil {
				return fmt.Errorf("CreateBucketIfNotExists(%q): %w", name, err)
			}
		}
		meta := tx.Bucket([]byte(bucketMeta))
		return meta.Put([]byte("schema_version"), []byte(SchemaVersion))
	}); err != nil {
		_ = bdb.Close()
		return nil, fmt.Errorf("ledger: initialisation failed: %w", err)
	}

	return l, nil
}

// Close closes the database and removes its backing file — this ledger
// never outlives the process that created it.
func (l *Ledger) Close() error {
	err := l.db.Close()
	_ = os.Remove(l.path)
	return err
}

func eventKey(t time.Time, seq uint64) []byte {
	// Fixed-width nanoseconds: RFC3339Nano trims trailing zeros, which
	// would break byte-order sorting of keys.
	return []byte(fmt.Sprintf("%s_%020d", t.UTC().Format("2006-01-02T15:04:05.000000000Z07:00"), seq))
}

// Record appends an event to the ledger. Failures are not fatal to the
// caller — an audit trail gap is preferable to blocking a ride dispatch
// on disk I/O — so Record does not log; it only returns the error, which
// callers are free to ignore.
func (l *Ledger) Record(kind EventKind, car, floorA, floorB string) error {
	ev := Event{
		Timestamp: time.Now().UTC(),
		Kind:      kind,
		Car:       car,
		FloorA:    floorA,
		FloorB:    floorB,
	}
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("ledger: marshal event: %w", err)
	}
	key := eventKey(ev.Timestamp, l.seq.Add(1))

	return l.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketEvents))
		return b.Put(key, data)
	})
}

// ReadAll returns all recorded events in chronological order.
func (l *Ledger) ReadAll() ([]Event, error) {
	var events []Event
	err := l.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketEvents))
		return b.ForEach(func(_, v []byte) error {
			var ev Event
			if err := json.Unmarshal(v, &ev); err != nil {
				return err
			}
			events = append(events, ev)
			return nil
		})
	})
	return events, err
}

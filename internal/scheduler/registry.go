// Package scheduler implements the controller's ride queue insertion
// algorithm and car bookkeeping: which car answers a call, and where in
// its queue the new stop belongs.
package scheduler

import "sync"

// Registry holds every car currently connected to the controller, in
// registration order, with its own mutex distinct from any individual
// Car's mutex (mirroring the original's separate car_vector_t lock from
// each Car's own pthread_mutex_t). Backed by an append-only ordered
// slice rather than a bare map, mirroring car_vector_t's cv_get_at
// indexed iteration, so that tie-breaking by registration order
// (spec §4.6.2) is deterministic instead of depending on Go's
// randomized map iteration order.
type Registry struct {
	mu    sync.Mutex
	order []*Car
	index map[string]int // name -> position in order
}

// NewRegistry returns an empty car registry.
func NewRegistry() *Registry {
	return &Registry{index: make(map[string]int)}
}

// Add registers a newly connected car. It is the caller's responsibility
// to ensure the name isn't already in use.
func (r *Registry) Add(c *Car) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.index[c.Name] = len(r.order)
	r.order = append(r.order, c)
}

// Remove drops a car, e.g. when it disconnects or switches to individual
// service or emergency mode. Later cars shift down by one position,
// same as cv_remove's compaction, preserving registration order among
// the cars that remain.
func (r *Registry) Remove(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	i, ok := r.index[name]
	if !ok {
		return
	}
	r.order = append(r.order[:i], r.order[i+1:]...)
	delete(r.index, name)
	for _, c := range r.order[i:] {
		r.index[c.Name]--
	}
}

// Get returns the car with the given name, if connected.
func (r *Registry) Get(name string) (*Car, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	i, ok := r.index[name]
	if !ok {
		return nil, false
	}
	return r.order[i], true
}

// Len returns the number of currently registered cars.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.order)
}

// All returns a snapshot slice of the currently registered cars in
// registration order, safe to range over without holding the registry
// lock.
func (r *Registry) All() []*Car {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*Car, len(r.order))
	copy(out, r.order)
	return out
}

// ChooseCar returns the least busy car able to serve both floors of a
// ride, or nil if none qualifies. "Least busy" is the car with the
// shortest ride queue; ties are broken by registration order — the
// first-registered qualifying car with the minimum queue length wins,
// per spec §4.6.2.
func ChooseCar(reg *Registry, sourceFloor, destFloor string) *Car {
	var best *Car
	minEntries := -1

	for _, c := range reg.All() {
		if !c.InBounds(sourceFloor) || !c.InBounds(destFloor) {
			continue
		}
		entries := c.QueueLen()
		if minEntries == -1 || entries < minEntries {
			minEntries = entries
			best = c
		}
	}
	return best
}

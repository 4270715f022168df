// Package observability — metrics.go
//
// Prometheus metrics for the liftctl controller and car processes.
//
// Endpoint: GET /metrics on 127.0.0.1:9090 (configurable).
// Format: Prometheus text exposition format (OpenMetrics compatible).
// Bind: loopback only — no external exposure.
//
// Metric naming convention: liftctl_<subsystem>_<name>_<unit>
//
// All metrics are registered on a dedicated prometheus.Registry (not the
// default global registry) to avoid collisions with other instrumented
// libraries in the same process.
//
// Cardinality control: the "car" label is bounded by the number of
// distinct car names that register with the controller.
package observability

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// ControllerMetrics holds the controller-side Prometheus metric
// descriptors: call handling, car registry, and per-car queue/dispatch
// activity.
type ControllerMetrics struct {
	registry *prometheus.Registry

	// CallsTotal counts CALL requests answered with a car assignment.
	CallsTotal prometheus.Counter

	// CallsUnavailableTotal counts CALL requests answered UNAVAILABLE.
	CallsUnavailableTotal prometheus.Counter

	// CarsRegistered is the current number of connected cars.
	CarsRegistered prometheus.Gauge

	// QueueLength is each car's current ride queue depth.
	// Labels: car
	QueueLength *prometheus.GaugeVec

	// FloorDispatchesTotal counts FLOOR messages sent to cars.
	// Labels: car
	FloorDispatchesTotal *prometheus.CounterVec

	// StatusUpdatesTotal counts STATUS reports processed from cars.
	// Labels: car
	StatusUpdatesTotal *prometheus.CounterVec

	// UptimeSeconds is the number of seconds since the controller started.
	UptimeSeconds prometheus.Gauge

	startTime time.Time
}

// NewControllerMetrics creates and registers the controller's metrics on
// a dedicated registry.
func NewControllerMetrics() *ControllerMetrics {
	reg := prometheus.NewRegistry()

	m := &ControllerMetrics{
		registry:  reg,
		startTime: time.Now(),

		CallsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "liftctl",
			Subsystem: "calls",
			Name:      "total",
			Help:      "Total CALL requests answered with a car assignment.",
		}),

		CallsUnavailableTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "liftctl",
			Subsystem: "calls",
			Name:      "unavailable_total",
			Help:      "Total CALL requests answered UNAVAILABLE (no car could serve both floors).",
		}),

		CarsRegistered: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "liftctl",
			Subsystem: "cars",
			Name:      "registered",
			Help:      "Current number of cars connected to the controller.",
		}),

		QueueLength: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "liftctl",
			Subsystem: "queue",
			Name:      "length",
			Help:      "Current ride queue depth, by car.",
		}, []string{"car"}),

		FloorDispatchesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "liftctl",
			Subsystem: "floor",
			Name:      "dispatches_total",
			Help:      "Total FLOOR messages sent to a car, by car.",
		}, []string{"car"}),

		StatusUpdatesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "liftctl",
			Subsystem: "status",
			Name:      "updates_total",
			Help:      "Total STATUS reports processed from a car, by car.",
		}, []string{"car"}),

		UptimeSeconds: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "liftctl",
			Subsystem: "controller",
			Name:      "uptime_seconds",
			Help:      "Number of seconds since the controller started.",
		}),
	}

	reg.MustRegister(
		m.CallsTotal,
		m.CallsUnavailableTotal,
		m.CarsRegistered,
		m.QueueLength,
		m.FloorDispatchesTotal,
		m.StatusUpdatesTotal,
		m.UptimeSeconds,
		prometheus.NewGoCollector(),
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
	)

	return m
}

// CallReceived records a CALL request that was assigned to a car.
func (m *ControllerMetrics) CallReceived() {
	m.CallsTotal.Inc()
}

// CallUnavailable records a CALL request that no car could serve.
func (m *ControllerMetrics) CallUnavailable() {
	m.CallsUnavailableTotal.Inc()
}

// CarRegistered records a car connecting to the controller.
func (m *ControllerMetrics) CarRegistered() {
	m.CarsRegistered.Inc()
}

// CarRemoved records a car disconnecting from the controller.
func (m *ControllerMetrics) CarRemoved() {
	m.CarsRegistered.Dec()
}

// SetQueueLength records a car's current ride queue depth.
func (m *ControllerMetrics) SetQueueLength(car string, n int) {
	m.QueueLength.WithLabelValues(car).Set(float64(n))
}

// FloorDispatched records a FLOOR message sent to a car.
func (m *ControllerMetrics) FloorDispatched(car string) {
	m.FloorDispatchesTotal.WithLabelValues(car).Inc()
}

// StatusUpdate records a STATUS report processed from a car.
func (m *ControllerMetrics) StatusUpdate(car string) {
	m.StatusUpdatesTotal.WithLabelValues(car).Inc()
}

// ServeMetrics starts the Prometheus HTTP metrics server on addr. Blocks
// until ctx is cancelled or the server fails.
func (m *ControllerMetrics) ServeMetrics(ctx context.Context, addr string) error {
	go m.updateUptime(ctx)
	return serveMetrics(ctx, m.registry, addr)
}

func (m *ControllerMetrics) updateUptime(ctx context.Context) {
	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			m.UptimeSeconds.Set(time.Since(m.startTime).Seconds())
		case <-ctx.Done():
			return
		}
	}
}

// CarMetrics holds the car-side Prometheus metric descriptors: door
// cycling, controller reconnects, and distance travelled.
type CarMetrics struct {
	registry *prometheus.Registry

	// DoorCyclesTotal counts full open/close door cycles.
	DoorCyclesTotal prometheus.Counter

	// ReconnectsTotal counts failed controller dial attempts (each is
	// followed by a retry).
	ReconnectsTotal prometheus.Counter

	// FloorsTravelledTotal counts single-floor movements made.
	FloorsTravelledTotal prometheus.Counter
}

// NewCarMetrics creates and registers a car's metrics on a dedicated
// registry.
func NewCarMetrics() *CarMetrics {
	reg := prometheus.NewRegistry()

	m := &CarMetrics{
		registry: reg,

		DoorCyclesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "liftctl",
			Subsystem: "car",
			Name:      "door_cycles_total",
			Help:      "Total door open/close cycles completed.",
		}),

		ReconnectsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "liftctl",
			Subsystem: "car",
			Name:      "reconnects_total",
			Help:      "Total failed controller dial attempts.",
		}),

		FloorsTravelledTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "liftctl",
			Subsystem: "car",
			Name:      "floors_travelled_total",
			Help:      "Total single-floor movements made.",
		}),
	}

	reg.MustRegister(
		m.DoorCyclesTotal,
		m.ReconnectsTotal,
		m.FloorsTravelledTotal,
		prometheus.NewGoCollector(),
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
	)

	return m
}

// DoorCycle records a completed door open/close cycle.
func (m *CarMetrics) DoorCycle() {
	m.DoorCyclesTotal.Inc()
}

// Reconnect records a failed controller dial attempt.
func (m *CarMetrics) Reconnect() {
	m.ReconnectsTotal.Inc()
}

// FloorTravelled records a single-floor movement.
func (m *CarMetrics) FloorTravelled() {
	m.FloorsTravelledTotal.Inc()
}

// ServeMetrics starts the Prometheus HTTP metrics server on addr. Blocks
// until ctx is cancelled or the server fails.
func (m *CarMetrics) ServeMetrics(ctx context.Context, addr string) error {
	return serveMetrics(ctx, m.registry, addr)
}

// serveMetrics runs a /metrics + /healthz HTTP server against reg until
// ctx is cancelled.
func serveMetrics(ctx context.Context, reg *prometheus.Registry, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
		ErrorHandling:     promhttp.ContinueOnError,
	}))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	srv := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("metrics server on %s: %w", addr, err)
	}
	return nil
}

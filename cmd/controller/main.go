// Package main — cmd/controller/main.go
//
// Controller entrypoint.
//
// Startup sequence:
//  1. Load and validate config from an optional -config path.
//  2. Initialise structured logger (zap).
//  3. Open the ephemeral ride-event ledger (BoltDB).
//  4. Start Prometheus metrics server (127.0.0.1:9090 by default).
//  5. Start the TCP listener (SO_REUSEADDR set) and accept call-pad and
//     car connections.
//  6. Block on SIGINT/SIGTERM for graceful shutdown.
//
// Shutdown sequence (on SIGINT/SIGTERM):
//  1. Cancel root context (propagates to the accept loop and every
//     in-flight car/call-pad connection).
//  2. Close the ledger (removing its backing file).
//  3. Flush logger.
//  4. Exit 0.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/liftctl/liftctl/internal/config"
	"github.com/liftctl/liftctl/internal/ctlserver"
	"github.com/liftctl/liftctl/internal/ledger"
	"github.com/liftctl/liftctl/internal/observability"
	"github.com/liftctl/liftctl/internal/scheduler"
)

func main() {
	configPath := flag.String("config", "", "Path to an optional config.yaml")
	listenAddr := flag.String("listen", "", "TCP address to accept connections on (overrides config)")
	logFormat := flag.String("log-format", "", "Log output format: json or console (overrides config)")
	version := flag.Bool("version", false, "Print version and exit")
	flag.Parse()

	if *version {
		fmt.Printf("liftctl-controller %s (commit=%s built=%s)\n",
			config.Version, config.GitCommit, config.BuildTime)
		os.Exit(0)
	}

	cfg, err := config.LoadController(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: config load failed: %v\n", err)
		os.Exit(1)
	}
	if *listenAddr != "" {
		cfg.ListenAddr = *listenAddr
	}
	if *logFormat != "" {
		cfg.Observability.LogFormat = *logFormat
	}

	log, err := buildLogger(cfg.Observability.LogLevel, cfg.Observability.LogFormat)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: logger init failed: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync() //nolint:errcheck

	log.Info("liftctl-controller starting",
		zap.String("version", config.Version),
		zap.String("listen_addr", cfg.ListenAddr),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ldg, err := ledger.Open(cfg.Ledger.Path)
	if err != nil {
		log.Fatal("ledger open failed", zap.Error(err))
	}
	defer ldg.Close() //nolint:errcheck
	log.Info("ride-event ledger opened")

	metrics := observability.NewControllerMetrics()
	go func() {
		if err := metrics.ServeMetrics(ctx, cfg.Observability.MetricsAddr); err != nil {
			log.Error("metrics server error", zap.Error(err))
		}
	}()
	log.Info("metrics server started", zap.String("addr", cfg.Observability.MetricsAddr))

	srv := &ctlserver.Server{
		Addr:     cfg.ListenAddr,
		Registry: scheduler.NewRegistry(),
		Log:      log,
		Metrics:  metrics,
		Ledger:   ldg,
	}

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- srv.ListenAndServe(ctx)
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info("shutdown signal received", zap.String("signal", sig.String()))
		cancel()
		<-serveErr
	case err := <-serveErr:
		if err != nil {
			log.Error("controller listener exited", zap.Error(err))
		}
	}

	log.Info("liftctl-controller shutdown complete")
}

func buildLogger(level, format string) (*zap.Logger, error) {
	var zapLevel zapcore.Level
	if err := zapLevel.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	var cfg zap.Config
	if format == "console" {
		cfg = zap.NewDevelopmentConfig()
	} else {
		cfg = zap.NewProductionConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(zapLevel)

	return cfg.Build()
}

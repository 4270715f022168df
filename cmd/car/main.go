// Package main — cmd/car/main.go
//
// Car entrypoint. Grounded on the original's car.c main(): positional
// arguments name, lowest floor, highest floor, delay (milliseconds).
//
// Usage: car {name} {lowest floor} {highest floor} {delay}
//
// Startup sequence:
//  1. Parse and validate positional arguments exactly as car.c does
//     (valid floor pair, positive integer delay, name-length check).
//  2. Initialise structured logger (zap).
//  3. Start Prometheus metrics server.
//  4. Start the carstate Unix-socket server over the car's shared state.
//  5. Start the controller session (dial, reconnect) and the door/motion
//     control loop.
//  6. Block on SIGINT/SIGTERM for graceful shutdown.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/liftctl/liftctl/internal/cardrive"
	"github.com/liftctl/liftctl/internal/carstate"
	"github.com/liftctl/liftctl/internal/config"
	"github.com/liftctl/liftctl/internal/floor"
	"github.com/liftctl/liftctl/internal/observability"
)

func main() {
	configPath := flag.String("config", "", "Path to an optional config.yaml")
	controllerAddr := flag.String("controller", "", "Controller TCP address (overrides config)")
	flag.Parse()

	args := flag.Args()
	if len(args) != 4 {
		fmt.Printf("Usage: %s {name} {lowest floor} {highest floor} {delay}\n", os.Args[0])
		os.Exit(1)
	}
	name, lowestFloor, highestFloor := args[0], args[1], args[2]

	if !floor.Valid(lowestFloor) || !floor.Valid(highestFloor) || !floor.Le(lowestFloor, highestFloor) {
		fmt.Println("Invalid floor(s) specified.")
		os.Exit(1)
	}

	delayMs, err := strconv.Atoi(args[3])
	if err != nil || delayMs <= 0 {
		fmt.Println("Invalid delay specified.")
		os.Exit(1)
	}

	if !carstate.ValidateName(name) {
		fmt.Println("Car name too long.")
		os.Exit(1)
	}

	cfg, err := config.LoadCar(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: config load failed: %v\n", err)
		os.Exit(1)
	}
	if *controllerAddr != "" {
		cfg.ControllerAddr = *controllerAddr
	}

	log, err := buildLogger(cfg.Observability.LogLevel, cfg.Observability.LogFormat)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: logger init failed: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync() //nolint:errcheck

	log.Info("liftctl-car starting",
		zap.String("name", name),
		zap.String("lowest_floor", lowestFloor),
		zap.String("highest_floor", highestFloor),
		zap.Int("delay_ms", delayMs),
		zap.String("controller_addr", cfg.ControllerAddr),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	metrics := observability.NewCarMetrics()
	go func() {
		if err := metrics.ServeMetrics(ctx, cfg.Observability.MetricsAddr); err != nil {
			log.Error("metrics server error", zap.Error(err))
		}
	}()

	car := cardrive.NewCar(name, lowestFloor, highestFloor, time.Duration(delayMs)*time.Millisecond, cfg.ControllerAddr, log)
	car.Metrics = metrics

	socketPath := carstate.SocketPath(cfg.SocketDir, name)
	stateSrv := carstate.NewServer(socketPath, car.Store, car, log)
	go func() {
		if err := stateSrv.ListenAndServe(ctx); err != nil {
			log.Error("carstate server error", zap.Error(err))
		}
	}()
	log.Info("carstate socket listening", zap.String("path", socketPath))

	done := make(chan struct{})
	go func() {
		car.ManageCar(ctx)
		close(done)
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	log.Info("shutdown signal received", zap.String("signal", sig.String()))
	cancel()
	<-done

	log.Info("liftctl-car shutdown complete")
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

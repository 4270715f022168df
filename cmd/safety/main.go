// Package main — cmd/safety/main.go
//
// Safety monitor entrypoint. Grounded on the original's safety.c main():
// one positional argument (car name), loops monitor_safety(shm) forever.
// Here that becomes: dial the car's carstate socket, then loop
// safety_check → watch (5 s timeout), logging (and printing, mirroring the original's
// direct stdout writes) any messages the check produces.
//
// Usage: safety {car name}
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/liftctl/liftctl/internal/carstate"
)

func main() {
	socketDir := flag.String("socket-dir", "/run/liftctl", "Directory holding car carstate sockets")
	flag.Parse()

	args := flag.Args()
	if len(args) != 1 {
		fmt.Printf("Usage: %s {car name}\n", os.Args[0])
		os.Exit(1)
	}
	carName := args[0]

	if !carstate.ValidateName(carName) {
		fmt.Println("Car name too long.")
		os.Exit(1)
	}

	log, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: logger init failed: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync() //nolint:errcheck

	socketPath := carstate.SocketPath(*socketDir, carName)
	client, err := carstate.Dial(socketPath)
	if err != nil {
		fmt.Printf("Unable to access car %s.\n", carName)
		os.Exit(1)
	}
	defer client.Close()

	for {
		messages, changed, err := client.SafetyCheck()
		if err != nil {
			log.Error("safety check failed", zap.String("car", carName), zap.Error(err))
			time.Sleep(time.Second)
			continue
		}
		for _, msg := range messages {
			fmt.Println(msg)
			log.Info("safety event", zap.String("car", carName), zap.String("message", msg))
		}
		if changed {
			log.Debug("safety state changed", zap.String("car", carName))
		}

		if _, err := client.Watch(5 * time.Second); err != nil {
			log.Error("watch failed", zap.String("car", carName), zap.Error(err))
			time.Sleep(time.Second)
		}
	}
}

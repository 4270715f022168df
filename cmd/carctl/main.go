// Package main — cmd/carctl/main.go
//
// Operator override tool. Grounded on the original's internal.c: dial
// the named car's shared state and dispatch one of the seven override
// commands.
//
// Usage: carctl {car name} {open|close|stop|service_on|service_off|up|down}
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/liftctl/liftctl/internal/carstate"
	"github.com/liftctl/liftctl/internal/wireerr"
)

var validOps = map[string]bool{
	"open": true, "close": true, "stop": true,
	"service_on": true, "service_off": true, "up": true, "down": true,
}

func main() {
	socketDir := flag.String("socket-dir", "/run/liftctl", "Directory holding car carstate sockets")
	flag.Parse()

	args := flag.Args()
	if len(args) != 2 {
		fmt.Printf("Usage: %s {car name} {operation}\n", os.Args[0])
		os.Exit(1)
	}
	carName, op := args[0], args[1]

	if !carstate.ValidateName(carName) {
		fmt.Println("Car name too long.")
		os.Exit(1)
	}
	if !validOps[op] {
		fmt.Println("Invalid operation.")
		os.Exit(1)
	}

	log, _ := zap.NewProduction()
	defer log.Sync() //nolint:errcheck

	socketPath := carstate.SocketPath(*socketDir, carName)
	client, err := carstate.Dial(socketPath)
	if err != nil {
		fmt.Printf("Unable to access car %s.\n", carName)
		if errors.Is(err, wireerr.ErrShmUnavailable) {
			log.Debug("carctl: car unreachable", zap.String("car", carName), zap.Error(err))
		}
		os.Exit(1)
	}
	defer client.Close()

	if err := client.Override(op); err != nil {
		fmt.Println(err.Error())
		log.Debug("carctl: override rejected", zap.String("car", carName), zap.String("op", op), zap.Error(err))
		os.Exit(1)
	}
}

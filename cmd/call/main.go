// Package main — cmd/call/main.go
//
// Call-pad entrypoint. Grounded on the original's call.c: connect to the
// controller, send "CALL {source} {destination}", and print a single
// human-readable line from the response.
//
// Usage: call {source floor} {destination floor}
package main

import (
	"flag"
	"fmt"
	"net"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/liftctl/liftctl/internal/floor"
	"github.com/liftctl/liftctl/internal/wire"
)

func main() {
	controllerAddr := flag.String("controller", "127.0.0.1:3000", "Controller TCP address")
	flag.Parse()

	args := flag.Args()
	if len(args) != 2 {
		fmt.Printf("Usage: %s {source floor} {destination floor}\n", os.Args[0])
		os.Exit(1)
	}
	sourceFloor, destFloor := args[0], args[1]

	if !floor.Valid(sourceFloor) || !floor.Valid(destFloor) {
		fmt.Println("Invalid floor(s) specified.")
		os.Exit(1)
	}
	if sourceFloor == destFloor {
		fmt.Println("You are already on that floor!")
		os.Exit(1)
	}

	log, _ := zap.NewProduction()
	defer log.Sync() //nolint:errcheck

	conn, err := net.DialTimeout("tcp", *controllerAddr, 5*time.Second)
	if err != nil {
		fmt.Println("Unable to connect to elevator system.")
		os.Exit(1)
	}
	defer conn.Close()

	msg := fmt.Sprintf("CALL %s %s", sourceFloor, destFloor)
	if err := wire.Send(conn, msg); err != nil {
		fmt.Println("Failed to send request to elevator system.")
		os.Exit(1)
	}

	response, err := wire.Receive(conn)
	if err != nil {
		fmt.Println("Failed to receive response from elevator system.")
		os.Exit(1)
	}
	log.Debug("call response", zap.String("source", sourceFloor), zap.String("dest", destFloor), zap.String("response", response))

	if carName, ok := strings.CutPrefix(response, "CAR "); ok {
		fmt.Printf("Car %s is arriving.\n", carName)
	} else {
		fmt.Println("Sorry, no car is available to take this request.")
	}
}

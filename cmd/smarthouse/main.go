// SmartHouse Core keeps a registry of the smart devices installed in a
// house and reports their state.
//
// Commands:
//
//	smarthouse report   print the house report once
//	smarthouse run      serve the house over MQTT and HTTP until interrupted
//	smarthouse version  print build information
//
// The house itself is declared in the config file (see configs/config.yaml).
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

const defaultConfigPath = "configs/config.yaml"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// getConfigPath returns SMARTHOUSE_CONFIG if set, otherwise the default path.
func getConfigPath() string {
	if path := os.Getenv("SMARTHOUSE_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

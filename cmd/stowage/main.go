// File: cmd/stowage/main.go
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	// Import backend implementations so their init() functions register them
	_ "stowage/internal/provider"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := Execute(ctx, os.Args[1:])
	stop()
	os.Exit(code)
}

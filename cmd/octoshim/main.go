// Package main is the entry point for the octoshim CLI.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/octoshim/octoshim/cmd/octoshim/commands"
	shimerrors "github.com/octoshim/octoshim/internal/errors"
)

func main() {
	// Cancelling the context on SIGINT/SIGTERM tears down a running
	// native CLI and lets translation cleanups run before exit.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := commands.Execute(ctx); err != nil {
		stop()
		os.Exit(shimerrors.Code(err))
	}
}

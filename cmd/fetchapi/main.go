package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/kochabx/fetchapi/log"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		log.Error().Err(err).Msg("fetchapi")
		stop()
		os.Exit(1)
	}
}

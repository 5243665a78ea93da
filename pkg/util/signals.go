package util

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
)

// SignalContext is cancelled on the first SIGINT or SIGTERM. A second signal exits immediately.
func SignalContext(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)

	signals := make(chan os.Signal, 2)
	signal.Notify(signals, os.Interrupt, syscall.SIGTERM)

	go func() {
		select {
		case <-signals:
		case <-ctx.Done():
			signal.Stop(signals)
			return
		}
		log.Info().Msg("Shutting down, interrupt again to force")
		cancel()

		<-signals
		log.Warn().Msg("Forced exit")
		os.Exit(1)
	}()

	return ctx, cancel
}

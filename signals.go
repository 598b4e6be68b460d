package resque

import (
	"context"
	"os"
	"syscall"
)

// BindSignals wires OS signals to worker shutdown: interrupt and terminate
// exit immediately, quit lets the in-flight job finish first.
func (w *Worker) BindSignals(ctx context.Context) {
	c := make(chan os.Signal, 1)
	w.env.Notify(c, os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		for sig := range c {
			if sig == syscall.SIGQUIT {
				w.logger.Info("received quit, finishing current job", "signal", sig.String())
				w.Exit(ctx, false)
				continue
			}
			w.logger.Info("received signal, exiting", "signal", sig.String())
			w.Exit(ctx, true)
		}
	}()
}

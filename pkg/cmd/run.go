package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Run starts the modules and blocks until all of them have stopped. The
// shared context is cancelled on SIGINT or SIGTERM, or when a module fails.
func Run(ctx context.Context, logger *zap.Logger, modules []Module) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	logger.Info("starting...")
	for _, m := range modules {
		if err := m.Start(ctx, g); err != nil {
			stop()
			g.Wait()
			return fmt.Errorf("error while starting: %w", err)
		}
	}

	g.Go(func() error {
		<-ctx.Done()
		logger.Info("exiting...")
		return nil
	})

	return g.Wait()
}

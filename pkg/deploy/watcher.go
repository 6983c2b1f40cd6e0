package deploy

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Watcher runs a controller as a module: it syncs the status on start,
// optionally requests a deployment, and closes the controller on shutdown.
type Watcher struct {
	logger        *zap.Logger
	controller    *Controller
	deployOnStart bool
}

func NewWatcher(logger *zap.Logger, controller *Controller, deployOnStart bool) *Watcher {
	return &Watcher{
		logger:        logger.Named("watcher"),
		controller:    controller,
		deployOnStart: deployOnStart,
	}
}

func (w *Watcher) Start(ctx context.Context, g *errgroup.Group) error {
	err := w.controller.Sync(ctx)
	if err != nil {
		w.logger.Warn("initial status sync failed", zap.Error(err))
	}

	if w.deployOnStart {
		// The panel keeps reporting the previous job as completed until the
		// next start request.
		if last := w.controller.CurrentState(); last.IsTerminal() {
			w.logger.Info("previous deployment finished, resetting",
				zap.String("message", last.Message),
			)
			if err := w.controller.Reset(); err != nil {
				return fmt.Errorf("watcher: %w", err)
			}
		}

		err := w.controller.Start(ctx)
		switch {
		case errors.Is(err, ErrAlreadyInProgress):
			w.logger.Info("deployment already in progress, following it")
		case errors.Is(err, ErrTerminal):
			w.logger.Warn("deployment finished before it could be started")
		case err != nil:
			return fmt.Errorf("watcher: %w", err)
		}
	}

	g.Go(func() error {
		<-ctx.Done()
		w.controller.Close()
		return nil
	})
	return nil
}

func LogObserver(logger *zap.Logger) Observer {
	logger = logger.Named("status")
	return ObserverFunc(func(status JobStatus) {
		logger.Info("deployment status",
			zap.String("phase", string(status.Phase())),
			zap.Bool("running", status.Running),
			zap.Bool("completed", status.Completed),
			zap.String("message", status.Message),
		)
	})
}

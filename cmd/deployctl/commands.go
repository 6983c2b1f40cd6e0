package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/oursky/slurm-deploy-controller/pkg/cmd"
	"github.com/oursky/slurm-deploy-controller/pkg/deploy"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newWatchCmd(a *app) *cobra.Command {
	var deployOnStart bool

	c := &cobra.Command{
		Use:   "watch",
		Short: "Follow the deployment status and serve the control API",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, args []string) error {
			modules, err := initModules(c.Context(), a.logger, a.config, deployOnStart)
			if err != nil {
				return fmt.Errorf("failed to init: %w", err)
			}
			return cmd.Run(c.Context(), a.logger, modules)
		},
	}

	c.Flags().BoolVar(&deployOnStart, "deploy", false, "request a deployment on start")
	return c
}

func newDeployCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "deploy",
		Short: "Start a deployment and wait for it to finish",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(c.Context(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			controller, err := newController(a.logger, a.config, nil)
			if err != nil {
				return err
			}
			defer controller.Close()

			controller.Subscribe(deploy.LogObserver(a.logger))
			return runDeploy(ctx, a.logger, controller)
		},
	}
}

// runDeploy starts a deployment, or follows the one the panel reports as
// running, and waits until it is terminal.
func runDeploy(ctx context.Context, logger *zap.Logger, controller *deploy.Controller) error {
	err := controller.Start(ctx)
	if errors.Is(err, deploy.ErrAlreadyRunning) {
		logger.Info("deployment already running, following it")
		err = controller.Sync(ctx)
		if err == nil && controller.CurrentState().Phase() == deploy.PhaseIdle {
			err = errors.New("panel refused the start but reports no running deployment")
		}
	}
	if err != nil {
		return fmt.Errorf("failed to start deployment: %w", err)
	}

	select {
	case <-controller.Done():
	case <-ctx.Done():
		controller.Cancel()
		return errors.New("interrupted before deployment finished")
	}

	final := controller.CurrentState()
	logger.Info("deployment finished", zap.String("message", final.Message))
	return nil
}

func newStatusCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Print the current deployment status",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, args []string) error {
			client, err := newPanelClient(a.config)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(c.Context(), a.config.Deploy.GetRequestTimeout())
			defer cancel()

			status, err := client.FetchStatus(ctx)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(c.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(status)
		},
	}
}


package main

import (
	"context"
	"fmt"
	"net/http"

	"github.com/oursky/slurm-deploy-controller/pkg/cmd"
	"github.com/oursky/slurm-deploy-controller/pkg/deploy"
	"github.com/oursky/slurm-deploy-controller/pkg/kv"
	"github.com/oursky/slurm-deploy-controller/pkg/panel"
	"github.com/oursky/slurm-deploy-controller/pkg/server"
	"github.com/oursky/slurm-deploy-controller/pkg/slack"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
)

func newPanelClient(config *Config) (*panel.Client, error) {
	transport, err := panel.NewTransport(&config.Panel, http.DefaultTransport)
	if err != nil {
		return nil, fmt.Errorf("cannot setup panel transport: %w", err)
	}

	client, err := panel.NewClient(&config.Panel, transport)
	if err != nil {
		return nil, fmt.Errorf("cannot setup panel client: %w", err)
	}
	return client, nil
}

func newController(logger *zap.Logger, config *Config, registry *prometheus.Registry) (*deploy.Controller, error) {
	client, err := newPanelClient(config)
	if err != nil {
		return nil, err
	}
	return deploy.NewController(logger, &config.Deploy, client, client, registry), nil
}

func newRecorder(ctx context.Context, logger *zap.Logger, config *Config) (*deploy.Recorder, error) {
	store, err := kv.NewStore(logger, &config.Store)
	if err != nil {
		return nil, fmt.Errorf("cannot setup store: %w", err)
	}

	recorder := deploy.NewRecorder(logger, store)
	last, err := recorder.Load(ctx)
	if err != nil {
		logger.Warn("failed to load last recorded status", zap.Error(err))
	} else if last != nil {
		logger.Info("last recorded status",
			zap.String("phase", string(last.Phase())),
			zap.String("message", last.Message),
		)
	}
	return recorder, nil
}

func initModules(ctx context.Context, logger *zap.Logger, config *Config, deployOnStart bool) ([]cmd.Module, error) {
	registry := prometheus.NewPedanticRegistry()
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	registry.MustRegister(collectors.NewGoCollector())

	controller, err := newController(logger, config, registry)
	if err != nil {
		return nil, err
	}

	recorder, err := newRecorder(ctx, logger, config)
	if err != nil {
		return nil, err
	}

	var modules []cmd.Module

	controller.Subscribe(deploy.LogObserver(logger))
	controller.Subscribe(recorder)

	if config.Slack.Enabled() {
		notifier := slack.NewNotifier(logger, &config.Slack)
		controller.Subscribe(notifier)
		modules = append(modules, notifier)
	}

	srv := server.NewServer(logger, &config.Server, controller, registry)
	modules = append(modules, srv)

	watcher := deploy.NewWatcher(logger, controller, deployOnStart)
	modules = append(modules, watcher)

	return modules, nil
}

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type app struct {
	configPath string
	logLevel   string

	logger *zap.Logger
	config *Config
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "deployctl",
		Short:         "Start and follow cluster deployments through the admin panel",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				a.logger.Sync()
			}
		},
	}

	root.PersistentFlags().StringVar(&a.configPath, "config", "deployctl.toml", "path to config file")
	root.PersistentFlags().StringVar(&a.logLevel, "loglevel", "info", "log level")

	root.AddCommand(newWatchCmd(a))
	root.AddCommand(newDeployCmd(a))
	root.AddCommand(newStatusCmd(a))
	return root
}

func (a *app) init() error {
	level, err := zapcore.ParseLevel(a.logLevel)
	if err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(level)
	logger, err := cfg.Build()
	if err != nil {
		return fmt.Errorf("failed to setup logger: %w", err)
	}
	a.logger = logger

	config, err := NewConfig(a.configPath)
	if err != nil {
		return err
	}
	a.config = config
	return nil
}

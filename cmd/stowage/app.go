// File: cmd/stowage/app.go
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"stowage/internal/config"
	"stowage/internal/logger"
	"stowage/internal/metrics"
	"stowage/internal/provider/factory"
	"stowage/internal/service"
	"stowage/internal/ui/prompt"
	"stowage/pkg/formatter"
	"stowage/pkg/multi/mirror"

	"github.com/prometheus/client_golang/prometheus"
)

// appContainer holds the shared dependencies of the commands. The configuration and
// everything built from it are loaded on first use, so config subcommands keep
// working on a file that does not validate yet
type appContainer struct {
	ConfigManager    *config.ConfigManager
	Config           *config.Config
	Factory          *factory.Factory
	StorageService   *service.StorageService
	StorageFormatter *formatter.StorageFormatter
	Metrics          *metrics.Collector
	Registry         *prometheus.Registry
	Logger           *slog.Logger

	debug     bool
	logOutput io.Writer
}

type appContextKey struct{}

// Creates the application container with a bootstrap logger
func newApp(opts rootOptions, logOutput io.Writer) (*appContainer, error) {
	cfgManager, err := config.NewConfigManager(opts.configPath)
	if err != nil {
		return nil, err
	}

	level := "info"
	if opts.debug {
		level = "debug"
	}
	log, err := logger.NewLogger(logger.Options{Level: level, Output: logOutput})
	if err != nil {
		return nil, err
	}

	return &appContainer{
		ConfigManager:    cfgManager,
		StorageFormatter: formatter.NewStorageFormatter(),
		Logger:           log,
		debug:            opts.debug,
		logOutput:        logOutput,
	}, nil
}

// Loads and validates the configuration, then wires the logger, metrics and services from it
func (a *appContainer) loadServices() error {
	if a.StorageService != nil {
		return nil
	}

	cfg, err := a.ConfigManager.Load()
	if err != nil {
		return err
	}

	level := cfg.Log.Level
	if a.debug {
		level = "debug"
	}
	log, err := logger.NewLogger(logger.Options{Level: level, Format: cfg.Log.Format, Output: a.logOutput})
	if err != nil {
		return err
	}

	registry := prometheus.NewRegistry()
	collector := metrics.New()
	if err := collector.Register(registry); err != nil {
		return err
	}

	providerFactory := factory.NewFactory(cfg, log).WithMetrics(collector)

	a.Config = cfg
	a.Logger = log
	a.Registry = registry
	a.Metrics = collector
	a.Factory = providerFactory
	a.StorageService = service.NewStorageService(providerFactory, log)
	return nil
}

// Dumps the metrics to the configured textfile, if any
func (a *appContainer) flushMetrics() error {
	if a.Config == nil || a.Config.Metrics.Textfile == "" {
		return nil
	}
	return metrics.WriteTextfile(a.Config.Metrics.Textfile, a.Registry)
}

func (a *appContainer) prompter(in io.Reader, out io.Writer) prompt.Prompter {
	return prompt.NewStandardPrompter(in, out)
}

// Renders a per-backend breakdown when err is a mirror write failure
func (a *appContainer) describeFailure(err error) (string, bool) {
	var failure *mirror.Failure
	if !errors.As(err, &failure) || a.Config == nil {
		return "", false
	}
	mc := a.Config.Mirror
	return a.StorageFormatter.FormatMirrorFailure(failure, mc.Backends, mc.Rollback), true
}

func appFromContext(ctx context.Context) (*appContainer, error) {
	app, ok := ctx.Value(appContextKey{}).(*appContainer)
	if !ok || app == nil {
		return nil, fmt.Errorf("application not initialized")
	}
	return app, nil
}

// Same as appFromContext, with the configuration-backed services loaded
func servicesFromContext(ctx context.Context) (*appContainer, error) {
	app, err := appFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if err := app.loadServices(); err != nil {
		return nil, err
	}
	return app, nil
}

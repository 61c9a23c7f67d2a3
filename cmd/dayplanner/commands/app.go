package commands

import (
	"context"
	"fmt"

	"github.com/dayplanner/core/internal/application/services"
	"github.com/dayplanner/core/internal/infrastructure/config"
	"github.com/dayplanner/core/internal/infrastructure/logger"
	"github.com/dayplanner/core/internal/infrastructure/metrics"
	"github.com/dayplanner/core/internal/infrastructure/storage"
	"github.com/dayplanner/core/internal/ports"
)

// logMode picks how much a command logs by default
type logMode int

const (
	logNormal logMode = iota
	logQuiet
	logSilent
)

// options are the persistent flags shared by every command
type options struct {
	configFile string
	dataPath   string
	ephemeral  bool
	logLevel   string
}

// app is the wiring shared by every command that touches the planner
type app struct {
	cfg     *config.Config
	logger  *logger.Logger
	kv      ports.KeyValueStore
	planner *services.PlannerService
	metrics *metrics.Metrics
}

func (o *options) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(o.configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if o.dataPath != "" {
		cfg.Storage.Driver = config.DriverFile
		cfg.Storage.Path = o.dataPath
	}
	if o.ephemeral {
		cfg.Storage.Driver = config.DriverMemory
	}
	if o.logLevel != "" {
		cfg.Logger.Level = o.logLevel
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func (o *options) newLogger(cfg *config.Config, mode logMode) (*logger.Logger, error) {
	explicit := o.logLevel != ""

	switch {
	case mode == logSilent && cfg.Logger.Output != "file":
		// Anything written to the terminal would tear the TUI.
		return logger.NewNop(), nil
	case mode == logQuiet && !explicit:
		lc := cfg.Logger
		lc.Level = "warn"
		return logger.New(lc)
	default:
		return logger.New(cfg.Logger)
	}
}

// open loads config, logger and storage, then initializes the planner
func (o *options) open(ctx context.Context, mode logMode, withMetrics bool) (*app, error) {
	cfg, err := o.loadConfig()
	if err != nil {
		return nil, err
	}

	appLogger, err := o.newLogger(cfg, mode)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	kv, err := storage.Open(ctx, cfg.Storage)
	if err != nil {
		_ = appLogger.Close()
		return nil, err
	}

	opts := services.PlannerOptions{ProfileName: cfg.Profile.Name}

	var m *metrics.Metrics
	if withMetrics && cfg.Metrics.Enabled {
		m = metrics.New()
		opts.Observer = m
	}

	planner := services.NewPlannerService(kv, appLogger, opts)
	planner.Initialize(ctx)

	if m != nil {
		m.SetTasks(len(planner.Tasks()))
	}

	return &app{
		cfg:     cfg,
		logger:  appLogger,
		kv:      kv,
		planner: planner,
		metrics: m,
	}, nil
}

func (a *app) close() {
	if err := a.kv.Close(); err != nil {
		a.logger.Warnw("Failed to close storage", "error", err)
	}
	_ = a.logger.Close()
}

package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/j-veylop/billing-dashboard-tui/internal/aggregator"
	"github.com/j-veylop/billing-dashboard-tui/internal/config"
	"github.com/j-veylop/billing-dashboard-tui/internal/logger"
	"github.com/j-veylop/billing-dashboard-tui/internal/models"
	"github.com/j-veylop/billing-dashboard-tui/internal/services"
)

// errUnknownModel is returned when --model names no model in the data.
var errUnknownModel = errors.New("unknown model")

// loadConfig loads configuration and applies the command line overrides.
func loadConfig(opts *options) (*config.Config, error) {
	cfg, err := config.Load(opts.configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if opts.user != "" {
		cfg.SetUser(opts.user)
	}
	if opts.period != "" {
		p, err := models.ParsePeriod(opts.period)
		if err != nil {
			return nil, err
		}
		cfg.DefaultPeriod = string(p)
	}
	if opts.file != "" {
		cfg.UsageFile = opts.file
	}
	if opts.offline {
		cfg.Offline = true
	}

	return cfg, nil
}

// batch is the result of a one-shot fetch and aggregation.
type batch struct {
	cfg     *config.Config
	records []models.UsageRecord
	report  *models.Report
	budget  models.BudgetStatus
}

// fetch loads usage once and aggregates it for the requested period and model.
func fetch(ctx context.Context, opts *options) (*batch, error) {
	cfg, err := loadConfig(opts)
	if err != nil {
		return nil, err
	}

	if cfg.LogFile != "" {
		closer, err := logger.Init(cfg.LogFile, cfg.LogLevel)
		if err != nil {
			return nil, err
		}
		defer func() { _ = closer.Close() }()
	} else {
		logger.SetLevel(cfg.LogLevel)
	}

	mgr, err := services.NewManager(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}
	defer func() {
		if closeErr := mgr.Close(); closeErr != nil {
			logger.Warn("error closing services", "error", closeErr)
		}
	}()

	records, err := mgr.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load usage: %w", err)
	}

	filter, err := resolveModel(records, opts.model)
	if err != nil {
		return nil, err
	}

	agg := aggregator.New(aggregator.WithLocation(cfg.Location()))
	return &batch{
		cfg:     cfg,
		records: records,
		report:  agg.Aggregate(records, cfg.Period(), filter),
		budget:  mgr.Budget(),
	}, nil
}

// resolveModel validates a --model value against the models present in records.
func resolveModel(records []models.UsageRecord, model string) (string, error) {
	if model == "" || model == models.FilterAll {
		return models.FilterAll, nil
	}
	resolved := aggregator.ResolveFilter(aggregator.ModelOptions(records), model)
	if resolved != model {
		return "", fmt.Errorf("%w %q: run `bdt models` to list available models", errUnknownModel, model)
	}
	return resolved, nil
}

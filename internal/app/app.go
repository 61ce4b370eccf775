// Package app wires configuration, logging, rate tables and the optional remote
// rate service into a ready TaxEngine for the CLI, the API server and the TUI.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/rgehrsitz/taxcalc/internal/calculation"
	"github.com/rgehrsitz/taxcalc/internal/config"
	"github.com/rgehrsitz/taxcalc/internal/rates"
	"github.com/rgehrsitz/taxcalc/internal/remote"
	"go.uber.org/zap"
)

// App bundles the pieces every front end needs
type App struct {
	Config *config.Config
	Logger *zap.Logger
	Engine *calculation.TaxEngine
}

// New builds the engine from cfg. The initial table comes from the configured
// loader chain; if every configured source fails the bundled table is used and a
// warning is logged. Later refreshes only read the primary source.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	loader := NewRateLoader(cfg.Rates, logger)
	initial, err := loader.Load(ctx)
	if err != nil {
		logger.Warn("configured rate sources failed, using bundled rates", zap.Error(err))
		initial, err = rates.Defaults()
		if err != nil {
			return nil, fmt.Errorf("failed to load bundled rates: %w", err)
		}
	}

	store, err := rates.NewStore(initial, NewRefreshLoader(cfg.Rates, logger))
	if err != nil {
		return nil, err
	}

	var engine *calculation.TaxEngine
	if cfg.Remote.Enabled {
		engine = calculation.NewTaxEngine(store, remote.NewRateSource(cfg.Remote, logger))
	} else {
		engine = calculation.NewTaxEngine(store, nil)
	}
	engine.Policy = cfg.Engine
	engine.SetLogger(logger.Sugar())

	logger.Debug("tax engine ready",
		zap.Int("tax_year", initial.TaxYear),
		zap.String("rates", store.LoaderDescription()),
		zap.Bool("remote", cfg.Remote.Enabled))

	return &App{Config: cfg, Logger: logger, Engine: engine}, nil
}

// NewRateLoader builds the startup chain: remote URL, then file, then the
// bundled table.
func NewRateLoader(cfg config.RatesConfig, logger *zap.Logger) rates.Loader {
	var chain rates.ChainLoader
	if cfg.URL != "" {
		chain = append(chain, tableLoader(cfg.URL, logger))
	}
	if cfg.File != "" {
		chain = append(chain, rates.FileLoader{Path: cfg.File})
	}
	chain = append(chain, rates.EmbeddedLoader{Year: rates.DefaultTaxYear})
	if len(chain) == 1 {
		return chain[0]
	}
	return chain
}

// NewRefreshLoader returns the single source a refresh reads: the URL if set,
// else the file, else the bundled table. A failed refresh must keep the current
// table, so there is no fallback here.
func NewRefreshLoader(cfg config.RatesConfig, logger *zap.Logger) rates.Loader {
	switch {
	case cfg.URL != "":
		return tableLoader(cfg.URL, logger)
	case cfg.File != "":
		return rates.FileLoader{Path: cfg.File}
	default:
		return rates.EmbeddedLoader{Year: rates.DefaultTaxYear}
	}
}

func tableLoader(url string, logger *zap.Logger) rates.Loader {
	return remote.NewTableLoader(url, remote.NewHTTPClient(remote.WithLogger(logger)))
}

// RefreshLoop reloads rates every interval until ctx is cancelled. A failed
// refresh keeps the current table.
func (a *App) RefreshLoop(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			table, err := a.Engine.Rates.Refresh(ctx)
			if err != nil {
				a.Logger.Warn("scheduled rate refresh failed", zap.Error(err))
				continue
			}
			a.Logger.Info("rates refreshed",
				zap.Int("tax_year", table.TaxYear),
				zap.String("source", a.Engine.Rates.LoaderDescription()))
		}
	}
}

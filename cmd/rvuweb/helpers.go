package main

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/drweldonhawaii/rvu-web-app/internal/config"
	"github.com/drweldonhawaii/rvu-web-app/internal/dataset"
	"github.com/drweldonhawaii/rvu-web-app/internal/gate"
	"github.com/drweldonhawaii/rvu-web-app/internal/logging"
	"github.com/drweldonhawaii/rvu-web-app/internal/release"
	"github.com/drweldonhawaii/rvu-web-app/internal/synclog"
	"github.com/drweldonhawaii/rvu-web-app/internal/updater"
)

func loadConfig(configFlag *string) (*config.Config, error) {
	path := ""
	if configFlag != nil {
		path = *configFlag
	}
	cfg, _, _, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}
	return cfg, nil
}

func journalPath(cfg *config.Config) string {
	return filepath.Join(cfg.Paths.DataDir, "synclog.db")
}

func newSyncer(cfg *config.Config, journal *synclog.Store, logger *slog.Logger) (*updater.Syncer, error) {
	tpl, err := release.NewTemplate(cfg.NCCI.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("ncci.base_url: %w", err)
	}
	fetcher := gate.NewFetcher(gate.Options{
		Timeout:  time.Duration(cfg.NCCI.RequestTimeout) * time.Second,
		DebugDir: cfg.NCCI.DebugDir,
		Logger:   logger,
	})
	return updater.New(updater.Options{
		Template:  tpl,
		OutputDir: cfg.Paths.DataDir,
		Fetcher:   fetcher,
		Journal:   journal,
		Logger:    logger,
	})
}

// editTablePath returns the on-disk location of the merged edit table for
// the release the marker file records, or for the configured base URL when
// no marker exists yet.
func editTablePath(cfg *config.Config) (string, error) {
	tpl, err := release.NewTemplate(cfg.NCCI.BaseURL)
	if err != nil {
		return "", fmt.Errorf("ncci.base_url: %w", err)
	}
	if id, ok := dataset.ReadMarker(cfg.Paths.DataDir); ok {
		tpl = tpl.WithIdentifier(id)
	}
	return dataset.OutputPath(tpl.URL(), cfg.Paths.DataDir), nil
}

func newLogger(cfg *config.Config) (*slog.Logger, error) {
	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("init logging: %w", err)
	}
	return logger, nil
}

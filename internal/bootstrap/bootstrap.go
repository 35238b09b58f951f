// Package bootstrap assembles the configured store and registry shared by the
// API server and the command line tool.
package bootstrap

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/aivt-api/internal/config"
	"github.com/noah-isme/aivt-api/internal/database"
	"github.com/noah-isme/aivt-api/internal/repository"
	"github.com/noah-isme/aivt-api/internal/service"
)

// Runtime holds the long lived components built from configuration.
type Runtime struct {
	Config   config.Config
	Logger   zerolog.Logger
	DB       *gorm.DB
	Store    repository.CaseStore
	Registry service.CaseRegistry
	// Loaded reports whether the registry was restored from an existing store.
	Loaded bool
	// Seeded is the number of sample cases inserted on startup.
	Seeded int
}

// NewLogger builds the process logger at the configured level.
func NewLogger(w io.Writer, level string) zerolog.Logger {
	parsed, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || level == "" {
		parsed = zerolog.InfoLevel
	}
	return zerolog.New(w).Level(parsed).With().Timestamp().Logger()
}

// Open connects the store and loads the registry. When seed is set and no
// prior state could be restored, the sample cases are inserted.
func Open(ctx context.Context, cfg config.Config, logger zerolog.Logger, seed bool) (*Runtime, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, err
	}
	if err := repository.AutoMigrate(db); err != nil {
		closeDB(db)
		return nil, fmt.Errorf("failed to migrate case store: %w", err)
	}

	store := repository.NewCaseStore(db, cfg.StoreLocation())
	registry, loaded := service.OpenCaseRegistry(ctx, store, logger)

	rt := &Runtime{
		Config:   cfg,
		Logger:   logger,
		DB:       db,
		Store:    store,
		Registry: registry,
		Loaded:   loaded,
	}

	if seed && !loaded {
		inserted, err := service.NewSeedService(registry, true, logger).SeedSampleCases(ctx)
		if err != nil {
			logger.Error().Err(err).Msg("failed to initialize sample data")
		}
		rt.Seeded = inserted
	}

	return rt, nil
}

// Close releases the database connection.
func (r *Runtime) Close() {
	if r == nil || r.DB == nil {
		return
	}
	closeDB(r.DB)
}

func closeDB(db *gorm.DB) {
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

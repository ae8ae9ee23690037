package main

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"neo-overwatch/db"
	"neo-overwatch/pkg/config"
	"neo-overwatch/pkg/extract"
	"neo-overwatch/pkg/logger"
	"neo-overwatch/pkg/metrics"
	"neo-overwatch/pkg/neodb"
	"neo-overwatch/pkg/ontology"
)

// openCatalog opens the sqlite catalog and makes sure its tables exist.
func openCatalog(ctx context.Context, cfg *config.Config, log *logger.Logger) (*db.Service, error) {
	dbCfg := db.DefaultConfig()
	dbCfg.DBPath = cfg.SQLitePath

	catalog, err := db.New(dbCfg, log)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog: %w", err)
	}
	if err := catalog.EnsureSchema(ctx); err != nil {
		catalog.Close()
		return nil, fmt.Errorf("failed to initialize catalog schema: %w", err)
	}
	return catalog, nil
}

// loadDatabase reads both record sets from the configured source and builds
// the linked database.
func loadDatabase(ctx context.Context, cfg *config.Config, log *logger.Logger) (*neodb.Database, error) {
	var src extract.Source
	switch cfg.Source {
	case config.SourceSQLite:
		catalog, err := openCatalog(ctx, cfg, log)
		if err != nil {
			return nil, err
		}
		defer catalog.Close()

		run, err := catalog.LastImport(ctx)
		switch {
		case errors.Is(err, db.ErrNoImport):
			log.Warn("catalog is empty, run neowatch import first", "path", cfg.SQLitePath)
		case err != nil:
			return nil, err
		default:
			log.Info("using catalog import", "run_id", run.RunID, "imported_at", run.FinishedAt)
		}
		src = catalog
	default:
		src = extract.NewFileSource(cfg.NEOPath, cfg.CADPath)
	}

	var (
		neos       []*ontology.NearEarthObject
		approaches []*ontology.CloseApproach
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		neos, err = src.LoadNEOs(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		approaches, err = src.LoadApproaches(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	database, err := neodb.New(neos, approaches)
	if err != nil {
		return nil, fmt.Errorf("failed to build database: %w", err)
	}

	stats := database.Stats()
	metrics.RecordDatabase(stats)
	log.Info("database loaded",
		"source", cfg.Source,
		"neos", stats.NEOs,
		"approaches", stats.Approaches,
		"orphans", stats.Orphans,
		"shadowed_names", stats.ShadowedNames,
	)
	return database, nil
}

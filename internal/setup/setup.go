// Package setup wires the pipeline dependencies shared by the server and the
// worker from the environment.
package setup

import (
	"context"
	"fmt"

	"github.com/OFFIS-RIT/scholargraph/internal/cache"
	"github.com/OFFIS-RIT/scholargraph/internal/pipeline"
	"github.com/OFFIS-RIT/scholargraph/internal/storage"
	"github.com/OFFIS-RIT/scholargraph/internal/util"
	"github.com/OFFIS-RIT/scholargraph/pkg/analysis"
	"github.com/OFFIS-RIT/scholargraph/pkg/logger"
	"github.com/OFFIS-RIT/scholargraph/pkg/store"
	"github.com/OFFIS-RIT/scholargraph/pkg/store/memory"
	pgxstore "github.com/OFFIS-RIT/scholargraph/pkg/store/pgx"

	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	StorageMemory   = "memory"
	StoragePostgres = "postgres"
)

type Params struct {
	// Migrate applies the schema migrations before connecting.
	Migrate bool
}

// Pipeline builds the pipeline described by the environment. The returned
// cleanup releases the database pool and cache.
func Pipeline(ctx context.Context, params Params) (*pipeline.Pipeline, func(), error) {
	var cleanups []func()
	cleanup := func() {
		for i := len(cleanups) - 1; i >= 0; i-- {
			cleanups[i]()
		}
	}

	s, closeStore, err := graphStorage(ctx, params)
	if err != nil {
		return nil, nil, err
	}
	cleanups = append(cleanups, closeStore)

	opts := []pipeline.Option{
		pipeline.WithTopK(util.GetEnvInt("CENTRAL_NODES_TOP_K", analysis.DefaultTopK)),
	}

	if entries := util.GetEnvInt("CACHE_MAX_ENTRIES", 1000); entries > 0 {
		c, err := cache.New(int64(entries), util.GetEnvDuration("CACHE_TTL", 0))
		if err != nil {
			cleanup()
			return nil, nil, err
		}
		cleanups = append(cleanups, c.Close)
		opts = append(opts, pipeline.WithCache(c))
	}

	if util.GetEnv("AWS_BUCKET") != "" {
		objects, err := storage.NewS3Store(ctx)
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("failed to create s3 client: %w", err)
		}
		opts = append(opts, pipeline.WithObjectStore(objects))
	} else {
		logger.Info("[Setup] AWS_BUCKET not set, exports are disabled")
	}

	return pipeline.New(s, opts...), cleanup, nil
}

func graphStorage(ctx context.Context, params Params) (store.GraphStorage, func(), error) {
	switch kind := util.GetEnvString("STORAGE", StoragePostgres); kind {
	case StorageMemory:
		logger.Warn("[Setup] Using in-memory storage, graphs are lost on restart")
		return memory.NewGraphMemoryStorage(), func() {}, nil
	case StoragePostgres:
		databaseURL := util.GetEnv("DATABASE_URL")
		if databaseURL == "" {
			return nil, nil, fmt.Errorf("DATABASE_URL is required for %s storage", kind)
		}
		if params.Migrate {
			dir := util.GetEnvString("MIGRATIONS_PATH", "migrations")
			if err := RunMigrations(databaseURL, dir); err != nil {
				return nil, nil, err
			}
		}

		pool, err := util.RetryWithContext(ctx, util.DefaultBackoff, func(ctx context.Context) (*pgxpool.Pool, error) {
			pool, err := pgxpool.New(ctx, databaseURL)
			if err != nil {
				return nil, err
			}
			if err := pool.Ping(ctx); err != nil {
				pool.Close()
				return nil, err
			}
			return pool, nil
		})
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		return pgxstore.NewGraphDBStorageWithConnection(pool), pool.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown STORAGE %q", kind)
	}
}

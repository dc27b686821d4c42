package bootstrap

import (
	"context"
	"fmt"

	"github.com/Domenick1991/flightroutes/config"
	"github.com/Domenick1991/flightroutes/internal/repository"
	"github.com/jackc/pgx/v5/pgxpool"
)

// OpenStore connects to the configured database, creates the schema and returns
// the repositories together with a close func.
func OpenStore(ctx context.Context, cfg config.DatabaseConfig) (repository.Store, func(), error) {
	switch cfg.Driver {
	case "sqlite":
		db, err := repository.OpenSQLite(ctx, cfg.Path)
		if err != nil {
			return repository.Store{}, nil, fmt.Errorf("open sqlite: %w", err)
		}
		return repository.NewSQLiteStore(db), func() { _ = db.Close() }, nil
	default:
		pool, err := pgxpool.New(ctx, cfg.DSN())
		if err != nil {
			return repository.Store{}, nil, fmt.Errorf("connect postgres: %w", err)
		}
		if err := repository.EnsureSchema(ctx, pool); err != nil {
			pool.Close()
			return repository.Store{}, nil, err
		}
		return repository.NewPGStore(pool), pool.Close, nil
	}
}

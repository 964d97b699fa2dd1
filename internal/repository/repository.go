package repository

import (
	"context"
	"fmt"

	"portfolio_gallery/internal/config"
	"portfolio_gallery/internal/storage/postgresql"
	"portfolio_gallery/internal/storage/sqlite"
)

const (
	driverPostgres = "postgres"
	driverSQLite   = "sqlite"
)

type Repository struct {
	Gallery GalleryRepository
	close   func()
}

// NewRepository opens the configured record store and makes sure its schema exists.
func NewRepository(ctx context.Context, cfg config.RecordStoreConfig) (*Repository, error) {
	const op = "repository.NewRepository"

	switch cfg.Driver {
	case driverPostgres, "":
		pg, err := postgresql.New(ctx, cfg.DSN)
		if err != nil {
			return nil, fmt.Errorf("%s: failed to connect to database: %w", op, err)
		}

		if err := pg.Migrate(ctx, cfg.Table); err != nil {
			pg.Stop()
			return nil, fmt.Errorf("%s: %w", op, err)
		}

		return &Repository{
			Gallery: NewGalleryRepo(pg.Pool(), cfg.Table),
			close:   pg.Stop,
		}, nil
	case driverSQLite:
		db, err := sqlite.New(cfg.DSN)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}

		closeDB := func() {
			if sqlDB, err := db.DB(); err == nil {
				_ = sqlDB.Close()
			}
		}

		repo, err := NewGormGalleryRepo(db, cfg.Table)
		if err != nil {
			closeDB()
			return nil, fmt.Errorf("%s: %w", op, err)
		}

		return &Repository{
			Gallery: repo,
			close:   closeDB,
		}, nil
	default:
		return nil, fmt.Errorf("%s: unknown record store driver %q", op, cfg.Driver)
	}
}

func (r *Repository) Close() {
	if r.close != nil {
		r.close()
	}
}

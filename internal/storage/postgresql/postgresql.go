package postgresql

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

// DefaultTable is the metadata table used when none is configured.
const DefaultTable = "gallery_metadata"

type Storage struct {
	db *pgxpool.Pool
}

func New(ctx context.Context, dsn string) (*Storage, error) {
	const op = "storage.postgresql.New"

	db, err := pgxpool.Connect(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Storage{db: db}, nil
}

func (s *Storage) Pool() *pgxpool.Pool {
	return s.db
}

// Migrate creates the metadata table and its ordering index if they are missing.
func (s *Storage) Migrate(ctx context.Context, table string) error {
	const op = "storage.postgresql.Migrate"

	if _, err := s.db.Exec(ctx, Schema(table)); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (s *Storage) Stop() {
	s.db.Close()
}

// Schema returns the DDL of the metadata table.
func Schema(table string) string {
	if table == "" {
		table = DefaultTable
	}

	return fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %[1]s (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			url TEXT NOT NULL,
			title TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			file_name TEXT NOT NULL UNIQUE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);

		CREATE INDEX IF NOT EXISTS %[2]s ON %[1]s (created_at DESC);
	`,
		pgx.Identifier{table}.Sanitize(),
		pgx.Identifier{table + "_created_at_idx"}.Sanitize(),
	)
}

package postgresql

import (
	"context"
	"testing"

	"portfolio_gallery/internal/lib/testdb"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchema(t *testing.T) {
	ddl := Schema("")

	assert.Contains(t, ddl, `CREATE TABLE IF NOT EXISTS "gallery_metadata"`)
	assert.Contains(t, ddl, `"gallery_metadata_created_at_idx"`)
	assert.Contains(t, ddl, "file_name TEXT NOT NULL UNIQUE")
}

func TestStorage_Migrate(t *testing.T) {
	if testing.Short() {
		t.Skip("needs docker")
	}

	ctx := context.Background()
	dsn := testdb.StartPostgres(t)

	storage, err := New(ctx, dsn)
	require.NoError(t, err)
	defer storage.Stop()

	// twice: migration must be idempotent
	require.NoError(t, storage.Migrate(ctx, DefaultTable))
	require.NoError(t, storage.Migrate(ctx, DefaultTable))

	var count int
	err = storage.Pool().QueryRow(ctx, `SELECT COUNT(*) FROM gallery_metadata`).Scan(&count)
	require.NoError(t, err)
	assert.Zero(t, count)
}

package repository_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"portfolio_gallery/internal/config"
	"portfolio_gallery/internal/domain/models"
	"portfolio_gallery/internal/lib/testdb"
	"portfolio_gallery/internal/repository"
	"portfolio_gallery/internal/storage"
	"portfolio_gallery/internal/storage/postgresql"
	redisapp "portfolio_gallery/internal/storage/redis"
	"portfolio_gallery/internal/storage/sqlite"

	"github.com/brianvoe/gofakeit"
	"github.com/go-redis/redismock/v9"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupPostgresRepo(t *testing.T) repository.GalleryRepository {
	t.Helper()

	return setupPostgresRepoWithTable(t, postgresql.DefaultTable)
}

func setupPostgresRepoWithTable(t *testing.T, table string) repository.GalleryRepository {
	t.Helper()

	if testing.Short() {
		t.Skip("needs docker")
	}

	ctx := context.Background()

	pg, err := postgresql.New(ctx, testdb.StartPostgres(t))
	require.NoError(t, err)
	t.Cleanup(pg.Stop)

	require.NoError(t, pg.Migrate(ctx, table))

	return repository.NewGalleryRepo(pg.Pool(), table)
}

func setupSQLiteRepo(t *testing.T) repository.GalleryRepository {
	t.Helper()

	db, err := sqlite.New("file::memory:")
	require.NoError(t, err)

	repo, err := repository.NewGormGalleryRepo(db, "")
	require.NoError(t, err)

	return repo
}

func newImage(fileName string) models.GalleryImage {
	return models.GalleryImage{
		URL:         "http://test.local/uploads/" + fileName,
		Title:       gofakeit.Sentence(3),
		Description: gofakeit.Sentence(8),
		FileName:    fileName,
	}
}

func TestGalleryRepo_Postgres(t *testing.T) {
	runGalleryRepositoryTests(t, setupPostgresRepo)
}

func TestGalleryRepo_PostgresMixedCaseTable(t *testing.T) {
	runGalleryRepositoryTests(t, func(t *testing.T) repository.GalleryRepository {
		return setupPostgresRepoWithTable(t, "PortfolioGallery")
	})
}

func TestGalleryRepo_SQLite(t *testing.T) {
	runGalleryRepositoryTests(t, setupSQLiteRepo)
}

func runGalleryRepositoryTests(t *testing.T, setup func(t *testing.T) repository.GalleryRepository) {
	ctx := context.Background()

	t.Run("empty list", func(t *testing.T) {
		repo := setup(t)

		images, err := repo.ListImages(ctx)
		require.NoError(t, err)
		assert.NotNil(t, images)
		assert.Empty(t, images)
	})

	t.Run("insert assigns id and created_at", func(t *testing.T) {
		repo := setup(t)
		now := time.Now().UTC()
		image := newImage("1700000000000-aaaaaaa.jpg")

		created, err := repo.InsertImage(ctx, image)
		require.NoError(t, err)

		assert.NotEqual(t, uuid.Nil, created.ID)
		assert.Equal(t, image.URL, created.URL)
		assert.Equal(t, image.Title, created.Title)
		assert.Equal(t, image.Description, created.Description)
		assert.Equal(t, image.FileName, created.FileName)
		assert.WithinDuration(t, now, created.CreatedAt, 5*time.Second)
	})

	t.Run("list is newest first", func(t *testing.T) {
		repo := setup(t)

		var ids []uuid.UUID
		for _, name := range []string{"first.jpg", "second.png", "third.gif"} {
			created, err := repo.InsertImage(ctx, newImage(name))
			require.NoError(t, err)
			ids = append(ids, created.ID)
			time.Sleep(5 * time.Millisecond)
		}

		images, err := repo.ListImages(ctx)
		require.NoError(t, err)
		require.Len(t, images, 3)

		assert.Equal(t, ids[2], images[0].ID)
		assert.Equal(t, ids[1], images[1].ID)
		assert.Equal(t, ids[0], images[2].ID)
	})

	t.Run("update changes title and description only", func(t *testing.T) {
		repo := setup(t)

		created, err := repo.InsertImage(ctx, newImage("update.jpg"))
		require.NoError(t, err)

		updated, err := repo.UpdateImage(ctx, created.ID, "Sunset", "")
		require.NoError(t, err)

		assert.Equal(t, created.ID, updated.ID)
		assert.Equal(t, "Sunset", updated.Title)
		assert.Equal(t, "", updated.Description)
		assert.Equal(t, created.URL, updated.URL)
		assert.Equal(t, created.FileName, updated.FileName)
		assert.WithinDuration(t, created.CreatedAt, updated.CreatedAt, time.Millisecond)
	})

	t.Run("update missing row", func(t *testing.T) {
		repo := setup(t)

		_, err := repo.UpdateImage(ctx, uuid.New(), "Title", "Description")
		assert.ErrorIs(t, err, storage.ErrImageNotFound)
	})

	t.Run("delete", func(t *testing.T) {
		repo := setup(t)

		created, err := repo.InsertImage(ctx, newImage("delete.jpg"))
		require.NoError(t, err)

		require.NoError(t, repo.DeleteImage(ctx, created.ID))

		images, err := repo.ListImages(ctx)
		require.NoError(t, err)
		assert.Empty(t, images)

		err = repo.DeleteImage(ctx, created.ID)
		assert.ErrorIs(t, err, storage.ErrImageNotFound)
	})

	t.Run("duplicate file name is rejected", func(t *testing.T) {
		repo := setup(t)

		_, err := repo.InsertImage(ctx, newImage("dup.jpg"))
		require.NoError(t, err)

		_, err = repo.InsertImage(ctx, newImage("dup.jpg"))
		assert.Error(t, err)
	})

	t.Run("delete by file name", func(t *testing.T) {
		repo := setup(t)

		_, err := repo.InsertImage(ctx, newImage("gone.jpg"))
		require.NoError(t, err)
		kept, err := repo.InsertImage(ctx, newImage("stays.jpg"))
		require.NoError(t, err)

		n, err := repo.DeleteImagesByFileName(ctx, []string{"gone.jpg", "never.jpg"})
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)

		images, err := repo.ListImages(ctx)
		require.NoError(t, err)
		require.Len(t, images, 1)
		assert.Equal(t, kept.ID, images[0].ID)

		n, err = repo.DeleteImagesByFileName(ctx, nil)
		require.NoError(t, err)
		assert.Zero(t, n)
	})

	t.Run("existing file names", func(t *testing.T) {
		repo := setup(t)

		_, err := repo.InsertImage(ctx, newImage("kept.jpg"))
		require.NoError(t, err)

		existing, err := repo.ExistingFileNames(ctx, []string{"kept.jpg", "orphan.jpg"})
		require.NoError(t, err)
		assert.Equal(t, map[string]struct{}{"kept.jpg": {}}, existing)

		existing, err = repo.ExistingFileNames(ctx, nil)
		require.NoError(t, err)
		assert.Empty(t, existing)
	})
}

func NewMockClient() (*redisapp.Client, redismock.ClientMock) {
	db, mock := redismock.NewClientMock()
	return &redisapp.Client{Client: db}, mock
}

func setupLedger() (*repository.RedisOrphanLedger, redismock.ClientMock) {
	db, mock := NewMockClient()
	return repository.NewRedisOrphanLedger(db), mock
}

func TestNewRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("sqlite", func(t *testing.T) {
		repo, err := repository.NewRepository(ctx, config.RecordStoreConfig{
			Driver: "sqlite",
			DSN:    "file::memory:",
		})
		require.NoError(t, err)
		defer repo.Close()

		images, err := repo.Gallery.ListImages(ctx)
		require.NoError(t, err)
		assert.Empty(t, images)
	})

	t.Run("sqlite schema failure", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "gallery.db")
		require.NoError(t, os.WriteFile(path, nil, 0644))

		repo, err := repository.NewRepository(ctx, config.RecordStoreConfig{
			Driver: "sqlite",
			DSN:    "file:" + path + "?mode=ro",
		})
		assert.Error(t, err)
		assert.Nil(t, repo)
	})

	t.Run("unknown driver", func(t *testing.T) {
		_, err := repository.NewRepository(ctx, config.RecordStoreConfig{Driver: "mongo"})
		assert.ErrorContains(t, err, "unknown record store driver")
	})
}

func TestRedisOrphanLedger_Mark(t *testing.T) {
	ctx := context.Background()
	ledger, mock := setupLedger()

	t.Run("successful mark", func(t *testing.T) {
		mock.ExpectSAdd("gallery:orphans", "a.jpg").SetVal(1)
		assert.NoError(t, ledger.Mark(ctx, "a.jpg"))
	})

	t.Run("redis error", func(t *testing.T) {
		mock.ExpectSAdd("gallery:orphans", "a.jpg").SetErr(redis.ErrClosed)
		assert.ErrorIs(t, ledger.Mark(ctx, "a.jpg"), redis.ErrClosed)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisOrphanLedger_List(t *testing.T) {
	ctx := context.Background()
	ledger, mock := setupLedger()

	t.Run("members", func(t *testing.T) {
		mock.ExpectSMembers("gallery:orphans").SetVal([]string{"a.jpg", "b.png"})

		keys, err := ledger.List(ctx)
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"a.jpg", "b.png"}, keys)
	})

	t.Run("redis error", func(t *testing.T) {
		mock.ExpectSMembers("gallery:orphans").SetErr(redis.ErrClosed)

		_, err := ledger.List(ctx)
		assert.ErrorIs(t, err, redis.ErrClosed)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisOrphanLedger_Forget(t *testing.T) {
	ctx := context.Background()
	ledger, mock := setupLedger()

	t.Run("no keys is a no-op", func(t *testing.T) {
		assert.NoError(t, ledger.Forget(ctx))
	})

	t.Run("removes members", func(t *testing.T) {
		mock.ExpectSRem("gallery:orphans", "a.jpg", "b.png").SetVal(2)
		assert.NoError(t, ledger.Forget(ctx, "a.jpg", "b.png"))
	})

	t.Run("redis error", func(t *testing.T) {
		mock.ExpectSRem("gallery:orphans", "a.jpg").SetErr(redis.ErrClosed)
		assert.ErrorIs(t, ledger.Forget(ctx, "a.jpg"), redis.ErrClosed)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

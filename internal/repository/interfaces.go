package repository

import (
	"context"

	"portfolio_gallery/internal/domain/models"

	"github.com/google/uuid"
)

// GalleryRepository is the record store of gallery metadata rows.
type GalleryRepository interface {
	// ListImages returns every row, newest first.
	ListImages(ctx context.Context) ([]models.GalleryImage, error)
	// InsertImage stores a row; id and created_at are assigned by the store.
	InsertImage(ctx context.Context, image models.GalleryImage) (models.GalleryImage, error)
	// UpdateImage changes title and description only.
	UpdateImage(ctx context.Context, id uuid.UUID, title, description string) (models.GalleryImage, error)
	DeleteImage(ctx context.Context, id uuid.UUID) error
	// DeleteImagesByFileName drops rows whose bytes are already gone.
	DeleteImagesByFileName(ctx context.Context, names []string) (int64, error)
	// ExistingFileNames reports which of names are referenced by a row.
	ExistingFileNames(ctx context.Context, names []string) (map[string]struct{}, error)
}

// OrphanLedger remembers object keys that may have lost their metadata row.
type OrphanLedger interface {
	Mark(ctx context.Context, key string) error
	List(ctx context.Context) ([]string, error)
	Forget(ctx context.Context, keys ...string) error
}

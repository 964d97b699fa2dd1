package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"portfolio_gallery/internal/domain/models"
	"portfolio_gallery/internal/storage"
	"portfolio_gallery/internal/storage/postgresql"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type galleryRecord struct {
	ID          string    `gorm:"primaryKey;type:text"`
	URL         string    `gorm:"not null"`
	Title       string    `gorm:"not null"`
	Description string    `gorm:"not null;default:''"`
	FileName    string    `gorm:"not null;uniqueIndex"`
	CreatedAt   time.Time `gorm:"not null;index"`
}

func (r *galleryRecord) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}

func (r galleryRecord) toModel() (models.GalleryImage, error) {
	id, err := uuid.Parse(r.ID)
	if err != nil {
		return models.GalleryImage{}, fmt.Errorf("invalid id %q: %w", r.ID, err)
	}

	return models.GalleryImage{
		ID:          id,
		URL:         r.URL,
		Title:       r.Title,
		Description: r.Description,
		FileName:    r.FileName,
		CreatedAt:   r.CreatedAt,
	}, nil
}

// GormGalleryRepo is the record store used with SQLite for local runs.
type GormGalleryRepo struct {
	db    *gorm.DB
	table string
}

func NewGormGalleryRepo(db *gorm.DB, table string) (*GormGalleryRepo, error) {
	const op = "repository.GormGalleryRepo.New"

	if table == "" {
		table = postgresql.DefaultTable
	}

	if err := db.Table(table).AutoMigrate(&galleryRecord{}); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &GormGalleryRepo{db: db, table: table}, nil
}

func (r *GormGalleryRepo) ListImages(ctx context.Context) ([]models.GalleryImage, error) {
	const op = "repository.GormGalleryRepo.ListImages"

	var records []galleryRecord
	if err := r.db.WithContext(ctx).Table(r.table).Order("created_at DESC").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	images := make([]models.GalleryImage, 0, len(records))
	for _, record := range records {
		image, err := record.toModel()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		images = append(images, image)
	}

	return images, nil
}

func (r *GormGalleryRepo) InsertImage(ctx context.Context, image models.GalleryImage) (models.GalleryImage, error) {
	const op = "repository.GormGalleryRepo.InsertImage"

	record := galleryRecord{
		URL:         image.URL,
		Title:       image.Title,
		Description: image.Description,
		FileName:    image.FileName,
	}

	if err := r.db.WithContext(ctx).Table(r.table).Create(&record).Error; err != nil {
		return models.GalleryImage{}, fmt.Errorf("%s: %w", op, err)
	}

	created, err := record.toModel()
	if err != nil {
		return models.GalleryImage{}, fmt.Errorf("%s: %w", op, err)
	}

	return created, nil
}

func (r *GormGalleryRepo) UpdateImage(ctx context.Context, id uuid.UUID, title, description string) (models.GalleryImage, error) {
	const op = "repository.GormGalleryRepo.UpdateImage"

	var record galleryRecord
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// a map, so an empty description is written too
		res := tx.Table(r.table).
			Where("id = ?", id.String()).
			Updates(map[string]interface{}{
				"title":       title,
				"description": description,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return storage.ErrImageNotFound
		}

		return tx.Table(r.table).Where("id = ?", id.String()).First(&record).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			err = storage.ErrImageNotFound
		}
		return models.GalleryImage{}, fmt.Errorf("%s: %w", op, err)
	}

	updated, err := record.toModel()
	if err != nil {
		return models.GalleryImage{}, fmt.Errorf("%s: %w", op, err)
	}

	return updated, nil
}

func (r *GormGalleryRepo) DeleteImage(ctx context.Context, id uuid.UUID) error {
	const op = "repository.GormGalleryRepo.DeleteImage"

	res := r.db.WithContext(ctx).Table(r.table).Where("id = ?", id.String()).Delete(&galleryRecord{})
	if res.Error != nil {
		return fmt.Errorf("%s: %w", op, res.Error)
	}

	if res.RowsAffected == 0 {
		return fmt.Errorf("%s: %w", op, storage.ErrImageNotFound)
	}

	return nil
}

func (r *GormGalleryRepo) DeleteImagesByFileName(ctx context.Context, names []string) (int64, error) {
	const op = "repository.GormGalleryRepo.DeleteImagesByFileName"

	if len(names) == 0 {
		return 0, nil
	}

	res := r.db.WithContext(ctx).Table(r.table).Where("file_name IN ?", names).Delete(&galleryRecord{})
	if res.Error != nil {
		return 0, fmt.Errorf("%s: %w", op, res.Error)
	}

	return res.RowsAffected, nil
}

func (r *GormGalleryRepo) ExistingFileNames(ctx context.Context, names []string) (map[string]struct{}, error) {
	const op = "repository.GormGalleryRepo.ExistingFileNames"

	existing := make(map[string]struct{}, len(names))
	if len(names) == 0 {
		return existing, nil
	}

	var found []string
	if err := r.db.WithContext(ctx).Table(r.table).Where("file_name IN ?", names).Pluck("file_name", &found).Error; err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	for _, name := range found {
		existing[name] = struct{}{}
	}

	return existing, nil
}

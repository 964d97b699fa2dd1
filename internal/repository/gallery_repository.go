package repository

import (
	"context"
	"errors"
	"fmt"

	"portfolio_gallery/internal/domain/models"
	"portfolio_gallery/internal/storage"
	"portfolio_gallery/internal/storage/postgresql"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/lib/pq"
)

var galleryColumns = []string{
	"id",
	"url",
	"title",
	"description",
	"file_name",
	"created_at",
}

// GalleryRepo is the PostgreSQL record store.
type GalleryRepo struct {
	db    *pgxpool.Pool
	sb    squirrel.StatementBuilderType
	table string
}

func NewGalleryRepo(db *pgxpool.Pool, table string) *GalleryRepo {
	if table == "" {
		table = postgresql.DefaultTable
	}

	return &GalleryRepo{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
		// quoted the same way the migration creates it
		table: pgx.Identifier{table}.Sanitize(),
	}
}

// ListImages возвращает все изображения, новые первыми
func (r *GalleryRepo) ListImages(ctx context.Context) ([]models.GalleryImage, error) {
	const op = "repository.GalleryRepo.ListImages"

	query, args, err := r.sb.Select(galleryColumns...).
		From(r.table).
		OrderBy("created_at DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	images := make([]models.GalleryImage, 0)
	for rows.Next() {
		image, err := scanImage(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		images = append(images, image)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return images, nil
}

func (r *GalleryRepo) InsertImage(ctx context.Context, image models.GalleryImage) (models.GalleryImage, error) {
	const op = "repository.GalleryRepo.InsertImage"

	query, args, err := r.sb.Insert(r.table).
		Columns(
			"url",
			"title",
			"description",
			"file_name",
		).
		Values(
			image.URL,
			image.Title,
			image.Description,
			image.FileName,
		).
		Suffix("RETURNING id, url, title, description, file_name, created_at").
		ToSql()
	if err != nil {
		return models.GalleryImage{}, fmt.Errorf("%s: %w", op, err)
	}

	created, err := scanImage(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		return models.GalleryImage{}, fmt.Errorf("%s: %w", op, err)
	}

	return created, nil
}

// UpdateImage обновляет только заголовок и описание
func (r *GalleryRepo) UpdateImage(ctx context.Context, id uuid.UUID, title, description string) (models.GalleryImage, error) {
	const op = "repository.GalleryRepo.UpdateImage"

	query, args, err := r.sb.Update(r.table).
		Set("title", title).
		Set("description", description).
		Where(squirrel.Eq{"id": id}).
		Suffix("RETURNING id, url, title, description, file_name, created_at").
		ToSql()
	if err != nil {
		return models.GalleryImage{}, fmt.Errorf("%s: %w", op, err)
	}

	updated, err := scanImage(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.GalleryImage{}, fmt.Errorf("%s: %w", op, storage.ErrImageNotFound)
		}
		return models.GalleryImage{}, fmt.Errorf("%s: %w", op, err)
	}

	return updated, nil
}

func (r *GalleryRepo) DeleteImage(ctx context.Context, id uuid.UUID) error {
	const op = "repository.GalleryRepo.DeleteImage"

	query, args, err := r.sb.Delete(r.table).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", op, storage.ErrImageNotFound)
	}

	return nil
}

func (r *GalleryRepo) DeleteImagesByFileName(ctx context.Context, names []string) (int64, error) {
	const op = "repository.GalleryRepo.DeleteImagesByFileName"

	if len(names) == 0 {
		return 0, nil
	}

	query, args, err := r.sb.Delete(r.table).
		Where("file_name = ANY(?)", pq.Array(names)).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	return tag.RowsAffected(), nil
}

func (r *GalleryRepo) ExistingFileNames(ctx context.Context, names []string) (map[string]struct{}, error) {
	const op = "repository.GalleryRepo.ExistingFileNames"

	existing := make(map[string]struct{}, len(names))
	if len(names) == 0 {
		return existing, nil
	}

	query, args, err := r.sb.Select("file_name").
		From(r.table).
		Where("file_name = ANY(?)", pq.Array(names)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		existing[name] = struct{}{}
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return existing, nil
}

func scanImage(row pgx.Row) (models.GalleryImage, error) {
	var image models.GalleryImage
	err := row.Scan(
		&image.ID,
		&image.URL,
		&image.Title,
		&image.Description,
		&image.FileName,
		&image.CreatedAt,
	)
	return image, err
}

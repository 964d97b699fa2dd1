package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"path/filepath"
	"strings"
	"time"

	"portfolio_gallery/internal/domain/models"
	"portfolio_gallery/internal/lib/logger/sl"
	"portfolio_gallery/internal/metrics"
	"portfolio_gallery/internal/repository"
	"portfolio_gallery/internal/storage"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

const keySuffixLen = 7

var errNoContent = errors.New("file has no content")

// GalleryService talks to the object store and the record store on behalf of
// the gallery. It keeps no state besides the set of keys being uploaded.
type GalleryService struct {
	log      *slog.Logger
	repo     repository.GalleryRepository
	objects  storage.ObjectStore
	ledger   repository.OrphanLedger
	inFlight *cache.Cache
	now      func() time.Time
}

func NewGalleryService(
	log *slog.Logger,
	repo repository.GalleryRepository,
	objects storage.ObjectStore,
	ledger repository.OrphanLedger,
	inFlightTTL time.Duration,
) *GalleryService {
	if ledger == nil {
		ledger = repository.NopOrphanLedger{}
	}

	return &GalleryService{
		log:      log,
		repo:     repo,
		objects:  objects,
		ledger:   ledger,
		inFlight: cache.New(inFlightTTL, 2*inFlightTTL),
		now:      time.Now,
	}
}

// List returns all images, newest first.
func (s *GalleryService) List(ctx context.Context) ([]models.GalleryImage, error) {
	const op = "gallery_service.List"

	log := s.log.With(slog.String("op", op))

	images, err := s.repo.ListImages(ctx)
	if err != nil {
		log.Error("failed to list images", sl.Err(err))
		observe(op, err)

		return nil, &models.StoreError{Op: op, Err: err}
	}

	if images == nil {
		images = []models.GalleryImage{}
	}

	observe(op, nil)

	return images, nil
}

// Create uploads the bytes under a freshly generated key and then inserts the
// metadata row. The caller guarantees a file and a non-empty title.
func (s *GalleryService) Create(ctx context.Context, file models.ImageFile, title, description string) (models.GalleryImage, error) {
	const op = "gallery_service.Create"

	key, err := s.newKey(file)
	if err != nil {
		observe(op, err)
		return models.GalleryImage{}, &models.StoreError{Op: op, Err: err}
	}

	log := s.log.With(
		slog.String("op", op),
		slog.String("file_name", key),
	)

	log.Info("uploading image", slog.Int64("size", file.Size))

	s.inFlight.SetDefault(key, struct{}{})
	defer s.inFlight.Delete(key)

	if file.Open == nil {
		observe(op, errNoContent)
		return models.GalleryImage{}, &models.StoreError{Op: op, Err: errNoContent}
	}

	body, err := file.Open()
	if err != nil {
		log.Error("failed to open file", sl.Err(err))
		observe(op, err)

		return models.GalleryImage{}, &models.StoreError{Op: op, Err: err}
	}
	defer body.Close()

	if err := s.objects.Put(ctx, key, body, file.Size, file.ContentType); err != nil {
		log.Error("failed to store bytes", sl.Err(err))
		observe(op, err)

		return models.GalleryImage{}, &models.StoreError{Op: op, Err: err}
	}

	created, err := s.repo.InsertImage(ctx, models.GalleryImage{
		URL:         s.objects.PublicURL(key),
		Title:       title,
		Description: description,
		FileName:    key,
	})
	if err != nil {
		// bytes stay in the bucket without a row
		log.Error("failed to insert metadata", sl.Err(err))
		s.markOrphan(ctx, log, key)
		observe(op, err)

		return models.GalleryImage{}, &models.StoreError{Op: op, Err: err}
	}

	metrics.GalleryUploadBytes.Observe(float64(file.Size))
	observe(op, nil)

	log.Info("image uploaded", slog.String("id", created.ID.String()))

	return created, nil
}

// Update changes title and description of an existing image.
func (s *GalleryService) Update(ctx context.Context, id uuid.UUID, title, description string) (models.GalleryImage, error) {
	const op = "gallery_service.Update"

	log := s.log.With(
		slog.String("op", op),
		slog.String("id", id.String()),
	)

	updated, err := s.repo.UpdateImage(ctx, id, title, description)
	if err != nil {
		if errors.Is(err, storage.ErrImageNotFound) {
			log.Warn("image not found")
			observe(op, models.ErrNotFound)

			return models.GalleryImage{}, &models.StoreError{Op: op, Err: models.ErrNotFound}
		}

		log.Error("failed to update image", sl.Err(err))
		observe(op, err)

		return models.GalleryImage{}, &models.StoreError{Op: op, Err: err}
	}

	observe(op, nil)

	return updated, nil
}

// Delete removes the bytes and then the metadata row. Bytes that are already
// gone do not stop the row from being removed.
func (s *GalleryService) Delete(ctx context.Context, id uuid.UUID, fileName string) error {
	const op = "gallery_service.Delete"

	log := s.log.With(
		slog.String("op", op),
		slog.String("id", id.String()),
		slog.String("file_name", fileName),
	)

	log.Info("deleting image")

	if err := s.objects.Remove(ctx, fileName); err != nil && !errors.Is(err, storage.ErrObjectNotFound) {
		log.Error("failed to remove bytes", sl.Err(err))
		observe(op, err)

		return &models.StoreError{Op: op, Err: err}
	}

	if err := s.repo.DeleteImage(ctx, id); err != nil {
		if errors.Is(err, storage.ErrImageNotFound) {
			log.Warn("image row already gone")
			observe(op, models.ErrNotFound)

			return &models.StoreError{Op: op, Err: models.ErrNotFound}
		}

		// the row now points at missing bytes
		log.Error("failed to delete metadata", sl.Err(err))
		s.markOrphan(ctx, log, fileName)
		observe(op, err)

		return &models.StoreError{Op: op, Err: err}
	}

	observe(op, nil)

	log.Info("image deleted")

	return nil
}

// InFlight reports whether key belongs to an upload that has not settled yet.
func (s *GalleryService) InFlight(key string) bool {
	_, ok := s.inFlight.Get(key)
	return ok
}

func (s *GalleryService) markOrphan(ctx context.Context, log *slog.Logger, key string) {
	metrics.GalleryOrphansMarked.Inc()

	// the request context may already be done
	if err := s.ledger.Mark(context.WithoutCancel(ctx), key); err != nil {
		log.Warn("failed to record orphan", sl.Err(err))
	}
}

// newKey builds "<unix millis>-<7 base36 chars>.<ext>".
func (s *GalleryService) newKey(file models.ImageFile) (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", err
	}

	suffix := new(big.Int).SetBytes(id[:]).Text(36)
	if len(suffix) < keySuffixLen {
		suffix = strings.Repeat("0", keySuffixLen-len(suffix)) + suffix
	}
	suffix = suffix[len(suffix)-keySuffixLen:]

	return fmt.Sprintf("%d-%s%s", s.now().UnixMilli(), suffix, fileExt(file)), nil
}

func fileExt(file models.ImageFile) string {
	if ext := strings.ToLower(filepath.Ext(file.Name)); ext != "" && ext != "." {
		return ext
	}

	if m := mimetype.Lookup(file.ContentType); m != nil {
		return m.Extension()
	}

	return ""
}

func observe(op string, err error) {
	outcome := metrics.OutcomeSuccess
	switch {
	case errors.Is(err, models.ErrNotFound):
		outcome = metrics.OutcomeNotFound
	case err != nil:
		outcome = metrics.OutcomeError
	}

	metrics.GalleryOperationsTotal.WithLabelValues(strings.TrimPrefix(op, "gallery_service."), outcome).Inc()
}

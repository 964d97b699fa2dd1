package sweeper

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"portfolio_gallery/internal/lib/logger/sl"
	"portfolio_gallery/internal/metrics"
	"portfolio_gallery/internal/repository"
	"portfolio_gallery/internal/storage"
)

const defaultInterval = time.Hour

// InFlightChecker tells whether an object key belongs to an unsettled upload.
type InFlightChecker interface {
	InFlight(key string) bool
}

// Report summarises one reconciliation pass.
type Report struct {
	Scanned      int
	Removed      int
	DanglingRows int64
	Failed       int
}

// Sweeper reconciles object store keys with metadata rows. It removes bytes
// that no row references and rows whose bytes were deleted.
type Sweeper struct {
	log         *slog.Logger
	repo        repository.GalleryRepository
	objects     storage.ObjectStore
	ledger      repository.OrphanLedger
	inFlight    InFlightChecker
	gracePeriod time.Duration
	interval    time.Duration
	now         func() time.Time
}

func New(
	log *slog.Logger,
	repo repository.GalleryRepository,
	objects storage.ObjectStore,
	ledger repository.OrphanLedger,
	inFlight InFlightChecker,
	gracePeriod, interval time.Duration,
) *Sweeper {
	if ledger == nil {
		ledger = repository.NopOrphanLedger{}
	}
	if interval <= 0 {
		interval = defaultInterval
	}

	return &Sweeper{
		log:         log,
		repo:        repo,
		objects:     objects,
		ledger:      ledger,
		inFlight:    inFlight,
		gracePeriod: gracePeriod,
		interval:    interval,
		now:         time.Now,
	}
}

// Sweep runs one pass. Keys marked in the ledger skip the grace period since
// their partial failure is already known.
func (s *Sweeper) Sweep(ctx context.Context) (Report, error) {
	const op = "sweeper.Sweep"

	log := s.log.With(slog.String("op", op))

	var report Report

	objects, err := s.objects.ListKeys(ctx)
	if err != nil {
		return report, fmt.Errorf("%s: %w", op, err)
	}

	marked, err := s.ledger.List(ctx)
	if err != nil {
		// the age based pass still works without the ledger
		log.Warn("failed to read orphan ledger", sl.Err(err))
		marked = nil
	}

	markedSet := make(map[string]struct{}, len(marked))
	for _, key := range marked {
		markedSet[key] = struct{}{}
	}

	stored := make(map[string]struct{}, len(objects))
	names := make([]string, 0, len(objects)+len(marked))
	for _, obj := range objects {
		stored[obj.Key] = struct{}{}
		names = append(names, obj.Key)
	}
	for _, key := range marked {
		if _, ok := stored[key]; !ok {
			names = append(names, key)
		}
	}

	referenced, err := s.repo.ExistingFileNames(ctx, names)
	if err != nil {
		return report, fmt.Errorf("%s: %w", op, err)
	}

	var resolved []string
	now := s.now()

	for _, obj := range objects {
		report.Scanned++

		_, isMarked := markedSet[obj.Key]

		if _, ok := referenced[obj.Key]; ok {
			if isMarked {
				resolved = append(resolved, obj.Key)
			}
			continue
		}

		if s.inFlight != nil && s.inFlight.InFlight(obj.Key) {
			continue
		}

		if !isMarked && now.Sub(obj.LastModified) < s.gracePeriod {
			continue
		}

		if err := s.objects.Remove(ctx, obj.Key); err != nil && !errors.Is(err, storage.ErrObjectNotFound) {
			log.Error("failed to remove orphan", slog.String("file_name", obj.Key), sl.Err(err))
			report.Failed++
			continue
		}

		log.Info("orphan removed", slog.String("file_name", obj.Key))
		report.Removed++
		if isMarked {
			resolved = append(resolved, obj.Key)
		}
	}

	var dangling []string
	for _, key := range marked {
		if _, ok := stored[key]; ok {
			continue
		}
		if _, ok := referenced[key]; ok {
			dangling = append(dangling, key)
			continue
		}
		resolved = append(resolved, key)
	}

	if len(dangling) > 0 {
		n, err := s.repo.DeleteImagesByFileName(ctx, dangling)
		if err != nil {
			log.Error("failed to delete dangling rows", sl.Err(err))
			report.Failed += len(dangling)
		} else {
			report.DanglingRows = n
			resolved = append(resolved, dangling...)
		}
	}

	if err := s.ledger.Forget(ctx, resolved...); err != nil {
		log.Warn("failed to clear orphan ledger", sl.Err(err))
	}

	metrics.GallerySweepRemoved.Add(float64(report.Removed))

	log.Info("sweep finished",
		slog.Int("scanned", report.Scanned),
		slog.Int("removed", report.Removed),
		slog.Int64("dangling_rows", report.DanglingRows),
		slog.Int("failed", report.Failed),
	)

	return report, nil
}

// Run sweeps every interval until ctx is cancelled.
func (s *Sweeper) Run(ctx context.Context) {
	const op = "sweeper.Run"

	log := s.log.With(slog.String("op", op))

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	log.Info("sweeper started", slog.Duration("interval", s.interval))

	for {
		select {
		case <-ctx.Done():
			log.Info("sweeper stopped")
			return
		case <-ticker.C:
			if _, err := s.Sweep(ctx); err != nil {
				log.Error("sweep failed", sl.Err(err))
			}
		}
	}
}

package app

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	httpapp "portfolio_gallery/internal/app/http"
	"portfolio_gallery/internal/config"
	"portfolio_gallery/internal/lib/upload"
	"portfolio_gallery/internal/repository"
	services "portfolio_gallery/internal/services/gallery_service"
	"portfolio_gallery/internal/services/sweeper"
	"portfolio_gallery/internal/storage"
	"portfolio_gallery/internal/storage/filestorage"
	"portfolio_gallery/internal/storage/miniostore"
	redisapp "portfolio_gallery/internal/storage/redis"
	"portfolio_gallery/internal/storage/s3store"
	httprouters "portfolio_gallery/internal/transport/http"
)

const (
	driverLocal = "local"
	driverMinIO = "minio"
	driverS3    = "s3"
)

// Stores bundles every backend the gallery talks to.
type Stores struct {
	Repo    *repository.Repository
	Objects storage.ObjectStore
	Ledger  repository.OrphanLedger
	Redis   *redisapp.Client
	// StaticDir is set when objects live on the local disk.
	StaticDir string
}

// NewStores opens the record store, the object store and, when configured,
// the Redis orphan ledger.
func NewStores(ctx context.Context, log *slog.Logger, cfg *config.Config) (*Stores, error) {
	const op = "app.NewStores"

	repo, err := repository.NewRepository(ctx, cfg.RecordStore)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	stores := &Stores{
		Repo:   repo,
		Ledger: repository.NopOrphanLedger{},
	}

	switch strings.ToLower(cfg.ObjectStore.Driver) {
	case driverLocal, "":
		fs, err := filestorage.NewLocalFileStorage(cfg.ObjectStore.BaseDir, localBaseURL(cfg))
		if err != nil {
			stores.Close()
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		stores.Objects = fs
		stores.StaticDir = fs.GetBaseDir()
	case driverMinIO:
		stores.Objects, err = miniostore.New(ctx, log, cfg.ObjectStore)
	case driverS3:
		stores.Objects, err = s3store.New(ctx, log, cfg.ObjectStore)
	default:
		err = fmt.Errorf("unknown object store driver %q", cfg.ObjectStore.Driver)
	}
	if err != nil {
		stores.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if cfg.Redis.RedisAddr != "" {
		client := redisapp.NewClient(cfg.Redis)
		if err := client.HealthCheck(ctx); err != nil {
			_ = client.Close()
			stores.Close()
			return nil, fmt.Errorf("%s: redis: %w", op, err)
		}
		stores.Redis = client
		stores.Ledger = repository.NewRedisOrphanLedger(client)
	} else {
		log.Warn("redis is not configured, partial failures are not recorded")
	}

	return stores, nil
}

func (s *Stores) Close() {
	if s.Redis != nil {
		_ = s.Redis.Close()
	}
	if s.Repo != nil {
		s.Repo.Close()
	}
}

type App struct {
	HTTPServer *httpapp.Server
	Gallery    *services.GalleryService
	Sweeper    *sweeper.Sweeper
	stores     *Stores
	log        *slog.Logger
}

func New(ctx context.Context, log *slog.Logger, cfg *config.Config) (*App, error) {
	stores, err := NewStores(ctx, log, cfg)
	if err != nil {
		return nil, err
	}

	gallery := services.NewGalleryService(log, stores.Repo.Gallery, stores.Objects, stores.Ledger, cfg.Sweeper.GracePeriod)

	var checkers []httprouters.HealthChecker
	if stores.Redis != nil {
		checkers = append(checkers, stores.Redis)
	}

	routers := httprouters.NewRouter(log, gallery, UploadRules(cfg), checkers...)
	server := httpapp.New(log, cfg.HTTP, cfg.Upload.MaxSize, stores.StaticDir, routers)

	a := &App{
		HTTPServer: server,
		Gallery:    gallery,
		stores:     stores,
		log:        log,
	}

	if cfg.Sweeper.Enabled {
		a.Sweeper = sweeper.New(log, stores.Repo.Gallery, stores.Objects, stores.Ledger, gallery, cfg.Sweeper.GracePeriod, cfg.Sweeper.Interval)
	}

	return a, nil
}

func (a *App) Close() {
	a.stores.Close()
	a.log.Info("stores closed")
}

// UploadRules turns the upload section of the config into file checks.
func UploadRules(cfg *config.Config) upload.Rules {
	return upload.Rules{
		MaxSize:      cfg.Upload.MaxSize,
		AllowedTypes: cfg.Upload.AllowedTypes,
	}
}

func localBaseURL(cfg *config.Config) string {
	if cfg.ObjectStore.PublicBaseURL != "" {
		return cfg.ObjectStore.PublicBaseURL
	}

	host := cfg.HTTP.Host
	if host == "" || host == "0.0.0.0" {
		host = "localhost"
	}

	return fmt.Sprintf("http://%s:%s/uploads", host, cfg.HTTP.Port)
}

package httpapp_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	httpapp "portfolio_gallery/internal/app/http"
	"portfolio_gallery/internal/config"
	"portfolio_gallery/internal/domain/models"
	"portfolio_gallery/internal/lib/upload"
	httprouters "portfolio_gallery/internal/transport/http"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubService struct {
	images []models.GalleryImage
}

func (s *stubService) List(context.Context) ([]models.GalleryImage, error) {
	return s.images, nil
}

func (s *stubService) Create(context.Context, models.ImageFile, string, string) (models.GalleryImage, error) {
	return models.GalleryImage{}, nil
}

func (s *stubService) Update(context.Context, uuid.UUID, string, string) (models.GalleryImage, error) {
	return models.GalleryImage{}, nil
}

func (s *stubService) Delete(context.Context, uuid.UUID, string) error {
	return nil
}

func TestServer_Routes(t *testing.T) {
	staticDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(staticDir, "a.jpg"), []byte("jpeg"), 0644))

	service := &stubService{images: []models.GalleryImage{{ID: uuid.New(), Title: "Sunset"}}}
	routers := httprouters.NewRouter(slog.Default(), service, upload.Rules{MaxSize: 1024})

	srv := httpapp.New(slog.Default(), config.HTTPConfig{Port: "0"}, 1024, staticDir, routers)
	srv.BuildRouters()

	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	t.Run("gallery list", func(t *testing.T) {
		resp, err := http.Get(ts.URL + "/api/v1/gallery")
		require.NoError(t, err)
		defer resp.Body.Close()

		require.Equal(t, http.StatusOK, resp.StatusCode)

		var body struct {
			Data []models.GalleryImage `json:"data"`
		}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Len(t, body.Data, 1)
	})

	t.Run("health", func(t *testing.T) {
		resp, err := http.Get(ts.URL + "/health")
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("metrics", func(t *testing.T) {
		resp, err := http.Get(ts.URL + "/metrics")
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("static uploads", func(t *testing.T) {
		resp, err := http.Get(ts.URL + "/uploads/a.jpg")
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})
}

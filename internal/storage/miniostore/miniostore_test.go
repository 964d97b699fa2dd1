package miniostore

import (
	"log/slog"
	"testing"

	"portfolio_gallery/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStorage_PublicURL(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.ObjectStoreConfig
		key  string
		want string
	}{
		{
			name: "direct bucket url",
			cfg: config.ObjectStoreConfig{
				Endpoint: "localhost:9000",
				Bucket:   "gallery-images",
			},
			key:  "1700000000000-abc1234.jpg",
			want: "http://localhost:9000/gallery-images/1700000000000-abc1234.jpg",
		},
		{
			name: "tls endpoint",
			cfg: config.ObjectStoreConfig{
				Endpoint: "minio.example.com",
				Bucket:   "gallery-images",
				UseSSL:   true,
			},
			key:  "a.png",
			want: "https://minio.example.com/gallery-images/a.png",
		},
		{
			name: "public base url wins",
			cfg: config.ObjectStoreConfig{
				Endpoint:      "localhost:9000",
				Bucket:        "gallery-images",
				PublicBaseURL: "https://cdn.example.com/gallery/",
			},
			key:  "a.webp",
			want: "https://cdn.example.com/gallery/a.webp",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := newStorage(slog.Default(), tt.cfg)
			require.NoError(t, err)

			assert.Equal(t, tt.want, s.PublicURL(tt.key))
		})
	}
}

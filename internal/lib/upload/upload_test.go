package upload

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"portfolio_gallery/internal/domain/models"
	"portfolio_gallery/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")

func fileOf(name, contentType string, data []byte, size int64) models.ImageFile {
	return models.ImageFile{
		Name:        name,
		ContentType: contentType,
		Size:        size,
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(data)), nil
		},
	}
}

func TestRules_Check(t *testing.T) {
	rules := Rules{
		MaxSize:      5 * 1024 * 1024,
		AllowedTypes: []string{"image/jpeg", "image/jpg", "image/png", "image/gif", "image/webp"},
	}

	tests := []struct {
		name      string
		file      models.ImageFile
		wantType  string
		wantCause error
	}{
		{
			name:     "jpeg within limit",
			file:     fileOf("a.jpg", "image/jpeg", nil, 2*1024*1024),
			wantType: "image/jpeg",
		},
		{
			name:     "content type with parameters",
			file:     fileOf("a.webp", "Image/WebP; q=1", nil, 10),
			wantType: "image/webp",
		},
		{
			name:     "exactly at the limit",
			file:     fileOf("a.gif", "image/gif", nil, 5*1024*1024),
			wantType: "image/gif",
		},
		{
			name:      "too large",
			file:      fileOf("a.png", "image/png", nil, 5*1024*1024+1),
			wantCause: storage.ErrFileTooLarge,
		},
		{
			name:      "not an image",
			file:      fileOf("a.pdf", "application/pdf", nil, 10),
			wantCause: storage.ErrInvalidFileType,
		},
		{
			name:     "sniffed png",
			file:     fileOf("a", "", pngHeader, int64(len(pngHeader))),
			wantType: "image/png",
		},
		{
			name:      "sniffed text",
			file:      fileOf("a", "", []byte("hello world"), 11),
			wantCause: storage.ErrInvalidFileType,
		},
		{
			name:      "no type and no content",
			file:      models.ImageFile{Name: "a"},
			wantCause: storage.ErrInvalidFileType,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := rules.Check(tt.file)

			if tt.wantCause != nil {
				assert.True(t, models.IsValidationError(err))
				assert.ErrorIs(t, err, tt.wantCause)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantType, got.ContentType)
		})
	}
}

func TestRules_Check_OpenFailure(t *testing.T) {
	rules := Rules{AllowedTypes: []string{"image/png"}}
	file := models.ImageFile{
		Name: "a",
		Open: func() (io.ReadCloser, error) { return nil, errors.New("permission denied") },
	}

	_, err := rules.Check(file)
	assert.ErrorIs(t, err, storage.ErrInvalidFileType)
}

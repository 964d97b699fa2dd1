package upload

import (
	"fmt"
	"strings"

	"portfolio_gallery/internal/domain/models"
	"portfolio_gallery/internal/storage"

	"github.com/gabriel-vasile/mimetype"
)

// Rules is the allow-list and size ceiling applied to every selected file.
type Rules struct {
	MaxSize      int64
	AllowedTypes []string
}

// Check validates file against the rules. An empty content type is sniffed
// from the leading bytes; the returned file carries the resolved type.
func (r Rules) Check(file models.ImageFile) (models.ImageFile, error) {
	contentType, err := r.contentType(file)
	if err != nil {
		return file, &models.ValidationError{
			Errors: []string{fmt.Sprintf("cannot read file: %v", err)},
			Cause:  storage.ErrInvalidFileType,
		}
	}

	if !r.allowed(contentType) {
		return file, &models.ValidationError{
			Errors: []string{fmt.Sprintf("unsupported file type %q", contentType)},
			Cause:  storage.ErrInvalidFileType,
		}
	}

	if r.MaxSize > 0 && file.Size > r.MaxSize {
		return file, &models.ValidationError{
			Errors: []string{fmt.Sprintf("file is %d bytes, limit is %d", file.Size, r.MaxSize)},
			Cause:  storage.ErrFileTooLarge,
		}
	}

	file.ContentType = contentType

	return file, nil
}

func (r Rules) contentType(file models.ImageFile) (string, error) {
	if ct := normalize(file.ContentType); ct != "" {
		return ct, nil
	}

	if file.Open == nil {
		return "", nil
	}

	body, err := file.Open()
	if err != nil {
		return "", err
	}
	defer body.Close()

	mime, err := mimetype.DetectReader(body)
	if err != nil {
		return "", err
	}

	return normalize(mime.String()), nil
}

func (r Rules) allowed(contentType string) bool {
	if contentType == "" {
		return false
	}

	for _, allowed := range r.AllowedTypes {
		if normalize(allowed) == contentType {
			return true
		}
	}

	return false
}

func normalize(contentType string) string {
	contentType, _, _ = strings.Cut(contentType, ";")
	return strings.ToLower(strings.TrimSpace(contentType))
}

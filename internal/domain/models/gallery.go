package models

import (
	"io"
	"time"

	"github.com/google/uuid"
)

// GalleryImage is one metadata row of the gallery. ID, FileName and URL are
// assigned when the image is created and never change afterwards.
type GalleryImage struct {
	ID          uuid.UUID `json:"id" db:"id"`
	URL         string    `json:"url" db:"url"`
	Title       string    `json:"title" db:"title"`
	Description string    `json:"description" db:"description"`
	FileName    string    `json:"file_name" db:"file_name"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// ImageFile is the binary payload selected for upload.
type ImageFile struct {
	Name        string
	ContentType string
	Size        int64
	Open        func() (io.ReadCloser, error)
}

// UploadDraft holds the upload form until it is submitted or cancelled.
type UploadDraft struct {
	Title       string `validate:"required"`
	Description string
	File        *ImageFile `validate:"required"`
}

// EditDraft holds the editable fields of an image being edited.
type EditDraft struct {
	Title       string
	Description string
}

// NewEditDraft seeds a draft from the stored image.
func NewEditDraft(img GalleryImage) EditDraft {
	return EditDraft{
		Title:       img.Title,
		Description: img.Description,
	}
}

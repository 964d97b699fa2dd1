package galleryview

import (
	"portfolio_gallery/internal/domain/models"

	"github.com/google/uuid"
)

// Field names an editable text field of a draft.
type Field int

const (
	FieldTitle Field = iota
	FieldDescription
)

type MessageKind string

const (
	MessageSuccess MessageKind = "success"
	MessageError   MessageKind = "error"
)

// Message is the transient notice shown to the user.
type Message struct {
	Kind MessageKind
	Text string
}

// Snapshot is an immutable copy of the controller state.
type Snapshot struct {
	Images    []models.GalleryImage
	Loading   bool
	Uploading bool
	Saving    bool
	Deleting  bool

	UploadOpen bool
	Upload     models.UploadDraft

	Preview *models.GalleryImage
	Editing *models.GalleryImage
	Edit    models.EditDraft

	PendingDelete *uuid.UUID

	Message *Message

	version uint64
}

// CanSubmitUpload mirrors the submit guard.
func (s Snapshot) CanSubmitUpload() bool {
	return !s.Uploading && s.Upload.Title != "" && s.Upload.File != nil
}

func (c *Controller) snapshotLocked() Snapshot {
	snap := Snapshot{
		Images:     append([]models.GalleryImage(nil), c.images...),
		Loading:    c.loading > 0,
		Uploading:  c.uploading > 0,
		Saving:     c.saving > 0,
		Deleting:   c.deleting > 0,
		UploadOpen: c.uploadOpen,
		Upload:     c.upload,
		Edit:       c.edit,
		version:    c.version,
	}

	if snap.Images == nil {
		snap.Images = []models.GalleryImage{}
	}
	if c.upload.File != nil {
		file := *c.upload.File
		snap.Upload.File = &file
	}
	if c.preview != nil {
		preview := *c.preview
		snap.Preview = &preview
	}
	if c.editing != nil {
		editing := *c.editing
		snap.Editing = &editing
	}
	if c.pending != nil {
		pending := *c.pending
		snap.PendingDelete = &pending
	}
	if c.message != nil {
		message := *c.message
		snap.Message = &message
	}

	return snap
}

package galleryview

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"portfolio_gallery/internal/domain/models"
	"portfolio_gallery/internal/lib/logger/sl"
	"portfolio_gallery/internal/lib/upload"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

const (
	msgUploaded     = "Image uploaded"
	msgUploadFailed = "Upload failed, please try again"
	msgSaveFailed   = "Saving failed, please try again"
	msgDeleteFailed = "Delete failed, please try again"
)

// Store is the remote side of the gallery.
type Store interface {
	List(ctx context.Context) ([]models.GalleryImage, error)
	Create(ctx context.Context, file models.ImageFile, title, description string) (models.GalleryImage, error)
	Update(ctx context.Context, id uuid.UUID, title, description string) (models.GalleryImage, error)
	Delete(ctx context.Context, id uuid.UUID, fileName string) error
}

// Controller owns the client side state of the gallery. Every mutation goes
// through the Store and is followed by a full Load.
//
// Remote calls run without holding the state lock, so uploads, edits and
// deletes may be in flight at the same time.
type Controller struct {
	log      *slog.Logger
	store    Store
	rules    upload.Rules
	validate *validator.Validate

	mu         sync.Mutex
	images     []models.GalleryImage
	loadSeq    uint64
	appliedSeq uint64
	loading    int
	uploading  int
	saving     int
	deleting   int
	uploadOpen bool
	upload     models.UploadDraft
	preview    *models.GalleryImage
	editing    *models.GalleryImage
	edit       models.EditDraft
	pending    *uuid.UUID
	message    *Message
	version    uint64

	subMu   sync.Mutex
	subs    map[int]func(Snapshot)
	nextSub int

	// delivery state, guarded by pubMu
	pubMu      sync.Mutex
	next       *Snapshot
	delivering bool
	delivered  uint64
}

func New(log *slog.Logger, store Store, rules upload.Rules) *Controller {
	return &Controller{
		log:      log,
		store:    store,
		rules:    rules,
		validate: validator.New(),
		images:   []models.GalleryImage{},
		subs:     make(map[int]func(Snapshot)),
	}
}

// Load replaces the displayed list with a fresh one. A result is dropped when
// a later issued Load has already been applied. Failures are logged only and
// keep the previous list.
func (c *Controller) Load(ctx context.Context) error {
	const op = "gallery_view.Load"

	log := c.log.With(slog.String("op", op))

	var seq uint64
	c.update(func() {
		c.loadSeq++
		seq = c.loadSeq
		c.loading++
	})

	images, err := c.store.List(ctx)

	var stale bool
	c.update(func() {
		c.loading--
		if err != nil {
			return
		}
		if seq < c.appliedSeq {
			stale = true
			return
		}
		c.images = images
		c.appliedSeq = seq
	})

	if err != nil {
		log.Error("failed to load images", sl.Err(err))
		return err
	}

	if stale {
		log.Debug("stale list dropped", slog.Uint64("seq", seq))
	}

	return nil
}

func (c *Controller) BeginUpload() {
	c.update(func() {
		if c.uploadOpen {
			return
		}
		c.uploadOpen = true
		c.upload = models.UploadDraft{}
	})
}

func (c *Controller) CancelUpload() {
	c.update(func() {
		c.uploadOpen = false
		c.upload = models.UploadDraft{}
	})
}

func (c *Controller) ChangeUploadField(field Field, value string) {
	c.update(func() {
		switch field {
		case FieldTitle:
			c.upload.Title = value
		case FieldDescription:
			c.upload.Description = value
		}
	})
}

// SelectFile stores file in the upload draft if it passes the upload rules.
// A rejected file leaves the state untouched.
func (c *Controller) SelectFile(file models.ImageFile) error {
	checked, err := c.rules.Check(file)
	if err != nil {
		c.log.Debug("file rejected",
			slog.String("op", "gallery_view.SelectFile"),
			slog.String("name", file.Name),
			sl.Err(err),
		)
		return err
	}

	c.update(func() {
		c.upload.File = &checked
	})

	return nil
}

// DropFile takes the first of the dropped files.
func (c *Controller) DropFile(files ...models.ImageFile) error {
	if len(files) == 0 {
		return &models.ValidationError{Errors: []string{"no file dropped"}}
	}

	return c.SelectFile(files[0])
}

// SubmitUpload creates the image from the draft. It does nothing while
// another upload is in flight and never calls the store with an incomplete
// draft.
func (c *Controller) SubmitUpload(ctx context.Context) error {
	const op = "gallery_view.SubmitUpload"

	log := c.log.With(slog.String("op", op))

	c.mu.Lock()
	if c.uploading > 0 {
		c.mu.Unlock()
		return nil
	}

	draft := c.upload
	if err := c.validate.Struct(draft); err != nil {
		c.mu.Unlock()
		return validationError(err)
	}

	c.uploading++
	c.message = nil
	snap := c.changedLocked()
	c.mu.Unlock()
	c.publish(snap)

	_, err := c.store.Create(ctx, *draft.File, draft.Title, draft.Description)

	c.update(func() {
		c.uploading--
		if err != nil {
			c.message = &Message{Kind: MessageError, Text: msgUploadFailed}
			return
		}
		c.upload = models.UploadDraft{}
		c.uploadOpen = false
		c.message = &Message{Kind: MessageSuccess, Text: msgUploaded}
	})

	if err != nil {
		log.Error("upload failed", sl.Err(err))
		return err
	}

	_ = c.Load(ctx)

	return nil
}

// Preview opens image in the preview surface. An image no longer in the list
// clears the preview instead.
func (c *Controller) Preview(image models.GalleryImage) bool {
	var ok bool
	c.update(func() {
		current, found := c.findLocked(image.ID)
		if !found {
			c.preview = nil
			return
		}
		c.preview = &current
		ok = true
	})

	return ok
}

func (c *Controller) ClosePreview() {
	c.update(func() {
		c.preview = nil
	})
}

// BeginEdit seeds the edit draft from image. An image no longer in the list
// clears the edit selection instead.
func (c *Controller) BeginEdit(image models.GalleryImage) bool {
	var ok bool
	c.update(func() {
		current, found := c.findLocked(image.ID)
		if !found {
			c.editing = nil
			c.edit = models.EditDraft{}
			return
		}
		c.editing = &current
		c.edit = models.NewEditDraft(current)
		ok = true
	})

	return ok
}

func (c *Controller) ChangeEditField(field Field, value string) {
	c.update(func() {
		if c.editing == nil {
			return
		}
		switch field {
		case FieldTitle:
			c.edit.Title = value
		case FieldDescription:
			c.edit.Description = value
		}
	})
}

func (c *Controller) CancelEdit() {
	c.update(func() {
		c.editing = nil
		c.edit = models.EditDraft{}
	})
}

// SaveEdit sends the draft for the image being edited. On failure the draft
// stays as it was so the user can retry.
func (c *Controller) SaveEdit(ctx context.Context) error {
	const op = "gallery_view.SaveEdit"

	c.mu.Lock()
	if c.editing == nil || c.saving > 0 {
		c.mu.Unlock()
		return nil
	}

	id := c.editing.ID
	draft := c.edit
	c.saving++
	c.message = nil
	snap := c.changedLocked()
	c.mu.Unlock()
	c.publish(snap)

	log := c.log.With(
		slog.String("op", op),
		slog.String("id", id.String()),
	)

	_, err := c.store.Update(ctx, id, draft.Title, draft.Description)

	c.update(func() {
		c.saving--
		if err != nil {
			c.message = &Message{Kind: MessageError, Text: msgSaveFailed}
			return
		}
		if c.editing != nil && c.editing.ID == id {
			c.editing = nil
			c.edit = models.EditDraft{}
		}
	})

	if err != nil {
		log.Error("update failed", sl.Err(err))
		return err
	}

	_ = c.Load(ctx)

	return nil
}

// RequestDelete only records which image waits for confirmation.
func (c *Controller) RequestDelete(id uuid.UUID) {
	c.update(func() {
		c.pending = &id
	})
}

func (c *Controller) CancelDelete() {
	c.update(func() {
		c.pending = nil
	})
}

// ConfirmDelete deletes the pending image. When the image has already left
// the displayed list the pending state is cleared and nothing is sent.
func (c *Controller) ConfirmDelete(ctx context.Context) error {
	const op = "gallery_view.ConfirmDelete"

	c.mu.Lock()
	if c.pending == nil || c.deleting > 0 {
		c.mu.Unlock()
		return nil
	}

	id := *c.pending
	image, found := c.findLocked(id)
	if !found {
		c.pending = nil
		snap := c.changedLocked()
		c.mu.Unlock()
		c.publish(snap)
		return nil
	}

	c.deleting++
	c.message = nil
	snap := c.changedLocked()
	c.mu.Unlock()
	c.publish(snap)

	log := c.log.With(
		slog.String("op", op),
		slog.String("id", id.String()),
	)

	err := c.store.Delete(ctx, id, image.FileName)

	c.update(func() {
		c.deleting--
		if err != nil {
			c.message = &Message{Kind: MessageError, Text: msgDeleteFailed}
			return
		}
		if c.pending != nil && *c.pending == id {
			c.pending = nil
		}
		if c.preview != nil && c.preview.ID == id {
			c.preview = nil
		}
		if c.editing != nil && c.editing.ID == id {
			c.editing = nil
			c.edit = models.EditDraft{}
		}
	})

	if err != nil {
		log.Error("delete failed", sl.Err(err))
		return err
	}

	_ = c.Load(ctx)

	return nil
}

func (c *Controller) DismissMessage() {
	c.update(func() {
		c.message = nil
	})
}

// Snapshot returns a copy of the current state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.snapshotLocked()
}

// Subscribe registers fn to receive a snapshot after state changes. Calls to
// fn never overlap and the last snapshot it sees is the current state.
// The returned func removes the subscription.
func (c *Controller) Subscribe(fn func(Snapshot)) func() {
	c.subMu.Lock()
	id := c.nextSub
	c.nextSub++
	c.subs[id] = fn
	c.subMu.Unlock()

	return func() {
		c.subMu.Lock()
		delete(c.subs, id)
		c.subMu.Unlock()
	}
}

func (c *Controller) update(fn func()) {
	c.mu.Lock()
	fn()
	snap := c.changedLocked()
	c.mu.Unlock()

	c.publish(snap)
}

// changedLocked bumps the state version and returns the new snapshot.
func (c *Controller) changedLocked() Snapshot {
	c.version++
	return c.snapshotLocked()
}

// publish hands snap to the subscribers in version order. Only one goroutine
// delivers at a time; snapshots published meanwhile are coalesced so that
// subscribers always end on the newest state. A snapshot older than one
// already delivered is dropped. Subscribers may call back into the
// controller.
func (c *Controller) publish(snap Snapshot) {
	c.pubMu.Lock()
	if snap.version <= c.delivered || (c.next != nil && snap.version <= c.next.version) {
		c.pubMu.Unlock()
		return
	}

	c.next = &snap
	if c.delivering {
		c.pubMu.Unlock()
		return
	}

	c.delivering = true
	for c.next != nil {
		current := *c.next
		c.next = nil
		c.delivered = current.version
		c.pubMu.Unlock()

		for _, fn := range c.subscribers() {
			fn(current)
		}

		c.pubMu.Lock()
	}
	c.delivering = false
	c.pubMu.Unlock()
}

func (c *Controller) subscribers() []func(Snapshot) {
	c.subMu.Lock()
	defer c.subMu.Unlock()

	subs := make([]func(Snapshot), 0, len(c.subs))
	for _, fn := range c.subs {
		subs = append(subs, fn)
	}

	return subs
}

func (c *Controller) findLocked(id uuid.UUID) (models.GalleryImage, bool) {
	for _, image := range c.images {
		if image.ID == id {
			return image, true
		}
	}
	return models.GalleryImage{}, false
}

func validationError(err error) error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return &models.ValidationError{Errors: []string{err.Error()}}
	}

	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, fe.Field()+" is required")
	}

	return &models.ValidationError{Errors: msgs}
}

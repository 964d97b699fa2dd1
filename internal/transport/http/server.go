package http

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"portfolio_gallery/internal/domain/models"
	"portfolio_gallery/internal/lib/logger/sl"
	"portfolio_gallery/internal/lib/upload"
	"portfolio_gallery/internal/storage"
	"portfolio_gallery/internal/transport/http/dto"
	"portfolio_gallery/internal/transport/http/dto/response"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type GalleryService interface {
	List(ctx context.Context) ([]models.GalleryImage, error)
	Create(ctx context.Context, file models.ImageFile, title, description string) (models.GalleryImage, error)
	Update(ctx context.Context, id uuid.UUID, title, description string) (models.GalleryImage, error)
	Delete(ctx context.Context, id uuid.UUID, fileName string) error
}

// HealthChecker is anything the health endpoint should ping.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

type Routers struct {
	log            *slog.Logger
	GalleryService GalleryService
	rules          upload.Rules
	health         []HealthChecker
}

func NewRouter(log *slog.Logger, galleryService GalleryService, rules upload.Rules, health ...HealthChecker) *Routers {
	return &Routers{
		log:            log,
		GalleryService: galleryService,
		rules:          rules,
		health:         health,
	}
}

// ListImages godoc
// @Summary List gallery images
// @Description Returns every image, newest first.
// @Tags gallery
// @Produce json
// @Success 200 {object} response.Response{data=[]models.GalleryImage}
// @Failure 502 {object} response.ErrorResponse
// @Router /api/v1/gallery [get]
func (r *Routers) ListImages(c echo.Context) error {
	const op = "http.routers.ListImages"

	log := r.log.With(
		slog.String("op", op),
	)

	images, err := r.GalleryService.List(c.Request().Context())
	if err != nil {
		log.Error("failed to list images", sl.Err(err))
		return r.storeError(c, err)
	}

	return c.JSON(http.StatusOK, response.SuccessResponse(images))
}

// UploadImage godoc
// @Summary Upload an image
// @Tags gallery
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Image (jpeg, png, gif, webp; max 5MB)"
// @Param title formData string true "Title"
// @Param description formData string false "Description"
// @Success 201 {object} response.Response{data=models.GalleryImage}
// @Failure 400 {object} response.ErrorResponse
// @Failure 413 {object} response.ErrorResponse
// @Failure 415 {object} response.ErrorResponse
// @Failure 502 {object} response.ErrorResponse
// @Router /api/v1/gallery [post]
func (r *Routers) UploadImage(c echo.Context) error {
	const op = "http.routers.UploadImage"

	log := r.log.With(
		slog.String("op", op),
	)

	var req dto.UploadImageRequest
	if err := c.Bind(&req); err != nil {
		log.Warn("failed to bind form", sl.Err(err))
		return c.JSON(http.StatusBadRequest, response.ErrInvalidRequestFormat)
	}

	if err := c.Validate(req); err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrInvalidRequestFormat.WithDetails(err.Error()))
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrInvalidRequestFormat.WithDetails("file is required"))
	}

	file, err := r.rules.Check(models.ImageFile{
		Name:        fileHeader.Filename,
		ContentType: fileHeader.Header.Get("Content-Type"),
		Size:        fileHeader.Size,
		Open: func() (io.ReadCloser, error) {
			return fileHeader.Open()
		},
	})
	if err != nil {
		log.Warn("file rejected", slog.String("name", fileHeader.Filename), sl.Err(err))

		switch {
		case errors.Is(err, storage.ErrFileTooLarge):
			return c.JSON(http.StatusRequestEntityTooLarge, response.ErrFileTooLarge.WithDetails(err.Error()))
		default:
			return c.JSON(http.StatusUnsupportedMediaType, response.ErrUnsupportedFileType.WithDetails(err.Error()))
		}
	}

	created, err := r.GalleryService.Create(c.Request().Context(), file, req.Title, req.Description)
	if err != nil {
		log.Error("failed to create image", sl.Err(err))
		return r.storeError(c, err)
	}

	log.Info("image uploaded", slog.String("id", created.ID.String()))

	return c.JSON(http.StatusCreated, response.SuccessResponse(created))
}

// UpdateImage godoc
// @Summary Update title and description
// @Tags gallery
// @Accept json
// @Produce json
// @Param id path string true "Image ID" format(uuid)
// @Param request body dto.UpdateImageRequest true "New values"
// @Success 200 {object} response.Response{data=models.GalleryImage}
// @Failure 400 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse
// @Failure 502 {object} response.ErrorResponse
// @Router /api/v1/gallery/{id} [patch]
func (r *Routers) UpdateImage(c echo.Context) error {
	const op = "http.routers.UpdateImage"

	log := r.log.With(
		slog.String("op", op),
	)

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrInvalidRequestFormat.WithDetails("id must be a UUID"))
	}

	var req dto.UpdateImageRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrInvalidRequestFormat)
	}

	if err := c.Validate(req); err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrInvalidRequestFormat.WithDetails(err.Error()))
	}

	updated, err := r.GalleryService.Update(c.Request().Context(), id, req.Title, req.Description)
	if err != nil {
		log.Error("failed to update image", slog.String("id", id.String()), sl.Err(err))
		return r.storeError(c, err)
	}

	return c.JSON(http.StatusOK, response.SuccessResponse(updated))
}

// DeleteImage godoc
// @Summary Delete an image and its bytes
// @Tags gallery
// @Param id path string true "Image ID" format(uuid)
// @Param file_name query string true "Storage key of the image"
// @Success 204
// @Failure 400 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse
// @Failure 502 {object} response.ErrorResponse
// @Router /api/v1/gallery/{id} [delete]
func (r *Routers) DeleteImage(c echo.Context) error {
	const op = "http.routers.DeleteImage"

	log := r.log.With(
		slog.String("op", op),
	)

	var req dto.DeleteImageRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrInvalidRequestFormat)
	}

	if err := c.Validate(req); err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrInvalidRequestFormat.WithDetails(err.Error()))
	}

	id := uuid.MustParse(req.ID)

	if err := r.GalleryService.Delete(c.Request().Context(), id, req.FileName); err != nil {
		log.Error("failed to delete image", slog.String("id", req.ID), sl.Err(err))
		return r.storeError(c, err)
	}

	return c.NoContent(http.StatusNoContent)
}

func (r *Routers) Health(c echo.Context) error {
	for _, checker := range r.health {
		if err := checker.HealthCheck(c.Request().Context()); err != nil {
			r.log.Warn("health check failed", sl.Err(err))
			return c.JSON(http.StatusServiceUnavailable, response.ErrUnhealthy.WithDetails(err.Error()))
		}
	}

	return c.JSON(http.StatusOK, response.Healthy())
}

func (r *Routers) storeError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, models.ErrNotFound):
		return c.JSON(http.StatusNotFound, response.ErrImageNotFound)
	case models.IsStoreError(err):
		return c.JSON(http.StatusBadGateway, response.ErrStoreUnavailable)
	default:
		return c.JSON(http.StatusInternalServerError, response.ErrInternal)
	}
}

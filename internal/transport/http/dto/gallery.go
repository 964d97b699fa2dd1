package dto

// UploadImageRequest is the text part of the multipart upload form.
type UploadImageRequest struct {
	Title       string `form:"title" validate:"required"`
	Description string `form:"description"`
}

type UpdateImageRequest struct {
	Title       string `json:"title" validate:"required"`
	Description string `json:"description"`
}

type DeleteImageRequest struct {
	ID       string `param:"id" validate:"required,uuid"`
	FileName string `query:"file_name" validate:"required"`
}

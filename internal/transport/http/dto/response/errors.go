package response

var (
	ErrInvalidRequestFormat = ErrorResponse{
		Status:  statusError,
		Error:   "invalid_request",
		Details: "Invalid request format",
	}

	ErrImageNotFound = ErrorResponse{
		Status:  statusError,
		Error:   "image_not_found",
		Details: "Image does not exist",
	}

	ErrFileTooLarge = ErrorResponse{
		Status: statusError,
		Error:  "file_too_large",
	}

	ErrUnsupportedFileType = ErrorResponse{
		Status: statusError,
		Error:  "unsupported_file_type",
	}

	ErrStoreUnavailable = ErrorResponse{
		Status:  statusError,
		Error:   "store_unavailable",
		Details: "Storage request failed, please try again",
	}

	ErrUnhealthy = ErrorResponse{
		Status: statusError,
		Error:  "unhealthy",
	}

	ErrInternal = ErrorResponse{
		Status:  statusError,
		Error:   "internal_error",
		Details: "Internal server error",
	}
)

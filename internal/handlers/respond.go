package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/pupped/storefront/internal/models"
	"github.com/pupped/storefront/internal/services"
	pkghttp "github.com/pupped/storefront/pkg/http"
)

// multipart bodies may carry one image plus a handful of text fields
const maxMultipartBytes = services.MaxImageSize + 1<<20

// writeServiceError maps a service error onto the JSON error contract
func writeServiceError(w http.ResponseWriter, logger *slog.Logger, err error, notFoundMessage string) {
	switch {
	case errors.Is(err, models.ErrNotFound):
		pkghttp.WriteNotFound(w, notFoundMessage)
	case errors.Is(err, models.ErrConflict):
		pkghttp.WriteConflict(w, "Resource already exists")
	case errors.Is(err, models.ErrInvalidFileType),
		errors.Is(err, models.ErrFileTooLarge),
		errors.Is(err, models.ErrBadRequest):
		pkghttp.WriteBadRequest(w, err.Error())
	default:
		logger.Error("request failed", slog.Any("error", err))
		pkghttp.WriteInternalError(w, "Internal server error")
	}
}

// parseMultipart reads a multipart body capped at maxMultipartBytes. The
// returned cleanup removes any temporary files.
func parseMultipart(w http.ResponseWriter, r *http.Request) (func(), error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxMultipartBytes)
	if err := r.ParseMultipartForm(maxMultipartBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return func() {}, models.ErrFileTooLarge
		}
		return func() {}, models.ErrBadRequest
	}
	return func() { _ = r.MultipartForm.RemoveAll() }, nil
}

// formImage returns the uploaded file in field, or nil when none was sent
func formImage(r *http.Request, field string) (*services.ImageUpload, func(), error) {
	file, header, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, func() {}, nil
	}
	if err != nil {
		return nil, func() {}, models.ErrBadRequest
	}
	if header.Size == 0 {
		file.Close()
		return nil, func() {}, nil
	}

	return &services.ImageUpload{
		Body:         file,
		OriginalName: header.Filename,
		MimeType:     header.Header.Get("Content-Type"),
		Size:         header.Size,
	}, func() { file.Close() }, nil
}

// formValue returns a pointer to a multipart text field, nil when absent
func formValue(r *http.Request, key string) *string {
	if r.MultipartForm == nil {
		return nil
	}
	values, ok := r.MultipartForm.Value[key]
	if !ok || len(values) == 0 {
		return nil
	}
	v := values[0]
	return &v
}

package http

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/leave"
	"github.com/cmlabs-hris/hrms-backend-go/internal/handler/http/response"
	"github.com/cmlabs-hris/hrms-backend-go/internal/service/file"
	"github.com/go-chi/chi/v5"
)

type CertificateHandler interface {
	Upload(w http.ResponseWriter, r *http.Request)
	Download(w http.ResponseWriter, r *http.Request)
}

type certificateHandlerImpl struct {
	fileService file.FileService
	maxSize     int64
}

func NewCertificateHandler(fileService file.FileService, maxSize int64) CertificateHandler {
	return &certificateHandlerImpl{
		fileService: fileService,
		maxSize:     maxSize,
	}
}

// Upload implements CertificateHandler.
func (h *certificateHandlerImpl) Upload(w http.ResponseWriter, r *http.Request) {
	// room for the multipart framing around the file
	r.Body = http.MaxBytesReader(w, r.Body, h.maxSize+1<<20)

	f, header, err := r.FormFile("file")
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			response.HandleError(w, leave.ErrCertificateTooLarge)
			return
		}
		slog.Error("Upload certificate form error", "error", err)
		response.BadRequest(w, "A file field named 'file' is required", nil)
		return
	}
	defer f.Close()

	result, err := h.fileService.UploadCertificate(r.Context(), f, header.Filename)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Certificate uploaded successfully", result)
}

// Download implements CertificateHandler.
func (h *certificateHandlerImpl) Download(w http.ResponseWriter, r *http.Request) {
	id := strings.Join([]string{"certificates", chi.URLParam(r, "employeeID"), chi.URLParam(r, "name")}, "/")

	rc, contentType, err := h.fileService.OpenCertificate(r.Context(), id)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	defer rc.Close()

	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, rc); err != nil {
		slog.Error("Download certificate copy error", "id", id, "error", err)
	}
}

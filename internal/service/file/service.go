package file

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"strings"

	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/leave"
	"github.com/cmlabs-hris/hrms-backend-go/internal/pkg/storage"
	"github.com/cmlabs-hris/hrms-backend-go/internal/service/workflow"
	"github.com/google/uuid"
)

const certificatePrefix = "certificates"

var certificateTypes = map[string]string{
	".pdf":  "application/pdf",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
}

// FileService stores the documents attached to leave requests.
type FileService interface {
	UploadCertificate(ctx context.Context, file io.Reader, filename string) (leave.CertificateResponse, error)
	OpenCertificate(ctx context.Context, id string) (io.ReadCloser, string, error)
}

type fileServiceImpl struct {
	storage storage.FileStorage
	flow    *workflow.Helper
	maxSize int64
}

func NewFileService(storage storage.FileStorage, flow *workflow.Helper, maxSize int64) FileService {
	return &fileServiceImpl{
		storage: storage,
		flow:    flow,
		maxSize: maxSize,
	}
}

// UploadCertificate stores a certificate under the caller's directory.
func (s *fileServiceImpl) UploadCertificate(ctx context.Context, file io.Reader, filename string) (leave.CertificateResponse, error) {
	actor, err := s.flow.Actor(ctx)
	if err != nil {
		return leave.CertificateResponse{}, err
	}

	ext := strings.ToLower(filepath.Ext(filename))
	contentType, ok := certificateTypes[ext]
	if !ok {
		return leave.CertificateResponse{}, leave.ErrCertificateInvalidType
	}

	counter := &countingReader{r: file, limit: s.maxSize}
	key := path.Join(certificatePrefix, actor.EmployeeID, uuid.Must(uuid.NewV7()).String()+ext)

	uploaded, err := s.storage.Upload(ctx, counter, key, contentType)
	if err != nil {
		if errors.Is(err, leave.ErrCertificateTooLarge) {
			return leave.CertificateResponse{}, err
		}
		return leave.CertificateResponse{}, fmt.Errorf("failed to upload certificate: %w", err)
	}

	s.flow.Logger().Info("medical certificate uploaded", "employee_id", actor.EmployeeID, "id", uploaded, "size", counter.n)
	return leave.CertificateResponse{ID: uploaded, ContentType: contentType, Size: counter.n}, nil
}

// OpenCertificate returns the file and its content type when the caller may
// view the owner's leaves.
func (s *fileServiceImpl) OpenCertificate(ctx context.Context, id string) (io.ReadCloser, string, error) {
	actor, err := s.flow.Actor(ctx)
	if err != nil {
		return nil, "", err
	}

	parts := strings.Split(id, "/")
	if len(parts) != 3 || parts[0] != certificatePrefix {
		return nil, "", leave.ErrCertificateNotFound
	}
	ownerID := parts[1]
	contentType, ok := certificateTypes[strings.ToLower(path.Ext(parts[2]))]
	if !ok {
		return nil, "", leave.ErrCertificateNotFound
	}

	departmentID, err := s.flow.DepartmentOf(ctx, ownerID)
	if err != nil {
		return nil, "", err
	}
	allowed, err := s.flow.CanView(ctx, actor, ownerID, departmentID)
	if err != nil {
		return nil, "", err
	}
	if !allowed {
		return nil, "", leave.ErrUnauthorized
	}

	rc, err := s.storage.Download(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrFileNotFound) || errors.Is(err, storage.ErrInvalidPath) {
			return nil, "", leave.ErrCertificateNotFound
		}
		return nil, "", err
	}
	return rc, contentType, nil
}

// countingReader fails once more than limit bytes were read. A zero limit
// disables the check.
type countingReader struct {
	r     io.Reader
	n     int64
	limit int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	if c.limit > 0 && c.n > c.limit {
		return n, leave.ErrCertificateTooLarge
	}
	return n, err
}

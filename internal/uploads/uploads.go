package uploads

import (
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"hostelx-service/internal/apperrors"
)

// MaxImageBytes caps a single image upload.
const MaxImageBytes = 5 << 20

var allowedExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
}

// Service stores uploaded listing images on disk and hands back durable URLs.
type Service struct {
	dir     string
	baseURL string
}

// NewService constructs a Service, creating the storage directory.
func NewService(dir, baseURL string) (*Service, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, apperrors.Upload("could not prepare upload directory", err)
	}
	return &Service{dir: dir, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

// Dir returns the filesystem directory uploads are written to.
func (s *Service) Dir() string { return s.dir }

// Save persists one uploaded image and returns its URL. Any failure is an
// upload error for the caller to surface.
func (s *Service) Save(c *gin.Context, file *multipart.FileHeader) (string, error) {
	if file.Size > MaxImageBytes {
		return "", apperrors.Upload("image exceeds the 5MB limit", nil)
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !allowedExtensions[ext] {
		return "", apperrors.Upload("unsupported image type", nil)
	}

	name := uuid.NewString() + ext
	if err := c.SaveUploadedFile(file, filepath.Join(s.dir, name)); err != nil {
		return "", apperrors.Upload("could not store image", err)
	}
	return s.baseURL + "/" + name, nil
}

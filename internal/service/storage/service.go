package storage

import (
	"context"
	"fmt"
	"net/url"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"

	"scanplant/internal/config"
	"scanplant/internal/domain"
)

// Service stores plant images and hands back a public URL for each one.
type Service interface {
	Store(ctx context.Context, image *domain.ImageUpload) (string, error)
	Delete(ctx context.Context, ref string) error
	Resolve(ref string) string
}

type service struct {
	minioClient *minio.Client
	cfg         *config.Config
}

func NewService(minioClient *minio.Client, cfg *config.Config) Service {
	return &service{
		minioClient: minioClient,
		cfg:         cfg,
	}
}

func (s *service) Store(ctx context.Context, image *domain.ImageUpload) (string, error) {
	if s.minioClient == nil {
		return "", fmt.Errorf("image storage is not configured")
	}
	if image.Empty() {
		return "", domain.ErrImageRequired
	}

	reader, err := image.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open image: %w", err)
	}
	defer reader.Close()

	objectName := NewObjectName(image.FileName)
	_, err = s.minioClient.PutObject(ctx, s.cfg.MinIOBucket, objectName, reader, image.Size, minio.PutObjectOptions{
		ContentType: image.ContentType,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to MinIO: %w", err)
	}

	return s.publicURL(objectName), nil
}

// Delete removes the object a URL returned by Store points at. Missing
// objects are not an error.
func (s *service) Delete(ctx context.Context, ref string) error {
	if s.minioClient == nil {
		return fmt.Errorf("image storage is not configured")
	}
	name := ObjectName(ref)
	if name == "" {
		return nil
	}
	return s.minioClient.RemoveObject(ctx, s.cfg.MinIOBucket, name, minio.RemoveObjectOptions{})
}

// Resolve returns the public URL of ref. Stored refs are already URLs.
func (s *service) Resolve(ref string) string {
	if ref == "" || strings.Contains(ref, "://") {
		return ref
	}
	return s.publicURL(ref)
}

func (s *service) publicURL(objectName string) string {
	scheme := "http"
	if s.cfg.MinIOPublicUseSSL {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s/%s/%s", scheme, s.cfg.MinIOPublicEndpoint, s.cfg.MinIOBucket, url.PathEscape(objectName))
}

// NewObjectName builds a unique flat object name that keeps the upload's
// extension.
func NewObjectName(fileName string) string {
	ext := strings.ToLower(filepath.Ext(fileName))
	return fmt.Sprintf("plant-%s%s", uuid.New().String(), ext)
}

// ObjectName derives the object name from a stored URL: its last path
// segment.
func ObjectName(ref string) string {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return ""
	}
	if u, err := url.Parse(ref); err == nil && u.Path != "" {
		ref = u.Path
	}
	name := path.Base(ref)
	if name == "/" || name == "." {
		return ""
	}
	return name
}

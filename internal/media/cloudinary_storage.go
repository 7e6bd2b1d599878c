package media

import (
	"context"
	"fmt"
	"io"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

// CloudinaryStorage implements Storage against Cloudinary
type CloudinaryStorage struct {
	cld *cloudinary.Cloudinary
}

// CloudinaryConfig holds Cloudinary credentials
type CloudinaryConfig struct {
	CloudName string
	APIKey    string
	APISecret string
}

// NewCloudinaryStorage creates a Cloudinary-backed storage
func NewCloudinaryStorage(cfg *CloudinaryConfig) (*CloudinaryStorage, error) {
	cld, err := cloudinary.NewFromParams(cfg.CloudName, cfg.APIKey, cfg.APISecret)
	if err != nil {
		return nil, fmt.Errorf("failed to init cloudinary: %w", err)
	}
	return &CloudinaryStorage{cld: cld}, nil
}

// Upload stores the content and returns its public id and secure URL
func (s *CloudinaryStorage) Upload(ctx context.Context, content io.Reader, resourceType ResourceType) (*Asset, error) {
	resp, err := s.cld.Upload.Upload(ctx, content, uploader.UploadParams{
		ResourceType: string(resourceType),
	})
	if err != nil {
		return nil, fmt.Errorf("cloudinary upload failed: %w", err)
	}
	return &Asset{PublicID: resp.PublicID, URL: resp.SecureURL}, nil
}

// Destroy removes a stored object
func (s *CloudinaryStorage) Destroy(ctx context.Context, publicID string, resourceType ResourceType) error {
	_, err := s.cld.Upload.Destroy(ctx, uploader.DestroyParams{
		PublicID:     publicID,
		ResourceType: string(resourceType),
	})
	if err != nil {
		return fmt.Errorf("cloudinary destroy failed: %w", err)
	}
	return nil
}

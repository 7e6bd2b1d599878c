package media

import (
	"context"
	"io"
)

// ResourceType tells the media host how to process the upload
type ResourceType string

const (
	ResourceImage ResourceType = "image"
	ResourceVideo ResourceType = "video"
)

// Asset is a stored media object
type Asset struct {
	PublicID string
	URL      string
}

// Storage defines the interface to the external media host
type Storage interface {
	// Upload stores the content and returns its id and delivery URL
	Upload(ctx context.Context, content io.Reader, resourceType ResourceType) (*Asset, error)
	// Destroy removes a stored object
	Destroy(ctx context.Context, publicID string, resourceType ResourceType) error
}

package media

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/google/uuid"
)

// MemoryStorage implements Storage in memory for tests and local development
type MemoryStorage struct {
	mu     sync.Mutex
	assets map[string]ResourceType
}

// NewMemoryStorage creates an empty in-memory storage
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{assets: make(map[string]ResourceType)}
}

// Upload discards the content and issues a fake id/URL pair
func (s *MemoryStorage) Upload(ctx context.Context, content io.Reader, resourceType ResourceType) (*Asset, error) {
	if _, err := io.Copy(io.Discard, content); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	id := fmt.Sprintf("mem_%s", uuid.New().String()[:8])
	s.assets[id] = resourceType
	return &Asset{
		PublicID: id,
		URL:      fmt.Sprintf("https://media.local/%s/%s", resourceType, id),
	}, nil
}

// Destroy removes the object
func (s *MemoryStorage) Destroy(ctx context.Context, publicID string, resourceType ResourceType) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.assets, publicID)
	return nil
}

// Has reports whether an object is stored (test helper)
func (s *MemoryStorage) Has(publicID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.assets[publicID]
	return ok
}

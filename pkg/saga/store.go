package saga

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
)

var (
	// ErrInstanceNotFound is returned when a saga instance is not found
	ErrInstanceNotFound = errors.New("saga instance not found")
	// ErrInstanceExists is returned when saving a duplicate instance
	ErrInstanceExists = errors.New("saga instance already exists")
)

// Store persists saga instances
type Store interface {
	// Save persists a new instance
	Save(ctx context.Context, instance *Instance) error
	// Get retrieves an instance by id
	Get(ctx context.Context, id string) (*Instance, error)
	// Update overwrites an existing instance
	Update(ctx context.Context, instance *Instance) error
	// ListByStatus returns instances with the given status, for operator
	// reconciliation of interrupted sagas
	ListByStatus(ctx context.Context, status Status, limit int) ([]*Instance, error)
}

// MemoryStore is an in-memory Store for tests
type MemoryStore struct {
	mu        sync.RWMutex
	instances map[string]*Instance
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{instances: make(map[string]*Instance)}
}

// Save persists a new instance
func (s *MemoryStore) Save(ctx context.Context, instance *Instance) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.instances[instance.ID]; exists {
		return ErrInstanceExists
	}
	copied, err := deepCopy(instance)
	if err != nil {
		return err
	}
	s.instances[instance.ID] = copied
	return nil
}

// Get retrieves an instance by id
func (s *MemoryStore) Get(ctx context.Context, id string) (*Instance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	instance, exists := s.instances[id]
	if !exists {
		return nil, ErrInstanceNotFound
	}
	return deepCopy(instance)
}

// Update overwrites an existing instance
func (s *MemoryStore) Update(ctx context.Context, instance *Instance) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.instances[instance.ID]; !exists {
		return ErrInstanceNotFound
	}
	copied, err := deepCopy(instance)
	if err != nil {
		return err
	}
	s.instances[instance.ID] = copied
	return nil
}

// ListByStatus returns instances with the given status
func (s *MemoryStore) ListByStatus(ctx context.Context, status Status, limit int) ([]*Instance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var result []*Instance
	for _, instance := range s.instances {
		if instance.Status != status {
			continue
		}
		copied, err := deepCopy(instance)
		if err != nil {
			return nil, err
		}
		result = append(result, copied)
		if limit > 0 && len(result) >= limit {
			break
		}
	}
	return result, nil
}

// Count returns the number of stored instances (test helper)
func (s *MemoryStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.instances)
}

func deepCopy(instance *Instance) (*Instance, error) {
	data, err := json.Marshal(instance)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal instance: %w", err)
	}
	var copied Instance
	if err := json.Unmarshal(data, &copied); err != nil {
		return nil, fmt.Errorf("failed to unmarshal instance: %w", err)
	}
	return &copied, nil
}

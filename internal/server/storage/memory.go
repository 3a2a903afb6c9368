package storage

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is an ObjectStore that keeps objects in a map. It backs tests
// and local runs without an S3 endpoint.
type MemoryStore struct {
	mu      sync.Mutex
	objects map[string]bool
	BaseURL string
	TTL     time.Duration

	// Err, when set, is returned by every call.
	Err error
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{objects: map[string]bool{}, BaseURL: "memory://", TTL: 15 * time.Minute}
}

// Put marks objectID as uploaded.
func (m *MemoryStore) Put(objectID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[objectID] = true
}

// Has reports whether objectID is present.
func (m *MemoryStore) Has(objectID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.objects[objectID]
}

func (m *MemoryStore) GenerateUploadURL(ctx context.Context) (*UploadTicket, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	now := time.Now()
	key := NewObjectKey(now)
	return &UploadTicket{ObjectID: key, URL: m.BaseURL + key + "?op=put", ExpiresAt: now.Add(m.TTL)}, nil
}

func (m *MemoryStore) GetURL(ctx context.Context, objectID string) (*string, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	if !m.Has(objectID) {
		return nil, nil
	}
	u := m.BaseURL + objectID
	return &u, nil
}

func (m *MemoryStore) Delete(ctx context.Context, objectID string) error {
	if m.Err != nil {
		return m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, objectID)
	return nil
}

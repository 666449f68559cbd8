package db

import (
	"context"
	"sync"
)

// MemoryStore keeps the encoded document in memory. Load always returns a
// fresh copy, like the durable drivers do.
type MemoryStore struct {
	mu   sync.Mutex
	data []byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Load(_ context.Context) (*Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.data == nil {
		return NewDocument(), nil
	}

	return decodeDocument(s.data)
}

func (s *MemoryStore) Save(_ context.Context, doc *Document) error {
	data, err := encodeDocument(doc)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.data = data
	s.mu.Unlock()

	return nil
}

func (s *MemoryStore) Close() error { return nil }

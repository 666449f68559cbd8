package db

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/moby/sys/atomicwriter"
)

// FileStore keeps the document as a JSON file. Writes go to a temporary file
// which is renamed over the target, so a crash leaves the old or the new
// document but never a mix.
type FileStore struct {
	path string
}

func NewFileStore(path string) (*FileStore, error) {
	if path == "" {
		return nil, errors.New("file store path is required")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create store dir: %w", err)
	}

	return &FileStore{path: path}, nil
}

// Load returns an empty document when the file is absent.
func (s *FileStore) Load(_ context.Context) (*Document, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return NewDocument(), nil
	} else if err != nil {
		return nil, err
	}

	return decodeDocument(data)
}

func (s *FileStore) Save(_ context.Context, doc *Document) error {
	data, err := encodeDocument(doc)
	if err != nil {
		return err
	}

	return atomicwriter.WriteFile(s.path, data, 0o600)
}

func (s *FileStore) Close() error { return nil }

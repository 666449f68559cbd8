// Package db holds the durable points ledger and pending submissions.
//
// Every mutation is a full document load, an in-memory change and a full
// document save. Repo serializes those sequences so concurrent callers never
// lose each other's writes.
package db

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/vmkteam/embedlog"
)

var (
	// ErrCorrupt is returned by Store.Load together with an empty document
	// when the stored bytes cannot be decoded.
	ErrCorrupt = errors.New("stored document is corrupt")

	// ErrNoChange may be returned from an Update callback to skip the save.
	ErrNoChange = errors.New("no change")

	ErrUnknownDriver = errors.New("unknown store driver")
)

// Store is a whole-document durable storage. Save must fully replace the
// previous state or fail without touching it.
type Store interface {
	Load(ctx context.Context) (*Document, error)
	Save(ctx context.Context, doc *Document) error
	Close() error
}

const (
	DriverFile   = "file"
	DriverBolt   = "bolt"
	DriverMemory = "memory"
)

// Open creates a store for the given driver.
func Open(driver, path string) (Store, error) {
	switch driver {
	case DriverFile, "":
		return NewFileStore(path)
	case DriverBolt:
		return NewBoltStore(path)
	case DriverMemory:
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, driver)
	}
}

// Repo is the single writer in front of a Store.
type Repo struct {
	mu    sync.RWMutex
	store Store
	log   embedlog.Logger
}

func NewRepo(s Store, log embedlog.Logger) *Repo {
	return &Repo{store: s, log: log}
}

// View loads the document for reading. Changes made by fn are discarded.
func (r *Repo) View(ctx context.Context, fn func(doc *Document) error) error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	doc, err := r.load(ctx)
	if err != nil {
		return err
	}

	return fn(doc)
}

// Update runs load, fn and save as one exclusive section. If fn fails nothing
// is saved and its error is returned, except ErrNoChange which yields nil.
func (r *Repo) Update(ctx context.Context, fn func(doc *Document) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	doc, err := r.load(ctx)
	if err != nil {
		return err
	}

	if err = fn(doc); err != nil {
		if errors.Is(err, ErrNoChange) {
			return nil
		}
		return err
	}

	if err = ctx.Err(); err != nil {
		return err
	}

	if err = r.store.Save(ctx, doc); err != nil {
		return fmt.Errorf("failed to save document: %w", err)
	}

	return nil
}

// Ping checks that the document can be read.
func (r *Repo) Ping(ctx context.Context) error {
	return r.View(ctx, func(*Document) error { return nil })
}

// Close releases the underlying store.
func (r *Repo) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.store.Close()
}

func (r *Repo) load(ctx context.Context) (*Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	doc, err := r.store.Load(ctx)
	switch {
	case errors.Is(err, ErrCorrupt):
		r.log.Error(ctx, "stored document is corrupt, starting from empty", "err", err)
		return NewDocument(), nil
	case err != nil:
		return nil, fmt.Errorf("failed to load document: %w", err)
	}

	return doc, nil
}

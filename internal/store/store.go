// Package store persists the template document. Every backend replaces the
// document as a whole on Save.
package store

import (
	"context"
	"errors"
	"fmt"
)

// ErrNotFound is returned by Load when the document does not exist yet.
var ErrNotFound = errors.New("store: document not found")

// Document is implemented by every backend in this package.
type Document interface {
	Load(ctx context.Context) ([]byte, error)
	Save(ctx context.Context, doc []byte) error
}

// Seed saves seed into d when d has no document yet. It reports whether a
// write happened.
func Seed(ctx context.Context, d Document, seed []byte) (bool, error) {
	_, err := d.Load(ctx)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return false, fmt.Errorf("store: seed: %w", err)
	}
	if len(seed) == 0 {
		return false, errors.New("store: seed: seed document is empty")
	}
	if err := d.Save(ctx, seed); err != nil {
		return false, fmt.Errorf("store: seed: %w", err)
	}
	return true, nil
}

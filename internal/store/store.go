package store

import (
	"context"
	"errors"

	"bukustok/backend/internal/domain"
)

var (
	ErrNotFound     = errors.New("document not found")
	ErrInvalidInput = errors.New("invalid input")
)

// DocumentStore is the remote record holding everything a shop owns.
// Set replaces the whole document; there is no partial update and no
// server-side merge.
type DocumentStore interface {
	Get(ctx context.Context, shopID string) (*domain.Document, error)
	Set(ctx context.Context, shopID string, doc *domain.Document) error
	// Watch delivers a snapshot after every Set until the cancel func is
	// called or ctx is done. Snapshots are clones; receivers own them.
	Watch(ctx context.Context, shopID string) (<-chan *domain.Document, func(), error)
}

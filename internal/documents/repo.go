package documents

import (
	"context"
	"errors"
)

var (
	ErrNotFound     = errors.New("document not found")
	ErrInvalidInput = errors.New("invalid input")
)

// DocumentsRepo persists documents. Every method except Create is scoped to the owner.
type DocumentsRepo interface {
	Create(ctx context.Context, doc Document) error
	ListByOwner(ctx context.Context, ownerID string) ([]Document, error)
	Update(ctx context.Context, ownerID, id string, patch Patch) (Document, error)
	Delete(ctx context.Context, ownerID, id string) error
}

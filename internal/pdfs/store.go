package pdfs

import "context"

// Store maps pdf ids to records. Get returns ErrNotFound for unknown ids.
type Store interface {
	Get(ctx context.Context, id string) (Record, error)
	Set(ctx context.Context, id string, rec Record) error
	Delete(ctx context.Context, id string) error
}

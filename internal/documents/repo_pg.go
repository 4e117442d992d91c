package documents

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// PGRepo implements DocumentsRepo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

// Create inserts a new document.
func (r *PGRepo) Create(ctx context.Context, doc Document) error {
	const query = `
INSERT INTO documents (id, owner_id, title, content, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.DB.ExecContext(ctx, query,
		doc.ID,
		doc.OwnerID,
		doc.Title,
		doc.Content,
		doc.CreatedAt,
		doc.UpdatedAt,
	)
	return err
}

// ListByOwner returns the owner's documents, most recently updated first.
func (r *PGRepo) ListByOwner(ctx context.Context, ownerID string) ([]Document, error) {
	const query = `
SELECT id, owner_id, title, content, created_at, updated_at
FROM documents
WHERE owner_id = $1
ORDER BY updated_at DESC, created_at DESC`
	rows, err := r.DB.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	docs := make([]Document, 0)
	for rows.Next() {
		var doc Document
		if err := rows.Scan(&doc.ID, &doc.OwnerID, &doc.Title, &doc.Content, &doc.CreatedAt, &doc.UpdatedAt); err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return docs, nil
}

// Update applies a partial update to a document the owner holds.
func (r *PGRepo) Update(ctx context.Context, ownerID, id string, patch Patch) (Document, error) {
	const query = `
UPDATE documents
SET title = COALESCE($3, title),
    content = COALESCE($4, content),
    updated_at = now()
WHERE id = $1 AND owner_id = $2
RETURNING id, owner_id, title, content, created_at, updated_at`
	var doc Document
	err := r.DB.QueryRowContext(ctx, query, id, ownerID, nullablePtr(patch.Title), nullablePtr(patch.Content)).
		Scan(&doc.ID, &doc.OwnerID, &doc.Title, &doc.Content, &doc.CreatedAt, &doc.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Document{}, ErrNotFound
		}
		return Document{}, err
	}
	return doc, nil
}

// Delete removes a document the owner holds.
func (r *PGRepo) Delete(ctx context.Context, ownerID, id string) error {
	const query = `DELETE FROM documents WHERE id = $1 AND owner_id = $2`
	res, err := r.DB.ExecContext(ctx, query, id, ownerID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func nullablePtr(v *string) any {
	if v == nil {
		return nil
	}
	return *v
}

var _ DocumentsRepo = (*PGRepo)(nil)

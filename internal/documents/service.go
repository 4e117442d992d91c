package documents

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"docchat-backend/internal/shared/telemetry"
)

// Service contains business logic for documents.
type Service struct {
	Repo DocumentsRepo
	Now  func() time.Time
}

func NewService(repo DocumentsRepo) *Service {
	return &Service{Repo: repo}
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

// Create records a new empty document with a trimmed title.
func (s *Service) Create(ctx context.Context, ownerID, title string) (Document, error) {
	title = strings.TrimSpace(title)
	if ownerID == "" || title == "" {
		return Document{}, ErrInvalidInput
	}
	now := s.now()
	doc := Document{
		ID:        uuid.NewString(),
		OwnerID:   ownerID,
		Title:     title,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.Repo.Create(ctx, doc); err != nil {
		return Document{}, err
	}
	telemetry.Info("document.created", map[string]any{"user_id": ownerID, "document_id": doc.ID})
	return doc, nil
}

// List returns the owner's documents, most recently updated first.
func (s *Service) List(ctx context.Context, ownerID string) ([]Document, error) {
	if ownerID == "" {
		return nil, ErrInvalidInput
	}
	return s.Repo.ListByOwner(ctx, ownerID)
}

// Update applies a partial update. A provided title must not be blank.
func (s *Service) Update(ctx context.Context, ownerID, id string, patch Patch) (Document, error) {
	if ownerID == "" || id == "" {
		return Document{}, ErrInvalidInput
	}
	if patch.Title != nil {
		trimmed := strings.TrimSpace(*patch.Title)
		if trimmed == "" {
			return Document{}, fmt.Errorf("%w: title cannot be empty", ErrInvalidInput)
		}
		patch.Title = &trimmed
	}
	return s.Repo.Update(ctx, ownerID, id, patch)
}

// Delete removes a document the owner holds.
func (s *Service) Delete(ctx context.Context, ownerID, id string) error {
	if ownerID == "" || id == "" {
		return ErrInvalidInput
	}
	if err := s.Repo.Delete(ctx, ownerID, id); err != nil {
		return err
	}
	telemetry.Info("document.deleted", map[string]any{"user_id": ownerID, "document_id": id})
	return nil
}

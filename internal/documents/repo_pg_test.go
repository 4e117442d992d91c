package documents

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

var docColumns = []string{"id", "owner_id", "title", "content", "created_at", "updated_at"}

func newMockRepo(t *testing.T) (*PGRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return &PGRepo{DB: db}, mock
}

func TestPGRepoCreate(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now().UTC()
	doc := Document{ID: "doc-1", OwnerID: "user-1", Title: "Notes", CreatedAt: now, UpdatedAt: now}

	mock.ExpectExec("INSERT INTO documents").
		WithArgs(doc.ID, doc.OwnerID, doc.Title, "", now, now).
		WillReturnResult(sqlmock.NewResult(1, 1))

	if err := repo.Create(context.Background(), doc); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoListByOwner(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now().UTC()
	mock.ExpectQuery("ORDER BY updated_at DESC").
		WithArgs("user-1").
		WillReturnRows(sqlmock.NewRows(docColumns).
			AddRow("doc-2", "user-1", "B", "", now, now).
			AddRow("doc-1", "user-1", "A", "body", now.Add(-time.Hour), now.Add(-time.Hour)))

	docs, err := repo.ListByOwner(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("ListByOwner: %v", err)
	}
	if len(docs) != 2 || docs[0].ID != "doc-2" || docs[1].Content != "body" {
		t.Fatalf("unexpected docs: %+v", docs)
	}
}

func TestPGRepoListByOwnerEmpty(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectQuery("FROM documents").
		WithArgs("user-1").
		WillReturnRows(sqlmock.NewRows(docColumns))

	docs, err := repo.ListByOwner(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("ListByOwner: %v", err)
	}
	if docs == nil || len(docs) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", docs)
	}
}

func TestPGRepoUpdatePartial(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now().UTC()
	title := "Renamed"
	mock.ExpectQuery("UPDATE documents").
		WithArgs("doc-1", "user-1", title, nil).
		WillReturnRows(sqlmock.NewRows(docColumns).
			AddRow("doc-1", "user-1", title, "kept", now, now))

	doc, err := repo.Update(context.Background(), "user-1", "doc-1", Patch{Title: &title})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if doc.Title != title || doc.Content != "kept" {
		t.Fatalf("unexpected doc: %+v", doc)
	}
}

func TestPGRepoUpdateNotFound(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectQuery("UPDATE documents").
		WillReturnError(sql.ErrNoRows)

	if _, err := repo.Update(context.Background(), "user-1", "doc-x", Patch{}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPGRepoDelete(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectExec("DELETE FROM documents").
		WithArgs("doc-1", "user-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DELETE FROM documents").
		WithArgs("doc-1", "user-1").
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := repo.Delete(context.Background(), "user-1", "doc-1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := repo.Delete(context.Background(), "user-1", "doc-1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

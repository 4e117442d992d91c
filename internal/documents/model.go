package documents

import "time"

// Document is a user-owned note.
type Document struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"owner"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Patch holds the fields of a partial update. Nil fields are left unchanged.
type Patch struct {
	Title   *string
	Content *string
}

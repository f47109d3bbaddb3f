package audit

import (
	"context"

	"github.com/google/uuid"
)

// Recorder defines the interface for writing and reading the audit trail
type Recorder interface {
	// RecordUserEvent appends an entry for a user mutation
	RecordUserEvent(ctx context.Context, action string, userID uuid.UUID, username string) error

	// List returns entries newest first
	List(ctx context.Context, req *ListRequest) ([]*Entry, error)
}

// Store defines the interface for audit persistence
type Store interface {
	CreateEntry(ctx context.Context, entry *Entry) error
	// ListEntries returns entries newest first; a nil userID matches all users
	ListEntries(ctx context.Context, userID uuid.UUID, limit int) ([]*Entry, error)
}

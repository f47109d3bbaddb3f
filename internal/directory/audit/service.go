package audit

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/eion/technotes/internal/zerrors"
)

// recorder implements the Recorder interface
type recorder struct {
	store Store
}

// NewRecorder creates a new audit recorder. It satisfies users.AuditRecorder.
func NewRecorder(store Store) Recorder {
	return &recorder{store: store}
}

// RecordUserEvent appends an audit entry
func (r *recorder) RecordUserEvent(ctx context.Context, action string, userID uuid.UUID, username string) error {
	entry := &Entry{
		ID:        uuid.New(),
		Action:    action,
		UserID:    userID,
		Username:  username,
		Timestamp: time.Now(),
	}
	if err := entry.Validate(); err != nil {
		return zerrors.NewValidationError("invalid audit entry", err)
	}

	if err := r.store.CreateEntry(ctx, entry); err != nil {
		return zerrors.NewInternalError("failed to create audit entry", err)
	}
	return nil
}

// List returns audit entries newest first
func (r *recorder) List(ctx context.Context, req *ListRequest) ([]*Entry, error) {
	if req == nil {
		req = &ListRequest{}
	}
	limit := req.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}

	entries, err := r.store.ListEntries(ctx, req.UserID, limit)
	if err != nil {
		return nil, zerrors.NewInternalError("failed to list audit entries", err)
	}
	return entries, nil
}

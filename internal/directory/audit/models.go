package audit

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// DefaultLimit bounds a listing when the caller gives none
const DefaultLimit = 100

// Entry represents an audit log entry for a user mutation
type Entry struct {
	bun.BaseModel `bun:"table:audit_log,alias:al"`

	ID        uuid.UUID `bun:"id,pk,type:uuid" json:"id"`
	Action    string    `bun:"action,notnull" json:"action"` // e.g. "user.created"
	UserID    uuid.UUID `bun:"user_id,type:uuid,notnull" json:"user_id"`
	Username  string    `bun:"username,notnull" json:"username"`
	Timestamp time.Time `bun:"timestamp,notnull,default:current_timestamp" json:"timestamp"`
}

// Validate validates the audit entry
func (e *Entry) Validate() error {
	if e.Action == "" {
		return fmt.Errorf("action cannot be empty")
	}
	if e.UserID == uuid.Nil {
		return fmt.Errorf("user ID cannot be empty")
	}
	return nil
}

// ListRequest filters an audit listing. A nil UserID lists every user.
type ListRequest struct {
	UserID uuid.UUID
	Limit  int
}

package notes

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/eion/technotes/internal/directory/users"
)

// ErrNoteNotFound is returned by NoteStore when a note does not exist
var ErrNoteNotFound = errors.New("note not found")

// NoteStore defines the interface for note persistence
type NoteStore interface {
	ListNotes(ctx context.Context) ([]*Note, error)
	CreateNote(ctx context.Context, note *Note) error
	DeleteNote(ctx context.Context, id uuid.UUID) error
	UserHasNotes(ctx context.Context, userID uuid.UUID) (bool, error)
}

// UserLookup resolves the user a note is assigned to
type UserLookup interface {
	GetUser(ctx context.Context, id uuid.UUID) (*users.User, error)
}

// NoteManager defines the interface for note operations
type NoteManager interface {
	ListNotes(ctx context.Context) ([]*Note, error)
	CreateNote(ctx context.Context, req *CreateNoteRequest) (*Note, error)
	DeleteNote(ctx context.Context, req *DeleteNoteRequest) error
	UserHasNotes(ctx context.Context, userID uuid.UUID) (bool, error)
}

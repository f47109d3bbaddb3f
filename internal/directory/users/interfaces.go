package users

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var (
	// ErrUserNotFound is the absence marker returned by UserStore lookups
	ErrUserNotFound = errors.New("user not found")
	// ErrDuplicateUsername is returned when the store rejects a username by its unique key
	ErrDuplicateUsername = errors.New("duplicate username")
)

// UserStore defines the interface for user storage operations
type UserStore interface {
	// ListUsers returns every user without the password hash
	ListUsers(ctx context.Context) ([]*User, error)
	GetUser(ctx context.Context, id uuid.UUID) (*User, error)
	// FindUserByUsername matches case- and accent-insensitively
	FindUserByUsername(ctx context.Context, username string) (*User, error)
	// CreateUser assigns the id when it is zero
	CreateUser(ctx context.Context, user *User) error
	SaveUser(ctx context.Context, user *User) error
	DeleteUser(ctx context.Context, id uuid.UUID) error
}

// NoteLookup reports whether any note references a user
type NoteLookup interface {
	UserHasNotes(ctx context.Context, userID uuid.UUID) (bool, error)
}

// PasswordHasher hashes credentials one way
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}

// ListCache caches the user listing under a generation number.
// Invalidate advances the generation, so a listing read from the store
// before a write can only be stored under a generation that is never served.
type ListCache interface {
	// GetUsers returns the listing of the current generation (nil on a miss)
	// and that generation
	GetUsers(ctx context.Context) ([]*User, int64, error)
	// SetUsers stores users for generation
	SetUsers(ctx context.Context, generation int64, users []*User) error
	Invalidate(ctx context.Context) error
}

// AuditRecorder receives successful user mutations
type AuditRecorder interface {
	RecordUserEvent(ctx context.Context, action string, userID uuid.UUID, username string) error
}

// UserManager defines the interface for user directory operations
type UserManager interface {
	ListUsers(ctx context.Context) ([]*User, error)
	GetUser(ctx context.Context, id uuid.UUID) (*User, error)
	CreateUser(ctx context.Context, req *CreateUserRequest) (*User, error)
	UpdateUser(ctx context.Context, req *UpdateUserRequest) (*User, error)
	DeleteUser(ctx context.Context, req *DeleteUserRequest) (*DeleteUserResult, error)
}

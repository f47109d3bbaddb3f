package users

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/eion/technotes/internal/zerrors"
)

// Role is a role identifier from the fixed vocabulary
type Role string

const (
	RoleEmployee Role = "employee"
	RoleViewer   Role = "viewer"
	RoleEditor   Role = "editor"
	RoleManager  Role = "manager"
	RoleAdmin    Role = "admin"
)

// MaxPasswordBytes is the longest password bcrypt accepts
const MaxPasswordBytes = 72

// ValidRoles contains all valid role values
var ValidRoles = map[Role]bool{
	RoleEmployee: true,
	RoleViewer:   true,
	RoleEditor:   true,
	RoleManager:  true,
	RoleAdmin:    true,
}

// IsValid checks if the role belongs to the vocabulary
func (r Role) IsValid() bool {
	return ValidRoles[r]
}

// User represents an account in the directory.
// PasswordHash is never serialized.
type User struct {
	ID           uuid.UUID `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Roles        []Role    `json:"roles"`
	Active       bool      `json:"active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Clone returns a deep copy of the user
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	c := *u
	c.Roles = append([]Role(nil), u.Roles...)
	return &c
}

// Public returns a copy without the password hash
func (u *User) Public() *User {
	c := u.Clone()
	if c != nil {
		c.PasswordHash = ""
	}
	return c
}

// CreateUserRequest represents the request to create a user
type CreateUserRequest struct {
	Username string   `json:"username"`
	Password string   `json:"password"`
	Roles    []string `json:"roles"`
}

// Validate checks the request and returns the normalized roles
func (r *CreateUserRequest) Validate() ([]Role, error) {
	if strings.TrimSpace(r.Username) == "" {
		return nil, zerrors.NewValidationError("username is required", nil)
	}
	if r.Password == "" {
		return nil, zerrors.NewValidationError("password is required", nil)
	}
	if len(r.Password) > MaxPasswordBytes {
		return nil, zerrors.NewValidationError("password is too long", nil)
	}
	return parseRoles(r.Roles)
}

// UpdateUserRequest represents the request to update a user.
// An empty Password keeps the stored hash.
type UpdateUserRequest struct {
	ID       string   `json:"id"`
	Username string   `json:"username"`
	Roles    []string `json:"roles"`
	Active   *bool    `json:"active"`
	Password string   `json:"password,omitempty"`
}

// Validate checks the request and returns the parsed id and normalized roles
func (r *UpdateUserRequest) Validate() (uuid.UUID, []Role, error) {
	id, err := parseID(r.ID)
	if err != nil {
		return uuid.Nil, nil, err
	}
	if strings.TrimSpace(r.Username) == "" {
		return uuid.Nil, nil, zerrors.NewValidationError("username is required", nil)
	}
	if r.Active == nil {
		return uuid.Nil, nil, zerrors.NewValidationError("active is required", nil)
	}
	if len(r.Password) > MaxPasswordBytes {
		return uuid.Nil, nil, zerrors.NewValidationError("password is too long", nil)
	}
	roles, err := parseRoles(r.Roles)
	if err != nil {
		return uuid.Nil, nil, err
	}
	return id, roles, nil
}

// DeleteUserRequest represents the request to delete a user
type DeleteUserRequest struct {
	ID string `json:"id"`
}

// Validate checks the request and returns the parsed id
func (r *DeleteUserRequest) Validate() (uuid.UUID, error) {
	return parseID(r.ID)
}

// DeleteUserResult describes the outcome of a delete.
// Deleted is false when the user did not exist, which is not an error.
type DeleteUserResult struct {
	Deleted  bool      `json:"deleted"`
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username,omitempty"`
}

// Message returns the confirmation text for the caller
func (r *DeleteUserResult) Message() string {
	if !r.Deleted {
		return "User not found"
	}
	return fmt.Sprintf("Username %s with ID %s deleted", r.Username, r.ID)
}

func parseID(raw string) (uuid.UUID, error) {
	if strings.TrimSpace(raw) == "" {
		return uuid.Nil, zerrors.NewValidationError("User ID required", nil)
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, zerrors.NewValidationError("User ID is malformed", err)
	}
	return id, nil
}

// parseRoles requires at least one role, rejects unknown ones and collapses duplicates
func parseRoles(raw []string) ([]Role, error) {
	if len(raw) == 0 {
		return nil, zerrors.NewValidationError("at least one role is required", nil)
	}

	seen := make(map[Role]bool, len(raw))
	roles := make([]Role, 0, len(raw))
	for _, r := range raw {
		role := Role(strings.ToLower(strings.TrimSpace(r)))
		if !role.IsValid() {
			return nil, zerrors.NewValidationError(fmt.Sprintf("unknown role: %q", r), nil)
		}
		if seen[role] {
			continue
		}
		seen[role] = true
		roles = append(roles, role)
	}
	return roles, nil
}

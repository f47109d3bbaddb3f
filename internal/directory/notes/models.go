package notes

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/eion/technotes/internal/zerrors"
)

// Note is a record assigned to a user. User is a weak reference: the note
// never owns or cascades to the user.
type Note struct {
	ID        uuid.UUID `json:"id"`
	User      uuid.UUID `json:"user"`
	Title     string    `json:"title"`
	Text      string    `json:"text"`
	Completed bool      `json:"completed"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CreateNoteRequest represents the request to create a note
type CreateNoteRequest struct {
	User  string `json:"user"`
	Title string `json:"title"`
	Text  string `json:"text"`
}

// Validate checks the request and returns the parsed user id
func (r *CreateNoteRequest) Validate() (uuid.UUID, error) {
	if strings.TrimSpace(r.User) == "" || strings.TrimSpace(r.Title) == "" || strings.TrimSpace(r.Text) == "" {
		return uuid.Nil, zerrors.NewValidationError("user, title and text are required", nil)
	}
	userID, err := uuid.Parse(r.User)
	if err != nil {
		return uuid.Nil, zerrors.NewValidationError("user is malformed", err)
	}
	return userID, nil
}

// DeleteNoteRequest represents the request to delete a note
type DeleteNoteRequest struct {
	ID string `json:"id"`
}

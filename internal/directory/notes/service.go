package notes

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/eion/technotes/internal/directory/users"
	"github.com/eion/technotes/internal/zerrors"
)

// Service implements the NoteManager interface
type Service struct {
	store  NoteStore
	users  UserLookup
	logger *zap.Logger
}

// NewService creates a new note service
func NewService(store NoteStore, users UserLookup, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		store:  store,
		users:  users,
		logger: logger,
	}
}

// ListNotes returns every note, newest first
func (s *Service) ListNotes(ctx context.Context) ([]*Note, error) {
	notes, err := s.store.ListNotes(ctx)
	if err != nil {
		return nil, zerrors.NewInternalError("failed to list notes", err)
	}
	return notes, nil
}

// CreateNote assigns a new note to an existing user
func (s *Service) CreateNote(ctx context.Context, req *CreateNoteRequest) (*Note, error) {
	if req == nil {
		return nil, zerrors.NewValidationError("request cannot be nil", nil)
	}
	userID, err := req.Validate()
	if err != nil {
		return nil, err
	}

	if _, err := s.users.GetUser(ctx, userID); err != nil {
		if errors.Is(err, users.ErrUserNotFound) {
			return nil, zerrors.NewNotFoundError("User not found")
		}
		return nil, zerrors.NewInternalError("failed to get user", err)
	}

	note := &Note{
		User:  userID,
		Title: req.Title,
		Text:  req.Text,
	}
	if err := s.store.CreateNote(ctx, note); err != nil {
		return nil, zerrors.NewInternalError("failed to create note", err)
	}

	s.logger.Debug("Note created",
		zap.String("note_id", note.ID.String()),
		zap.String("user_id", userID.String()))
	return note, nil
}

// DeleteNote removes a note by id
func (s *Service) DeleteNote(ctx context.Context, req *DeleteNoteRequest) error {
	if req == nil || req.ID == "" {
		return zerrors.NewValidationError("Note ID required", nil)
	}
	id, err := uuid.Parse(req.ID)
	if err != nil {
		return zerrors.NewValidationError("Note ID is malformed", err)
	}

	if err := s.store.DeleteNote(ctx, id); err != nil {
		if errors.Is(err, ErrNoteNotFound) {
			return zerrors.NewNotFoundError("Note not found")
		}
		return zerrors.NewInternalError("failed to delete note", err)
	}
	return nil
}

// UserHasNotes satisfies users.NoteLookup
func (s *Service) UserHasNotes(ctx context.Context, userID uuid.UUID) (bool, error) {
	return s.store.UserHasNotes(ctx, userID)
}

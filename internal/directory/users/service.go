package users

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/eion/technotes/internal/zerrors"
)

// Audit actions recorded for user mutations
const (
	ActionUserCreated = "user.created"
	ActionUserUpdated = "user.updated"
	ActionUserDeleted = "user.deleted"
)

const msgDuplicateUsername = "Duplicate Username"

// Service implements the UserManager interface
type Service struct {
	store  UserStore
	notes  NoteLookup
	hasher PasswordHasher
	cache  ListCache
	audit  AuditRecorder
	logger *zap.Logger
}

// Option configures optional collaborators of the Service
type Option func(*Service)

// WithCache enables the list cache
func WithCache(cache ListCache) Option {
	return func(s *Service) { s.cache = cache }
}

// WithAuditRecorder records every successful mutation
func WithAuditRecorder(audit AuditRecorder) Option {
	return func(s *Service) { s.audit = audit }
}

// WithLogger sets the logger for cache and audit failures
func WithLogger(logger *zap.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// NewService creates a new user service
func NewService(store UserStore, notes NoteLookup, hasher PasswordHasher, opts ...Option) *Service {
	s := &Service{
		store:  store,
		notes:  notes,
		hasher: hasher,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ListUsers returns every user without password hashes.
// An empty directory is reported as NotFound.
func (s *Service) ListUsers(ctx context.Context) ([]*User, error) {
	// the generation is read before the store so a concurrent write
	// invalidates whatever this call caches
	cacheable := false
	var generation int64
	if s.cache != nil {
		cached, gen, err := s.cache.GetUsers(ctx)
		if err != nil {
			s.logger.Warn("User list cache read failed", zap.Error(err))
		} else if len(cached) > 0 {
			return cached, nil
		} else {
			cacheable = true
			generation = gen
		}
	}

	users, err := s.store.ListUsers(ctx)
	if err != nil {
		return nil, zerrors.NewInternalError("failed to list users", err)
	}
	if len(users) == 0 {
		return nil, zerrors.NewNotFoundError("No users found")
	}

	public := make([]*User, 0, len(users))
	for _, u := range users {
		public = append(public, u.Public())
	}

	if cacheable {
		if err := s.cache.SetUsers(ctx, generation, public); err != nil {
			s.logger.Warn("User list cache write failed", zap.Error(err))
		}
	}

	return public, nil
}

// GetUser retrieves a user by id, password hash removed
func (s *Service) GetUser(ctx context.Context, id uuid.UUID) (*User, error) {
	user, err := s.store.GetUser(ctx, id)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, zerrors.NewNotFoundError("User not found")
		}
		return nil, zerrors.NewInternalError("failed to get user", err)
	}
	return user.Public(), nil
}

// CreateUser validates the request, rejects duplicate usernames and stores a new active user
func (s *Service) CreateUser(ctx context.Context, req *CreateUserRequest) (*User, error) {
	if req == nil {
		return nil, zerrors.NewValidationError("request cannot be nil", nil)
	}
	roles, err := req.Validate()
	if err != nil {
		return nil, err
	}

	if err := s.checkDuplicate(ctx, req.Username, uuid.Nil); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, zerrors.NewInternalError("failed to hash password", err)
	}

	user := &User{
		Username:     req.Username,
		PasswordHash: hash,
		Roles:        roles,
		Active:       true,
	}
	if err := s.store.CreateUser(ctx, user); err != nil {
		if errors.Is(err, ErrDuplicateUsername) {
			return nil, zerrors.NewConflictError(msgDuplicateUsername, err)
		}
		return nil, zerrors.NewInternalError("failed to create user", err)
	}

	s.afterWrite(ctx, ActionUserCreated, user)
	return user.Public(), nil
}

// UpdateUser overwrites username, roles and active; the password hash only
// changes when a new password is supplied.
func (s *Service) UpdateUser(ctx context.Context, req *UpdateUserRequest) (*User, error) {
	if req == nil {
		return nil, zerrors.NewValidationError("request cannot be nil", nil)
	}
	id, roles, err := req.Validate()
	if err != nil {
		return nil, err
	}

	user, err := s.store.GetUser(ctx, id)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, zerrors.NewNotFoundError("User not found")
		}
		return nil, zerrors.NewInternalError("failed to get user", err)
	}

	if err := s.checkDuplicate(ctx, req.Username, user.ID); err != nil {
		return nil, err
	}

	user.Username = req.Username
	user.Roles = roles
	user.Active = *req.Active

	if req.Password != "" {
		hash, err := s.hasher.Hash(req.Password)
		if err != nil {
			return nil, zerrors.NewInternalError("failed to hash password", err)
		}
		user.PasswordHash = hash
	}

	if err := s.store.SaveUser(ctx, user); err != nil {
		switch {
		case errors.Is(err, ErrDuplicateUsername):
			return nil, zerrors.NewConflictError(msgDuplicateUsername, err)
		case errors.Is(err, ErrUserNotFound):
			return nil, zerrors.NewNotFoundError("User not found")
		}
		return nil, zerrors.NewInternalError("failed to update user", err)
	}

	s.afterWrite(ctx, ActionUserUpdated, user)
	return user.Public(), nil
}

// DeleteUser removes a user that owns no notes. Deleting an unknown id is
// not an error: the result reports Deleted=false.
func (s *Service) DeleteUser(ctx context.Context, req *DeleteUserRequest) (*DeleteUserResult, error) {
	if req == nil {
		return nil, zerrors.NewValidationError("request cannot be nil", nil)
	}
	id, err := req.Validate()
	if err != nil {
		return nil, err
	}

	hasNotes, err := s.notes.UserHasNotes(ctx, id)
	if err != nil {
		return nil, zerrors.NewInternalError("failed to check assigned notes", err)
	}
	if hasNotes {
		return nil, zerrors.NewConflictError("User has assigned notes", nil)
	}

	user, err := s.store.GetUser(ctx, id)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return &DeleteUserResult{ID: id}, nil
		}
		return nil, zerrors.NewInternalError("failed to get user", err)
	}

	if err := s.store.DeleteUser(ctx, id); err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return &DeleteUserResult{ID: id}, nil
		}
		return nil, zerrors.NewInternalError("failed to delete user", err)
	}

	s.afterWrite(ctx, ActionUserDeleted, user)
	return &DeleteUserResult{
		Deleted:  true,
		ID:       user.ID,
		Username: user.Username,
	}, nil
}

// checkDuplicate rejects username when it folds to the key of a user other than self
func (s *Service) checkDuplicate(ctx context.Context, username string, self uuid.UUID) error {
	existing, err := s.store.FindUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil
		}
		return zerrors.NewInternalError("failed to check duplicate username", err)
	}
	if existing.ID != self {
		return zerrors.NewConflictError(msgDuplicateUsername, nil)
	}
	return nil
}

func (s *Service) afterWrite(ctx context.Context, action string, user *User) {
	if s.cache != nil {
		if err := s.cache.Invalidate(ctx); err != nil {
			s.logger.Warn("User list cache invalidation failed", zap.Error(err))
		}
	}

	if s.audit != nil {
		if err := s.audit.RecordUserEvent(ctx, action, user.ID, user.Username); err != nil {
			s.logger.Error("Failed to record user audit event",
				zap.String("action", action),
				zap.String("user_id", user.ID.String()),
				zap.Error(err))
		}
	}
}

package directory

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
	"go.uber.org/zap"

	"github.com/eion/technotes/internal/directory/audit"
	"github.com/eion/technotes/internal/directory/notes"
	"github.com/eion/technotes/internal/directory/users"
	"github.com/eion/technotes/internal/zerrors"
)

// Stores groups the persistence backends of the directory
type Stores struct {
	Users users.UserStore
	Notes notes.NoteStore
	Audit audit.Store
}

// NewPostgresStores returns bun-backed stores sharing db
func NewPostgresStores(db *bun.DB) Stores {
	return Stores{
		Users: users.NewPostgresStore(db),
		Notes: notes.NewPostgresStore(db),
		Audit: audit.NewPostgresStore(db),
	}
}

// NewMemoryStores returns process-local stores
func NewMemoryStores() Stores {
	return Stores{
		Users: users.NewInMemoryStore(),
		Notes: notes.NewInMemoryStore(),
		Audit: audit.NewInMemoryStore(),
	}
}

// Directory wires the user, note and audit services together
type Directory struct {
	Users *users.Service
	Notes *notes.Service
	Audit audit.Recorder
}

// New builds the services over stores. cache may be nil.
func New(stores Stores, hasher users.PasswordHasher, cache users.ListCache, logger *zap.Logger) (*Directory, error) {
	if stores.Users == nil || stores.Notes == nil || stores.Audit == nil {
		return nil, fmt.Errorf("all stores are required")
	}
	if hasher == nil {
		return nil, fmt.Errorf("password hasher cannot be nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	noteSvc := notes.NewService(stores.Notes, stores.Users, logger.Named("notes"))
	recorder := audit.NewRecorder(stores.Audit)

	opts := []users.Option{
		users.WithAuditRecorder(recorder),
		users.WithLogger(logger.Named("users")),
	}
	if cache != nil {
		opts = append(opts, users.WithCache(cache))
	}

	return &Directory{
		Users: users.NewService(stores.Users, noteSvc, hasher, opts...),
		Notes: noteSvc,
		Audit: recorder,
	}, nil
}

// BootstrapAdmin is the account created on an empty directory
type BootstrapAdmin struct {
	Username string
	Password string
}

// SetupDefaults creates the bootstrap admin when the directory has no users.
// It is a no-op when admin is unset or any user already exists.
func SetupDefaults(ctx context.Context, userService users.UserManager, admin BootstrapAdmin, logger *zap.Logger) error {
	if admin.Username == "" || admin.Password == "" {
		return nil
	}

	_, err := userService.ListUsers(ctx)
	if err == nil {
		return nil
	}
	if !zerrors.IsNotFound(err) {
		return fmt.Errorf("failed to inspect directory: %w", err)
	}

	created, err := userService.CreateUser(ctx, &users.CreateUserRequest{
		Username: admin.Username,
		Password: admin.Password,
		Roles:    []string{string(users.RoleAdmin)},
	})
	if err != nil {
		return fmt.Errorf("failed to create bootstrap admin: %w", err)
	}

	if logger != nil {
		logger.Info("Bootstrap admin created",
			zap.String("user_id", created.ID.String()),
			zap.String("username", created.Username))
	}
	return nil
}

package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// pgUniqueViolation is the SQLSTATE for unique_violation
const pgUniqueViolation = "23505"

// UserSchema represents the users table schema in PostgreSQL.
// username_ci holds FoldUsername(username) and carries the unique index
// that makes the directory safe against concurrent duplicate writes.
type UserSchema struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID         uuid.UUID `bun:"id,pk,type:uuid" json:"id"`
	Username   string    `bun:"username,notnull" json:"username"`
	UsernameCI string    `bun:"username_ci,notnull,unique" json:"-"`
	Password   string    `bun:"password,notnull" json:"-"`
	Roles      []string  `bun:"roles,array,notnull" json:"roles"`
	Active     bool      `bun:"active,notnull" json:"active"`
	CreatedAt  time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt  time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp" json:"updated_at"`
}

// PostgresStore implements the UserStore interface
type PostgresStore struct {
	db *bun.DB
}

// NewPostgresStore creates a new user store instance
func NewPostgresStore(db *bun.DB) *PostgresStore {
	return &PostgresStore{
		db: db,
	}
}

// ListUsers returns all users ordered by creation, password column excluded
func (s *PostgresStore) ListUsers(ctx context.Context) ([]*User, error) {
	var schemas []UserSchema
	err := s.db.NewSelect().
		Model(&schemas).
		ExcludeColumn("password").
		Order("created_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	users := make([]*User, 0, len(schemas))
	for _, schema := range schemas {
		users = append(users, UserSchemaToUser(schema))
	}
	return users, nil
}

// GetUser retrieves a user by id
func (s *PostgresStore) GetUser(ctx context.Context, id uuid.UUID) (*User, error) {
	var schema UserSchema
	err := s.db.NewSelect().
		Model(&schema).
		Where("id = ?", id).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return UserSchemaToUser(schema), nil
}

// FindUserByUsername looks a user up by the folded username
func (s *PostgresStore) FindUserByUsername(ctx context.Context, username string) (*User, error) {
	var schema UserSchema
	err := s.db.NewSelect().
		Model(&schema).
		Where("username_ci = ?", FoldUsername(username)).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user by username: %w", err)
	}
	return UserSchemaToUser(schema), nil
}

// CreateUser inserts a new user, assigning its id and timestamps
func (s *PostgresStore) CreateUser(ctx context.Context, user *User) error {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now

	schema := UserToUserSchema(user)
	_, err := s.db.NewInsert().
		Model(&schema).
		Exec(ctx)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateUsername
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// SaveUser overwrites the stored user with the same id
func (s *PostgresStore) SaveUser(ctx context.Context, user *User) error {
	user.UpdatedAt = time.Now()

	schema := UserToUserSchema(user)
	result, err := s.db.NewUpdate().
		Model(&schema).
		ExcludeColumn("created_at").
		WherePK().
		Exec(ctx)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateUsername
		}
		return fmt.Errorf("failed to save user: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

// DeleteUser permanently removes a user
func (s *PostgresStore) DeleteUser(ctx context.Context, id uuid.UUID) error {
	result, err := s.db.NewDelete().
		Model((*UserSchema)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

// isUniqueViolation recognizes pgdriver errors by SQLSTATE, with a message fallback
func isUniqueViolation(err error) bool {
	var pgErr interface{ Field(byte) string }
	if errors.As(err, &pgErr) && pgErr.Field('C') == pgUniqueViolation {
		return true
	}
	return strings.Contains(err.Error(), "duplicate key value violates unique constraint")
}

// Helper conversion functions
func UserSchemaToUser(schema UserSchema) *User {
	roles := make([]Role, 0, len(schema.Roles))
	for _, r := range schema.Roles {
		roles = append(roles, Role(r))
	}

	return &User{
		ID:           schema.ID,
		Username:     schema.Username,
		PasswordHash: schema.Password,
		Roles:        roles,
		Active:       schema.Active,
		CreatedAt:    schema.CreatedAt,
		UpdatedAt:    schema.UpdatedAt,
	}
}

func UserToUserSchema(user *User) UserSchema {
	roles := make([]string, 0, len(user.Roles))
	for _, r := range user.Roles {
		roles = append(roles, string(r))
	}

	return UserSchema{
		ID:         user.ID,
		Username:   user.Username,
		UsernameCI: FoldUsername(user.Username),
		Password:   user.PasswordHash,
		Roles:      roles,
		Active:     user.Active,
		CreatedAt:  user.CreatedAt,
		UpdatedAt:  user.UpdatedAt,
	}
}

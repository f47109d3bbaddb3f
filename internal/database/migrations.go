package database

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"

	"github.com/eion/technotes/internal/directory/audit"
	"github.com/eion/technotes/internal/directory/notes"
	"github.com/eion/technotes/internal/directory/users"
)

// The unique constraint on users.username_ci comes from the schema tag.
var UserIndexes = []string{
	"CREATE INDEX IF NOT EXISTS idx_users_created_at ON users(created_at)",
}

var NoteIndexes = []string{
	"CREATE INDEX IF NOT EXISTS idx_notes_user_id ON notes(user_id)",
	"CREATE INDEX IF NOT EXISTS idx_notes_created_at ON notes(created_at DESC)",
}

var AuditIndexes = []string{
	"CREATE INDEX IF NOT EXISTS idx_audit_log_user_id ON audit_log(user_id)",
	"CREATE INDEX IF NOT EXISTS idx_audit_log_timestamp ON audit_log(timestamp DESC)",
}

// CreateTables creates all tables used by the directory
func CreateTables(ctx context.Context, db *bun.DB) error {
	models := []interface{}{
		(*users.UserSchema)(nil),
		(*notes.NoteSchema)(nil),
		(*audit.Entry)(nil),
	}

	for _, model := range models {
		_, err := db.NewCreateTable().
			Model(model).
			IfNotExists().
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to create table for model %T: %w", model, err)
		}
	}

	return nil
}

// CreateIndexes creates all secondary indexes
func CreateIndexes(ctx context.Context, db *bun.DB) error {
	allIndexes := append([]string{}, UserIndexes...)
	allIndexes = append(allIndexes, NoteIndexes...)
	allIndexes = append(allIndexes, AuditIndexes...)

	for _, indexSQL := range allIndexes {
		if _, err := db.ExecContext(ctx, indexSQL); err != nil {
			return fmt.Errorf("failed to create index with SQL %q: %w", indexSQL, err)
		}
	}

	return nil
}

// Migrate creates tables then indexes. Safe to run on every start.
func Migrate(ctx context.Context, db *bun.DB) error {
	if err := CreateTables(ctx, db); err != nil {
		return err
	}
	return CreateIndexes(ctx, db)
}

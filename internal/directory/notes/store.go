package notes

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// NoteSchema represents the notes table schema in PostgreSQL
type NoteSchema struct {
	bun.BaseModel `bun:"table:notes,alias:n"`

	ID        uuid.UUID `bun:"id,pk,type:uuid" json:"id"`
	UserID    uuid.UUID `bun:"user_id,type:uuid,notnull" json:"user"`
	Title     string    `bun:"title,notnull" json:"title"`
	Text      string    `bun:"text,notnull" json:"text"`
	Completed bool      `bun:"completed,notnull,default:false" json:"completed"`
	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp" json:"updated_at"`
}

// PostgresStore implements the NoteStore interface
type PostgresStore struct {
	db *bun.DB
}

// NewPostgresStore creates a new note store instance
func NewPostgresStore(db *bun.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// ListNotes returns all notes, newest first
func (s *PostgresStore) ListNotes(ctx context.Context) ([]*Note, error) {
	var schemas []NoteSchema
	err := s.db.NewSelect().
		Model(&schemas).
		Order("created_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list notes: %w", err)
	}

	notes := make([]*Note, 0, len(schemas))
	for _, schema := range schemas {
		notes = append(notes, NoteSchemaToNote(schema))
	}
	return notes, nil
}

// CreateNote inserts a note, assigning its id and timestamps
func (s *PostgresStore) CreateNote(ctx context.Context, note *Note) error {
	if note.ID == uuid.Nil {
		note.ID = uuid.New()
	}
	now := time.Now()
	note.CreatedAt = now
	note.UpdatedAt = now

	schema := NoteToNoteSchema(note)
	if _, err := s.db.NewInsert().Model(&schema).Exec(ctx); err != nil {
		return fmt.Errorf("failed to create note: %w", err)
	}
	return nil
}

// DeleteNote permanently removes a note
func (s *PostgresStore) DeleteNote(ctx context.Context, id uuid.UUID) error {
	result, err := s.db.NewDelete().
		Model((*NoteSchema)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete note: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrNoteNotFound
	}
	return nil
}

// UserHasNotes reports whether at least one note references userID
func (s *PostgresStore) UserHasNotes(ctx context.Context, userID uuid.UUID) (bool, error) {
	exists, err := s.db.NewSelect().
		Model((*NoteSchema)(nil)).
		Where("user_id = ?", userID).
		Exists(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to check user notes: %w", err)
	}
	return exists, nil
}

func NoteSchemaToNote(schema NoteSchema) *Note {
	return &Note{
		ID:        schema.ID,
		User:      schema.UserID,
		Title:     schema.Title,
		Text:      schema.Text,
		Completed: schema.Completed,
		CreatedAt: schema.CreatedAt,
		UpdatedAt: schema.UpdatedAt,
	}
}

func NoteToNoteSchema(note *Note) NoteSchema {
	return NoteSchema{
		ID:        note.ID,
		UserID:    note.User,
		Title:     note.Title,
		Text:      note.Text,
		Completed: note.Completed,
		CreatedAt: note.CreatedAt,
		UpdatedAt: note.UpdatedAt,
	}
}

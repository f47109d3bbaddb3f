package audit

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eion/technotes/internal/directory/users"
	"github.com/eion/technotes/internal/zerrors"
)

var _ users.AuditRecorder = NewRecorder(nil)

type failingStore struct{}

func (failingStore) CreateEntry(context.Context, *Entry) error { return errors.New("disk full") }

func (failingStore) ListEntries(context.Context, uuid.UUID, int) ([]*Entry, error) {
	return nil, errors.New("disk full")
}

func TestRecorder_RecordAndList(t *testing.T) {
	rec := NewRecorder(NewInMemoryStore())
	ctx := context.Background()

	alice, bob := uuid.New(), uuid.New()
	require.NoError(t, rec.RecordUserEvent(ctx, users.ActionUserCreated, alice, "alice"))
	require.NoError(t, rec.RecordUserEvent(ctx, users.ActionUserCreated, bob, "bob"))
	require.NoError(t, rec.RecordUserEvent(ctx, users.ActionUserUpdated, alice, "alice2"))

	all, err := rec.List(ctx, nil)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, users.ActionUserUpdated, all[0].Action)

	onlyAlice, err := rec.List(ctx, &ListRequest{UserID: alice})
	require.NoError(t, err)
	assert.Len(t, onlyAlice, 2)

	limited, err := rec.List(ctx, &ListRequest{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestRecorder_Validation(t *testing.T) {
	rec := NewRecorder(NewInMemoryStore())

	err := rec.RecordUserEvent(context.Background(), "", uuid.New(), "x")
	assert.True(t, zerrors.IsInvalidInput(err))

	err = rec.RecordUserEvent(context.Background(), users.ActionUserDeleted, uuid.Nil, "x")
	assert.True(t, zerrors.IsInvalidInput(err))
}

func TestRecorder_StoreFailure(t *testing.T) {
	rec := NewRecorder(failingStore{})

	err := rec.RecordUserEvent(context.Background(), users.ActionUserCreated, uuid.New(), "x")
	assert.Equal(t, zerrors.KindInternal, zerrors.KindOf(err))

	_, err = rec.List(context.Background(), nil)
	assert.Equal(t, zerrors.KindInternal, zerrors.KindOf(err))
}

func TestRecorder_WiredIntoUserService(t *testing.T) {
	store := NewInMemoryStore()
	rec := NewRecorder(store)
	ctx := context.Background()

	svc := users.NewService(users.NewInMemoryStore(), noNotes{}, users.NewBcryptHasher(4), users.WithAuditRecorder(rec))
	created, err := svc.CreateUser(ctx, &users.CreateUserRequest{Username: "grace", Password: "pw", Roles: []string{"admin"}})
	require.NoError(t, err)

	entries, err := rec.List(ctx, &ListRequest{UserID: created.ID})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "grace", entries[0].Username)
}

type noNotes struct{}

func (noNotes) UserHasNotes(context.Context, uuid.UUID) (bool, error) { return false, nil }

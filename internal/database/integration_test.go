//go:build integration

package database_test

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/uptrace/bun"

	"github.com/eion/technotes/internal/database"
	"github.com/eion/technotes/internal/directory/audit"
	"github.com/eion/technotes/internal/directory/notes"
	"github.com/eion/technotes/internal/directory/users"
	"github.com/eion/technotes/internal/zerrors"
)

var dsn string

func TestMain(m *testing.M) {
	ctx := context.Background()
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: tc.ContainerRequest{
			Image:        "postgres:15-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "postgres",
				"POSTGRES_PASSWORD": "password",
				"POSTGRES_DB":       "technotes_test",
			},
			WaitingFor: wait.ForListeningPort("5432/tcp").WithStartupTimeout(2 * time.Minute),
		},
		Started: true,
	})
	if err != nil {
		panic(err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		panic(err)
	}
	port, err := container.MappedPort(ctx, "5432")
	if err != nil {
		panic(err)
	}
	dsn = fmt.Sprintf("postgres://postgres:password@%s:%s/technotes_test?sslmode=disable", host, port.Port())

	code := m.Run()
	_ = container.Terminate(ctx)
	os.Exit(code)
}

func TestDirectory_Postgres(t *testing.T) {
	ctx := context.Background()

	var (
		bunDB *bun.DB
		err   error
	)
	// the container accepts connections slightly after the port opens
	for i := 0; i < 10; i++ {
		if bunDB, err = database.Open(ctx, dsn, 4); err == nil {
			break
		}
		time.Sleep(500 * time.Millisecond)
	}
	require.NoError(t, err)
	t.Cleanup(func() { _ = bunDB.Close() })

	require.NoError(t, database.Migrate(ctx, bunDB))
	require.NoError(t, database.Migrate(ctx, bunDB), "migrations must be idempotent")

	userStore := users.NewPostgresStore(bunDB)
	noteStore := notes.NewPostgresStore(bunDB)
	noteSvc := notes.NewService(noteStore, userStore, nil)
	rec := audit.NewRecorder(audit.NewPostgresStore(bunDB))
	userSvc := users.NewService(userStore, noteSvc, users.NewBcryptHasher(4), users.WithAuditRecorder(rec))

	t.Run("unique folded username", func(t *testing.T) {
		_, err := userSvc.CreateUser(ctx, &users.CreateUserRequest{Username: "Renée", Password: "pw", Roles: []string{"editor"}})
		require.NoError(t, err)

		err = userStore.CreateUser(ctx, &users.User{Username: "RENEE", PasswordHash: "x", Roles: []users.Role{users.RoleEditor}, Active: true})
		assert.ErrorIs(t, err, users.ErrDuplicateUsername)
	})

	t.Run("notes block deletion", func(t *testing.T) {
		owner, err := userSvc.CreateUser(ctx, &users.CreateUserRequest{Username: "owner", Password: "pw", Roles: []string{"employee"}})
		require.NoError(t, err)

		note, err := noteSvc.CreateNote(ctx, &notes.CreateNoteRequest{User: owner.ID.String(), Title: "t", Text: "x"})
		require.NoError(t, err)

		_, err = userSvc.DeleteUser(ctx, &users.DeleteUserRequest{ID: owner.ID.String()})
		assert.True(t, zerrors.IsConflict(err))

		require.NoError(t, noteSvc.DeleteNote(ctx, &notes.DeleteNoteRequest{ID: note.ID.String()}))
		res, err := userSvc.DeleteUser(ctx, &users.DeleteUserRequest{ID: owner.ID.String()})
		require.NoError(t, err)
		assert.True(t, res.Deleted)
	})

	t.Run("audit trail", func(t *testing.T) {
		entries, err := rec.List(ctx, nil)
		require.NoError(t, err)
		require.NotEmpty(t, entries)
		assert.Equal(t, users.ActionUserDeleted, entries[0].Action)
	})

	t.Run("list excludes password", func(t *testing.T) {
		list, err := userSvc.ListUsers(ctx)
		require.NoError(t, err)
		for _, u := range list {
			assert.Empty(t, u.PasswordHash)
		}
	})

	t.Run("unknown delete", func(t *testing.T) {
		res, err := userSvc.DeleteUser(ctx, &users.DeleteUserRequest{ID: uuid.NewString()})
		require.NoError(t, err)
		assert.False(t, res.Deleted)
	})
}

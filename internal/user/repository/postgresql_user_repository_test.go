package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/healthtracker/backend/internal/user/domain"
)

func TestPostgreSQLUserRepository_Create(t *testing.T) {
	ctx := context.Background()

	user := &domain.User{
		ID:           uuid.Must(uuid.NewV7()),
		Name:         "Alice Example",
		Email:        "alice@example.com",
		PasswordHash: "$argon2id$v=19$m=65536,t=2,p=1$...",
	}

	t.Run("creates a user", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer func() { _ = db.Close() }()

		mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO users`)).
			WithArgs(user.ID, user.Name, user.Email, user.PasswordHash).
			WillReturnResult(sqlmock.NewResult(0, 1))

		repo := NewPostgreSQLUserRepository(db)
		require.NoError(t, repo.Create(ctx, user))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("duplicate email", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer func() { _ = db.Close() }()

		mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO users`)).
			WillReturnError(errors.New(`pq: duplicate key value violates unique constraint "users_email_key"`))

		repo := NewPostgreSQLUserRepository(db)
		err = repo.Create(ctx, user)
		assert.ErrorIs(t, err, domain.ErrUserAlreadyExists)
	})
}

func TestPostgreSQLUserRepository_GetByEmail(t *testing.T) {
	ctx := context.Background()
	columns := []string{"id", "name", "email", "password_hash", "created_at", "updated_at"}

	t.Run("returns the user", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer func() { _ = db.Close() }()

		id := uuid.Must(uuid.NewV7())
		now := time.Now()

		mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, name, email, password_hash, created_at, updated_at`)).
			WithArgs("alice@example.com").
			WillReturnRows(sqlmock.NewRows(columns).
				AddRow(id, "Alice Example", "alice@example.com", "hash", now, now))

		repo := NewPostgreSQLUserRepository(db)
		user, err := repo.GetByEmail(ctx, "alice@example.com")
		require.NoError(t, err)
		assert.Equal(t, id, user.ID)
		assert.Equal(t, "alice@example.com", user.Email)
	})

	t.Run("not found", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer func() { _ = db.Close() }()

		mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, name, email, password_hash, created_at, updated_at`)).
			WithArgs("nobody@example.com").
			WillReturnRows(sqlmock.NewRows(columns))

		repo := NewPostgreSQLUserRepository(db)
		_, err = repo.GetByEmail(ctx, "nobody@example.com")
		assert.ErrorIs(t, err, domain.ErrUserNotFound)
	})
}

func TestPostgreSQLUserRepository_GetByID(t *testing.T) {
	ctx := context.Background()
	columns := []string{"id", "name", "email", "password_hash", "created_at", "updated_at"}

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	id := uuid.Must(uuid.NewV7())
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, name, email, password_hash, created_at, updated_at`)).
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows(columns).
			AddRow(id, "Alice Example", "alice@example.com", "hash", now, now))

	repo := NewPostgreSQLUserRepository(db)
	user, err := repo.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Alice Example", user.Name)
}

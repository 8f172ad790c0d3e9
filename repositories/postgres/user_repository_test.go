package postgres

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/fintrack/finance-tracker/models"
	"github.com/fintrack/finance-tracker/repositories"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newMockDB(t *testing.T) (*DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return Wrap(sqlDB, zap.NewNop()), mock
}

func userRow(u *models.User) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "email", "password_hash", "first_name", "last_name", "currency", "active", "created_at", "updated_at",
	}).AddRow(u.ID.String(), u.Email, u.PasswordHash, u.FirstName, u.LastName, u.Currency, u.Active, u.CreatedAt, u.UpdatedAt)
}

func TestUserRepository_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("inserts user", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewUserRepository(db, zap.NewNop())
		user := models.NewUser("a@x.com", "$2a$04$hash", "Ann", "Lee", "")

		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO users")).
			WithArgs(user.ID, "a@x.com", "$2a$04$hash", "Ann", "Lee", "USD", true, user.CreatedAt, user.UpdatedAt).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, repo.Create(ctx, user))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unique violation maps to ErrDuplicate", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewUserRepository(db, zap.NewNop())
		user := models.NewUser("a@x.com", "h", "Ann", "Lee", "EUR")

		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO users")).
			WillReturnError(&pq.Error{Code: "23505", Message: "duplicate key value"})

		err := repo.Create(ctx, user)
		assert.ErrorIs(t, err, repositories.ErrDuplicate)
	})

	t.Run("other errors are wrapped", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewUserRepository(db, zap.NewNop())

		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO users")).
			WillReturnError(errors.New("connection reset"))

		err := repo.Create(ctx, models.NewUser("a@x.com", "h", "Ann", "Lee", ""))
		require.Error(t, err)
		assert.NotErrorIs(t, err, repositories.ErrDuplicate)
		assert.Contains(t, err.Error(), "connection reset")
	})
}

func TestUserRepository_GetByEmail(t *testing.T) {
	ctx := context.Background()

	t.Run("found", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewUserRepository(db, zap.NewNop())
		want := models.NewUser("a@x.com", "h", "Ann", "Lee", "USD")

		mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE email = $1")).
			WithArgs("a@x.com").
			WillReturnRows(userRow(want))

		got, err := repo.GetByEmail(ctx, "a@x.com")
		require.NoError(t, err)
		assert.Equal(t, want.ID, got.ID)
		assert.Equal(t, "h", got.PasswordHash)
		assert.Equal(t, "USD", got.Currency)
		assert.True(t, got.Active)
	})

	t.Run("missing maps to ErrNotFound", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewUserRepository(db, zap.NewNop())

		mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE email = $1")).
			WithArgs("A@x.com").
			WillReturnError(sql.ErrNoRows)

		_, err := repo.GetByEmail(ctx, "A@x.com")
		assert.ErrorIs(t, err, repositories.ErrNotFound)
	})
}

func TestUserRepository_ExistsByEmail(t *testing.T) {
	for _, exists := range []bool{true, false} {
		db, mock := newMockDB(t)
		repo := NewUserRepository(db, zap.NewNop())

		mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS")).
			WithArgs("a@x.com").
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(exists))

		got, err := repo.ExistsByEmail(context.Background(), "a@x.com")
		require.NoError(t, err)
		assert.Equal(t, exists, got)
	}
}

func TestUserRepository_Update(t *testing.T) {
	ctx := context.Background()

	t.Run("updates profile fields", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewUserRepository(db, zap.NewNop())
		user := models.NewUser("a@x.com", "h", "Ann", "Lee", "USD")
		user.UpdatedAt = time.Time{}
		user.Currency = "EUR"

		mock.ExpectExec(regexp.QuoteMeta("UPDATE users")).
			WithArgs(user.ID, "Ann", "Lee", "EUR", true, sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, repo.Update(ctx, user))
		assert.False(t, user.UpdatedAt.IsZero())
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("no rows maps to ErrNotFound", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewUserRepository(db, zap.NewNop())

		mock.ExpectExec(regexp.QuoteMeta("UPDATE users")).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.Update(ctx, models.NewUser("a@x.com", "h", "Ann", "Lee", ""))
		assert.ErrorIs(t, err, repositories.ErrNotFound)
	})
}

func TestTransactionManager_Begin(t *testing.T) {
	ctx := context.Background()

	t.Run("commit routes statements through the tx", func(t *testing.T) {
		db, mock := newMockDB(t)
		tm := NewTransactionManager(db, zap.NewNop())
		repo := NewUserRepository(db, zap.NewNop())
		user := models.NewUser("a@x.com", "h", "Ann", "Lee", "")

		mock.ExpectBegin()
		mock.ExpectExec(regexp.QuoteMeta("UPDATE users")).WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		tx, err := tm.Begin(ctx)
		require.NoError(t, err)
		require.NoError(t, repo.WithTx(tx).Update(tx.Context(), user))
		require.NoError(t, tx.Commit())
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("context-carried tx is joined and rolled back", func(t *testing.T) {
		db, mock := newMockDB(t)
		tm := NewTransactionManager(db, zap.NewNop())
		repo := NewUserRepository(db, zap.NewNop())

		mock.ExpectBegin()
		mock.ExpectExec(regexp.QuoteMeta("UPDATE users")).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()

		tx, err := tm.Begin(ctx)
		require.NoError(t, err)
		err = repo.Update(tx.Context(), models.NewUser("a@x.com", "h", "Ann", "Lee", ""))
		assert.ErrorIs(t, err, repositories.ErrNotFound)
		require.NoError(t, tx.Rollback())
		assert.NoError(t, tx.Rollback(), "second rollback is a no-op")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestDB_InitSchema(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS users")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, db.InitSchema(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

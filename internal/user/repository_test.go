// AngelaMos | 2026
// repository_test.go

package user

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/buttuura/getcash/internal/core"
)

func newMockRepo(t *testing.T) (Repository, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return NewRepository(sqlx.NewDb(db, "pgx")), mock
}

func TestRepositoryCreate(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now()

	mock.ExpectQuery(`INSERT INTO users`).
		WithArgs("alice", "hash", "0700000001", false).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).
			AddRow(int64(7), now, now))

	u := &User{Username: "alice", PasswordHash: "hash", Phone: "0700000001"}
	require.NoError(t, repo.Create(context.Background(), u))

	assert.Equal(t, int64(7), u.ID)
	assert.Equal(t, now, u.CreatedAt)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRepositoryCreateDuplicate(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(`INSERT INTO users`).
		WillReturnError(&pgconn.PgError{Code: "23505"})

	err := repo.Create(context.Background(), &User{Username: "alice"})
	require.ErrorIs(t, err, core.ErrDuplicateKey)
	assert.NotErrorIs(t, err, core.ErrPhoneTaken)
}

func TestRepositoryCreateDuplicatePhone(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(`INSERT INTO users`).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "users_phone_key"})

	err := repo.Create(context.Background(), &User{Username: "bob", Phone: "0711111111"})
	require.ErrorIs(t, err, core.ErrPhoneTaken)
	require.ErrorIs(t, err, core.ErrDuplicateKey)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRepositoryGetByUsernameNotFound(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(`FROM users WHERE username = \$1`).
		WithArgs("ghost").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repo.GetByUsername(context.Background(), "ghost")
	require.ErrorIs(t, err, core.ErrNotFound)
}

func TestRepositoryListAppliesSearchAndPaging(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now()

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM users WHERE \(username ILIKE \$1`).
		WithArgs("%077%").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	mock.ExpectQuery(`LIMIT \$2 OFFSET \$3`).
		WithArgs("%077%", 20, 0).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "username", "password_hash", "phone", "is_admin", "created_at", "updated_at",
		}).AddRow(int64(1), "0776944", "h", "0776944322", true, now, now))

	users, total, err := repo.List(context.Background(), ListUsersParams{Search: "077"})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, users, 1)
	assert.True(t, users[0].IsAdmin)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRepositoryPromoteMissingUser(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec(`UPDATE users`).
		WithArgs(int64(99)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.PromoteToAdmin(context.Background(), 99)
	require.ErrorIs(t, err, core.ErrNotFound)
}

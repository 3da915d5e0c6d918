// AngelaMos | 2026
// core_test.go

package core

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	SetPasswordParams(PasswordParams{
		Time:    1,
		Memory:  1024,
		Threads: 1,
		KeyLen:  32,
		SaltLen: 16,
	})
	os.Exit(m.Run())
}

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return sqlx.NewDb(db, "pgx"), mock
}

func TestMigrationsAreOrdered(t *testing.T) {
	names, err := Migrations()
	require.NoError(t, err)

	assert.Equal(t, []string{
		"migrations/0001_users.sql",
		"migrations/0002_tasks.sql",
		"migrations/0003_completed_tasks.sql",
		"migrations/0004_wallets.sql",
		"migrations/0005_withdrawals.sql",
		"migrations/0006_users_phone_unique.sql",
	}, names)
}

func TestMigrateAppliesEachFile(t *testing.T) {
	db, mock := newMockDB(t)

	for _, table := range []string{"users", "tasks", "completed_tasks", "wallets", "withdrawals"} {
		mock.ExpectExec(`CREATE TABLE IF NOT EXISTS ` + table + ` `).
			WillReturnResult(sqlmock.NewResult(0, 0))
	}
	mock.ExpectExec(`CREATE UNIQUE INDEX IF NOT EXISTS users_phone_key`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, Migrate(context.Background(), db))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMigrateStopsOnFailure(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS users `).
		WillReturnError(errors.New("permission denied"))

	err := Migrate(context.Background(), db)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "0001_users.sql")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestInTx(t *testing.T) {
	t.Run("commits on success", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE wallets`).WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err := InTx(context.Background(), db, func(tx *sqlx.Tx) error {
			_, err := tx.Exec(`UPDATE wallets SET income_wallet = 0`)
			return err
		})
		require.NoError(t, err)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rolls back on error", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectBegin()
		mock.ExpectRollback()

		boom := errors.New("boom")
		err := InTx(context.Background(), db, func(*sqlx.Tx) error { return boom })
		require.ErrorIs(t, err, boom)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestFormatUGX(t *testing.T) {
	tests := []struct {
		amount int64
		want   string
	}{
		{0, "UGX 0"},
		{500, "UGX 500"},
		{10000, "UGX 10,000"},
		{1250000, "UGX 1,250,000"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatUGX(tt.amount))
	}
}

func TestPasswordRoundTrip(t *testing.T) {
	hash, err := HashPassword("hunter22")
	require.NoError(t, err)
	assert.Contains(t, hash, "$argon2id$")

	ok, err := VerifyPassword("hunter22", hash)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = VerifyPassword("hunter23", hash)
	require.NoError(t, err)
	assert.False(t, ok)

	other, err := HashPassword("hunter22")
	require.NoError(t, err)
	assert.NotEqual(t, hash, other)
}

func TestVerifyPasswordTimingSafeWithoutAccount(t *testing.T) {
	ok, err := VerifyPasswordTimingSafe("whatever", nil)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestJSONError(t *testing.T) {
	t.Run("app error keeps status and code", func(t *testing.T) {
		rec := httptest.NewRecorder()
		JSONError(rec, NewAppError(ErrInvalidInput, "Insufficient balance", http.StatusBadRequest, "INSUFFICIENT_BALANCE"))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.JSONEq(t,
			`{"success":false,"message":"Insufficient balance","code":"INSUFFICIENT_BALANCE"}`,
			rec.Body.String())
	})

	t.Run("plain error hides detail", func(t *testing.T) {
		rec := httptest.NewRecorder()
		JSONError(rec, errors.New("pq: connection refused"))

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.NotContains(t, rec.Body.String(), "connection refused")
	})
}

func TestRedisKey(t *testing.T) {
	r := &Redis{prefix: "getcash:"}

	assert.Equal(t, "getcash:ratelimit:ip", r.Key("ratelimit", "ip"))
	assert.Equal(t, "getcash:", r.Key())
}

// AngelaMos | 2026
// admin_test.go

package admin

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-chi/chi/v5"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/buttuura/getcash/internal/core"
)

var fixedNow = time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC)

func newMockService(t *testing.T) (*Service, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	svc := NewService(NewRepository(sqlx.NewDb(db, "pgx")))
	svc.now = func() time.Time { return fixedNow }
	return svc, mock
}

func expectCounts(mock sqlmock.Sqlmock) {
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM users`).
		WillReturnRows(sqlmock.NewRows([]string{"users", "tasks", "completed_tasks", "withdrawals"}).
			AddRow(int64(4), int64(3), int64(9), int64(2)))
}

func passthrough(next http.Handler) http.Handler { return next }

func TestMetricCounts(t *testing.T) {
	svc, mock := newMockService(t)
	expectCounts(mock)

	c, err := svc.MetricCounts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(4), c.Users)
	assert.Equal(t, int64(9), c.CompletedTasks)
	assert.Equal(t, int64(2), c.Withdrawals)
}

func TestExportOmitsCredentials(t *testing.T) {
	svc, mock := newMockService(t)

	mock.ExpectQuery(`SELECT id, username, phone, is_admin, created_at`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "phone", "is_admin", "created_at"}).
			AddRow(int64(1), "admin", "0700000000", true, fixedNow))
	mock.ExpectQuery(`FROM tasks`).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "title", "price", "image_data", "category", "status", "upload_date", "created_at",
		}).AddRow(int64(1), "Survey", int64(750), "img", "survey", "available", fixedNow, fixedNow))
	mock.ExpectQuery(`FROM completed_tasks`).
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "task_id", "completed_at"}).
			AddRow(int64(1), int64(1), fixedNow))
	mock.ExpectQuery(`FROM wallets`).
		WillReturnRows(sqlmock.NewRows([]string{
			"user_id", "income_wallet", "personal_wallet", "total_earnings",
			"total_withdrawals", "job_level", "tasks_completed_today", "last_task_date", "updated_at",
		}).AddRow(int64(1), int64(0), int64(500), int64(500), int64(0), "trainee", 1, fixedNow, fixedNow))

	export, err := svc.Export(context.Background())
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())

	raw, err := json.Marshal(export)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "password")
	assert.Contains(t, string(raw), `"personalWallet":500`)
	assert.Equal(t, "2026-10-14", export.Tasks[0].UploadDate)
}

func TestCleanup(t *testing.T) {
	svc, mock := newMockService(t)

	mock.ExpectExec(`DELETE FROM completed_tasks WHERE completed_at < \$1`).
		WithArgs(fixedNow.AddDate(0, 0, -30)).
		WillReturnResult(sqlmock.NewResult(0, 6))

	n, err := svc.Cleanup(context.Background(), DefaultCleanupDays)
	require.NoError(t, err)
	assert.Equal(t, int64(6), n)

	_, err = svc.Cleanup(context.Background(), 0)
	require.ErrorIs(t, err, core.ErrInvalidInput)
}

func TestStatsEndpoint(t *testing.T) {
	svc, mock := newMockService(t)
	expectCounts(mock)

	h := NewHandler(HandlerConfig{
		Service: svc,
		DBPing:  func(context.Context) error { return nil },
		RedisPing: func(context.Context) error {
			return errors.New("connection refused")
		},
	})
	r := chi.NewRouter()
	h.RegisterRoutes(r, passthrough, passthrough)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin/stats", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp StatsResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.True(t, resp.Success)
	assert.Equal(t, int64(3), resp.Counts.Tasks)
	assert.True(t, resp.Database.Healthy)
	assert.False(t, resp.Redis.Healthy)
	assert.NotEmpty(t, resp.Runtime.GoVersion)
}

func TestCleanupEndpointRejectsBadDays(t *testing.T) {
	svc, _ := newMockService(t)
	r := chi.NewRouter()
	NewHandler(HandlerConfig{Service: svc}).RegisterRoutes(r, passthrough, passthrough)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/admin/cleanup?days=-2", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

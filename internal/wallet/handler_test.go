// AngelaMos | 2026
// handler_test.go

package wallet

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/buttuura/getcash/internal/config"
	"github.com/buttuura/getcash/internal/core"
	"github.com/buttuura/getcash/internal/middleware"
)

func asUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := middleware.WithClaims(r.Context(), &middleware.AccessTokenClaims{UserID: testUser})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func passthrough(next http.Handler) http.Handler { return next }

func newTestRouter(t *testing.T) (*chi.Mux, *memoryRepo) {
	t.Helper()

	svc, repo, _ := newTestService(t, config.RewardsConfig{})
	r := chi.NewRouter()
	NewHandler(svc).RegisterRoutes(r, asUser, passthrough)
	return r, repo
}

func do(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestCompleteTaskEndpoint(t *testing.T) {
	r, _ := newTestRouter(t)

	rec := do(r, http.MethodPost, "/tasks/1/complete", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp CompleteTaskResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.True(t, resp.Success)
	assert.Equal(t, int64(500), resp.Earnings)
	assert.Equal(t, int64(500), resp.NewBalance)

	rec = do(r, http.MethodPost, "/tasks/1/complete", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t,
		`{"success":false,"message":"Task already completed","alreadyCompleted":true}`,
		rec.Body.String())

	rec = do(r, http.MethodGet, "/tasks/completed", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true,"completedTasks":[1]}`, rec.Body.String())

	rec = do(r, http.MethodPost, "/tasks/42/complete", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRemoveCompletionEndpoint(t *testing.T) {
	r, _ := newTestRouter(t)

	require.Equal(t, http.StatusOK, do(r, http.MethodPost, "/tasks/2/complete", "").Code)

	rec := do(r, http.MethodDelete, "/tasks/2/complete", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp RemoveCompletionResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.True(t, resp.Removed)
}

func TestWithdrawalEndpointRejectsBelowMinimum(t *testing.T) {
	r, _ := newTestRouter(t)

	rec := do(r, http.MethodPost, "/withdrawal/request",
		`{"amount":5000,"phone":"0700000000","recipientName":"Jo","network":"MTN"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp core.ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.False(t, resp.Success)
	assert.Equal(t, "Minimum withdrawal amount is UGX 10,000", resp.Message)
}

func TestWithdrawalEndpoint(t *testing.T) {
	r, repo := newTestRouter(t)
	repo.seed(Wallet{UserID: testUser, JobLevel: LevelTrainee, PersonalWallet: 10000})

	rec := do(r, http.MethodPost, "/withdrawal/request",
		`{"amount":10000,"phone":"0700000000","recipientName":"Jo","network":"MTN"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp RequestWithdrawalResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, testUser, resp.Withdrawal.UserID)
	assert.Equal(t, int64(200), resp.Withdrawal.Fee)
	assert.Equal(t, int64(9800), resp.Withdrawal.FinalAmount)
	assert.Zero(t, resp.NewBalance)

	rec = do(r, http.MethodGet, "/withdrawals", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var list WithdrawalListResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&list))
	require.Len(t, list.Withdrawals, 1)
	assert.Equal(t, resp.Withdrawal.ID, list.Withdrawals[0].ID)
}

func TestUpgradeJobEndpoint(t *testing.T) {
	r, _ := newTestRouter(t)

	rec := do(r, http.MethodPost, "/user/upgrade-job", `{"jobLevel":"senior","investmentAmount":200000}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "250000 UGX")

	rec = do(r, http.MethodPost, "/user/upgrade-job", `{"jobLevel":"senior","investmentAmount":250000}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp UpgradeJobResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, LevelSenior, resp.JobLevel)
	assert.Equal(t, int64(1000), resp.PerTaskEarning)

	rec = do(r, http.MethodGet, "/user/data", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var data UserDataResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&data))
	assert.Equal(t, LevelSenior, data.UserData.JobLevel)
	assert.Equal(t, 15, data.UserData.DailyTaskLimit)
	assert.Nil(t, data.UserData.LastTaskDate)
}

func TestUpgradeJobEndpointRequiresLevel(t *testing.T) {
	r, _ := newTestRouter(t)

	rec := do(r, http.MethodPost, "/user/upgrade-job", `{"investmentAmount":250000}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, false, resp["success"])
	assert.Equal(t, "jobLevel is required", resp["message"])
}

func TestJobLevelsEndpointIsPublic(t *testing.T) {
	svc, _, _ := newTestService(t, config.RewardsConfig{})
	r := chi.NewRouter()
	deny := func(http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		})
	}
	NewHandler(svc).RegisterRoutes(r, deny, passthrough)

	rec := do(r, http.MethodGet, "/job-levels", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp JobLevelsResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Len(t, resp.JobLevels, 5)
	assert.Equal(t, LevelTrainee, resp.JobLevels[0].Level)

	assert.Equal(t, http.StatusUnauthorized, do(r, http.MethodGet, "/user/data", "").Code)
}

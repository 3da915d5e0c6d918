// AngelaMos | 2026
// fallback_test.go

package fallback

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/buttuura/getcash/internal/config"
	"github.com/buttuura/getcash/internal/wallet"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// newFakeServer answers login and rejects withdrawals with 400 while task
// listing fails with 500.
func newFakeServer(t *testing.T) *httptest.Server {
	t.Helper()

	r := chi.NewRouter()
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "OK"})
	})
	r.Post("/api/register", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusCreated, map[string]any{"success": true, "message": "Registration successful."})
	})
	r.Post("/api/login", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"success": true, "token": "server-token", "userId": 10, "username": "alice",
		})
	})
	r.Get("/api/tasks", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusInternalServerError, map[string]any{"success": false, "message": "boom"})
	})
	r.Get("/api/job-levels", func(w http.ResponseWriter, req *http.Request) {
		if req.Header.Get("Authorization") != "Bearer server-token" {
			writeJSON(w, http.StatusUnauthorized, map[string]any{"success": false})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "jobLevels": wallet.Levels()})
	})
	r.Post("/api/withdrawal/request", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"success": false,
			"message": "Minimum withdrawal amount is UGX 10,000",
			"code":    "BELOW_MINIMUM",
		})
	})

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func TestSelectPicksFirstHealthyServer(t *testing.T) {
	sick := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer sick.Close()
	healthy := newFakeServer(t)

	base, err := Select(context.Background(), http.DefaultClient,
		[]string{sick.URL, healthy.URL + "/"}, time.Second)
	require.NoError(t, err)
	assert.Equal(t, healthy.URL, base)

	_, err = Select(context.Background(), http.DefaultClient, []string{sick.URL}, time.Second)
	require.ErrorIs(t, err, ErrUnavailable)
}

func TestFallbackUsesMirrorOnServerError(t *testing.T) {
	srv := newFakeServer(t)
	local, _ := openTestLocal(t, config.RewardsConfig{})
	fb := NewFallback(NewRemote(srv.URL, time.Second), local)
	ctx := context.Background()

	env, err := fb.ListTasks(ctx)
	require.NoError(t, err)
	assert.True(t, env.Offline)
	assert.Len(t, env.Tasks, 3)
}

func TestFallbackReturnsClientErrorsUnchanged(t *testing.T) {
	srv := newFakeServer(t)
	local, _ := openTestLocal(t, config.RewardsConfig{})
	fb := NewFallback(NewRemote(srv.URL, time.Second), local)

	env, err := fb.RequestWithdrawal(context.Background(), wallet.WithdrawalRequest{Amount: 5000})
	require.NoError(t, err)
	assert.False(t, env.Offline)
	assert.Equal(t, "BELOW_MINIMUM", env.Code)
}

func TestFallbackMirrorsLoginAndKeepsToken(t *testing.T) {
	srv := newFakeServer(t)
	local, _ := openTestLocal(t, config.RewardsConfig{})
	fb := NewFallback(NewRemote(srv.URL, time.Second), local)
	ctx := context.Background()

	env, err := fb.Register(ctx, RegisterInput{Username: "alice", Password: "secret1", Phone: "0711111111"})
	require.NoError(t, err)
	require.True(t, env.Success)
	assert.False(t, env.Offline)
	require.NotNil(t, local.findUser("alice"))

	env, err = fb.Login(ctx, "alice", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "server-token", env.Token)
	assert.NotZero(t, local.session)

	env, err = fb.JobLevels(ctx)
	require.NoError(t, err)
	assert.False(t, env.Offline)
	assert.Len(t, env.JobLevels, 5)
}

func TestFallbackUsesMirrorWhenServerGone(t *testing.T) {
	srv := newFakeServer(t)
	base := srv.URL
	srv.Close()

	local, _ := openTestLocal(t, config.RewardsConfig{})
	registerAndLogin(t, local, "alice", "0711111111")
	fb := NewFallback(NewRemote(base, time.Second), local)

	env, err := fb.CompleteTask(context.Background(), 1)
	require.NoError(t, err)
	assert.True(t, env.Offline)
	assert.Equal(t, int64(500), env.NewBalance)
}

func TestOpenWithoutServerReturnsLocal(t *testing.T) {
	backend, err := Open(context.Background(), Options{
		ServerURLs:   []string{"http://127.0.0.1:1"},
		MirrorPath:   filepath.Join(t.TempDir(), "mirror.json"),
		ProbeTimeout: 200 * time.Millisecond,
		Admin:        testAdmin,
	})
	require.NoError(t, err)
	assert.Equal(t, "local", backend.Name())
}

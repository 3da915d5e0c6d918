// AngelaMos | 2026
// client_test.go

package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/buttuura/getcash/internal/core"
	"github.com/buttuura/getcash/internal/fallback"
)

const unreachable = "http://127.0.0.1:1"

func TestMain(m *testing.M) {
	core.SetPasswordParams(core.PasswordParams{
		Time:    1,
		Memory:  1024,
		Threads: 1,
		KeyLen:  16,
		SaltLen: 8,
	})
	os.Exit(m.Run())
}

// runCLI runs getcashctl against a config file that does not exist, so
// only defaults and the environment apply.
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	app := newApp()
	app.Writer = &out
	app.ErrWriter = &out

	configPath := filepath.Join(t.TempDir(), "absent.yaml")
	argv := append([]string{"getcashctl", "--config", configPath}, args...)
	err := app.Run(argv)
	return out.String(), err
}

func decodeEnvelope(t *testing.T, out string) fallback.Envelope {
	t.Helper()

	var env fallback.Envelope
	require.NoError(t, json.Unmarshal([]byte(out), &env), out)
	return env
}

type mirrorFile struct {
	Users []struct {
		Username string `json:"username"`
		IsAdmin  bool   `json:"isAdmin"`
	} `json:"users"`
}

func readMirror(t *testing.T, path string) mirrorFile {
	t.Helper()

	raw, err := os.ReadFile(path)
	require.NoError(t, err)

	var m mirrorFile
	require.NoError(t, json.Unmarshal(raw, &m))
	return m
}

func TestClientOfflineSeedsConfiguredAdmin(t *testing.T) {
	t.Setenv("ADMIN_PASSWORD", "Book@123")
	mirror := filepath.Join(t.TempDir(), "mirror.json")

	out, err := runCLI(t, "client",
		"--server", unreachable,
		"--mirror", mirror,
		"--health-timeout", "200ms",
		"tasks")
	require.NoError(t, err)

	env := decodeEnvelope(t, out)
	assert.True(t, env.Success)
	assert.True(t, env.Offline)
	assert.Len(t, env.Tasks, 3)

	m := readMirror(t, mirror)
	require.Len(t, m.Users, 1)
	assert.Equal(t, "0776944", m.Users[0].Username)
	assert.True(t, m.Users[0].IsAdmin)

	out, err = runCLI(t, "client",
		"--server", unreachable,
		"--mirror", mirror,
		"--health-timeout", "200ms",
		"-u", "0776944", "-p", "Book@123",
		"wallet")
	require.NoError(t, err)

	env = decodeEnvelope(t, out)
	require.NotNil(t, env.UserData)
	assert.Equal(t, "trainee", env.UserData.JobLevel)
}

func TestClientOfflineAppliesConfiguredRewards(t *testing.T) {
	t.Setenv("ADMIN_PASSWORD", "Book@123")
	t.Setenv("MIN_WITHDRAWAL", "20000")
	mirror := filepath.Join(t.TempDir(), "mirror.json")

	out, err := runCLI(t, "client",
		"--server", unreachable,
		"--mirror", mirror,
		"--health-timeout", "200ms",
		"-u", "0776944", "-p", "Book@123",
		"withdraw", "--amount", "15000", "--phone", "0776944322", "--recipient", "Admin")
	require.ErrorIs(t, err, errRejected)

	env := decodeEnvelope(t, out)
	assert.False(t, env.Success)
	assert.Equal(t, "BELOW_MINIMUM", env.Code)
	assert.Equal(t, "Minimum withdrawal amount is UGX 20,000", env.Message)
	assert.Zero(t, env.NewBalance)
}

func TestClientOfflineRejectsBadLogin(t *testing.T) {
	t.Setenv("ADMIN_PASSWORD", "Book@123")
	mirror := filepath.Join(t.TempDir(), "mirror.json")

	_, err := runCLI(t, "client",
		"--server", unreachable,
		"--mirror", mirror,
		"--health-timeout", "200ms",
		"-u", "0776944", "-p", "wrong",
		"wallet")
	require.ErrorIs(t, err, errRejected)
}

func newAPIServer(t *testing.T) *httptest.Server {
	t.Helper()

	writeJSON := func(w http.ResponseWriter, status int, v any) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(v)
	}

	r := chi.NewRouter()
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "OK"})
	})
	r.Get("/api/tasks", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"success": true,
			"tasks":   []map[string]any{{"id": 9, "title": "Server Task", "price": 700}},
		})
	})
	r.Post("/api/login", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"success": true, "token": "server-token", "userId": 10, "username": "alice",
		})
	})
	r.Post("/api/tasks/{taskId}/complete", func(w http.ResponseWriter, req *http.Request) {
		if req.Header.Get("Authorization") != "Bearer server-token" {
			writeJSON(w, http.StatusUnauthorized, map[string]any{"success": false})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"success":    true,
			"message":    "Task completed! You earned UGX 500",
			"earnings":   500,
			"newBalance": 500,
			"jobLevel":   "trainee",
		})
	})

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func TestClientUsesReachableServer(t *testing.T) {
	t.Setenv("ADMIN_PASSWORD", "Book@123")
	srv := newAPIServer(t)
	mirror := filepath.Join(t.TempDir(), "mirror.json")

	out, err := runCLI(t, "client",
		"--server", unreachable,
		"--server", srv.URL,
		"--mirror", mirror,
		"--health-timeout", "200ms",
		"tasks")
	require.NoError(t, err)

	env := decodeEnvelope(t, out)
	assert.False(t, env.Offline)
	require.Len(t, env.Tasks, 1)
	assert.Equal(t, "Server Task", env.Tasks[0].Title)

	out, err = runCLI(t, "client",
		"--server", srv.URL,
		"--mirror", mirror,
		"-u", "alice", "-p", "secret1",
		"complete", "--task", "9")
	require.NoError(t, err)

	env = decodeEnvelope(t, out)
	assert.True(t, env.Success)
	assert.False(t, env.Offline)
	assert.Equal(t, int64(500), env.Earnings)
	assert.Equal(t, int64(500), env.NewBalance)
}

func TestClientCompleteRequiresTaskFlag(t *testing.T) {
	_, err := runCLI(t, "client", "--server", unreachable, "complete")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "task")
}

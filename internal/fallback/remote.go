// AngelaMos | 2026
// remote.go

package fallback

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/buttuura/getcash/internal/wallet"
)

const maxResponseBytes = 4 << 20

// Remote talks to the GetCash HTTP API and keeps the bearer token from
// the last successful login.
type Remote struct {
	baseURL string
	client  *http.Client

	mu    sync.RWMutex
	token string
}

func NewRemote(baseURL string, timeout time.Duration) *Remote {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &Remote{
		baseURL: strings.TrimRight(baseURL, "/"),
		client: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
}

func (r *Remote) Name() string { return "remote" }

func (r *Remote) Register(ctx context.Context, in RegisterInput) (*Envelope, error) {
	return r.do(ctx, http.MethodPost, "/register", in)
}

func (r *Remote) Login(ctx context.Context, username, password string) (*Envelope, error) {
	env, err := r.do(ctx, http.MethodPost, "/login", map[string]string{
		"username": username,
		"password": password,
	})
	if err != nil {
		return nil, err
	}

	if env.Success && env.Token != "" {
		r.mu.Lock()
		r.token = env.Token
		r.mu.Unlock()
	}
	return env, nil
}

func (r *Remote) Logout(ctx context.Context) (*Envelope, error) {
	env, err := r.do(ctx, http.MethodPost, "/logout", nil)
	if err != nil {
		return nil, err
	}

	if env.Success {
		r.mu.Lock()
		r.token = ""
		r.mu.Unlock()
	}
	return env, nil
}

func (r *Remote) ListTasks(ctx context.Context) (*Envelope, error) {
	return r.do(ctx, http.MethodGet, "/tasks", nil)
}

func (r *Remote) CompleteTask(ctx context.Context, taskID int64) (*Envelope, error) {
	return r.do(ctx, http.MethodPost, taskPath(taskID), nil)
}

func (r *Remote) ListCompleted(ctx context.Context) (*Envelope, error) {
	return r.do(ctx, http.MethodGet, "/tasks/completed", nil)
}

func (r *Remote) RemoveCompletion(ctx context.Context, taskID int64) (*Envelope, error) {
	return r.do(ctx, http.MethodDelete, taskPath(taskID), nil)
}

func (r *Remote) UserData(ctx context.Context) (*Envelope, error) {
	return r.do(ctx, http.MethodGet, "/user/data", nil)
}

func (r *Remote) RequestWithdrawal(ctx context.Context, req wallet.WithdrawalRequest) (*Envelope, error) {
	return r.do(ctx, http.MethodPost, "/withdrawal/request", req)
}

func (r *Remote) UpgradeJob(ctx context.Context, in UpgradeInput) (*Envelope, error) {
	return r.do(ctx, http.MethodPost, "/user/upgrade-job", in)
}

func (r *Remote) JobLevels(ctx context.Context) (*Envelope, error) {
	return r.do(ctx, http.MethodGet, "/job-levels", nil)
}

func taskPath(taskID int64) string {
	return "/tasks/" + strconv.FormatInt(taskID, 10) + "/complete"
}

func (r *Remote) do(ctx context.Context, method, path string, body any) (*Envelope, error) {
	var payload io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode %s body: %w", path, err)
		}
		payload = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, r.baseURL+"/api"+path, payload)
	if err != nil {
		return nil, fmt.Errorf("build %s request: %w", path, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	r.mu.RLock()
	token := r.token
	r.mu.RUnlock()
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s %s: %v", ErrUnavailable, method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusInternalServerError {
		return nil, fmt.Errorf("%w: %s %s returned %d", ErrUnavailable, method, path, resp.StatusCode)
	}

	if resp.StatusCode == http.StatusNoContent {
		return &Envelope{Success: true}, nil
	}

	var env Envelope
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&env); err != nil {
		if resp.StatusCode >= http.StatusBadRequest {
			return &Envelope{Success: false, Message: http.StatusText(resp.StatusCode)}, nil
		}
		return nil, fmt.Errorf("%w: decode %s response: %v", ErrUnavailable, path, err)
	}

	return &env, nil
}

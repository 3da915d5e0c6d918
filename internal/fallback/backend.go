// AngelaMos | 2026
// backend.go

// Package fallback gives clients one set of GetCash operations served
// either by the HTTP API or by a file-backed mirror when the API is down.
package fallback

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/buttuura/getcash/internal/auth"
	"github.com/buttuura/getcash/internal/config"
	"github.com/buttuura/getcash/internal/task"
	"github.com/buttuura/getcash/internal/wallet"
)

// ErrUnavailable marks failures that justify switching to the mirror:
// transport errors and 5xx responses.
var ErrUnavailable = errors.New("backend unavailable")

// Envelope is the response shape shared by every backend. Only the fields
// relevant to an operation are set. Ledger amounts are always encoded so a
// zero balance is not mistaken for a missing one.
type Envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Code    string `json:"code,omitempty"`
	Offline bool   `json:"offline,omitempty"`

	Token    string               `json:"token,omitempty"`
	UserID   int64                `json:"userId,omitempty"`
	Username string               `json:"username,omitempty"`
	IsAdmin  bool                 `json:"isAdmin,omitempty"`
	User     *auth.RegisteredUser `json:"user,omitempty"`

	Tasks            []task.TaskResponse `json:"tasks,omitempty"`
	CompletedTasks   []int64             `json:"completedTasks,omitempty"`
	Earnings         int64               `json:"earnings"`
	NewBalance       int64               `json:"newBalance"`
	JobLevel         string              `json:"jobLevel,omitempty"`
	PerTaskEarning   int64               `json:"perTaskEarning,omitempty"`
	AlreadyCompleted bool                `json:"alreadyCompleted,omitempty"`
	Removed          bool                `json:"removed"`

	JobLevels  []wallet.Tariff            `json:"jobLevels,omitempty"`
	UserData   *wallet.UserDataView       `json:"userData,omitempty"`
	Withdrawal *wallet.WithdrawalResponse `json:"withdrawal,omitempty"`
}

type RegisterInput struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Phone    string `json:"phone"`
}

type UpgradeInput struct {
	JobLevel         string `json:"jobLevel"`
	InvestmentAmount int64  `json:"investmentAmount"`
}

// Backend is implemented by Remote, Local and Fallback. A returned error
// means the backend could not answer; a rejected request comes back as an
// Envelope with Success false.
type Backend interface {
	Name() string

	Register(ctx context.Context, in RegisterInput) (*Envelope, error)
	Login(ctx context.Context, username, password string) (*Envelope, error)
	Logout(ctx context.Context) (*Envelope, error)

	ListTasks(ctx context.Context) (*Envelope, error)
	CompleteTask(ctx context.Context, taskID int64) (*Envelope, error)
	ListCompleted(ctx context.Context) (*Envelope, error)
	RemoveCompletion(ctx context.Context, taskID int64) (*Envelope, error)

	UserData(ctx context.Context) (*Envelope, error)
	RequestWithdrawal(ctx context.Context, req wallet.WithdrawalRequest) (*Envelope, error)
	UpgradeJob(ctx context.Context, in UpgradeInput) (*Envelope, error)
	JobLevels(ctx context.Context) (*Envelope, error)
}

type Options struct {
	ServerURLs     []string
	MirrorPath     string
	ProbeTimeout   time.Duration
	RequestTimeout time.Duration
	Admin          config.AdminConfig
	Rewards        config.RewardsConfig
}

// Select probes GET /health on each base URL in order and returns the
// first one that answers 200.
func Select(ctx context.Context, client *http.Client, urls []string, timeout time.Duration) (string, error) {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}

	for _, base := range urls {
		base = strings.TrimRight(base, "/")
		if base == "" {
			continue
		}

		if probe(ctx, client, base, timeout) {
			return base, nil
		}
		slog.DebugContext(ctx, "server probe failed", "url", base)
	}

	return "", fmt.Errorf("no reachable server among %d urls: %w", len(urls), ErrUnavailable)
}

func probe(ctx context.Context, client *http.Client, base string, timeout time.Duration) bool {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, base+"/health", nil)
	if err != nil {
		return false
	}

	resp, err := client.Do(req)
	if err != nil {
		return false
	}
	_ = resp.Body.Close()

	return resp.StatusCode == http.StatusOK
}

// Open picks a backend: the first reachable server with the local mirror
// behind it, or the mirror alone when no server answers.
func Open(ctx context.Context, opts Options) (Backend, error) {
	local, err := OpenLocal(opts.MirrorPath, opts.Admin, opts.Rewards)
	if err != nil {
		return nil, err
	}

	remote := NewRemote("", opts.RequestTimeout)
	base, err := Select(ctx, remote.client, opts.ServerURLs, opts.ProbeTimeout)
	if err != nil {
		slog.WarnContext(ctx, "no server reachable, using local mirror", "path", opts.MirrorPath)
		return local, nil
	}

	remote.baseURL = base
	slog.InfoContext(ctx, "using server", "url", base)
	return NewFallback(remote, local), nil
}

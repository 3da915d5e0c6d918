// AngelaMos | 2026
// fallback.go

package fallback

import (
	"context"
	"errors"
	"log/slog"

	"github.com/buttuura/getcash/internal/wallet"
)

// Fallback sends each call to primary and repeats it on mirror only when
// primary is unavailable. 4xx answers from primary are returned as is.
type Fallback struct {
	primary Backend
	mirror  Backend
}

func NewFallback(primary, mirror Backend) *Fallback {
	return &Fallback{primary: primary, mirror: mirror}
}

func (f *Fallback) Name() string { return "fallback" }

func (f *Fallback) call(
	ctx context.Context,
	op string,
	primary, mirror func() (*Envelope, error),
) (*Envelope, error) {
	env, err := primary()
	if err == nil {
		return env, nil
	}
	if !errors.Is(err, ErrUnavailable) {
		return nil, err
	}

	slog.WarnContext(ctx, "server unavailable, answering from local mirror",
		"operation", op,
		"error", err,
	)
	return mirror()
}

// Register also records the account on the mirror so a later offline
// login can succeed.
func (f *Fallback) Register(ctx context.Context, in RegisterInput) (*Envelope, error) {
	env, err := f.call(ctx, "register",
		func() (*Envelope, error) { return f.primary.Register(ctx, in) },
		func() (*Envelope, error) { return f.mirror.Register(ctx, in) },
	)
	if err == nil && env.Success && !env.Offline {
		f.shadow(ctx, "register", func() (*Envelope, error) { return f.mirror.Register(ctx, in) })
	}
	return env, err
}

// Login opens a mirror session as well, so calls that fall back later
// act for the same username.
func (f *Fallback) Login(ctx context.Context, username, password string) (*Envelope, error) {
	env, err := f.call(ctx, "login",
		func() (*Envelope, error) { return f.primary.Login(ctx, username, password) },
		func() (*Envelope, error) { return f.mirror.Login(ctx, username, password) },
	)
	if err == nil && env.Success && !env.Offline {
		f.shadow(ctx, "login", func() (*Envelope, error) { return f.mirror.Login(ctx, username, password) })
	}
	return env, err
}

func (f *Fallback) Logout(ctx context.Context) (*Envelope, error) {
	env, err := f.call(ctx, "logout",
		func() (*Envelope, error) { return f.primary.Logout(ctx) },
		func() (*Envelope, error) { return f.mirror.Logout(ctx) },
	)
	if err == nil && !env.Offline {
		f.shadow(ctx, "logout", func() (*Envelope, error) { return f.mirror.Logout(ctx) })
	}
	return env, err
}

func (f *Fallback) shadow(ctx context.Context, op string, fn func() (*Envelope, error)) {
	env, err := fn()
	switch {
	case err != nil:
		slog.WarnContext(ctx, "mirror update failed", "operation", op, "error", err)
	case !env.Success:
		slog.DebugContext(ctx, "mirror declined update", "operation", op, "message", env.Message)
	}
}

func (f *Fallback) ListTasks(ctx context.Context) (*Envelope, error) {
	return f.call(ctx, "list_tasks",
		func() (*Envelope, error) { return f.primary.ListTasks(ctx) },
		func() (*Envelope, error) { return f.mirror.ListTasks(ctx) },
	)
}

func (f *Fallback) CompleteTask(ctx context.Context, taskID int64) (*Envelope, error) {
	return f.call(ctx, "complete_task",
		func() (*Envelope, error) { return f.primary.CompleteTask(ctx, taskID) },
		func() (*Envelope, error) { return f.mirror.CompleteTask(ctx, taskID) },
	)
}

func (f *Fallback) ListCompleted(ctx context.Context) (*Envelope, error) {
	return f.call(ctx, "list_completed",
		func() (*Envelope, error) { return f.primary.ListCompleted(ctx) },
		func() (*Envelope, error) { return f.mirror.ListCompleted(ctx) },
	)
}

func (f *Fallback) RemoveCompletion(ctx context.Context, taskID int64) (*Envelope, error) {
	return f.call(ctx, "remove_completion",
		func() (*Envelope, error) { return f.primary.RemoveCompletion(ctx, taskID) },
		func() (*Envelope, error) { return f.mirror.RemoveCompletion(ctx, taskID) },
	)
}

func (f *Fallback) UserData(ctx context.Context) (*Envelope, error) {
	return f.call(ctx, "user_data",
		func() (*Envelope, error) { return f.primary.UserData(ctx) },
		func() (*Envelope, error) { return f.mirror.UserData(ctx) },
	)
}

func (f *Fallback) RequestWithdrawal(ctx context.Context, req wallet.WithdrawalRequest) (*Envelope, error) {
	return f.call(ctx, "withdrawal",
		func() (*Envelope, error) { return f.primary.RequestWithdrawal(ctx, req) },
		func() (*Envelope, error) { return f.mirror.RequestWithdrawal(ctx, req) },
	)
}

func (f *Fallback) UpgradeJob(ctx context.Context, in UpgradeInput) (*Envelope, error) {
	return f.call(ctx, "upgrade_job",
		func() (*Envelope, error) { return f.primary.UpgradeJob(ctx, in) },
		func() (*Envelope, error) { return f.mirror.UpgradeJob(ctx, in) },
	)
}

func (f *Fallback) JobLevels(ctx context.Context) (*Envelope, error) {
	return f.call(ctx, "job_levels",
		func() (*Envelope, error) { return f.primary.JobLevels(ctx) },
		func() (*Envelope, error) { return f.mirror.JobLevels(ctx) },
	)
}

var (
	_ Backend = (*Remote)(nil)
	_ Backend = (*Local)(nil)
	_ Backend = (*Fallback)(nil)
)

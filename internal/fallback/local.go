// AngelaMos | 2026
// local.go

package fallback

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/buttuura/getcash/internal/auth"
	"github.com/buttuura/getcash/internal/config"
	"github.com/buttuura/getcash/internal/core"
	"github.com/buttuura/getcash/internal/task"
	"github.com/buttuura/getcash/internal/wallet"
)

type localUser struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	Phone        string    `json:"phone"`
	PasswordHash string    `json:"passwordHash"`
	IsAdmin      bool      `json:"isAdmin"`
	JoinDate     time.Time `json:"joinDate"`
}

type localCompletion struct {
	UserID      int64     `json:"userId"`
	TaskID      int64     `json:"taskId"`
	CompletedAt time.Time `json:"completedAt"`
}

type localWallet struct {
	UserID              int64      `json:"userId"`
	IncomeWallet        int64      `json:"incomeWallet"`
	PersonalWallet      int64      `json:"personalWallet"`
	TotalEarnings       int64      `json:"totalEarnings"`
	TotalWithdrawals    int64      `json:"totalWithdrawals"`
	JobLevel            string     `json:"jobLevel"`
	TasksCompletedToday int        `json:"tasksCompletedToday"`
	LastTaskDate        *time.Time `json:"lastTaskDate"`
	UpdatedAt           time.Time  `json:"updatedAt"`
}

type mirrorData struct {
	NextUserID  int64                       `json:"nextUserId"`
	NextTaskID  int64                       `json:"nextTaskId"`
	Users       []localUser                 `json:"users"`
	Tasks       []task.TaskResponse         `json:"tasks"`
	Completions []localCompletion           `json:"completedTasks"`
	Wallets     []localWallet               `json:"wallets"`
	Withdrawals []wallet.WithdrawalResponse `json:"withdrawals"`
}

var defaultTasks = []struct {
	title    string
	price    int64
	category string
}{
	{"Watch YouTube Video", 500, "entertainment"},
	{"Share on Social Media", 1000, "social"},
	{"Complete Survey", 750, "survey"},
}

// Local is the file-backed mirror. All operations are serialized and each
// change rewrites the file through a temp file and rename.
type Local struct {
	path    string
	rewards config.RewardsConfig
	now     func() time.Time

	mu      sync.Mutex
	data    mirrorData
	session int64
}

// OpenLocal loads the mirror at path, creating it with the default tasks
// when missing, and seeds the admin account if it is not there yet.
func OpenLocal(path string, admin config.AdminConfig, rewards config.RewardsConfig) (*Local, error) {
	if rewards.MinWithdrawal <= 0 {
		rewards.MinWithdrawal = wallet.DefaultMinWithdrawal
	}
	if rewards.WithdrawalFeeBps == 0 {
		rewards.WithdrawalFeeBps = wallet.DefaultFeeBps
	}

	l := &Local{path: path, rewards: rewards, now: time.Now}

	raw, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		l.data = mirrorData{NextUserID: 1, NextTaskID: 1}
		l.seedTasks()
	case err != nil:
		return nil, fmt.Errorf("read mirror %s: %w", path, err)
	default:
		if err := json.Unmarshal(raw, &l.data); err != nil {
			return nil, fmt.Errorf("parse mirror %s: %w", path, err)
		}
	}

	if err := l.seedAdmin(admin); err != nil {
		return nil, err
	}

	if err := l.persist(); err != nil {
		return nil, err
	}

	return l, nil
}

func (l *Local) Name() string { return "local" }

func (l *Local) seedTasks() {
	now := l.now().UTC()
	for _, t := range defaultTasks {
		l.data.Tasks = append(l.data.Tasks, task.TaskResponse{
			ID:         l.data.NextTaskID,
			Title:      t.title,
			Price:      t.price,
			Category:   t.category,
			Status:     task.StatusAvailable,
			UploadDate: now.Format(task.DateLayout),
			CreatedAt:  now,
		})
		l.data.NextTaskID++
	}
}

// seedAdmin makes sure the reserved account exists and is an admin. Without
// a configured password the account is created locked, and it gets a hash
// the first time one is configured. An existing hash is never replaced.
func (l *Local) seedAdmin(admin config.AdminConfig) error {
	if admin.Username == "" {
		return nil
	}

	if u := l.findUser(admin.Username); u != nil {
		if !u.IsAdmin {
			u.IsAdmin = true
			slog.Info("mirror admin restored", "username", u.Username)
		}
		if u.PasswordHash != "" || admin.Password == "" {
			return nil
		}
		hash, err := core.HashPassword(admin.Password)
		if err != nil {
			return fmt.Errorf("seed mirror admin: %w", err)
		}
		u.PasswordHash = hash
		return nil
	}

	var hash string
	if admin.Password != "" {
		var err error
		if hash, err = core.HashPassword(admin.Password); err != nil {
			return fmt.Errorf("seed mirror admin: %w", err)
		}
	}

	l.addUser(admin.Username, admin.Phone, hash, true)
	if hash == "" {
		slog.Warn("mirror admin seeded without a password, login disabled", "username", admin.Username)
	} else {
		slog.Info("mirror admin seeded", "username", admin.Username)
	}
	return nil
}

// persist must run with mu held, or before the Local is shared.
func (l *Local) persist() error {
	raw, err := json.MarshalIndent(l.data, "", "  ")
	if err != nil {
		return fmt.Errorf("encode mirror: %w", err)
	}

	dir := filepath.Dir(l.path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("create mirror dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".getcash-mirror-*.tmp")
	if err != nil {
		return fmt.Errorf("create mirror temp file: %w", err)
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck // gone after a successful rename

	if _, err := tmp.Write(raw); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write mirror: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("sync mirror: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close mirror: %w", err)
	}

	if err := os.Rename(tmp.Name(), l.path); err != nil {
		return fmt.Errorf("replace mirror: %w", err)
	}
	return nil
}

// mutate runs fn under the lock and persists when it reports a change. A
// failed write restores the previous in-memory state.
func (l *Local) mutate(fn func() (*Envelope, bool)) (*Envelope, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	before, err := json.Marshal(l.data)
	if err != nil {
		return nil, fmt.Errorf("snapshot mirror: %w", err)
	}

	env, changed := fn()
	if !changed {
		return env, nil
	}

	if err := l.persist(); err != nil {
		l.data = mirrorData{}
		_ = json.Unmarshal(before, &l.data)
		return nil, err
	}
	return env, nil
}

func (l *Local) read(fn func() *Envelope) *Envelope {
	l.mu.Lock()
	defer l.mu.Unlock()
	return fn()
}

func (l *Local) findUser(username string) *localUser {
	for i := range l.data.Users {
		if l.data.Users[i].Username == username {
			return &l.data.Users[i]
		}
	}
	return nil
}

func (l *Local) addUser(username, phone, hash string, isAdmin bool) localUser {
	u := localUser{
		ID:           l.data.NextUserID,
		Username:     username,
		Phone:        phone,
		PasswordHash: hash,
		IsAdmin:      isAdmin,
		JoinDate:     l.now().UTC(),
	}
	l.data.NextUserID++
	l.data.Users = append(l.data.Users, u)
	l.data.Wallets = append(l.data.Wallets, localWallet{
		UserID:    u.ID,
		JobLevel:  wallet.LevelTrainee,
		UpdatedAt: u.JoinDate,
	})
	return u
}

func (l *Local) findTask(id int64) bool {
	for _, t := range l.data.Tasks {
		if t.ID == id {
			return true
		}
	}
	return false
}

func (l *Local) walletFor(userID int64) *wallet.Wallet {
	for _, w := range l.data.Wallets {
		if w.UserID == userID {
			return &wallet.Wallet{
				UserID:              w.UserID,
				IncomeWallet:        w.IncomeWallet,
				PersonalWallet:      w.PersonalWallet,
				TotalEarnings:       w.TotalEarnings,
				TotalWithdrawals:    w.TotalWithdrawals,
				JobLevel:            w.JobLevel,
				TasksCompletedToday: w.TasksCompletedToday,
				LastTaskDate:        w.LastTaskDate,
				UpdatedAt:           w.UpdatedAt,
			}
		}
	}
	return wallet.NewWallet(userID)
}

func (l *Local) storeWallet(w *wallet.Wallet) {
	stored := localWallet{
		UserID:              w.UserID,
		IncomeWallet:        w.IncomeWallet,
		PersonalWallet:      w.PersonalWallet,
		TotalEarnings:       w.TotalEarnings,
		TotalWithdrawals:    w.TotalWithdrawals,
		JobLevel:            w.JobLevel,
		TasksCompletedToday: w.TasksCompletedToday,
		LastTaskDate:        w.LastTaskDate,
		UpdatedAt:           w.UpdatedAt,
	}

	for i := range l.data.Wallets {
		if l.data.Wallets[i].UserID == w.UserID {
			l.data.Wallets[i] = stored
			return
		}
	}
	l.data.Wallets = append(l.data.Wallets, stored)
}

func (l *Local) completionIndex(userID, taskID int64) int {
	for i, c := range l.data.Completions {
		if c.UserID == userID && c.TaskID == taskID {
			return i
		}
	}
	return -1
}

func rejected(err error) *Envelope {
	if appErr, ok := core.AsAppError(err); ok {
		return &Envelope{Success: false, Message: appErr.Message, Code: appErr.Code, Offline: true}
	}
	return &Envelope{Success: false, Message: err.Error(), Offline: true}
}

func notLoggedIn() *Envelope {
	return rejected(core.UnauthorizedError("Not logged in"))
}

func (l *Local) Register(_ context.Context, in RegisterInput) (*Envelope, error) {
	username := strings.TrimSpace(in.Username)
	phone := strings.TrimSpace(in.Phone)
	if username == "" || in.Password == "" || phone == "" {
		return rejected(core.BadRequestError("Username, password and phone are required")), nil
	}

	hash, err := core.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	return l.mutate(func() (*Envelope, bool) {
		if l.findUser(username) != nil {
			return rejected(core.DuplicateError("Username already exists.")), false
		}
		for _, u := range l.data.Users {
			if u.Phone == phone {
				return rejected(core.DuplicateError("Phone number already registered")), false
			}
		}

		u := l.addUser(username, phone, hash, false)
		return &Envelope{
			Success: true,
			Message: "Registration successful.",
			Offline: true,
			User: &auth.RegisteredUser{
				ID:       u.ID,
				Username: u.Username,
				Phone:    u.Phone,
				JoinDate: u.JoinDate,
			},
		}, true
	})
}

func (l *Local) Login(_ context.Context, username, password string) (*Envelope, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	u := l.findUser(strings.TrimSpace(username))
	var hash *string
	if u != nil {
		hash = &u.PasswordHash
	}

	ok, err := core.VerifyPasswordTimingSafe(password, hash)
	if err != nil {
		return nil, fmt.Errorf("verify mirror password: %w", err)
	}
	if u == nil || !ok {
		return rejected(core.UnauthorizedError("Invalid credentials.")), nil
	}

	l.session = u.ID
	return &Envelope{
		Success:  true,
		Message:  "Login successful.",
		Offline:  true,
		Token:    "local-" + uuid.NewString(),
		UserID:   u.ID,
		Username: u.Username,
		IsAdmin:  u.IsAdmin,
	}, nil
}

func (l *Local) Logout(_ context.Context) (*Envelope, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.session = 0
	return &Envelope{Success: true, Message: "Logged out", Offline: true}, nil
}

func (l *Local) ListTasks(_ context.Context) (*Envelope, error) {
	return l.read(func() *Envelope {
		tasks := make([]task.TaskResponse, len(l.data.Tasks))
		copy(tasks, l.data.Tasks)
		return &Envelope{Success: true, Offline: true, Tasks: tasks}
	}), nil
}

func (l *Local) CompleteTask(_ context.Context, taskID int64) (*Envelope, error) {
	return l.mutate(func() (*Envelope, bool) {
		if l.session == 0 {
			return notLoggedIn(), false
		}
		if !l.findTask(taskID) {
			return rejected(core.NotFoundError("task")), false
		}
		if l.completionIndex(l.session, taskID) >= 0 {
			return &Envelope{
				Success:          false,
				Message:          "Task already completed",
				Offline:          true,
				AlreadyCompleted: true,
			}, false
		}

		w := l.walletFor(l.session)
		tariff := wallet.TariffFor(w.JobLevel)
		now := l.now()

		if l.rewards.EnforceDailyQuota && wallet.TasksToday(w, now) >= tariff.DailyTaskQuota {
			return rejected(wallet.DailyQuotaError()), false
		}

		wallet.Credit(w, tariff.PerTaskReward, now)
		l.storeWallet(w)
		l.data.Completions = append(l.data.Completions, localCompletion{
			UserID:      l.session,
			TaskID:      taskID,
			CompletedAt: now.UTC(),
		})

		return &Envelope{
			Success:    true,
			Message:    "Task completed! You earned " + core.FormatUGX(tariff.PerTaskReward),
			Offline:    true,
			Earnings:   tariff.PerTaskReward,
			NewBalance: w.PersonalWallet,
			JobLevel:   tariff.Level,
		}, true
	})
}

func (l *Local) ListCompleted(_ context.Context) (*Envelope, error) {
	return l.read(func() *Envelope {
		if l.session == 0 {
			return notLoggedIn()
		}

		ids := []int64{}
		for _, c := range l.data.Completions {
			if c.UserID == l.session {
				ids = append(ids, c.TaskID)
			}
		}
		return &Envelope{Success: true, Offline: true, CompletedTasks: ids}
	}), nil
}

func (l *Local) RemoveCompletion(_ context.Context, taskID int64) (*Envelope, error) {
	return l.mutate(func() (*Envelope, bool) {
		if l.session == 0 {
			return notLoggedIn(), false
		}

		i := l.completionIndex(l.session, taskID)
		if i < 0 {
			return &Envelope{Success: true, Message: "Task was not completed", Offline: true}, false
		}

		l.data.Completions = append(l.data.Completions[:i], l.data.Completions[i+1:]...)
		return &Envelope{Success: true, Message: "Task completion removed", Offline: true, Removed: true}, true
	})
}

func (l *Local) UserData(_ context.Context) (*Envelope, error) {
	return l.read(func() *Envelope {
		if l.session == 0 {
			return notLoggedIn()
		}

		w := l.walletFor(l.session)
		view := wallet.ToUserDataView(&wallet.UserData{
			Wallet:     *w,
			Tariff:     wallet.TariffFor(w.JobLevel),
			TasksToday: wallet.TasksToday(w, l.now()),
		})
		return &Envelope{Success: true, Offline: true, UserData: &view}
	}), nil
}

func (l *Local) RequestWithdrawal(_ context.Context, req wallet.WithdrawalRequest) (*Envelope, error) {
	return l.mutate(func() (*Envelope, bool) {
		if l.session == 0 {
			return notLoggedIn(), false
		}

		w := l.walletFor(l.session)
		if err := wallet.ValidateWithdrawal(req, w.PersonalWallet, l.rewards.MinWithdrawal); err != nil {
			return rejected(err), false
		}

		now := l.now()
		fee := wallet.ComputeFee(req.Amount, l.rewards.WithdrawalFeeBps)
		record := wallet.WithdrawalResponse{
			ID:            uuid.New(),
			UserID:        l.session,
			Amount:        req.Amount,
			Fee:           fee,
			FinalAmount:   req.Amount - fee,
			Phone:         req.Phone,
			RecipientName: req.RecipientName,
			Network:       req.Network,
			Status:        wallet.WithdrawalStatusProcessing,
			CreatedAt:     now.UTC(),
		}

		wallet.Debit(w, req.Amount, now)
		l.storeWallet(w)
		l.data.Withdrawals = append(l.data.Withdrawals, record)

		return &Envelope{
			Success:    true,
			Message:    "Withdrawal request submitted",
			Offline:    true,
			Withdrawal: &record,
			NewBalance: w.PersonalWallet,
		}, true
	})
}

func (l *Local) UpgradeJob(_ context.Context, in UpgradeInput) (*Envelope, error) {
	return l.mutate(func() (*Envelope, bool) {
		if l.session == 0 {
			return notLoggedIn(), false
		}

		tariff, err := wallet.CheckUpgrade(in.JobLevel, in.InvestmentAmount)
		if err != nil {
			return rejected(err), false
		}

		w := l.walletFor(l.session)
		w.JobLevel = tariff.Level
		w.UpdatedAt = l.now()
		l.storeWallet(w)

		return &Envelope{
			Success:        true,
			Message:        "Job level upgraded to " + tariff.Level,
			Offline:        true,
			JobLevel:       tariff.Level,
			PerTaskEarning: tariff.PerTaskReward,
		}, true
	})
}

func (l *Local) JobLevels(_ context.Context) (*Envelope, error) {
	return &Envelope{Success: true, Offline: true, JobLevels: wallet.Levels()}, nil
}

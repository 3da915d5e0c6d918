// AngelaMos | 2026
// service.go

package wallet

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/buttuura/getcash/internal/config"
	"github.com/buttuura/getcash/internal/core"
)

const tracerScope = "getcash/wallet"

type UserChecker interface {
	UserExists(ctx context.Context, id int64) (bool, error)
}

type TaskChecker interface {
	TaskExists(ctx context.Context, id int64) (bool, error)
}

// Observer receives ledger events after they commit.
type Observer interface {
	TaskCompleted(reward int64)
	WithdrawalRequested(amount, fee int64)
	JobUpgraded(level string)
	Rejected(operation string)
}

type nopObserver struct{}

func (nopObserver) TaskCompleted(int64)              {}
func (nopObserver) WithdrawalRequested(int64, int64) {}
func (nopObserver) JobUpgraded(string)               {}
func (nopObserver) Rejected(string)                  {}

type Service struct {
	repo     Repository
	users    UserChecker
	tasks    TaskChecker
	rewards  config.RewardsConfig
	observer Observer
	now      func() time.Time
}

func NewService(
	repo Repository,
	users UserChecker,
	tasks TaskChecker,
	rewards config.RewardsConfig,
	observer Observer,
) *Service {
	if rewards.MinWithdrawal <= 0 {
		rewards.MinWithdrawal = DefaultMinWithdrawal
	}
	if rewards.WithdrawalFeeBps == 0 {
		rewards.WithdrawalFeeBps = DefaultFeeBps
	}
	if observer == nil {
		observer = nopObserver{}
	}

	return &Service{
		repo:     repo,
		users:    users,
		tasks:    tasks,
		rewards:  rewards,
		observer: observer,
		now:      time.Now,
	}
}

type CompletionResult struct {
	Reward     int64
	NewBalance int64
	JobLevel   string
}

// CompleteTask records the pair and credits the tier reward once. A repeat
// returns ErrAlreadyCompleted and leaves the wallet untouched.
func (s *Service) CompleteTask(ctx context.Context, userID, taskID int64) (*CompletionResult, error) {
	ctx, span := core.StartSpan(ctx, tracerScope, "wallet.CompleteTask",
		core.AttrUserID.Int64(userID),
		core.AttrTaskID.Int64(taskID),
	)
	defer span.End()

	if err := s.requireUser(ctx, userID); err != nil {
		return nil, err
	}

	exists, err := s.tasks.TaskExists(ctx, taskID)
	if err != nil {
		return nil, fmt.Errorf("complete task: %w", err)
	}
	if !exists {
		return nil, core.NotFoundError("task")
	}

	var result CompletionResult
	err = s.repo.InTx(ctx, func(repo Repository) error {
		w, err := repo.GetForUpdate(ctx, userID)
		if err != nil {
			return err
		}

		inserted, err := repo.InsertCompletion(ctx, userID, taskID)
		if err != nil {
			return err
		}
		if !inserted {
			return ErrAlreadyCompleted
		}

		tariff := TariffFor(w.JobLevel)
		now := s.now()

		// Returning here rolls the insert back.
		if s.rewards.EnforceDailyQuota && TasksToday(w, now) >= tariff.DailyTaskQuota {
			return DailyQuotaError()
		}

		Credit(w, tariff.PerTaskReward, now)
		if err := repo.Save(ctx, w); err != nil {
			return err
		}

		result = CompletionResult{
			Reward:     tariff.PerTaskReward,
			NewBalance: w.PersonalWallet,
			JobLevel:   tariff.Level,
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrAlreadyCompleted) || errors.Is(err, ErrDailyQuotaReached) {
			s.observer.Rejected("complete_task")
			return nil, err
		}
		core.SetSpanError(ctx, err)
		slog.ErrorContext(ctx, "failed to mark task as completed",
			"user_id", userID,
			"task_id", taskID,
			"error", err,
		)
		return nil, fmt.Errorf("failed to mark task as completed: %w", err)
	}

	s.observer.TaskCompleted(result.Reward)
	core.AddSpanEvent(ctx, "reward.credited",
		core.AttrAmount.Int64(result.Reward),
		core.AttrBalance.Int64(result.NewBalance),
	)
	slog.InfoContext(ctx, "task completed",
		"user_id", userID,
		"task_id", taskID,
		"reward", result.Reward,
		"balance", result.NewBalance,
	)

	return &result, nil
}

func (s *Service) ListCompleted(ctx context.Context, userID int64) ([]int64, error) {
	return s.repo.ListCompleted(ctx, userID)
}

// RemoveCompletion deletes the record only. The reward stays credited.
func (s *Service) RemoveCompletion(ctx context.Context, userID, taskID int64) (bool, error) {
	removed, err := s.repo.DeleteCompletion(ctx, userID, taskID)
	if err != nil {
		return false, err
	}

	if removed {
		slog.InfoContext(ctx, "completion removed", "user_id", userID, "task_id", taskID)
	}
	return removed, nil
}

type WithdrawalResult struct {
	Withdrawal Withdrawal
	NewBalance int64
}

func (s *Service) RequestWithdrawal(
	ctx context.Context,
	userID int64,
	req WithdrawalRequest,
) (*WithdrawalResult, error) {
	ctx, span := core.StartSpan(ctx, tracerScope, "wallet.RequestWithdrawal",
		core.AttrUserID.Int64(userID),
		core.AttrAmount.Int64(req.Amount),
	)
	defer span.End()

	if err := s.requireUser(ctx, userID); err != nil {
		return nil, err
	}

	var result WithdrawalResult
	err := s.repo.InTx(ctx, func(repo Repository) error {
		w, err := repo.GetForUpdate(ctx, userID)
		if err != nil {
			return err
		}

		if err := ValidateWithdrawal(req, w.PersonalWallet, s.rewards.MinWithdrawal); err != nil {
			return err
		}

		fee := ComputeFee(req.Amount, s.rewards.WithdrawalFeeBps)
		wd := Withdrawal{
			ID:            uuid.New(),
			UserID:        userID,
			Amount:        req.Amount,
			Fee:           fee,
			FinalAmount:   req.Amount - fee,
			Phone:         req.Phone,
			RecipientName: req.RecipientName,
			Network:       req.Network,
			Status:        WithdrawalStatusProcessing,
		}

		Debit(w, req.Amount, s.now())
		if err := repo.Save(ctx, w); err != nil {
			return err
		}
		if err := repo.CreateWithdrawal(ctx, &wd); err != nil {
			return err
		}

		result = WithdrawalResult{Withdrawal: wd, NewBalance: w.PersonalWallet}
		return nil
	})
	if err != nil {
		if core.IsAppError(err) {
			s.observer.Rejected("withdrawal")
			return nil, err
		}
		core.SetSpanError(ctx, err)
		slog.ErrorContext(ctx, "withdrawal failed", "user_id", userID, "error", err)
		return nil, fmt.Errorf("request withdrawal: %w", err)
	}

	s.observer.WithdrawalRequested(result.Withdrawal.Amount, result.Withdrawal.Fee)
	slog.InfoContext(ctx, "withdrawal requested",
		"user_id", userID,
		"withdrawal_id", result.Withdrawal.ID,
		"amount", result.Withdrawal.Amount,
		"fee", result.Withdrawal.Fee,
		"balance", result.NewBalance,
	)

	return &result, nil
}

func (s *Service) ListWithdrawals(ctx context.Context, userID int64) ([]Withdrawal, error) {
	return s.repo.ListWithdrawals(ctx, userID)
}

// UpgradeJobLevel sets the tier. The investment is checked, not deducted.
func (s *Service) UpgradeJobLevel(
	ctx context.Context,
	userID int64,
	level string,
	investment int64,
) (Tariff, error) {
	tariff, err := CheckUpgrade(level, investment)
	if err != nil {
		s.observer.Rejected("upgrade_job")
		return Tariff{}, err
	}

	if err := s.requireUser(ctx, userID); err != nil {
		return Tariff{}, err
	}

	err = s.repo.InTx(ctx, func(repo Repository) error {
		w, err := repo.GetForUpdate(ctx, userID)
		if err != nil {
			return err
		}

		w.JobLevel = tariff.Level
		w.UpdatedAt = s.now()
		return repo.Save(ctx, w)
	})
	if err != nil {
		return Tariff{}, fmt.Errorf("upgrade job level: %w", err)
	}

	s.observer.JobUpgraded(tariff.Level)
	core.AddSpanEvent(ctx, "job.upgraded",
		core.AttrUserID.Int64(userID),
		core.AttrJobLevel.String(tariff.Level),
	)
	slog.InfoContext(ctx, "job level upgraded",
		"user_id", userID,
		"job_level", tariff.Level,
		"investment", investment,
	)

	return tariff, nil
}

type UserData struct {
	Wallet Wallet
	Tariff Tariff
	// TasksToday already accounts for a counter left over from an earlier day.
	TasksToday int
}

func (s *Service) GetUserData(ctx context.Context, userID int64) (*UserData, error) {
	if err := s.requireUser(ctx, userID); err != nil {
		return nil, err
	}

	w, err := s.repo.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &UserData{
		Wallet:     *w,
		Tariff:     TariffFor(w.JobLevel),
		TasksToday: TasksToday(w, s.now()),
	}, nil
}

func (s *Service) JobLevels() []Tariff {
	return Levels()
}

func (s *Service) requireUser(ctx context.Context, userID int64) error {
	exists, err := s.users.UserExists(ctx, userID)
	if err != nil {
		return fmt.Errorf("check user: %w", err)
	}
	if !exists {
		return core.NotFoundError("user")
	}
	return nil
}

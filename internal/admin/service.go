// AngelaMos | 2026
// service.go

package admin

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/buttuura/getcash/internal/core"
	"github.com/buttuura/getcash/internal/metrics"
	"github.com/buttuura/getcash/internal/task"
)

const DefaultCleanupDays = 30

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

func (s *Service) Counts(ctx context.Context) (Counts, error) {
	return s.repo.Counts(ctx)
}

// MetricCounts matches metrics.CountFunc so the collector can scrape the
// same queries the stats endpoint uses.
func (s *Service) MetricCounts(ctx context.Context) (metrics.Counts, error) {
	c, err := s.repo.Counts(ctx)
	if err != nil {
		return metrics.Counts{}, err
	}

	return metrics.Counts{
		Users:          c.Users,
		Tasks:          c.Tasks,
		CompletedTasks: c.CompletedTasks,
		Withdrawals:    c.Withdrawals,
	}, nil
}

func (s *Service) Export(ctx context.Context) (*Export, error) {
	users, err := s.repo.Users(ctx)
	if err != nil {
		return nil, err
	}

	tasks, err := s.repo.Tasks(ctx)
	if err != nil {
		return nil, err
	}

	completions, err := s.repo.Completions(ctx)
	if err != nil {
		return nil, err
	}

	wallets, err := s.repo.Wallets(ctx)
	if err != nil {
		return nil, err
	}

	out := &Export{
		ExportedAt:     s.now().UTC(),
		Users:          users,
		Tasks:          task.ToTaskResponseList(tasks),
		CompletedTasks: completions,
		Wallets:        make([]ExportWallet, 0, len(wallets)),
	}
	for _, w := range wallets {
		out.Wallets = append(out.Wallets, ExportWallet{
			UserID:              w.UserID,
			IncomeWallet:        w.IncomeWallet,
			PersonalWallet:      w.PersonalWallet,
			TotalEarnings:       w.TotalEarnings,
			TotalWithdrawals:    w.TotalWithdrawals,
			JobLevel:            w.JobLevel,
			TasksCompletedToday: w.TasksCompletedToday,
			LastTaskDate:        w.LastTaskDate,
			UpdatedAt:           w.UpdatedAt,
		})
	}

	return out, nil
}

// Cleanup drops completion records older than days. Wallet balances are
// not touched.
func (s *Service) Cleanup(ctx context.Context, days int) (int64, error) {
	if days <= 0 {
		return 0, fmt.Errorf("cleanup days %d: %w", days, core.ErrInvalidInput)
	}

	cutoff := s.now().AddDate(0, 0, -days)
	n, err := s.repo.DeleteCompletionsBefore(ctx, cutoff)
	if err != nil {
		return 0, err
	}

	slog.InfoContext(ctx, "old completions removed", "days", days, "deleted", n)
	return n, nil
}

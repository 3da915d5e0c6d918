// AngelaMos | 2026
// service.go

package task

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/buttuura/getcash/internal/core"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Create(ctx context.Context, req CreateTaskRequest) (*Task, error) {
	category := strings.TrimSpace(req.Category)
	if category == "" {
		category = CategoryGeneral
	}

	task := &Task{
		Title:     strings.TrimSpace(req.Title),
		Price:     req.Price,
		ImageData: req.ImageData,
		Category:  category,
		Status:    StatusAvailable,
	}

	if err := s.repo.Create(ctx, task); err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "task created", "task_id", task.ID, "price", task.Price)
	return task, nil
}

func (s *Service) List(ctx context.Context) ([]Task, error) {
	return s.repo.List(ctx)
}

// ListByDate accepts a calendar date in YYYY-MM-DD form.
func (s *Service) ListByDate(ctx context.Context, date string) ([]Task, error) {
	day, err := time.Parse(DateLayout, date)
	if err != nil {
		return nil, fmt.Errorf("list by date %q: %w", date, core.ErrInvalidInput)
	}

	return s.repo.ListByDate(ctx, day)
}

// TaskExists lets the ledger check task ids without importing this package.
func (s *Service) TaskExists(ctx context.Context, id int64) (bool, error) {
	return s.repo.Exists(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id int64) (bool, error) {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return false, err
	}

	if deleted {
		slog.InfoContext(ctx, "task deleted", "task_id", id)
	}
	return deleted, nil
}

func (s *Service) DeleteAll(ctx context.Context) (int64, error) {
	n, err := s.repo.DeleteAll(ctx)
	if err != nil {
		return 0, err
	}

	slog.InfoContext(ctx, "all tasks deleted", "count", n)
	return n, nil
}

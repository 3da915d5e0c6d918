// AngelaMos | 2026
// repository.go

package admin

import (
	"context"
	"fmt"
	"time"

	"github.com/buttuura/getcash/internal/core"
	"github.com/buttuura/getcash/internal/task"
	"github.com/buttuura/getcash/internal/wallet"
)

type Repository interface {
	Counts(ctx context.Context) (Counts, error)
	Users(ctx context.Context) ([]ExportUser, error)
	Tasks(ctx context.Context) ([]task.Task, error)
	Completions(ctx context.Context) ([]ExportCompletion, error)
	Wallets(ctx context.Context) ([]wallet.Wallet, error)
	DeleteCompletionsBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

type Counts struct {
	Users          int64 `db:"users"          json:"users"`
	Tasks          int64 `db:"tasks"          json:"tasks"`
	CompletedTasks int64 `db:"completed_tasks" json:"completedTasks"`
	Withdrawals    int64 `db:"withdrawals"    json:"withdrawals"`
}

func (r *repository) Counts(ctx context.Context) (Counts, error) {
	query := `
		SELECT
			(SELECT COUNT(*) FROM users)           AS users,
			(SELECT COUNT(*) FROM tasks)           AS tasks,
			(SELECT COUNT(*) FROM completed_tasks) AS completed_tasks,
			(SELECT COUNT(*) FROM withdrawals)     AS withdrawals`

	var c Counts
	if err := r.db.GetContext(ctx, &c, query); err != nil {
		return Counts{}, fmt.Errorf("count entities: %w", err)
	}
	return c, nil
}

// Users never selects the password hash.
func (r *repository) Users(ctx context.Context) ([]ExportUser, error) {
	query := `
		SELECT id, username, phone, is_admin, created_at
		FROM users
		ORDER BY id`

	users := []ExportUser{}
	if err := r.db.SelectContext(ctx, &users, query); err != nil {
		return nil, fmt.Errorf("export users: %w", err)
	}
	return users, nil
}

func (r *repository) Tasks(ctx context.Context) ([]task.Task, error) {
	query := `
		SELECT id, title, price, image_data, category, status, upload_date, created_at
		FROM tasks
		ORDER BY id`

	tasks := []task.Task{}
	if err := r.db.SelectContext(ctx, &tasks, query); err != nil {
		return nil, fmt.Errorf("export tasks: %w", err)
	}
	return tasks, nil
}

func (r *repository) Completions(ctx context.Context) ([]ExportCompletion, error) {
	query := `
		SELECT user_id, task_id, completed_at
		FROM completed_tasks
		ORDER BY completed_at`

	out := []ExportCompletion{}
	if err := r.db.SelectContext(ctx, &out, query); err != nil {
		return nil, fmt.Errorf("export completions: %w", err)
	}
	return out, nil
}

func (r *repository) Wallets(ctx context.Context) ([]wallet.Wallet, error) {
	query := `
		SELECT user_id, income_wallet, personal_wallet, total_earnings,
			total_withdrawals, job_level, tasks_completed_today, last_task_date, updated_at
		FROM wallets
		ORDER BY user_id`

	out := []wallet.Wallet{}
	if err := r.db.SelectContext(ctx, &out, query); err != nil {
		return nil, fmt.Errorf("export wallets: %w", err)
	}
	return out, nil
}

func (r *repository) DeleteCompletionsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM completed_tasks WHERE completed_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("cleanup completions: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("cleanup completions: %w", err)
	}
	return rows, nil
}

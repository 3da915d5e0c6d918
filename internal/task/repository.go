// AngelaMos | 2026
// repository.go

package task

import (
	"context"
	"fmt"
	"time"

	"github.com/buttuura/getcash/internal/core"
)

type Repository interface {
	Create(ctx context.Context, task *Task) error
	List(ctx context.Context) ([]Task, error)
	ListByDate(ctx context.Context, date time.Time) ([]Task, error)
	Exists(ctx context.Context, id int64) (bool, error)
	Delete(ctx context.Context, id int64) (bool, error)
	DeleteAll(ctx context.Context) (int64, error)
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

const taskColumns = `id, title, price, image_data, category, status, upload_date, created_at`

func (r *repository) Create(ctx context.Context, task *Task) error {
	query := `
		INSERT INTO tasks (title, price, image_data, category, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, upload_date, created_at`

	err := r.db.QueryRowxContext(ctx, query,
		task.Title,
		task.Price,
		task.ImageData,
		task.Category,
		task.Status,
	).Scan(&task.ID, &task.UploadDate, &task.CreatedAt)
	if err != nil {
		return fmt.Errorf("create task: %w", err)
	}

	return nil
}

func (r *repository) List(ctx context.Context) ([]Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks ORDER BY created_at DESC`

	tasks := []Task{}
	if err := r.db.SelectContext(ctx, &tasks, query); err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}

	return tasks, nil
}

func (r *repository) ListByDate(ctx context.Context, date time.Time) ([]Task, error) {
	query := `
		SELECT ` + taskColumns + `
		FROM tasks
		WHERE upload_date = $1
		ORDER BY created_at DESC`

	tasks := []Task{}
	if err := r.db.SelectContext(ctx, &tasks, query, date.Format(DateLayout)); err != nil {
		return nil, fmt.Errorf("list tasks by date: %w", err)
	}

	return tasks, nil
}

func (r *repository) Exists(ctx context.Context, id int64) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM tasks WHERE id = $1)`

	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, id); err != nil {
		return false, fmt.Errorf("check task exists: %w", err)
	}

	return exists, nil
}

// Delete removes the task. Its completion records go with it through the
// ON DELETE CASCADE foreign key.
func (r *repository) Delete(ctx context.Context, id int64) (bool, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete task: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete task: %w", err)
	}

	return rows > 0, nil
}

func (r *repository) DeleteAll(ctx context.Context) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM tasks`)
	if err != nil {
		return 0, fmt.Errorf("delete all tasks: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete all tasks: %w", err)
	}

	return rows, nil
}

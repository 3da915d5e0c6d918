// AngelaMos | 2026
// repository.go

package wallet

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/buttuura/getcash/internal/core"
)

// Repository is the ledger store. Every read-modify-write runs through
// InTx with the wallet row loaded by GetForUpdate.
type Repository interface {
	InTx(ctx context.Context, fn func(repo Repository) error) error

	Get(ctx context.Context, userID int64) (*Wallet, error)
	GetForUpdate(ctx context.Context, userID int64) (*Wallet, error)
	Save(ctx context.Context, w *Wallet) error

	InsertCompletion(ctx context.Context, userID, taskID int64) (bool, error)
	DeleteCompletion(ctx context.Context, userID, taskID int64) (bool, error)
	ListCompleted(ctx context.Context, userID int64) ([]int64, error)

	CreateWithdrawal(ctx context.Context, wd *Withdrawal) error
	ListWithdrawals(ctx context.Context, userID int64) ([]Withdrawal, error)
}

type repository struct {
	db core.DBTX
	tx core.TxBeginner
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db, tx: db}
}

const walletColumns = `user_id, income_wallet, personal_wallet, total_earnings,
	total_withdrawals, job_level, tasks_completed_today, last_task_date, updated_at`

func (r *repository) InTx(ctx context.Context, fn func(repo Repository) error) error {
	if r.tx == nil {
		return fn(r)
	}

	return core.InTx(ctx, r.tx, func(tx *sqlx.Tx) error {
		return fn(&repository{db: tx})
	})
}

func (r *repository) ensure(ctx context.Context, userID int64) error {
	query := `
		INSERT INTO wallets (user_id)
		VALUES ($1)
		ON CONFLICT (user_id) DO NOTHING`

	if _, err := r.db.ExecContext(ctx, query, userID); err != nil {
		return fmt.Errorf("ensure wallet: %w", err)
	}
	return nil
}

func (r *repository) Get(ctx context.Context, userID int64) (*Wallet, error) {
	if err := r.ensure(ctx, userID); err != nil {
		return nil, err
	}

	query := `SELECT ` + walletColumns + ` FROM wallets WHERE user_id = $1`

	var w Wallet
	if err := r.db.GetContext(ctx, &w, query, userID); err != nil {
		return nil, fmt.Errorf("get wallet: %w", err)
	}
	return &w, nil
}

func (r *repository) GetForUpdate(ctx context.Context, userID int64) (*Wallet, error) {
	if err := r.ensure(ctx, userID); err != nil {
		return nil, err
	}

	query := `SELECT ` + walletColumns + ` FROM wallets WHERE user_id = $1 FOR UPDATE`

	var w Wallet
	if err := r.db.GetContext(ctx, &w, query, userID); err != nil {
		return nil, fmt.Errorf("lock wallet: %w", err)
	}
	return &w, nil
}

func (r *repository) Save(ctx context.Context, w *Wallet) error {
	query := `
		UPDATE wallets
		SET income_wallet = $2,
			personal_wallet = $3,
			total_earnings = $4,
			total_withdrawals = $5,
			job_level = $6,
			tasks_completed_today = $7,
			last_task_date = $8,
			updated_at = NOW()
		WHERE user_id = $1
		RETURNING updated_at`

	err := r.db.QueryRowxContext(ctx, query,
		w.UserID,
		w.IncomeWallet,
		w.PersonalWallet,
		w.TotalEarnings,
		w.TotalWithdrawals,
		w.JobLevel,
		w.TasksCompletedToday,
		w.LastTaskDate,
	).Scan(&w.UpdatedAt)
	if err != nil {
		return fmt.Errorf("save wallet: %w", err)
	}
	return nil
}

// InsertCompletion reports false when the pair was already recorded.
func (r *repository) InsertCompletion(ctx context.Context, userID, taskID int64) (bool, error) {
	query := `
		INSERT INTO completed_tasks (user_id, task_id)
		VALUES ($1, $2)
		ON CONFLICT (user_id, task_id) DO NOTHING`

	result, err := r.db.ExecContext(ctx, query, userID, taskID)
	if err != nil {
		return false, fmt.Errorf("insert completion: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("insert completion: %w", err)
	}
	return rows == 1, nil
}

func (r *repository) DeleteCompletion(ctx context.Context, userID, taskID int64) (bool, error) {
	query := `DELETE FROM completed_tasks WHERE user_id = $1 AND task_id = $2`

	result, err := r.db.ExecContext(ctx, query, userID, taskID)
	if err != nil {
		return false, fmt.Errorf("delete completion: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete completion: %w", err)
	}
	return rows > 0, nil
}

func (r *repository) ListCompleted(ctx context.Context, userID int64) ([]int64, error) {
	query := `
		SELECT task_id
		FROM completed_tasks
		WHERE user_id = $1
		ORDER BY completed_at`

	ids := []int64{}
	if err := r.db.SelectContext(ctx, &ids, query, userID); err != nil {
		return nil, fmt.Errorf("list completed tasks: %w", err)
	}
	return ids, nil
}

func (r *repository) CreateWithdrawal(ctx context.Context, wd *Withdrawal) error {
	query := `
		INSERT INTO withdrawals (
			id, user_id, amount, fee, final_amount,
			phone, recipient_name, network, status
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at`

	err := r.db.QueryRowxContext(ctx, query,
		wd.ID,
		wd.UserID,
		wd.Amount,
		wd.Fee,
		wd.FinalAmount,
		wd.Phone,
		wd.RecipientName,
		wd.Network,
		wd.Status,
	).Scan(&wd.CreatedAt)
	if err != nil {
		return fmt.Errorf("create withdrawal: %w", err)
	}
	return nil
}

func (r *repository) ListWithdrawals(ctx context.Context, userID int64) ([]Withdrawal, error) {
	query := `
		SELECT id, user_id, amount, fee, final_amount, phone,
			recipient_name, network, status, created_at
		FROM withdrawals
		WHERE user_id = $1
		ORDER BY created_at DESC`

	out := []Withdrawal{}
	if err := r.db.SelectContext(ctx, &out, query, userID); err != nil {
		return nil, fmt.Errorf("list withdrawals: %w", err)
	}
	return out, nil
}

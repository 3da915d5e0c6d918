// AngelaMos | 2026
// entity.go

package wallet

import (
	"time"

	"github.com/google/uuid"
)

const WithdrawalStatusProcessing = "Processing"

type Wallet struct {
	UserID              int64      `db:"user_id"`
	IncomeWallet        int64      `db:"income_wallet"`
	PersonalWallet      int64      `db:"personal_wallet"`
	TotalEarnings       int64      `db:"total_earnings"`
	TotalWithdrawals    int64      `db:"total_withdrawals"`
	JobLevel            string     `db:"job_level"`
	TasksCompletedToday int        `db:"tasks_completed_today"`
	LastTaskDate        *time.Time `db:"last_task_date"`
	UpdatedAt           time.Time  `db:"updated_at"`
}

// NewWallet is the state a user starts with before any activity.
func NewWallet(userID int64) *Wallet {
	return &Wallet{UserID: userID, JobLevel: LevelTrainee}
}

type Withdrawal struct {
	ID            uuid.UUID `db:"id"`
	UserID        int64     `db:"user_id"`
	Amount        int64     `db:"amount"`
	Fee           int64     `db:"fee"`
	FinalAmount   int64     `db:"final_amount"`
	Phone         string    `db:"phone"`
	RecipientName string    `db:"recipient_name"`
	Network       string    `db:"network"`
	Status        string    `db:"status"`
	CreatedAt     time.Time `db:"created_at"`
}

// AngelaMos | 2026
// rules.go

package wallet

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/buttuura/getcash/internal/core"
)

const (
	DefaultMinWithdrawal = 10000
	DefaultFeeBps        = 200

	dateLayout = "2006-01-02"
)

var (
	ErrAlreadyCompleted       = errors.New("task already completed")
	ErrBelowMinimum           = errors.New("withdrawal below minimum")
	ErrPayoutDetailsMissing   = errors.New("payout details missing")
	ErrInsufficientBalance    = errors.New("insufficient balance")
	ErrInvalidJobLevel        = errors.New("invalid job level")
	ErrInsufficientInvestment = errors.New("insufficient investment")
	ErrDailyQuotaReached      = errors.New("daily task limit reached")
)

// ComputeFee rounds amount*bps/10000 half-up to a whole shilling.
func ComputeFee(amount, bps int64) int64 {
	return (amount*bps + 5000) / 10000
}

type WithdrawalRequest struct {
	Amount        int64  `json:"amount"`
	Phone         string `json:"phone"`
	RecipientName string `json:"recipientName"`
	Network       string `json:"network"`
}

// ValidateWithdrawal applies the checks in order and returns the first
// failure as a 400 AppError.
func ValidateWithdrawal(req WithdrawalRequest, balance, minimum int64) error {
	if req.Amount <= 0 || req.Amount < minimum {
		return core.NewAppError(
			ErrBelowMinimum,
			"Minimum withdrawal amount is "+core.FormatUGX(minimum),
			http.StatusBadRequest,
			"BELOW_MINIMUM",
		)
	}

	if strings.TrimSpace(req.Phone) == "" ||
		strings.TrimSpace(req.RecipientName) == "" ||
		strings.TrimSpace(req.Network) == "" {
		return core.NewAppError(
			ErrPayoutDetailsMissing,
			"Phone number, recipient name and network are required",
			http.StatusBadRequest,
			"PAYOUT_DETAILS_REQUIRED",
		)
	}

	if req.Amount > balance {
		return core.NewAppError(
			ErrInsufficientBalance,
			"Insufficient balance. Available: "+core.FormatUGX(balance),
			http.StatusBadRequest,
			"INSUFFICIENT_BALANCE",
		)
	}

	return nil
}

// CheckUpgrade resolves the target tier and confirms the investment covers it.
func CheckUpgrade(level string, investment int64) (Tariff, error) {
	t, ok := Lookup(level)
	if !ok {
		return Tariff{}, core.NewAppError(
			ErrInvalidJobLevel,
			"Invalid job level",
			http.StatusBadRequest,
			"INVALID_JOB_LEVEL",
		)
	}

	if investment < t.RequiredInvestment {
		return Tariff{}, core.NewAppError(
			ErrInsufficientInvestment,
			fmt.Sprintf("Minimum investment for %s level is %d UGX", t.Level, t.RequiredInvestment),
			http.StatusBadRequest,
			"INSUFFICIENT_INVESTMENT",
		)
	}

	return t, nil
}

func DailyQuotaError() error {
	return core.NewAppError(
		ErrDailyQuotaReached,
		"Daily task limit reached",
		http.StatusBadRequest,
		"DAILY_LIMIT_REACHED",
	)
}

// TasksToday is the count that applies on now's date. A stale counter
// from an earlier day reads as zero.
func TasksToday(w *Wallet, now time.Time) int {
	if w.LastTaskDate == nil {
		return 0
	}
	if w.LastTaskDate.UTC().Format(dateLayout) != now.UTC().Format(dateLayout) {
		return 0
	}
	return w.TasksCompletedToday
}

// Credit adds reward to the wallet and advances the daily counter.
func Credit(w *Wallet, reward int64, now time.Time) {
	today := time.Date(now.UTC().Year(), now.UTC().Month(), now.UTC().Day(), 0, 0, 0, 0, time.UTC)

	w.TasksCompletedToday = TasksToday(w, now) + 1
	w.LastTaskDate = &today
	w.PersonalWallet += reward
	w.TotalEarnings += reward
	w.UpdatedAt = now
}

// Debit removes a validated withdrawal amount from the wallet.
func Debit(w *Wallet, amount int64, now time.Time) {
	w.PersonalWallet -= amount
	w.TotalWithdrawals += amount
	w.UpdatedAt = now
}

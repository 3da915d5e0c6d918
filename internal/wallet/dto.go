// AngelaMos | 2026
// dto.go

package wallet

import (
	"time"

	"github.com/google/uuid"
)

type CompleteTaskResponse struct {
	Success    bool   `json:"success"`
	Message    string `json:"message"`
	Earnings   int64  `json:"earnings"`
	NewBalance int64  `json:"newBalance"`
	JobLevel   string `json:"jobLevel"`
}

type AlreadyCompletedResponse struct {
	Success          bool   `json:"success"`
	Message          string `json:"message"`
	AlreadyCompleted bool   `json:"alreadyCompleted"`
}

type CompletedTasksResponse struct {
	Success        bool    `json:"success"`
	CompletedTasks []int64 `json:"completedTasks"`
}

type RemoveCompletionResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Removed bool   `json:"removed"`
}

type UpgradeJobRequest struct {
	JobLevel         string `json:"jobLevel"         validate:"required"`
	InvestmentAmount int64  `json:"investmentAmount"`
}

type UpgradeJobResponse struct {
	Success        bool   `json:"success"`
	Message        string `json:"message"`
	JobLevel       string `json:"jobLevel"`
	PerTaskEarning int64  `json:"perTaskEarning"`
}

type JobLevelsResponse struct {
	Success   bool     `json:"success"`
	JobLevels []Tariff `json:"jobLevels"`
}

type WithdrawalResponse struct {
	ID            uuid.UUID `json:"id"`
	UserID        int64     `json:"userId"`
	Amount        int64     `json:"amount"`
	Fee           int64     `json:"fee"`
	FinalAmount   int64     `json:"finalAmount"`
	Phone         string    `json:"phone"`
	RecipientName string    `json:"recipientName"`
	Network       string    `json:"network"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"createdAt"`
}

type RequestWithdrawalResponse struct {
	Success    bool               `json:"success"`
	Message    string             `json:"message"`
	Withdrawal WithdrawalResponse `json:"withdrawal"`
	NewBalance int64              `json:"newBalance"`
}

type WithdrawalListResponse struct {
	Success     bool                 `json:"success"`
	Withdrawals []WithdrawalResponse `json:"withdrawals"`
}

type UserDataResponse struct {
	Success  bool         `json:"success"`
	UserData UserDataView `json:"userData"`
}

type UserDataView struct {
	IncomeWallet        int64   `json:"incomeWallet"`
	PersonalWallet      int64   `json:"personalWallet"`
	TotalEarnings       int64   `json:"totalEarnings"`
	TotalWithdrawals    int64   `json:"totalWithdrawals"`
	JobLevel            string  `json:"jobLevel"`
	PerTaskEarning      int64   `json:"perTaskEarning"`
	DailyTaskLimit      int     `json:"dailyTaskLimit"`
	TasksCompletedToday int     `json:"tasksCompletedToday"`
	LastTaskDate        *string `json:"lastTaskDate"`
}

func ToWithdrawalResponse(wd *Withdrawal) WithdrawalResponse {
	return WithdrawalResponse{
		ID:            wd.ID,
		UserID:        wd.UserID,
		Amount:        wd.Amount,
		Fee:           wd.Fee,
		FinalAmount:   wd.FinalAmount,
		Phone:         wd.Phone,
		RecipientName: wd.RecipientName,
		Network:       wd.Network,
		Status:        wd.Status,
		CreatedAt:     wd.CreatedAt,
	}
}

func ToWithdrawalResponseList(list []Withdrawal) []WithdrawalResponse {
	out := make([]WithdrawalResponse, 0, len(list))
	for i := range list {
		out = append(out, ToWithdrawalResponse(&list[i]))
	}
	return out
}

func ToUserDataView(d *UserData) UserDataView {
	v := UserDataView{
		IncomeWallet:        d.Wallet.IncomeWallet,
		PersonalWallet:      d.Wallet.PersonalWallet,
		TotalEarnings:       d.Wallet.TotalEarnings,
		TotalWithdrawals:    d.Wallet.TotalWithdrawals,
		JobLevel:            d.Tariff.Level,
		PerTaskEarning:      d.Tariff.PerTaskReward,
		DailyTaskLimit:      d.Tariff.DailyTaskQuota,
		TasksCompletedToday: d.TasksToday,
	}
	if d.Wallet.LastTaskDate != nil {
		day := d.Wallet.LastTaskDate.UTC().Format(dateLayout)
		v.LastTaskDate = &day
	}
	return v
}

// AngelaMos | 2026
// handler.go

package wallet

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/buttuura/getcash/internal/core"
	"github.com/buttuura/getcash/internal/middleware"
	"github.com/buttuura/getcash/internal/task"
)

type Handler struct {
	service   *Service
	validator *validator.Validate
}

func NewHandler(service *Service) *Handler {
	return &Handler{
		service:   service,
		validator: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// RegisterRoutes mounts the ledger endpoints. withdrawalLimit wraps only
// the withdrawal request.
func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator func(http.Handler) http.Handler,
	withdrawalLimit func(http.Handler) http.Handler,
) {
	r.Get("/job-levels", h.JobLevels)

	r.Group(func(r chi.Router) {
		r.Use(authenticator)

		r.Get("/tasks/completed", h.ListCompleted)
		r.Post("/tasks/{taskId}/complete", h.CompleteTask)
		r.Delete("/tasks/{taskId}/complete", h.RemoveCompletion)

		r.Get("/user/data", h.UserData)
		r.Post("/user/upgrade-job", h.UpgradeJob)

		r.Get("/withdrawals", h.ListWithdrawals)
		r.With(withdrawalLimit).Post("/withdrawal/request", h.RequestWithdrawal)
	})
}

func (h *Handler) CompleteTask(w http.ResponseWriter, r *http.Request) {
	taskID, ok := task.ParseID(w, r, "taskId")
	if !ok {
		return
	}

	result, err := h.service.CompleteTask(r.Context(), middleware.GetUserID(r.Context()), taskID)
	if err != nil {
		if errors.Is(err, ErrAlreadyCompleted) {
			core.OK(w, AlreadyCompletedResponse{
				Success:          false,
				Message:          "Task already completed",
				AlreadyCompleted: true,
			})
			return
		}
		core.JSONError(w, err)
		return
	}

	core.OK(w, CompleteTaskResponse{
		Success:    true,
		Message:    "Task completed! You earned " + core.FormatUGX(result.Reward),
		Earnings:   result.Reward,
		NewBalance: result.NewBalance,
		JobLevel:   result.JobLevel,
	})
}

func (h *Handler) ListCompleted(w http.ResponseWriter, r *http.Request) {
	ids, err := h.service.ListCompleted(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, CompletedTasksResponse{Success: true, CompletedTasks: ids})
}

func (h *Handler) RemoveCompletion(w http.ResponseWriter, r *http.Request) {
	taskID, ok := task.ParseID(w, r, "taskId")
	if !ok {
		return
	}

	removed, err := h.service.RemoveCompletion(r.Context(), middleware.GetUserID(r.Context()), taskID)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	message := "Task completion removed"
	if !removed {
		message = "Task was not completed"
	}

	core.OK(w, RemoveCompletionResponse{Success: true, Message: message, Removed: removed})
}

func (h *Handler) UpgradeJob(w http.ResponseWriter, r *http.Request) {
	var req UpgradeJobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	tariff, err := h.service.UpgradeJobLevel(
		r.Context(),
		middleware.GetUserID(r.Context()),
		req.JobLevel,
		req.InvestmentAmount,
	)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.OK(w, UpgradeJobResponse{
		Success:        true,
		Message:        "Job level upgraded to " + tariff.Level,
		JobLevel:       tariff.Level,
		PerTaskEarning: tariff.PerTaskReward,
	})
}

func (h *Handler) JobLevels(w http.ResponseWriter, _ *http.Request) {
	core.OK(w, JobLevelsResponse{Success: true, JobLevels: h.service.JobLevels()})
}

func (h *Handler) RequestWithdrawal(w http.ResponseWriter, r *http.Request) {
	var req WithdrawalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	result, err := h.service.RequestWithdrawal(r.Context(), middleware.GetUserID(r.Context()), req)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.OK(w, RequestWithdrawalResponse{
		Success:    true,
		Message:    "Withdrawal request submitted",
		Withdrawal: ToWithdrawalResponse(&result.Withdrawal),
		NewBalance: result.NewBalance,
	})
}

func (h *Handler) ListWithdrawals(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.ListWithdrawals(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, WithdrawalListResponse{Success: true, Withdrawals: ToWithdrawalResponseList(list)})
}

func (h *Handler) UserData(w http.ResponseWriter, r *http.Request) {
	data, err := h.service.GetUserData(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.OK(w, UserDataResponse{Success: true, UserData: ToUserDataView(data)})
}

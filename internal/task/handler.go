// AngelaMos | 2026
// handler.go

package task

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/buttuura/getcash/internal/core"
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

func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator func(http.Handler) http.Handler,
) {
	r.Group(func(r chi.Router) {
		r.Use(authenticator)
		r.Get("/tasks", h.List)
		r.Get("/tasks/date/{date}", h.ListByDate)
	})
}

func (h *Handler) RegisterAdminRoutes(
	r chi.Router,
	authenticator, adminOnly func(http.Handler) http.Handler,
) {
	r.Group(func(r chi.Router) {
		r.Use(authenticator)
		r.Use(adminOnly)
		r.Post("/tasks", h.Create)
		r.Delete("/tasks", h.DeleteAll)
		r.Delete("/tasks/{taskId}", h.Delete)
	})
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	tasks, err := h.service.List(r.Context())
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, TaskListResponse{Success: true, Tasks: ToTaskResponseList(tasks)})
}

func (h *Handler) ListByDate(w http.ResponseWriter, r *http.Request) {
	tasks, err := h.service.ListByDate(r.Context(), chi.URLParam(r, "date"))
	if err != nil {
		if errors.Is(err, core.ErrInvalidInput) {
			core.BadRequest(w, "date must be formatted as YYYY-MM-DD")
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, TaskListResponse{Success: true, Tasks: ToTaskResponseList(tasks)})
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	task, err := h.service.Create(r.Context(), req)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.Created(w, CreateTaskResponse{
		Success: true,
		Message: "Task uploaded successfully",
		Task:    ToTaskResponse(task),
	})
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := ParseID(w, r, "taskId")
	if !ok {
		return
	}

	deleted, err := h.service.Delete(r.Context(), id)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	if !deleted {
		core.NotFound(w, "task")
		return
	}

	core.OK(w, DeleteTaskResponse{
		Success: true,
		Message: "Task deleted successfully",
		TaskID:  id,
		Deleted: true,
	})
}

func (h *Handler) DeleteAll(w http.ResponseWriter, r *http.Request) {
	n, err := h.service.DeleteAll(r.Context())
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, DeleteAllResponse{
		Success:      true,
		Message:      "All tasks deleted successfully",
		DeletedCount: n,
	})
}

// ParseID reads a positive integer URL parameter, writing a 400 when it is
// malformed.
func ParseID(w http.ResponseWriter, r *http.Request, param string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, param), 10, 64)
	if err != nil || id <= 0 {
		core.BadRequest(w, "invalid task id")
		return 0, false
	}
	return id, true
}

// AngelaMos | 2026
// dto.go

package task

import (
	"time"
)

type CreateTaskRequest struct {
	Title     string `json:"title"     validate:"required,max=200"`
	Price     int64  `json:"price"     validate:"gte=0"`
	ImageData string `json:"imageData" validate:"required"`
	Category  string `json:"category"  validate:"omitempty,max=50"`
}

type TaskResponse struct {
	ID         int64     `json:"id"`
	Title      string    `json:"title"`
	Price      int64     `json:"price"`
	ImageData  string    `json:"imageData"`
	Category   string    `json:"category"`
	Status     string    `json:"status"`
	UploadDate string    `json:"uploadDate"`
	CreatedAt  time.Time `json:"createdAt"`
}

type TaskListResponse struct {
	Success bool           `json:"success"`
	Tasks   []TaskResponse `json:"tasks"`
}

type CreateTaskResponse struct {
	Success bool         `json:"success"`
	Message string       `json:"message"`
	Task    TaskResponse `json:"task"`
}

type DeleteTaskResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	TaskID  int64  `json:"taskId"`
	Deleted bool   `json:"deleted"`
}

type DeleteAllResponse struct {
	Success      bool   `json:"success"`
	Message      string `json:"message"`
	DeletedCount int64  `json:"deletedCount"`
}

func ToTaskResponse(t *Task) TaskResponse {
	return TaskResponse{
		ID:         t.ID,
		Title:      t.Title,
		Price:      t.Price,
		ImageData:  t.ImageData,
		Category:   t.Category,
		Status:     t.Status,
		UploadDate: t.UploadDate.Format(DateLayout),
		CreatedAt:  t.CreatedAt,
	}
}

func ToTaskResponseList(tasks []Task) []TaskResponse {
	responses := make([]TaskResponse, 0, len(tasks))
	for i := range tasks {
		responses = append(responses, ToTaskResponse(&tasks[i]))
	}
	return responses
}

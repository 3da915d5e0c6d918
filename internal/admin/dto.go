// AngelaMos | 2026
// dto.go

package admin

import (
	"time"

	"github.com/buttuura/getcash/internal/task"
)

type ExportUser struct {
	ID        int64     `db:"id"         json:"id"`
	Username  string    `db:"username"   json:"username"`
	Phone     string    `db:"phone"      json:"phone"`
	IsAdmin   bool      `db:"is_admin"   json:"isAdmin"`
	CreatedAt time.Time `db:"created_at" json:"joinDate"`
}

type ExportCompletion struct {
	UserID      int64     `db:"user_id"      json:"userId"`
	TaskID      int64     `db:"task_id"      json:"taskId"`
	CompletedAt time.Time `db:"completed_at" json:"completedAt"`
}

type ExportWallet struct {
	UserID              int64      `json:"userId"`
	IncomeWallet        int64      `json:"incomeWallet"`
	PersonalWallet      int64      `json:"personalWallet"`
	TotalEarnings       int64      `json:"totalEarnings"`
	TotalWithdrawals    int64      `json:"totalWithdrawals"`
	JobLevel            string     `json:"jobLevel"`
	TasksCompletedToday int        `json:"tasksCompletedToday"`
	LastTaskDate        *time.Time `json:"lastTaskDate"`
	UpdatedAt           time.Time  `json:"updatedAt"`
}

// Export is the full dump written by the export endpoint and the CLI.
type Export struct {
	ExportedAt     time.Time           `json:"exportedAt"`
	Users          []ExportUser        `json:"users"`
	Tasks          []task.TaskResponse `json:"tasks"`
	CompletedTasks []ExportCompletion  `json:"completedTasks"`
	Wallets        []ExportWallet      `json:"wallets"`
}

type StatsResponse struct {
	Success  bool           `json:"success"`
	Counts   Counts         `json:"counts"`
	Database DatabaseStatus `json:"database"`
	Redis    RedisStatus    `json:"redis"`
	Runtime  RuntimeStats   `json:"runtime"`
}

type DatabaseStatus struct {
	Healthy bool         `json:"healthy"`
	Stats   *DBPoolStats `json:"stats,omitempty"`
}

type RedisStatus struct {
	Healthy bool            `json:"healthy"`
	Stats   *RedisPoolStats `json:"stats,omitempty"`
}

type DBPoolStats struct {
	MaxOpenConnections int    `json:"maxOpenConnections"`
	OpenConnections    int    `json:"openConnections"`
	InUse              int    `json:"inUse"`
	Idle               int    `json:"idle"`
	WaitCount          int64  `json:"waitCount"`
	WaitDuration       string `json:"waitDuration"`
}

type RedisPoolStats struct {
	Hits       uint32 `json:"hits"`
	Misses     uint32 `json:"misses"`
	Timeouts   uint32 `json:"timeouts"`
	TotalConns uint32 `json:"totalConns"`
	IdleConns  uint32 `json:"idleConns"`
}

type RuntimeStats struct {
	GoVersion    string `json:"goVersion"`
	NumGoroutine int    `json:"numGoroutine"`
	NumCPU       int    `json:"numCpu"`
	MemAlloc     uint64 `json:"memAllocBytes"`
	NumGC        uint32 `json:"numGc"`
}

type CleanupResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Deleted int64  `json:"deleted"`
}

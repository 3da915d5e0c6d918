// AngelaMos | 2026
// dto.go

package auth

import (
	"time"
)

type LoginRequest struct {
	Username string `json:"username" validate:"required,max=50"`
	Password string `json:"password" validate:"required,max=128"`
}

type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=3,max=50"`
	Password string `json:"password" validate:"required,min=6,max=128"`
	Phone    string `json:"phone"    validate:"required,min=7,max=20"`
}

type LoginResponse struct {
	Success   bool      `json:"success"`
	Message   string    `json:"message"`
	Token     string    `json:"token"`
	UserID    int64     `json:"userId"`
	Username  string    `json:"username"`
	IsAdmin   bool      `json:"isAdmin"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type RegisteredUser struct {
	ID       int64     `json:"id"`
	Username string    `json:"username"`
	Phone    string    `json:"phone"`
	JoinDate time.Time `json:"joinDate"`
}

type RegisterResponse struct {
	Success bool           `json:"success"`
	Message string         `json:"message"`
	User    RegisteredUser `json:"user"`
}

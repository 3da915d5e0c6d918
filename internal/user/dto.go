// AngelaMos | 2026
// dto.go

package user

import (
	"time"
)

type UserResponse struct {
	ID       int64     `json:"id"`
	Username string    `json:"username"`
	Phone    string    `json:"phone"`
	IsAdmin  bool      `json:"isAdmin"`
	JoinDate time.Time `json:"joinDate"`
}

type MeResponse struct {
	Success bool         `json:"success"`
	User    UserResponse `json:"user"`
}

type ListUsersParams struct {
	Page     int
	PageSize int
	Search   string
}

func (p *ListUsersParams) Normalize() {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 {
		p.PageSize = 20
	}
	if p.PageSize > 100 {
		p.PageSize = 100
	}
}

func (p *ListUsersParams) Offset() int {
	return (p.Page - 1) * p.PageSize
}

func ToUserResponse(u *User) UserResponse {
	return UserResponse{
		ID:       u.ID,
		Username: u.Username,
		Phone:    u.Phone,
		IsAdmin:  u.IsAdmin,
		JoinDate: u.CreatedAt,
	}
}

func ToUserResponseList(users []User) []UserResponse {
	responses := make([]UserResponse, 0, len(users))
	for i := range users {
		responses = append(responses, ToUserResponse(&users[i]))
	}
	return responses
}

package dto

import "github.com/nexbyte/hackmd/pkg/timex"

// UserCreateRequest 创建用户的参数
type UserCreateRequest struct {
	Email     string `json:"email" form:"email" binding:"required,email"`
	ProfileID string `json:"profileid" form:"profileid"`
}

// UserDTO 用户信息，Token 仅在创建时返回
type UserDTO struct {
	ID        string     `json:"id"`
	Email     string     `json:"email"`
	ProfileID string     `json:"profileid"`
	Token     string     `json:"token,omitempty"`
	CreatedAt timex.Time `json:"createdAt"`
}

package domain

import "time"

// User 用户领域模型
type User struct {
	ID          string
	Email       string
	ProfileID   string
	AccessToken string
	Profile     string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// HasEmail 判断用户是否有邮箱
func (u *User) HasEmail() bool {
	return u.Email != ""
}

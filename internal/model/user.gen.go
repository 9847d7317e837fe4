package model

import "github.com/nexbyte/hackmd/pkg/timex"

const TableNameUser = "user"

// User mapped from table <user>
type User struct {
	ID          string     `gorm:"column:id;primaryKey;type:varchar(36)" json:"id" form:"id"`
	Email       string     `gorm:"column:email;type:varchar(255);uniqueIndex:idx_user_email" json:"email" form:"email"`
	ProfileID   string     `gorm:"column:profile_id;type:varchar(255)" json:"profileid" form:"profileid"`
	AccessToken string     `gorm:"column:access_token;type:text" json:"-" form:"accessToken"`
	Profile     string     `gorm:"column:profile;type:text" json:"profile" form:"profile"`
	CreatedAt   timex.Time `gorm:"column:created_at;type:datetime;default:NULL;autoCreateTime:false" json:"createdAt" form:"createdAt"`
	UpdatedAt   timex.Time `gorm:"column:updated_at;type:datetime;default:NULL;autoUpdateTime:false" json:"updatedAt" form:"updatedAt"`
}

// TableName User's table name
func (*User) TableName() string {
	return TableNameUser
}

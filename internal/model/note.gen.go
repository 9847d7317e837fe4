package model

import "github.com/nexbyte/hackmd/pkg/timex"

const TableNameNote = "note"

// Note mapped from table <note>
type Note struct {
	ID               string     `gorm:"column:id;primaryKey;type:varchar(36)" json:"id" form:"id"`
	Namespace        string     `gorm:"column:namespace;type:varchar(100);uniqueIndex:idx_note_namespace" json:"namespace" form:"namespace"`
	ShortID          string     `gorm:"column:shortid;type:varchar(32);not null;uniqueIndex:idx_note_shortid" json:"shortid" form:"shortid"`
	Alias            *string    `gorm:"column:alias;type:varchar(255);uniqueIndex:idx_note_alias" json:"alias" form:"alias"`
	Permission       string     `gorm:"column:permission;type:varchar(16);default:public" json:"permission" form:"permission"`
	OwnerID          *string    `gorm:"column:owner_id;type:varchar(36);index:idx_note_owner" json:"ownerId" form:"ownerId"`
	Content          string     `gorm:"column:content;type:text" json:"content" form:"content"`
	Title            string     `gorm:"column:title;type:text" json:"title" form:"title"`
	Tags             string     `gorm:"column:tags;type:text" json:"tags" form:"tags"`
	FilePath         string     `gorm:"column:file_path;type:text" json:"filePath" form:"filePath"`
	ViewCount        int64      `gorm:"column:view_count;not null;default:0" json:"viewcount" form:"viewcount"`
	LastChangeUserID *string    `gorm:"column:last_change_user_id;type:varchar(36)" json:"lastchangeuserId" form:"lastchangeuserId"`
	LastChangeAt     timex.Time `gorm:"column:last_change_at;type:datetime;default:NULL" json:"lastchangeAt" form:"lastchangeAt"`
	CreatedAt        timex.Time `gorm:"column:created_at;type:datetime;default:NULL;autoCreateTime:false" json:"createdAt" form:"createdAt"`
	UpdatedAt        timex.Time `gorm:"column:updated_at;type:datetime;default:NULL;autoUpdateTime:false" json:"updatedAt" form:"updatedAt"`
}

// TableName Note's table name
func (*Note) TableName() string {
	return TableNameNote
}

package model

import "github.com/nexbyte/hackmd/pkg/timex"

const TableNameRevision = "revision"

// Revision mapped from table <revision>
type Revision struct {
	ID          int64      `gorm:"column:id;primaryKey;autoIncrement" json:"id" form:"id"`
	NoteID      string     `gorm:"column:note_id;type:varchar(36);not null;index:idx_revision_note_time,priority:1" json:"noteId" form:"noteId"`
	Patch       string     `gorm:"column:patch;type:text" json:"patch" form:"patch"`
	Content     string     `gorm:"column:content;type:text" json:"content" form:"content"`
	LastContent string     `gorm:"column:last_content;type:text" json:"lastContent" form:"lastContent"`
	Length      int        `gorm:"column:length;not null;default:0" json:"length" form:"length"`
	CreatedAtMs int64      `gorm:"column:created_at_ms;not null;index:idx_revision_note_time,priority:2" json:"createdAtMs" form:"createdAtMs"`
	CreatedAt   timex.Time `gorm:"column:created_at;type:datetime;default:NULL;autoCreateTime:false" json:"createdAt" form:"createdAt"`
}

// TableName Revision's table name
func (*Revision) TableName() string {
	return TableNameRevision
}

// Package dto Defines data transfer objects (request parameters and response structs)
// Package dto 定义数据传输对象（请求参数和响应结构体）
package dto

import (
	"time"

	"github.com/nexbyte/hackmd/internal/domain"
	"github.com/nexbyte/hackmd/pkg/timex"
)

// NoteInfoDTO response of the info action
// NoteInfoDTO info 操作的响应
type NoteInfoDTO struct {
	Title       string  `json:"title"`
	Description *string `json:"description"`
	ViewCount   int64   `json:"viewcount"`
	// 时间以 JavaScript ISO 格式输出
	CreateTime timex.Time `json:"createtime"`
	UpdateTime timex.Time `json:"updatetime"`
}

// RevisionListDTO 版本列表响应
type RevisionListDTO struct {
	Revision []domain.RevisionInfo `json:"revision"`
}

// HistoryItemDTO one entry of the history list. Field names follow domain.Note so that
// copier fills them; TagList is copied from the method of the same name.
// HistoryItemDTO 历史列表项，字段名与 domain.Note 一致以便 copier 复制
type HistoryItemDTO struct {
	Namespace    string    `json:"id"`
	Title        string    `json:"text"`
	Time         int64     `json:"time"`
	TagList      []string  `json:"tags"`
	LastChangeAt time.Time `json:"-"`
}

// HistoryDTO 历史列表响应
type HistoryDTO struct {
	History []*HistoryItemDTO `json:"history"`
}

// NoteContentSaveRequest 保存笔记内容的请求参数
type NoteContentSaveRequest struct {
	Content string `json:"content" form:"content" binding:"max=10485760"`
}

// NoteContentSaveDTO 保存笔记内容的响应
type NoteContentSaveDTO struct {
	ID           string     `json:"id"`
	Title        string     `json:"title"`
	Tags         []string   `json:"tags"`
	LastChangeAt timex.Time `json:"lastchangeAt"`
}

// NotePathRequest newnotepath 的查询参数
type NotePathRequest struct {
	FilePath  string `form:"filePath" binding:"required"`
	Namespace string `form:"namespace" binding:"required"`
}

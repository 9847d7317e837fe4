package domain

import (
	"context"
	"time"
)

// NoteRepository 笔记仓储接口，查询不到时返回 (nil, nil)
type NoteRepository interface {
	GetByID(ctx context.Context, id string) (*Note, error)
	GetByShortID(ctx context.Context, shortID string) (*Note, error)
	GetByAlias(ctx context.Context, alias string) (*Note, error)
	GetByNamespace(ctx context.Context, namespace string) (*Note, error)

	Create(ctx context.Context, note *Note) (*Note, error)
	// UpdateContent 保存内容及由内容派生的标题、标签
	UpdateContent(ctx context.Context, note *Note) error
	UpdateFilePath(ctx context.Context, id, filePath string) error
	IncrementViewCount(ctx context.Context, id string) error

	ListByOwner(ctx context.Context, ownerID string) ([]*Note, error)
}

// RevisionRepository 版本仓储接口
type RevisionRepository interface {
	// Latest 返回最新版本，没有时返回 (nil, nil)
	Latest(ctx context.Context, noteID string) (*Revision, error)
	// Append stores rev as the newest revision and rewrites the previous newest one
	// (patch set, content dropped) in one transaction. prev may be nil.
	// Append 在一个事务中写入新版本并更新上一版本
	Append(ctx context.Context, prev, rev *Revision) error
	// ListNewestFirst 按时间倒序列出版本
	ListNewestFirst(ctx context.Context, noteID string) ([]*Revision, error)
	// ListSince 返回 createdAtMs > sinceMs 的版本，按时间倒序
	ListSince(ctx context.Context, noteID string, sinceMs int64) ([]*Revision, error)
	// AtOrBefore 返回 createdAtMs <= ms 的最新版本，没有时返回 (nil, nil)
	AtOrBefore(ctx context.Context, noteID string, ms int64) (*Revision, error)
	// PruneKeepNewest 每个笔记只保留最新 keep 个版本，返回删除数量
	PruneKeepNewest(ctx context.Context, keep int, before time.Time) (int64, error)
}

// UserRepository 用户仓储接口
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	Create(ctx context.Context, user *User) (*User, error)
}

package domain

import "time"

// Revision is one snapshot of a note. Patch turns this revision's content back into the
// previous revision's content; Content is only kept on the newest revision.
// Revision 笔记的一次快照，Patch 可将本版本内容还原为上一版本，只有最新版本保存全文
type Revision struct {
	ID          int64
	NoteID      string
	Patch       string
	Content     string
	LastContent string
	Length      int
	CreatedAtMs int64
	CreatedAt   time.Time
}

// RevisionInfo is the list entry of the revision action.
// RevisionInfo 版本列表项
type RevisionInfo struct {
	Time   int64 `json:"time"`
	Length int   `json:"length"`
}

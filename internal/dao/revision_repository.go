package dao

import (
	"context"
	"time"

	"github.com/nexbyte/hackmd/internal/domain"
	"github.com/nexbyte/hackmd/internal/model"
	"github.com/nexbyte/hackmd/pkg/timex"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// revisionRepository 实现 domain.RevisionRepository 接口
type revisionRepository struct {
	dao *Dao
}

// NewRevisionRepository 创建 RevisionRepository 实例
func NewRevisionRepository(dao *Dao) domain.RevisionRepository {
	return &revisionRepository{dao: dao}
}

func (r *revisionRepository) db(ctx context.Context) *gorm.DB {
	return r.dao.table("Revision").WithContext(ctx)
}

func (r *revisionRepository) toDomain(m *model.Revision) *domain.Revision {
	if m == nil {
		return nil
	}
	return &domain.Revision{
		ID:          m.ID,
		NoteID:      m.NoteID,
		Patch:       m.Patch,
		Content:     m.Content,
		LastContent: m.LastContent,
		Length:      m.Length,
		CreatedAtMs: m.CreatedAtMs,
		CreatedAt:   time.Time(m.CreatedAt),
	}
}

func (r *revisionRepository) toModel(rev *domain.Revision) *model.Revision {
	return &model.Revision{
		ID:          rev.ID,
		NoteID:      rev.NoteID,
		Patch:       rev.Patch,
		Content:     rev.Content,
		LastContent: rev.LastContent,
		Length:      rev.Length,
		CreatedAtMs: rev.CreatedAtMs,
		CreatedAt:   timex.Time(rev.CreatedAt),
	}
}

func newestFirst(db *gorm.DB) *gorm.DB {
	return db.Order("created_at_ms DESC").Order("id DESC")
}

func (r *revisionRepository) list(db *gorm.DB, scope string) ([]*domain.Revision, error) {
	var ms []*model.Revision
	if err := newestFirst(db).Find(&ms).Error; err != nil {
		return nil, errors.Wrap(err, "revisionRepository."+scope)
	}
	out := make([]*domain.Revision, 0, len(ms))
	for _, m := range ms {
		out = append(out, r.toDomain(m))
	}
	return out, nil
}

func (r *revisionRepository) take(db *gorm.DB, scope string) (*domain.Revision, error) {
	var m model.Revision
	err := newestFirst(db).Take(&m).Error
	if isNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "revisionRepository."+scope)
	}
	return r.toDomain(&m), nil
}

// Latest 返回最新版本
func (r *revisionRepository) Latest(ctx context.Context, noteID string) (*domain.Revision, error) {
	return r.take(r.db(ctx).Where("note_id = ?", noteID), "Latest")
}

// Append 在事务中追加新版本并改写上一版本
func (r *revisionRepository) Append(ctx context.Context, prev, rev *domain.Revision) error {
	if rev.CreatedAt.IsZero() {
		rev.CreatedAt = time.Now()
	}
	err := r.db(ctx).Transaction(func(tx *gorm.DB) error {
		if prev != nil {
			err := tx.Model(&model.Revision{}).Where("id = ?", prev.ID).Updates(map[string]interface{}{
				"patch":        prev.Patch,
				"content":      prev.Content,
				"last_content": prev.LastContent,
			}).Error
			if err != nil {
				return err
			}
		}
		m := r.toModel(rev)
		if err := tx.Create(m).Error; err != nil {
			return err
		}
		rev.ID = m.ID
		return nil
	})
	return errors.Wrap(err, "revisionRepository.Append")
}

// ListNewestFirst 按时间倒序列出版本
func (r *revisionRepository) ListNewestFirst(ctx context.Context, noteID string) ([]*domain.Revision, error) {
	return r.list(r.db(ctx).Where("note_id = ?", noteID), "ListNewestFirst")
}

// ListSince 返回晚于 sinceMs 的版本
func (r *revisionRepository) ListSince(ctx context.Context, noteID string, sinceMs int64) ([]*domain.Revision, error) {
	return r.list(r.db(ctx).Where("note_id = ? AND created_at_ms > ?", noteID, sinceMs), "ListSince")
}

// AtOrBefore 返回不晚于 ms 的最新版本
func (r *revisionRepository) AtOrBefore(ctx context.Context, noteID string, ms int64) (*domain.Revision, error) {
	return r.take(r.db(ctx).Where("note_id = ? AND created_at_ms <= ?", noteID, ms), "AtOrBefore")
}

// PruneKeepNewest drops the oldest revisions of every note beyond the newest keep, limited
// to revisions created before the given time. Only the tail of a patch chain is removed so
// the remaining revisions still rewind correctly.
// PruneKeepNewest 删除每个笔记最新 keep 个之外且早于 before 的版本
func (r *revisionRepository) PruneKeepNewest(ctx context.Context, keep int, before time.Time) (int64, error) {
	if keep < 1 {
		keep = 1
	}
	db := r.db(ctx)

	var noteIDs []string
	err := db.Model(&model.Revision{}).
		Group("note_id").
		Having("COUNT(*) > ?", keep).
		Pluck("note_id", &noteIDs).Error
	if err != nil {
		return 0, errors.Wrap(err, "revisionRepository.PruneKeepNewest")
	}

	var total int64
	for _, noteID := range noteIDs {
		var ids []int64
		err := newestFirst(r.db(ctx).Model(&model.Revision{}).Where("note_id = ?", noteID)).
			Pluck("id", &ids).Error
		if err != nil {
			return total, errors.Wrap(err, "revisionRepository.PruneKeepNewest")
		}
		if len(ids) <= keep {
			continue
		}
		ids = ids[keep:]
		res := r.db(ctx).Where("id IN ? AND created_at_ms < ?", ids, before.UnixMilli()).Delete(&model.Revision{})
		if res.Error != nil {
			return total, errors.Wrap(res.Error, "revisionRepository.PruneKeepNewest")
		}
		total += res.RowsAffected
	}
	return total, nil
}

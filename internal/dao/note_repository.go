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

// noteRepository 实现 domain.NoteRepository 接口
type noteRepository struct {
	dao *Dao
}

// NewNoteRepository 创建 NoteRepository 实例
func NewNoteRepository(dao *Dao) domain.NoteRepository {
	return &noteRepository{dao: dao}
}

func (r *noteRepository) db(ctx context.Context) *gorm.DB {
	return r.dao.table("Note").WithContext(ctx)
}

func strPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func strVal(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

// toDomain 将数据库模型转换为领域模型
func (r *noteRepository) toDomain(m *model.Note) *domain.Note {
	if m == nil {
		return nil
	}
	return &domain.Note{
		ID:               m.ID,
		Namespace:        m.Namespace,
		ShortID:          m.ShortID,
		Alias:            strVal(m.Alias),
		Permission:       domain.ParsePermission(m.Permission),
		OwnerID:          strVal(m.OwnerID),
		Content:          m.Content,
		Title:            m.Title,
		Tags:             m.Tags,
		FilePath:         m.FilePath,
		ViewCount:        m.ViewCount,
		LastChangeUserID: strVal(m.LastChangeUserID),
		LastChangeAt:     time.Time(m.LastChangeAt),
		CreatedAt:        time.Time(m.CreatedAt),
		UpdatedAt:        time.Time(m.UpdatedAt),
	}
}

// toModel 将领域模型转换为数据库模型
func (r *noteRepository) toModel(n *domain.Note) *model.Note {
	if n == nil {
		return nil
	}
	perm := n.Permission
	if perm == "" {
		perm = domain.PermissionPublic
	}
	return &model.Note{
		ID:               n.ID,
		Namespace:        n.Namespace,
		ShortID:          n.ShortID,
		Alias:            strPtr(n.Alias),
		Permission:       string(perm),
		OwnerID:          strPtr(n.OwnerID),
		Content:          n.Content,
		Title:            n.Title,
		Tags:             n.Tags,
		FilePath:         n.FilePath,
		ViewCount:        n.ViewCount,
		LastChangeUserID: strPtr(n.LastChangeUserID),
		LastChangeAt:     timex.Time(n.LastChangeAt),
		CreatedAt:        timex.Time(n.CreatedAt),
		UpdatedAt:        timex.Time(n.UpdatedAt),
	}
}

func (r *noteRepository) first(ctx context.Context, column, value string) (*domain.Note, error) {
	if value == "" {
		return nil, nil
	}
	var m model.Note
	err := r.db(ctx).Where(column+" = ?", value).Take(&m).Error
	if isNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "noteRepository."+column)
	}
	return r.toDomain(&m), nil
}

// GetByID 根据ID获取笔记
func (r *noteRepository) GetByID(ctx context.Context, id string) (*domain.Note, error) {
	return r.first(ctx, "id", id)
}

// GetByShortID 根据 shortid 获取笔记
func (r *noteRepository) GetByShortID(ctx context.Context, shortID string) (*domain.Note, error) {
	return r.first(ctx, "shortid", shortID)
}

// GetByAlias 根据别名获取笔记
func (r *noteRepository) GetByAlias(ctx context.Context, alias string) (*domain.Note, error) {
	return r.first(ctx, "alias", alias)
}

// GetByNamespace 根据 namespace 获取笔记
func (r *noteRepository) GetByNamespace(ctx context.Context, namespace string) (*domain.Note, error) {
	return r.first(ctx, "namespace", namespace)
}

// Create 创建笔记
func (r *noteRepository) Create(ctx context.Context, note *domain.Note) (*domain.Note, error) {
	m := r.toModel(note)
	now := timex.Now()
	m.CreatedAt = now
	m.UpdatedAt = now
	if m.LastChangeAt.IsZero() {
		m.LastChangeAt = now
	}
	if err := r.db(ctx).Create(m).Error; err != nil {
		return nil, errors.Wrap(err, "noteRepository.Create")
	}
	return r.toDomain(m), nil
}

// UpdateContent 保存内容及派生字段
func (r *noteRepository) UpdateContent(ctx context.Context, note *domain.Note) error {
	now := time.Now()
	if note.LastChangeAt.IsZero() {
		note.LastChangeAt = now
	}
	err := r.db(ctx).Model(&model.Note{}).Where("id = ?", note.ID).Updates(map[string]interface{}{
		"content":             note.Content,
		"title":               note.Title,
		"tags":                note.Tags,
		"last_change_at":      timex.Time(note.LastChangeAt),
		"last_change_user_id": strPtr(note.LastChangeUserID),
		"updated_at":          timex.Time(now),
	}).Error
	if err != nil {
		return errors.Wrap(err, "noteRepository.UpdateContent")
	}
	note.UpdatedAt = now
	return nil
}

// UpdateFilePath 更新镜像路径
func (r *noteRepository) UpdateFilePath(ctx context.Context, id, filePath string) error {
	err := r.db(ctx).Model(&model.Note{}).Where("id = ?", id).Updates(map[string]interface{}{
		"file_path":  filePath,
		"updated_at": timex.Now(),
	}).Error
	return errors.Wrap(err, "noteRepository.UpdateFilePath")
}

// IncrementViewCount 原子递增浏览次数
func (r *noteRepository) IncrementViewCount(ctx context.Context, id string) error {
	err := r.db(ctx).Model(&model.Note{}).Where("id = ?", id).
		UpdateColumn("view_count", gorm.Expr("view_count + ?", 1)).Error
	return errors.Wrap(err, "noteRepository.IncrementViewCount")
}

// ListByOwner 按最近修改时间倒序列出用户的笔记
func (r *noteRepository) ListByOwner(ctx context.Context, ownerID string) ([]*domain.Note, error) {
	var ms []*model.Note
	err := r.db(ctx).Where("owner_id = ?", ownerID).Order("last_change_at DESC").Find(&ms).Error
	if err != nil {
		return nil, errors.Wrap(err, "noteRepository.ListByOwner")
	}
	out := make([]*domain.Note, 0, len(ms))
	for _, m := range ms {
		out = append(out, r.toDomain(m))
	}
	return out, nil
}

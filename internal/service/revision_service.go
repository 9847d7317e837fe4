package service

import (
	"context"
	"time"
	"unicode/utf8"

	"github.com/nexbyte/hackmd/internal/domain"
	"github.com/nexbyte/hackmd/pkg/diff"
	"github.com/nexbyte/hackmd/pkg/logger"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// RevisionService defines the note revision business service interface
// RevisionService 定义笔记版本业务服务接口
type RevisionService interface {
	// SaveNoteRevision appends a snapshot of the note's current content. Callers run it
	// inside the note's write queue.
	// SaveNoteRevision 追加当前内容的快照，调用方需在笔记写队列内执行
	SaveNoteRevision(ctx context.Context, note *domain.Note) (*domain.Revision, error)

	// GetNoteRevisions lists revision times and lengths, newest first
	// GetNoteRevisions 按时间倒序列出版本时间与长度
	GetNoteRevisions(ctx context.Context, note *domain.Note) ([]domain.RevisionInfo, error)

	// GetPatchedNoteRevisionByTime returns the content of the newest revision created at
	// or before atMs. found is false when no such revision exists.
	// GetPatchedNoteRevisionByTime 返回不晚于 atMs 的最新版本内容，不存在时 found 为 false
	GetPatchedNoteRevisionByTime(ctx context.Context, note *domain.Note, atMs int64) (content string, found bool, err error)

	// Prune 每个笔记只保留最新 keep 个版本，仅删除早于 before 的版本
	Prune(ctx context.Context, keep int, before time.Time) (int64, error)
}

type revisionService struct {
	revisionRepo domain.RevisionRepository // Revision repository // 版本仓库
	logger       *zap.Logger
	now          func() time.Time
}

// NewRevisionService 创建 RevisionService 实例
func NewRevisionService(revisionRepo domain.RevisionRepository, logger *zap.Logger) RevisionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &revisionService{revisionRepo: revisionRepo, logger: logger, now: time.Now}
}

func (s *revisionService) SaveNoteRevision(ctx context.Context, note *domain.Note) (*domain.Revision, error) {
	prev, err := s.revisionRepo.Latest(ctx, note.ID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	rev := &domain.Revision{
		NoteID:      note.ID,
		Content:     note.Content,
		LastContent: note.Content,
		Length:      utf8.RuneCountInString(note.Content),
		CreatedAtMs: now.UnixMilli(),
		CreatedAt:   now,
	}
	if prev != nil {
		// 新版本的补丁指向上一版本，上一版本不再保存全文
		rev.Patch = diff.ReversePatch(prev.Content, note.Content)
		rev.LastContent = prev.Content
		prev.Content = ""
	}

	if err := s.revisionRepo.Append(ctx, prev, rev); err != nil {
		return nil, err
	}

	s.logger.Debug("revision saved",
		zap.String(logger.FieldNoteID, note.ID),
		zap.Int64("revisionId", rev.ID),
		zap.Int(logger.FieldSize, rev.Length))
	return rev, nil
}

func (s *revisionService) GetNoteRevisions(ctx context.Context, note *domain.Note) ([]domain.RevisionInfo, error) {
	revs, err := s.revisionRepo.ListNewestFirst(ctx, note.ID)
	if err != nil {
		return nil, err
	}
	out := make([]domain.RevisionInfo, 0, len(revs))
	for _, r := range revs {
		out = append(out, domain.RevisionInfo{Time: r.CreatedAtMs, Length: r.Length})
	}
	return out, nil
}

func (s *revisionService) GetPatchedNoteRevisionByTime(ctx context.Context, note *domain.Note, atMs int64) (string, bool, error) {
	target, err := s.revisionRepo.AtOrBefore(ctx, note.ID, atMs)
	if err != nil {
		return "", false, err
	}
	if target == nil {
		return "", false, nil
	}

	newer, err := s.revisionRepo.ListSince(ctx, note.ID, target.CreatedAtMs)
	if err != nil {
		return "", false, err
	}
	if len(newer) == 0 {
		return target.Content, true, nil
	}

	patches := make([]string, 0, len(newer))
	for _, r := range newer {
		patches = append(patches, r.Patch)
	}
	content, err := diff.Rewind(newer[0].Content, patches)
	if err != nil {
		return "", false, errors.Wrapf(err, "revision %d of note %s", target.ID, note.ID)
	}
	return content, true, nil
}

func (s *revisionService) Prune(ctx context.Context, keep int, before time.Time) (int64, error) {
	if keep <= 0 {
		return 0, nil
	}
	n, err := s.revisionRepo.PruneKeepNewest(ctx, keep, before)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.logger.Info("revisions pruned", zap.Int64("count", n), zap.Int("keep", keep))
	}
	return n, nil
}

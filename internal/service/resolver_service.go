package service

import (
	"context"

	"github.com/nexbyte/hackmd/internal/domain"
	"github.com/nexbyte/hackmd/pkg/code"
	"github.com/nexbyte/hackmd/pkg/idcodec"
	"github.com/nexbyte/hackmd/pkg/logger"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// ResolveOptions 解析选项
type ResolveOptions struct {
	// FreeURL allows creating a note for an unknown token.
	// FreeURL 允许为未知 token 创建笔记，仅用于普通笔记路由
	FreeURL bool
}

// ResolverService maps route tokens to notes and applies the view permission
// ResolverService 将路由 token 解析为笔记并检查查看权限
type ResolverService interface {
	// Resolve returns the note token refers to. Unknown tokens give ErrorNoteNotFound
	// (or a new note when free URLs apply); denied views give ErrorNoteForbidden.
	// Resolve 返回 token 对应的笔记；未知 token 返回 NotFound，无权查看返回 Forbidden
	Resolve(ctx context.Context, token string, requester domain.Requester, opts ResolveOptions) (*domain.Note, error)

	// ResolveOrCreate is Resolve with free URLs applied; created reports whether the
	// note was made for this token by the call.
	// ResolveOrCreate 按 free URL 规则解析，created 表示本次新建了笔记
	ResolveOrCreate(ctx context.Context, token string, requester domain.Requester) (note *domain.Note, created bool, err error)

	// Find runs the lookup chain only. A miss returns (nil, nil).
	// Find 只执行查找链，未找到时返回 (nil, nil)
	Find(ctx context.Context, token string) (*domain.Note, error)
}

type resolverService struct {
	noteRepo domain.NoteRepository
	noteSvc  NoteService
	sf       *singleflight.Group
	logger   *zap.Logger
	config   *ServiceConfig
}

// NewResolverService 创建 ResolverService 实例
func NewResolverService(noteRepo domain.NoteRepository, noteSvc NoteService, logger *zap.Logger, config *ServiceConfig) ResolverService {
	if config == nil {
		config = DefaultServiceConfig()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &resolverService{
		noteRepo: noteRepo,
		noteSvc:  noteSvc,
		sf:       &singleflight.Group{},
		logger:   logger,
		config:   config,
	}
}

// Find tries, in order: compressed id, raw UUID, shortid, alias. A token that fails to
// decode at one step simply moves on to the next.
// Find 依次尝试：压缩 id、UUID、shortid、别名，解码失败视为未命中
func (s *resolverService) Find(ctx context.Context, token string) (*domain.Note, error) {
	if token == "" {
		return nil, nil
	}

	if id, ok := idcodec.Decode(token); ok {
		note, err := s.noteRepo.GetByID(ctx, id)
		if err != nil || note != nil {
			return note, err
		}
	}

	if idcodec.IsUUID(token) {
		note, err := s.noteRepo.GetByID(ctx, token)
		if err != nil || note != nil {
			return note, err
		}
	}

	if idcodec.IsShortID(token) {
		note, err := s.noteRepo.GetByShortID(ctx, token)
		if err != nil || note != nil {
			return note, err
		}
	}

	return s.noteRepo.GetByAlias(ctx, token)
}

func (s *resolverService) Resolve(ctx context.Context, token string, requester domain.Requester, opts ResolveOptions) (*domain.Note, error) {
	note, _, err := s.resolve(ctx, token, requester, opts.FreeURL)
	return note, err
}

func (s *resolverService) ResolveOrCreate(ctx context.Context, token string, requester domain.Requester) (*domain.Note, bool, error) {
	return s.resolve(ctx, token, requester, true)
}

func (s *resolverService) resolve(ctx context.Context, token string, requester domain.Requester, freeURL bool) (*domain.Note, bool, error) {
	note, err := s.Find(ctx, token)
	if err != nil {
		s.logger.Error("ResolverService.Resolve lookup failed",
			zap.String(logger.FieldToken, token),
			zap.Error(err))
		return nil, false, code.ErrorInternal.WithDetails(err.Error())
	}

	created := false
	if note == nil {
		if !freeURL || !s.config.AllowFreeURL || token == "" {
			return nil, false, code.ErrorNoteNotFound
		}
		if note, err = s.createFreeURL(ctx, token, requester); err != nil {
			return nil, false, err
		}
		created = true
	}

	if !note.Permission.CanView(requester, note.OwnerID) {
		return nil, false, code.ErrorNoteForbidden
	}
	return note, created, nil
}

// createFreeURL creates the note for an unknown alias. Concurrent visitors of the same
// alias share one creation.
// createFreeURL 为未知别名创建笔记，同一别名的并发请求只创建一次
func (s *resolverService) createFreeURL(ctx context.Context, alias string, requester domain.Requester) (*domain.Note, error) {
	v, err, _ := s.sf.Do("freeurl:"+alias, func() (interface{}, error) {
		// 另一请求可能刚刚创建完成
		if note, err := s.noteRepo.GetByAlias(ctx, alias); err != nil || note != nil {
			if err != nil {
				return nil, code.ErrorInternal.WithDetails(err.Error())
			}
			return note, nil
		}
		note, err := s.noteSvc.CreateWithAlias(ctx, requester, alias)
		if err != nil {
			return nil, err
		}
		s.logger.Info("note created from free url", zap.String("alias", alias), zap.String(logger.FieldNoteID, note.ID))
		return note, nil
	})
	if err != nil {
		return nil, err
	}
	// 每个调用方拿到独立副本
	note := *v.(*domain.Note)
	return &note, nil
}

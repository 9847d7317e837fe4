package service

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/jinzhu/copier"
	"github.com/nexbyte/hackmd/internal/domain"
	"github.com/nexbyte/hackmd/internal/dto"
	"github.com/nexbyte/hackmd/pkg/code"
	"github.com/nexbyte/hackmd/pkg/idcodec"
	"github.com/nexbyte/hackmd/pkg/logger"
	"github.com/nexbyte/hackmd/pkg/notemeta"
	"github.com/nexbyte/hackmd/pkg/storage"
	"github.com/nexbyte/hackmd/pkg/writequeue"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// NoteService defines the note lifecycle business service interface
// NoteService 定义笔记生命周期业务服务接口
type NoteService interface {
	// New creates an empty note for the requester. Anonymous requesters are refused
	// unless anonymous creation is enabled.
	// New 为请求者创建新笔记，未开启匿名创建时拒绝匿名请求
	New(ctx context.Context, requester domain.Requester) (*domain.Note, error)

	// CreateWithAlias 创建别名为 alias 的新笔记（自由 URL）
	CreateWithAlias(ctx context.Context, requester domain.Requester, alias string) (*domain.Note, error)

	// Save replaces the content of a note, recomputing title, tags and lastChangeAt, and
	// mirrors it to the note's file path when set.
	// Save 替换笔记内容并重新计算标题、标签与最后修改时间，设置了文件路径时同步写入镜像
	Save(ctx context.Context, noteID string, content string, requester domain.Requester) (*domain.Note, error)

	// Publish persists the current content, snapshots a revision and mirrors the file.
	// mirrored reports whether the note has a file path and the write succeeded.
	// Publish 保存当前内容、记录版本并写入镜像文件，mirrored 表示镜像是否写入成功
	Publish(ctx context.Context, noteID string, requester domain.Requester) (note *domain.Note, mirrored bool, err error)

	// SetFilePath 设置笔记的镜像路径并写入当前内容
	SetFilePath(ctx context.Context, note *domain.Note, filePath string) (*domain.Note, error)

	// Open links a file of the docs directory to a note and returns the redirect target.
	// Open 将文档目录中的文件关联到笔记，返回跳转地址
	Open(ctx context.Context, relPath string, requester domain.Requester) (string, error)

	// RecordView 增加浏览次数
	RecordView(ctx context.Context, note *domain.Note, surface domain.Surface) error

	// History 返回请求者拥有的笔记列表
	History(ctx context.Context, requester domain.Requester) (*dto.HistoryDTO, error)
}

type noteService struct {
	noteRepo    domain.NoteRepository // Note repository // 笔记仓库
	revisionSvc RevisionService       // Revision service // 版本服务
	mirror      storage.Storager      // File mirror // 文件镜像
	writeQueue  *writequeue.Manager   // Per-note write queue // 按笔记串行写入
	parser      *notemeta.Parser
	metrics     *Metrics
	sf          *singleflight.Group
	logger      *zap.Logger
	config      *ServiceConfig
	now         func() time.Time
}

// NewNoteService 创建 NoteService 实例
func NewNoteService(noteRepo domain.NoteRepository, revisionSvc RevisionService, mirror storage.Storager, wq *writequeue.Manager, parser *notemeta.Parser, metrics *Metrics, logger *zap.Logger, config *ServiceConfig) NoteService {
	if config == nil {
		config = DefaultServiceConfig()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if metrics == nil {
		metrics = NewMetrics(nil)
	}
	return &noteService{
		noteRepo:    noteRepo,
		revisionSvc: revisionSvc,
		mirror:      mirror,
		writeQueue:  wq,
		parser:      parser,
		metrics:     metrics,
		sf:          &singleflight.Group{},
		logger:      logger,
		config:      config,
		now:         time.Now,
	}
}

type createParams struct {
	ownerID  string
	alias    string
	body     string
	filePath string
	origin   string
}

// ownerFor 返回新笔记的所有者，匿名且不允许匿名创建时返回错误
func (s *noteService) ownerFor(requester domain.Requester) (string, error) {
	if requester.Authenticated() {
		return requester.UserID, nil
	}
	if !s.config.AllowAnonymous {
		return "", code.ErrorAnonymousForbidden
	}
	return "", nil
}

// applyContent 写入内容并重新计算派生字段
func (s *noteService) applyContent(note *domain.Note, content, userID string) {
	info := s.parser.ParseNoteInfo(content)
	note.Content = content
	note.Title = info.Title
	note.Tags = strings.Join(info.Tags, ",")
	note.LastChangeAt = s.now()
	if userID != "" {
		note.LastChangeUserID = userID
	}
}

func (s *noteService) create(ctx context.Context, p createParams) (*domain.Note, error) {
	id := idcodec.NewID()
	namespace, err := idcodec.Encode(id)
	if err != nil {
		return nil, code.ErrorNoteCreateFailed.WithDetails(err.Error())
	}
	shortID, err := idcodec.NewShortID()
	if err != nil {
		return nil, code.ErrorNoteCreateFailed.WithDetails(err.Error())
	}

	note := &domain.Note{
		ID:         id,
		Namespace:  namespace,
		ShortID:    shortID,
		Alias:      p.alias,
		Permission: domain.PermissionPublic,
		OwnerID:    p.ownerID,
		FilePath:   p.filePath,
	}
	s.applyContent(note, notemeta.WithMarker(namespace, p.body), p.ownerID)

	created, err := s.noteRepo.Create(ctx, note)
	if err != nil {
		s.logger.Error("NoteService.create failed",
			zap.String(logger.FieldUID, p.ownerID),
			zap.String("alias", p.alias),
			zap.Error(err))
		return nil, code.ErrorNoteCreateFailed.WithDetails(err.Error())
	}
	s.metrics.NotesCreated.WithLabelValues(p.origin).Inc()
	return created, nil
}

func (s *noteService) New(ctx context.Context, requester domain.Requester) (*domain.Note, error) {
	owner, err := s.ownerFor(requester)
	if err != nil {
		return nil, err
	}
	return s.create(ctx, createParams{ownerID: owner, body: s.config.DefaultNoteBody, origin: "new"})
}

func (s *noteService) CreateWithAlias(ctx context.Context, requester domain.Requester, alias string) (*domain.Note, error) {
	owner, err := s.ownerFor(requester)
	if err != nil {
		return nil, err
	}
	return s.create(ctx, createParams{ownerID: owner, alias: alias, body: s.config.DefaultNoteBody, origin: "freeurl"})
}

// load 在写队列内重新读取笔记
func (s *noteService) load(ctx context.Context, noteID string) (*domain.Note, error) {
	note, err := s.noteRepo.GetByID(ctx, noteID)
	if err != nil {
		return nil, code.ErrorInternal.WithDetails(err.Error())
	}
	if note == nil {
		return nil, code.ErrorNoteNotFound
	}
	return note, nil
}

func (s *noteService) Save(ctx context.Context, noteID string, content string, requester domain.Requester) (*domain.Note, error) {
	var saved *domain.Note
	err := s.writeQueue.Execute(ctx, noteID, func(ctx context.Context) error {
		note, err := s.load(ctx, noteID)
		if err != nil {
			return err
		}
		s.applyContent(note, content, requester.UserID)
		if err := s.noteRepo.UpdateContent(ctx, note); err != nil {
			return code.ErrorNoteUpdateFailed.WithDetails(err.Error())
		}
		if note.FilePath != "" {
			_ = s.writeMirror(ctx, note)
		}
		saved = note
		return nil
	})
	if err != nil {
		return nil, err
	}
	return saved, nil
}

func (s *noteService) Publish(ctx context.Context, noteID string, requester domain.Requester) (*domain.Note, bool, error) {
	var (
		published *domain.Note
		mirrored  bool
	)
	err := s.writeQueue.Execute(ctx, noteID, func(ctx context.Context) error {
		note, err := s.load(ctx, noteID)
		if err != nil {
			return err
		}
		s.applyContent(note, note.Content, requester.UserID)
		if err := s.noteRepo.UpdateContent(ctx, note); err != nil {
			return code.ErrorNoteUpdateFailed.WithDetails(err.Error())
		}

		// 版本快照失败不影响发布
		if _, err := s.revisionSvc.SaveNoteRevision(ctx, note); err != nil {
			s.metrics.RevisionSnapshotFailures.Inc()
			s.logger.Warn("The revision couldn't be created",
				zap.String(logger.FieldNoteID, note.ID),
				zap.String(logger.FieldMethod, "NoteService.Publish"),
				zap.Error(err))
		}

		published = note
		if note.FilePath != "" {
			mirrored = s.writeMirror(ctx, note) == nil
		}
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return published, mirrored, nil
}

func (s *noteService) SetFilePath(ctx context.Context, note *domain.Note, filePath string) (*domain.Note, error) {
	key, err := storage.CleanPath(filePath, s.config.DocsPath)
	if err != nil {
		return nil, code.ErrorFilePathInvalid
	}

	var updated *domain.Note
	err = s.writeQueue.Execute(ctx, note.ID, func(ctx context.Context) error {
		current, err := s.load(ctx, note.ID)
		if err != nil {
			return err
		}
		if err := s.noteRepo.UpdateFilePath(ctx, current.ID, key); err != nil {
			return code.ErrorNoteUpdateFailed.WithDetails(err.Error())
		}
		current.FilePath = key
		_ = s.writeMirror(ctx, current)
		updated = current
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// writeMirror writes the note content to its file path. Failures are logged and counted.
// writeMirror 将笔记内容写入镜像文件，失败只记录日志与指标
func (s *noteService) writeMirror(ctx context.Context, note *domain.Note) error {
	key, err := storage.CleanPath(note.FilePath, s.config.DocsPath)
	if err == nil {
		err = s.mirror.Write(ctx, key, []byte(note.Content))
	}
	if err != nil {
		s.metrics.MirrorWriteFailures.Inc()
		s.logger.Warn("mirror write failed",
			zap.String(logger.FieldNoteID, note.ID),
			zap.String(logger.FieldPath, note.FilePath),
			zap.Error(err))
	}
	return err
}

func (s *noteService) Open(ctx context.Context, relPath string, requester domain.Requester) (string, error) {
	notFound := s.config.redirectURL("/404")

	key, err := storage.CleanPath(storage.EnsureExt(relPath, ".md"), "")
	if err != nil {
		s.logger.Error("The file doesn't exist!", zap.String(logger.FieldPath, relPath))
		return notFound, nil
	}

	// 同一文件的并发打开只关联一次
	v, err, _ := s.sf.Do("open:"+key, func() (interface{}, error) {
		return s.openFile(ctx, key, requester)
	})
	if err != nil {
		return "", err
	}
	namespace := v.(string)
	if namespace == "" {
		return notFound, nil
	}
	return s.config.redirectURL("/" + url.PathEscape(namespace)), nil
}

// openFile 返回关联笔记的 namespace，文件不存在时返回空字符串
func (s *noteService) openFile(ctx context.Context, key string, requester domain.Requester) (string, error) {
	exists, err := s.mirror.Exists(ctx, key)
	if err != nil {
		return "", code.ErrorInternal.WithDetails(err.Error())
	}
	if !exists {
		s.logger.Error("The file doesn't exist!", zap.String(logger.FieldPath, key))
		return "", nil
	}
	data, err := s.mirror.Read(ctx, key)
	if err != nil {
		return "", code.ErrorInternal.WithDetails(err.Error())
	}
	content := string(data)

	owner := ""
	if requester.Authenticated() {
		owner = requester.UserID
	}

	if ns, ok := notemeta.ParseMarker(notemeta.FirstLine(content)); ok {
		note, err := s.noteRepo.GetByNamespace(ctx, ns)
		if err != nil {
			return "", code.ErrorInternal.WithDetails(err.Error())
		}
		if note != nil {
			return ns, nil
		}
		// 标记指向的笔记已不存在：去掉旧标记后重新建立匿名笔记
		content = strings.TrimLeft(notemeta.StripMarkers(content), "\r\n")
		owner = ""
	}

	note, err := s.create(ctx, createParams{ownerID: owner, body: content, filePath: key, origin: "open"})
	if err != nil {
		return "", err
	}
	if err := s.mirror.Write(ctx, key, []byte(note.Content)); err != nil {
		s.metrics.MirrorWriteFailures.Inc()
		s.logger.Warn("mirror write failed",
			zap.String(logger.FieldNoteID, note.ID),
			zap.String(logger.FieldPath, key),
			zap.Error(err))
	}
	return note.Namespace, nil
}

func (s *noteService) RecordView(ctx context.Context, note *domain.Note, surface domain.Surface) error {
	if err := s.noteRepo.IncrementViewCount(ctx, note.ID); err != nil {
		s.logger.Error("NoteService.RecordView failed", zap.String(logger.FieldNoteID, note.ID), zap.Error(err))
		return code.ErrorInternal.WithDetails(err.Error())
	}
	note.ViewCount++
	label := "publish"
	if surface == domain.SurfaceSlide {
		label = "slide"
	}
	s.metrics.NoteViews.WithLabelValues(label).Inc()
	return nil
}

func (s *noteService) History(ctx context.Context, requester domain.Requester) (*dto.HistoryDTO, error) {
	if !requester.Authenticated() {
		return nil, code.ErrorNotSignedIn
	}
	notes, err := s.noteRepo.ListByOwner(ctx, requester.UserID)
	if err != nil {
		return nil, code.ErrorInternal.WithDetails(err.Error())
	}

	items := make([]*dto.HistoryItemDTO, 0, len(notes))
	if err := copier.Copy(&items, notes); err != nil {
		return nil, code.ErrorInternal.WithDetails(err.Error())
	}
	for _, item := range items {
		item.Time = item.LastChangeAt.UnixMilli()
		if item.TagList == nil {
			item.TagList = []string{}
		}
	}
	return &dto.HistoryDTO{History: items}, nil
}

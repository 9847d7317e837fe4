package service

import (
	"context"
	"fmt"
	"html/template"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/nexbyte/hackmd/internal/domain"
	"github.com/nexbyte/hackmd/internal/dto"
	"github.com/nexbyte/hackmd/pkg/code"
	"github.com/nexbyte/hackmd/pkg/logger"
	"github.com/nexbyte/hackmd/pkg/markdown"
	"github.com/nexbyte/hackmd/pkg/notemeta"
	"github.com/nexbyte/hackmd/pkg/timex"
	"go.uber.org/zap"
)

// pdfDisabledLog 关闭 PDF 导出时记录的日志
const pdfDisabledLog = `PDF export failed: Disabled by config. Set "allowpdfexport: true" to enable. Check the documentation for details`

// ActionRequest is one note action. Action is parsed once at the routing boundary.
// ActionRequest 一次笔记操作请求，Action 在路由层解析
type ActionRequest struct {
	Action     domain.NoteAction
	Name       string // Action segment as requested, e.g. pdf-NextEvent // 请求中的原始操作名
	TemplateID string // PDF template id // PDF 模板 id
	ActionID   string // Optional third path segment // 可选的第三段路径
	NoteToken  string // Note token as given in the URL // URL 中的笔记 token
	Note       *domain.Note
	Requester  domain.Requester
}

// NoteActionService turns note requests into effects for the web router
// NoteActionService 将笔记请求转换为 Effect 交给 web 路由输出
type NoteActionService interface {
	// Dispatch runs a note action. When req.Note is nil the note is resolved from
	// req.NoteToken first.
	// Dispatch 执行笔记操作，req.Note 为空时先根据 NoteToken 解析笔记
	Dispatch(ctx context.Context, req ActionRequest) *Effect

	// ShowNote 渲染编辑页，允许自由 URL 并跳转到规范地址
	ShowNote(ctx context.Context, token string, requester domain.Requester) *Effect

	// ShowPublished 渲染发布页或幻灯片页并增加浏览次数
	ShowPublished(ctx context.Context, token string, surface domain.Surface, requester domain.Requester) *Effect

	// PublishedAction handles /s/:shortid/:action and /p/:shortid/:action.
	// PublishedAction 处理发布页与幻灯片页下的操作
	PublishedAction(ctx context.Context, token string, surface domain.Surface, action string, requester domain.Requester) *Effect

	// NewNote 创建新笔记并跳转到编辑页
	NewNote(ctx context.Context, requester domain.Requester) *Effect

	// OpenFile 打开文档目录中的文件
	OpenFile(ctx context.Context, relPath string, requester domain.Requester) *Effect

	// SaveNotePath 设置笔记的镜像路径
	SaveNotePath(ctx context.Context, req *dto.NotePathRequest, requester domain.Requester) *Effect

	// GitHubCallback 处理 GitHub 授权回调
	GitHubCallback(ctx context.Context, token, action, authCode, state string, requester domain.Requester) *Effect

	// GitLabCallback 处理 GitLab 授权回调
	GitLabCallback(ctx context.Context, token, action string, requester domain.Requester) *Effect

	// SaveContent replaces the content of the note behind token. The requester needs
	// edit permission.
	// SaveContent 保存 token 对应笔记的内容，请求者需要编辑权限
	SaveContent(ctx context.Context, token string, content string, requester domain.Requester) (*dto.NoteContentSaveDTO, error)
}

type noteActionService struct {
	resolver    ResolverService
	noteSvc     NoteService
	revisionSvc RevisionService
	pdfSvc      PDFService
	oauthSvc    OAuthService
	md          *markdown.Converter
	logger      *zap.Logger
	config      *ServiceConfig
}

// NewNoteActionService 创建 NoteActionService 实例
func NewNoteActionService(resolver ResolverService, noteSvc NoteService, revisionSvc RevisionService, pdfSvc PDFService, oauthSvc OAuthService, md *markdown.Converter, logger *zap.Logger, config *ServiceConfig) NoteActionService {
	if config == nil {
		config = DefaultServiceConfig()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &noteActionService{
		resolver:    resolver,
		noteSvc:     noteSvc,
		revisionSvc: revisionSvc,
		pdfSvc:      pdfSvc,
		oauthSvc:    oauthSvc,
		md:          md,
		logger:      logger,
		config:      config,
	}
}

func (s *noteActionService) pageBase() PageBase {
	return PageBase{
		URL:            s.config.ServerURL,
		UseCDN:         s.config.UseCDN,
		AllowAnonymous: s.config.AllowAnonymous,
		AllowPDFExport: s.config.AllowPDFExport,
	}
}

// redirect 跳转到站内路径
func (s *noteActionService) redirect(p string) *Effect {
	return RedirectEffect(s.config.redirectURL(p))
}

// noteTitle 元数据标题优先，否则为解码后的笔记标题
func noteTitle(note *domain.Note, meta notemeta.Meta) string {
	if meta.Title != "" {
		return meta.Title
	}
	return notemeta.DecodeTitle(note.Title)
}

// noteDescription returns nil when neither meta nor markdown provide one.
// noteDescription 元数据描述优先，markdown 为空时返回 nil
func noteDescription(meta notemeta.Meta, md string) *string {
	if meta.Description != "" {
		d := meta.Description
		return &d
	}
	if md == "" {
		return nil
	}
	d := notemeta.GenerateDescription(md)
	return &d
}

// encodeURIComponent escapes everything except A-Z a-z 0-9 and -_.!~*'()
func encodeURIComponent(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
			b.WriteByte(c)
		case strings.IndexByte("-_.!~*'()", c) >= 0:
			b.WriteByte(c)
		default:
			fmt.Fprintf(&b, "%%%02X", c)
		}
	}
	return b.String()
}

func (s *noteActionService) resolve(ctx context.Context, token string, requester domain.Requester, opts ResolveOptions) (*domain.Note, *Effect) {
	note, err := s.resolver.Resolve(ctx, token, requester, opts)
	if err != nil {
		return nil, ErrorEffect(err)
	}
	return note, nil
}

func (s *noteActionService) Dispatch(ctx context.Context, req ActionRequest) *Effect {
	note := req.Note
	if note == nil {
		resolved, created, err := s.resolver.ResolveOrCreate(ctx, req.NoteToken, req.Requester)
		if err != nil {
			return ErrorEffect(err)
		}
		// free URL 新建的笔记直接打开编辑页，不执行操作
		if created {
			return s.redirect(resolved.CanonicalPath(domain.SurfaceNote) + "?both")
		}
		note = resolved
	}

	switch req.Action {
	case domain.ActionPublish:
		return s.actionPublish(ctx, note, req.Requester)
	case domain.ActionSlide:
		return s.redirect(note.CanonicalPath(domain.SurfaceSlide))
	case domain.ActionDownload:
		return s.actionDownload(note)
	case domain.ActionInfo:
		return s.actionInfo(note)
	case domain.ActionPDF:
		if !s.config.AllowPDFExport {
			s.logger.Error(pdfDisabledLog, zap.String(logger.FieldNoteID, note.ID))
			return ErrorEffect(code.ErrorPDFExportDisabled)
		}
		return s.actionPDF(ctx, note, req.Name, req.TemplateID)
	case domain.ActionGist:
		return s.actionGist(ctx, note)
	case domain.ActionRevision:
		return s.actionRevision(ctx, note, req.ActionID)
	}
	return s.redirect("/" + url.PathEscape(req.NoteToken))
}

func (s *noteActionService) actionPublish(ctx context.Context, note *domain.Note, requester domain.Requester) *Effect {
	published, mirrored, err := s.noteSvc.Publish(ctx, note.ID, requester)
	if err != nil {
		s.logger.Error("NoteActionService.Publish failed",
			zap.String(logger.FieldNoteID, note.ID),
			zap.String(logger.FieldMethod, "NoteActionService.Publish"),
			zap.Error(err))
		return ErrorEffect(err)
	}
	if !mirrored {
		return RenderEffect(ViewNew, &NewNotePage{
			PageBase:  s.pageBase(),
			Namespace: published.Namespace,
			Note:      published,
		})
	}
	return s.redirect(published.CanonicalPath(domain.SurfacePublish))
}

func (s *noteActionService) actionDownload(note *domain.Note) *Effect {
	filename := encodeURIComponent(notemeta.DecodeTitle(note.Title))
	eff := &Effect{Kind: EffectBytes, Status: http.StatusOK, Body: []byte(note.Content)}
	return eff.With(corsHeaders()...).With(
		Header{"Content-Type", "text/markdown; charset=UTF-8"},
		Header{"Cache-Control", "private"},
		Header{"Content-disposition", "attachment; filename=" + filename + ".md"},
		Header{"X-Robots-Tag", "noindex, nofollow"},
	)
}

func (s *noteActionService) actionInfo(note *domain.Note) *Effect {
	extracted := notemeta.Extract(note.Content)
	info := &dto.NoteInfoDTO{
		Title:       noteTitle(note, extracted.Meta),
		Description: noteDescription(extracted.Meta, extracted.Markdown),
		ViewCount:   note.ViewCount,
		CreateTime:  timex.Time(note.CreatedAt),
		UpdateTime:  timex.Time(note.LastChangeAt),
	}
	return JSONEffect(info).With(apiHeaders()...)
}

func (s *noteActionService) actionPDF(ctx context.Context, note *domain.Note, actionName, templateID string) *Effect {
	if actionName == "" {
		actionName = "pdf"
	}
	body, err := s.pdfSvc.Export(ctx, note, actionName, templateID)
	if err != nil {
		return ErrorEffect(err)
	}
	eff := &Effect{Kind: EffectBytes, Status: http.StatusOK, Body: body}
	return eff.With(corsHeaders()...).With(
		Header{"Cache-Control", "private"},
		Header{"Content-Disposition", "attachment; filename=" + notemeta.DecodeTitle(note.Title) + ".pdf"},
		Header{"Content-Type", "application/pdf"},
		Header{"X-Robots-Tag", "noindex, nofollow"},
	)
}

func (s *noteActionService) actionGist(ctx context.Context, note *domain.Note) *Effect {
	location, err := s.oauthSvc.GistAuthorizeURL(ctx, note)
	if err != nil {
		return ErrorEffect(err)
	}
	return RedirectEffect(location)
}

func (s *noteActionService) actionRevision(ctx context.Context, note *domain.Note, actionID string) *Effect {
	if actionID == "" {
		infos, err := s.revisionSvc.GetNoteRevisions(ctx, note)
		if err != nil {
			s.logger.Error("NoteActionService.Revision list failed", zap.String(logger.FieldNoteID, note.ID), zap.Error(err))
			return ErrorEffect(code.ErrorInternal)
		}
		return JSONEffect(&dto.RevisionListDTO{Revision: infos}).With(apiHeaders()...)
	}

	atMs, err := strconv.ParseInt(actionID, 10, 64)
	if err != nil {
		return ErrorEffect(code.ErrorNotFound)
	}
	content, found, err := s.revisionSvc.GetPatchedNoteRevisionByTime(ctx, note, atMs)
	if err != nil {
		s.logger.Error("NoteActionService.Revision patch failed",
			zap.String(logger.FieldNoteID, note.ID),
			zap.Int64("time", atMs),
			zap.Error(err))
		return ErrorEffect(code.ErrorInternal)
	}
	if !found || content == "" {
		return ErrorEffect(code.ErrorNotFound)
	}
	return BytesEffect("text/plain; charset=utf-8", []byte(content)).With(apiHeaders()...)
}

func (s *noteActionService) ShowNote(ctx context.Context, token string, requester domain.Requester) *Effect {
	note, eff := s.resolve(ctx, token, requester, ResolveOptions{FreeURL: true})
	if eff != nil {
		return eff
	}
	if !note.IsCanonical(token, domain.SurfaceNote) {
		return s.redirect(note.CanonicalPath(domain.SurfaceNote))
	}

	extracted := notemeta.Extract(note.Content)
	page := &NotePage{
		PageBase: s.pageBase(),
		Title:    notemeta.GenerateWebTitle(noteTitle(note, extracted.Meta)),
		Note:     note,
	}
	return RenderEffect(ViewNote, page).With(
		Header{"Cache-Control", "private"},
		Header{"X-Robots-Tag", "noindex, nofollow"},
	)
}

func (s *noteActionService) ShowPublished(ctx context.Context, token string, surface domain.Surface, requester domain.Requester) *Effect {
	note, eff := s.resolve(ctx, token, requester, ResolveOptions{})
	if eff != nil {
		return eff
	}
	if !note.IsCanonical(token, surface) {
		return s.redirect(note.CanonicalPath(surface))
	}
	if err := s.noteSvc.RecordView(ctx, note, surface); err != nil {
		return ErrorEffect(err)
	}

	extracted := notemeta.Extract(note.Content)
	page := &PublishPage{
		PageBase:   s.pageBase(),
		Title:      notemeta.GenerateWebTitle(noteTitle(note, extracted.Meta)),
		ViewCount:  note.ViewCount,
		CreateTime: timex.Time(note.CreatedAt),
		UpdateTime: timex.Time(note.LastChangeAt),
		Markdown:   extracted.Markdown,
		Robots:     extracted.Meta.Robots,
		GA:         extracted.Meta.GA,
		Disqus:     extracted.Meta.Disqus,
	}
	if d := noteDescription(extracted.Meta, extracted.Markdown); d != nil {
		page.Description = *d
	}

	view := ViewPublish
	if surface == domain.SurfaceSlide {
		view = ViewSlide
		page.Theme = extracted.Meta.SlideTheme()
	} else {
		html, err := s.md.ToHTML(extracted.Markdown)
		if err != nil {
			s.logger.Error("NoteActionService.ShowPublished render failed", zap.String(logger.FieldNoteID, note.ID), zap.Error(err))
			return ErrorEffect(code.ErrorInternal)
		}
		page.Body = template.HTML(html)
	}
	return RenderEffect(view, page).With(Header{"Cache-Control", "private"})
}

func (s *noteActionService) PublishedAction(ctx context.Context, token string, surface domain.Surface, action string, requester domain.Requester) *Effect {
	note, eff := s.resolve(ctx, token, requester, ResolveOptions{})
	if eff != nil {
		return eff
	}
	if action == "edit" {
		return s.redirect(note.CanonicalPath(domain.SurfaceNote))
	}
	prefix := "/s/"
	if surface == domain.SurfaceSlide {
		prefix = "/p/"
	}
	return s.redirect(prefix + url.PathEscape(note.ShortID))
}

func (s *noteActionService) NewNote(ctx context.Context, requester domain.Requester) *Effect {
	note, err := s.noteSvc.New(ctx, requester)
	if err != nil {
		return ErrorEffect(err)
	}
	return s.redirect("/" + url.PathEscape(note.Namespace) + "?both")
}

func (s *noteActionService) OpenFile(ctx context.Context, relPath string, requester domain.Requester) *Effect {
	location, err := s.noteSvc.Open(ctx, relPath, requester)
	if err != nil {
		s.logger.Error("NoteActionService.OpenFile failed", zap.String(logger.FieldPath, relPath), zap.Error(err))
		return ErrorEffect(err)
	}
	return RedirectEffect(location)
}

func (s *noteActionService) SaveNotePath(ctx context.Context, req *dto.NotePathRequest, requester domain.Requester) *Effect {
	note, eff := s.resolve(ctx, req.Namespace, requester, ResolveOptions{})
	if eff != nil {
		return eff
	}
	updated, err := s.noteSvc.SetFilePath(ctx, note, req.FilePath)
	if err != nil {
		return ErrorEffect(err)
	}
	return s.redirect("/" + url.PathEscape(updated.Namespace))
}

func (s *noteActionService) GitHubCallback(ctx context.Context, token, action, authCode, state string, requester domain.Requester) *Effect {
	note, eff := s.resolve(ctx, token, requester, ResolveOptions{})
	if eff != nil {
		return eff
	}
	if action != "gist" {
		return s.redirect("/" + url.PathEscape(token))
	}
	location, err := s.oauthSvc.GistCallback(ctx, note, authCode, state)
	if err != nil {
		return ErrorEffect(err)
	}
	return RedirectEffect(location).With(Header{"referer", ""})
}

func (s *noteActionService) GitLabCallback(ctx context.Context, token, action string, requester domain.Requester) *Effect {
	if _, eff := s.resolve(ctx, token, requester, ResolveOptions{}); eff != nil {
		return eff
	}
	if action != "projects" {
		return s.redirect("/" + url.PathEscape(token))
	}
	out, err := s.oauthSvc.GitLabProjects(ctx, requester)
	if err != nil {
		return ErrorEffect(err)
	}
	return JSONEffect(out)
}

func (s *noteActionService) SaveContent(ctx context.Context, token string, content string, requester domain.Requester) (*dto.NoteContentSaveDTO, error) {
	note, err := s.resolver.Resolve(ctx, token, requester, ResolveOptions{})
	if err != nil {
		return nil, err
	}
	if !note.Permission.CanEdit(requester, note.OwnerID) {
		return nil, code.ErrorNoteForbidden
	}
	saved, err := s.noteSvc.Save(ctx, note.ID, content, requester)
	if err != nil {
		s.logger.Error("NoteActionService.SaveContent failed",
			zap.String(logger.FieldMethod, "NoteActionService.SaveContent"),
			zap.String(logger.FieldNoteID, note.ID),
			zap.Error(err))
		return nil, err
	}
	return &dto.NoteContentSaveDTO{
		ID:           saved.Namespace,
		Title:        notemeta.DecodeTitle(saved.Title),
		Tags:         saved.TagList(),
		LastChangeAt: timex.Time(saved.LastChangeAt),
	}, nil
}

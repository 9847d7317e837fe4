package service

import (
	"context"
	"net/url"

	"github.com/nexbyte/hackmd/internal/domain"
	"github.com/nexbyte/hackmd/internal/dto"
	"github.com/nexbyte/hackmd/pkg/code"
	"github.com/nexbyte/hackmd/pkg/idcodec"
	"github.com/nexbyte/hackmd/pkg/logger"
	"github.com/nexbyte/hackmd/pkg/notemeta"
	"github.com/nexbyte/hackmd/pkg/oauth"
	"github.com/nexbyte/hackmd/pkg/statestore"
	"go.uber.org/zap"
)

const gistScope = "gist"

// OAuthService defines the GitHub gist and GitLab project integrations
// OAuthService 定义 GitHub gist 与 GitLab 项目集成
type OAuthService interface {
	// GistAuthorizeURL stores a fresh state and returns the GitHub authorize URL
	// GistAuthorizeURL 生成并保存 state，返回 GitHub 授权地址
	GistAuthorizeURL(ctx context.Context, note *domain.Note) (string, error)

	// GistCallback consumes state, exchanges code and creates a gist from the note.
	// It returns the gist page URL.
	// GistCallback 校验 state、换取令牌并创建 gist，返回 gist 页面地址
	GistCallback(ctx context.Context, note *domain.Note, authCode, state string) (string, error)

	// GitLabProjects 返回当前用户的 GitLab 令牌信息与项目列表
	GitLabProjects(ctx context.Context, requester domain.Requester) (*dto.GitLabProjectsDTO, error)
}

type oauthService struct {
	github   *oauth.GitHub
	gitlab   *oauth.GitLab
	states   statestore.Store
	userRepo domain.UserRepository
	logger   *zap.Logger
	config   *ServiceConfig
}

// NewOAuthService 创建 OAuthService 实例
func NewOAuthService(github *oauth.GitHub, gitlab *oauth.GitLab, states statestore.Store, userRepo domain.UserRepository, logger *zap.Logger, config *ServiceConfig) OAuthService {
	if config == nil {
		config = DefaultServiceConfig()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &oauthService{
		github:   github,
		gitlab:   gitlab,
		states:   states,
		userRepo: userRepo,
		logger:   logger,
		config:   config,
	}
}

// gistRedirectURI 授权完成后的回调地址
func (s *oauthService) gistRedirectURI(note *domain.Note) string {
	return s.config.redirectURL("/auth/github/callback/" + url.PathEscape(note.Namespace) + "/gist")
}

func (s *oauthService) GistAuthorizeURL(ctx context.Context, note *domain.Note) (string, error) {
	state, err := idcodec.NewShortID()
	if err != nil {
		return "", code.ErrorInternal.WithDetails(err.Error())
	}
	if err := s.states.Put(ctx, state, note.ID, s.config.OAuthStateTTL); err != nil {
		s.logger.Error("OAuthService.GistAuthorizeURL store state failed",
			zap.String(logger.FieldNoteID, note.ID),
			zap.Error(err))
		return "", code.ErrorInternal.WithDetails(err.Error())
	}
	return s.github.AuthorizeURL(s.gistRedirectURI(note), gistScope, state), nil
}

func (s *oauthService) GistCallback(ctx context.Context, note *domain.Note, authCode, state string) (string, error) {
	if authCode == "" || state == "" {
		return "", code.ErrorOAuthParamsMissing
	}

	noteID, ok, err := s.states.Consume(ctx, state)
	if err != nil {
		s.logger.Error("OAuthService.GistCallback consume state failed", zap.Error(err))
		return "", code.ErrorInternal.WithDetails(err.Error())
	}
	// state 只对签发它的笔记有效
	if !ok || noteID != note.ID {
		return "", code.ErrorOAuthStateInvalid
	}

	token, err := s.github.ExchangeCode(ctx, authCode, state)
	if err != nil {
		s.logger.Warn("OAuthService.GistCallback exchange failed",
			zap.String(logger.FieldNoteID, note.ID),
			zap.String(logger.FieldProvider, "github"),
			zap.Error(err))
		return "", code.ErrorOAuthExchange
	}

	filename := oauth.GistFilename(notemeta.DecodeTitle(note.Title))
	htmlURL, err := s.github.CreateGist(ctx, token, filename, note.Content)
	if err != nil {
		s.logger.Warn("OAuthService.GistCallback create gist failed",
			zap.String(logger.FieldNoteID, note.ID),
			zap.String(logger.FieldProvider, "github"),
			zap.Error(err))
		return "", code.ErrorGistCreateFailed
	}
	return htmlURL, nil
}

func (s *oauthService) GitLabProjects(ctx context.Context, requester domain.Requester) (*dto.GitLabProjectsDTO, error) {
	if !requester.Authenticated() {
		return nil, code.ErrorForbidden
	}
	user, err := s.userRepo.GetByID(ctx, requester.UserID)
	if err != nil {
		return nil, code.ErrorInternal.WithDetails(err.Error())
	}
	if user == nil {
		return nil, code.ErrorUserNotFound
	}

	out := &dto.GitLabProjectsDTO{
		BaseURL:     s.gitlab.BaseURL(),
		AccessToken: user.AccessToken,
		ProfileID:   user.ProfileID,
	}
	projects, err := s.gitlab.Projects(ctx, user.AccessToken)
	if err != nil {
		// 上游失败时返回不含项目列表的结果
		s.logger.Warn("OAuthService.GitLabProjects fetch failed",
			zap.String(logger.FieldUID, user.ID),
			zap.String(logger.FieldProvider, "gitlab"),
			zap.Error(err))
		return out, nil
	}
	out.Projects = projects
	return out, nil
}

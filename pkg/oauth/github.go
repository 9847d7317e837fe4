package oauth

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/pkg/errors"
)

const (
	GitHubWebURL = "https://github.com"
	GitHubAPIURL = "https://api.github.com"
)

// GitHubConfig GitHub OAuth App 配置
type GitHubConfig struct {
	ClientID     string
	ClientSecret string
	// WebURL/APIURL 为空时使用 github.com
	WebURL string
	APIURL string
}

// GitHub 客户端
type GitHub struct {
	config GitHubConfig
	client *http.Client
}

func NewGitHub(cfg GitHubConfig, client *http.Client) *GitHub {
	if cfg.WebURL == "" {
		cfg.WebURL = GitHubWebURL
	}
	if cfg.APIURL == "" {
		cfg.APIURL = GitHubAPIURL
	}
	if client == nil {
		client = NewHTTPClient(0)
	}
	cfg.WebURL = strings.TrimSuffix(cfg.WebURL, "/")
	cfg.APIURL = strings.TrimSuffix(cfg.APIURL, "/")
	return &GitHub{config: cfg, client: client}
}

// AuthorizeURL 构造授权跳转地址
func (g *GitHub) AuthorizeURL(redirectURI, scope, state string) string {
	q := url.Values{}
	q.Set("client_id", g.config.ClientID)
	q.Set("redirect_uri", redirectURI)
	q.Set("scope", scope)
	q.Set("state", state)
	return g.config.WebURL + "/login/oauth/authorize?" + q.Encode()
}

type accessTokenResponse struct {
	AccessToken string `json:"access_token"`
}

// ExchangeCode trades an authorization code for an access token.
// ExchangeCode 用授权码换取 access token
func (g *GitHub) ExchangeCode(ctx context.Context, code, state string) (string, error) {
	status, body, err := doJSON(ctx, g.client, http.MethodPost, g.config.WebURL+"/login/oauth/access_token", nil, map[string]string{
		"client_id":     g.config.ClientID,
		"client_secret": g.config.ClientSecret,
		"code":          code,
		"state":         state,
	})
	if err != nil {
		return "", err
	}
	if status != http.StatusOK {
		return "", errors.Wrapf(ErrUnexpectedStatus, "access_token: %d", status)
	}

	var resp accessTokenResponse
	if err := sonic.Unmarshal(body, &resp); err != nil {
		return "", errors.Wrap(err, "oauth: decode access token")
	}
	if resp.AccessToken == "" {
		return "", errors.New("oauth: empty access token")
	}
	return resp.AccessToken, nil
}

type gistFile struct {
	Content string `json:"content"`
}

type gistRequest struct {
	Files map[string]gistFile `json:"files"`
}

type gistResponse struct {
	HTMLURL string `json:"html_url"`
}

// CreateGist posts one file as a new gist and returns its html_url. Only 201 counts as success.
// CreateGist 创建只含一个文件的 gist，仅 201 视为成功
func (g *GitHub) CreateGist(ctx context.Context, token, filename, content string) (string, error) {
	header := http.Header{}
	header.Set("User-Agent", "HackMD")
	header.Set("Authorization", "token "+token)

	status, body, err := doJSON(ctx, g.client, http.MethodPost, g.config.APIURL+"/gists", header, gistRequest{
		Files: map[string]gistFile{filename: {Content: content}},
	})
	if err != nil {
		return "", err
	}
	if status != http.StatusCreated {
		return "", errors.Wrapf(ErrUnexpectedStatus, "gists: %d", status)
	}

	var resp gistResponse
	if err := sonic.Unmarshal(body, &resp); err != nil {
		return "", errors.Wrap(err, "oauth: decode gist")
	}
	return resp.HTMLURL, nil
}

// GistFilename 由笔记标题生成 gist 文件名，仅替换第一个 '/'
func GistFilename(title string) string {
	return strings.Replace(title, "/", " ", 1) + ".md"
}

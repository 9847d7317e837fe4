package oauth

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/pkg/errors"
)

// GitLabConfig GitLab 配置
type GitLabConfig struct {
	BaseURL string
}

// GitLab 客户端
type GitLab struct {
	config GitLabConfig
	client *http.Client
}

func NewGitLab(cfg GitLabConfig, client *http.Client) *GitLab {
	if client == nil {
		client = NewHTTPClient(0)
	}
	cfg.BaseURL = strings.TrimSuffix(cfg.BaseURL, "/")
	return &GitLab{config: cfg, client: client}
}

// BaseURL 返回 GitLab 地址
func (g *GitLab) BaseURL() string {
	return g.config.BaseURL
}

// Projects lists the projects visible to accessToken as raw JSON values.
// Projects 返回 access token 可见的项目列表
func (g *GitLab) Projects(ctx context.Context, accessToken string) ([]any, error) {
	u := g.config.BaseURL + "/api/v3/projects?access_token=" + url.QueryEscape(accessToken)
	status, body, err := doJSON(ctx, g.client, http.MethodGet, u, nil, nil)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, errors.Wrapf(ErrUnexpectedStatus, "projects: %d", status)
	}

	var projects []any
	if err := sonic.Unmarshal(body, &projects); err != nil {
		return nil, errors.Wrap(err, "oauth: decode projects")
	}
	return projects, nil
}

// Package oauth talks to the GitHub and GitLab HTTP APIs used by note integrations.
// Package oauth 封装笔记集成使用的 GitHub、GitLab 接口
package oauth

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"time"

	"github.com/bytedance/sonic"
	"github.com/pkg/errors"
)

// ErrUnexpectedStatus 远端返回了非预期的状态码
var ErrUnexpectedStatus = errors.New("oauth: unexpected status")

// DefaultTimeout 出站请求默认超时
const DefaultTimeout = 10 * time.Second

// NewHTTPClient 创建带超时的 HTTP 客户端
func NewHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &http.Client{Timeout: timeout}
}

// doJSON sends body as JSON (when non-nil) and returns the status and raw response.
func doJSON(ctx context.Context, c *http.Client, method, url string, header http.Header, body any) (int, []byte, error) {
	var reader io.Reader
	if body != nil {
		payload, err := sonic.Marshal(body)
		if err != nil {
			return 0, nil, errors.Wrap(err, "oauth: marshal")
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return 0, nil, errors.Wrap(err, "oauth: new request")
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.Do(req)
	if err != nil {
		return 0, nil, errors.Wrap(err, "oauth: request")
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return resp.StatusCode, nil, errors.Wrap(err, "oauth: read body")
	}
	return resp.StatusCode, data, nil
}

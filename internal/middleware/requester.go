package middleware

import (
	"context"
	"strings"

	"github.com/nexbyte/hackmd/internal/domain"
	"github.com/nexbyte/hackmd/pkg/app"
	"github.com/nexbyte/hackmd/pkg/code"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RequesterKey gin.Context 中存储请求者的键
const RequesterKey = "requester"

type requesterKeyType struct{}

// tokenFromRequest 按 query、header、cookie 的顺序读取 Token
func tokenFromRequest(c *gin.Context) string {
	if s, exist := c.GetQuery("authorization"); exist {
		return s
	} else if s, exist := c.GetQuery("Authorization"); exist {
		return s
	} else if s := c.GetHeader("Authorization"); len(s) != 0 {
		return strings.TrimPrefix(s, "Bearer ")
	} else if s, exist := c.GetQuery("token"); exist {
		return s
	} else if s = c.GetHeader("Token"); len(s) != 0 {
		return s
	} else if s, err := c.Cookie("token"); err == nil {
		return s
	}
	return ""
}

// Identify resolves the requester from an optional auth token. A missing or invalid
// token leaves the request anonymous.
// Identify 通过可选的 Token 识别请求者，缺失或无效时按匿名处理
func Identify(tm app.TokenManager, lg *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		r := domain.Requester{IP: app.GetRequestIP(c)}

		if token := tokenFromRequest(c); token != "" && tm != nil {
			user, err := tm.Parse(token)
			if err != nil {
				lg.Debug("auth token rejected", zap.String("ip", r.IP), zap.Error(err))
			} else {
				r.UserID = user.UID
				c.Set(app.UserTokenKey, user)
			}
		}

		c.Set(RequesterKey, r)
		c.Request = c.Request.WithContext(context.WithValue(c.Request.Context(), requesterKeyType{}, r))
		c.Next()
	}
}

// RequireUser aborts requests without an authenticated requester.
// RequireUser 未登录的请求直接返回 ErrorNotSignedIn
func RequireUser(w ErrorWriter) gin.HandlerFunc {
	w = writerOrJSON(w)
	return func(c *gin.Context) {
		if !RequesterFrom(c).Authenticated() {
			w(c, code.ErrorNotSignedIn)
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequesterFrom 获取请求者，没有经过 Identify 时为匿名
func RequesterFrom(c *gin.Context) domain.Requester {
	if v, ok := c.Get(RequesterKey); ok {
		if r, ok := v.(domain.Requester); ok {
			return r
		}
	}
	return domain.Anonymous
}

// RequesterFromContext 从 context.Context 获取请求者
func RequesterFromContext(ctx context.Context) domain.Requester {
	if r, ok := ctx.Value(requesterKeyType{}).(domain.Requester); ok {
		return r
	}
	return domain.Anonymous
}

package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/nexbyte/hackmd/pkg/app"
	"github.com/nexbyte/hackmd/pkg/code"
)

// ErrorWriter writes an aborted request's error. Page routes render the error view,
// API routes answer with the JSON envelope.
// ErrorWriter 输出中断请求的错误，页面路由渲染错误页，API 路由返回 JSON
type ErrorWriter func(c *gin.Context, e *code.Code)

// JSONError 以统一 JSON 结构输出错误
func JSONError(c *gin.Context, e *code.Code) {
	app.NewResponse(c).ToResponse(e)
}

func writerOrJSON(w ErrorWriter) ErrorWriter {
	if w == nil {
		return JSONError
	}
	return w
}

package middleware

import (
	"github.com/nexbyte/hackmd/pkg/code"

	"github.com/gin-gonic/gin"
)

// NoFound 404 handler
// NoFound 404 处理
func NoFound(w ErrorWriter) gin.HandlerFunc {
	w = writerOrJSON(w)
	return func(c *gin.Context) {
		w(c, code.ErrorNotFound)
		c.Abort()
	}
}

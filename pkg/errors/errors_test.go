package errors

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/nexbyte/hackmd/pkg/app"
	"github.com/nexbyte/hackmd/pkg/code"
	pkgerrors "github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newContext() (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Set(app.TraceIDKey, "trace-1")
	return c, w
}

func TestErrorResponse_Code(t *testing.T) {
	c, w := newContext()
	ErrorResponse(c, pkgerrors.Wrap(code.ErrorNoteNotFound, "lookup"))

	assert.Equal(t, http.StatusNotFound, w.Code)
	var body AppError
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, code.ErrorNoteNotFound.Code(), body.Code)
	assert.Equal(t, "trace-1", body.TraceID)
}

func TestErrorResponse_AppError(t *testing.T) {
	c, w := newContext()
	cause := pkgerrors.New("db down")
	err := NewAppError(code.ErrorInternal, cause)

	assert.ErrorIs(t, err, cause)
	ErrorResponse(c, err)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.True(t, IsAppError(err))
	assert.Same(t, err, GetAppError(pkgerrors.WithStack(err)))
}

func TestErrorResponse_Unknown(t *testing.T) {
	c, w := newContext()
	ErrorResponse(c, pkgerrors.New("boom"))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), `"traceId":"trace-1"`)
}

func TestFromError(t *testing.T) {
	cause := pkgerrors.New("disk full")

	got := FromError(cause)
	assert.Equal(t, code.ErrorInternal.Code(), got.Code)
	assert.ErrorIs(t, got, cause)

	got = FromError(pkgerrors.Wrap(code.ErrorForbidden, "history"))
	assert.Equal(t, code.ErrorForbidden.Code(), got.Code)
	assert.Equal(t, http.StatusForbidden, got.HTTPStatus)
}

package code

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCode_WithDetailsDoesNotMutateRegistered(t *testing.T) {
	c := ErrorNotFound.WithDetails("note abc")

	assert.True(t, c.HaveDetails())
	assert.Equal(t, []string{"note abc"}, c.Details())
	assert.False(t, ErrorNotFound.HaveDetails())
	assert.True(t, errors.Is(c, ErrorNotFound))
	assert.False(t, errors.Is(c, ErrorForbidden))
}

func TestCode_StatusAndTitle(t *testing.T) {
	tests := []struct {
		c      *Code
		status int
		title  string
		msg    string
	}{
		{ErrorForbidden, http.StatusForbidden, "Forbidden", "oh no."},
		{ErrorNotFound, http.StatusNotFound, "Not Found", "oops."},
		{ErrorBadRequest, http.StatusBadRequest, "Bad Request", "something not right."},
		{ErrorInternal, http.StatusInternalServerError, "Internal Error", "wtf."},
		{ErrorServiceUnavailable, http.StatusServiceUnavailable, "Service Unavailable", "I'm busy right now, try again later."},
		{Success, http.StatusOK, "OK", "Success"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.status, tt.c.StatusCode())
		assert.Equal(t, tt.title, tt.c.Title())
		assert.Equal(t, tt.msg, tt.c.Msg())
	}
}

func TestSetGlobalDefaultLang(t *testing.T) {
	defer SetGlobalDefaultLang("en")

	assert.NoError(t, SetGlobalDefaultLang("zh_cn"))
	assert.Equal(t, "笔记不存在。", ErrorNoteNotFound.Msg())

	assert.Error(t, SetGlobalDefaultLang("fr"))
	assert.Equal(t, "oops.", ErrorNoteNotFound.Msg())
}

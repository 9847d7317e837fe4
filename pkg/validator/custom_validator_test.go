package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type saveRequest struct {
	Content *string `json:"content" binding:"required"`
	Path    string  `json:"path" binding:"max=8"`
}

func TestCustomValidator(t *testing.T) {
	v := NewCustomValidator()

	body := "x"
	assert.NoError(t, v.ValidateStruct(&saveRequest{Content: &body}))
	assert.Error(t, v.ValidateStruct(&saveRequest{}))
	assert.Error(t, v.ValidateStruct(saveRequest{Content: &body, Path: "too-long-path"}))
	assert.NoError(t, v.ValidateStruct("not a struct"))
	assert.NotNil(t, v.Engine())
}

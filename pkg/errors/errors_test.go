package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsCodeThroughWrapping(t *testing.T) {
	base := New(CodeForbidden, "not your shift")
	wrapped := fmt.Errorf("remove assignment: %w", base)

	assert.True(t, IsCode(wrapped, CodeForbidden))
	assert.False(t, IsCode(wrapped, CodeNotFound))
	assert.Equal(t, CodeForbidden, CodeOf(wrapped))
	assert.Equal(t, CodeUnknown, CodeOf(stderrors.New("plain")))
}

func TestWrapKeepsCause(t *testing.T) {
	cause := stderrors.New("connection refused")
	err := Wrap(cause, CodeUnavailable, "store unreachable")

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "unavailable: store unreachable: connection refused", err.Error())

	nilCause := Wrap(nil, CodeInternal, "boom")
	assert.Nil(t, nilCause.Err)
}

func TestWithMeta(t *testing.T) {
	err := New(CodeInvalidTransition, "shift is not requested").WithMeta("status", "Posted")
	assert.Equal(t, "Posted", err.Meta["status"])
}

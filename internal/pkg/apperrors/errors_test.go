package apperrors

import (
	"fmt"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestIsCodeThroughWrapping(t *testing.T) {
	root := errors.New("connection refused")
	wrapped := Wrap(CodeDatabase, "failed to save order", root)

	assert.True(t, IsCode(wrapped, CodeDatabase))
	assert.False(t, IsCode(wrapped, CodeNotFound))

	// 再套一层标准库包装，错误码依然可达
	outer := fmt.Errorf("checkout failed: %w", wrapped)
	assert.True(t, IsCode(outer, CodeDatabase))
}

func TestCodeOf(t *testing.T) {
	assert.Equal(t, CodeConflict, CodeOf(New(CodeConflict, "order already has a package")))
	assert.Equal(t, CodeInternal, CodeOf(errors.New("plain error")))
	assert.Equal(t, CodeValidation, CodeOf(fmt.Errorf("outer: %w", Newf(CodeValidation, "bad field %s", "userId"))))
}

func TestErrorMessageIncludesCause(t *testing.T) {
	root := errors.New("duplicate entry")
	wrapped := Wrap(CodeConflict, "warranty claim already filed", root)

	assert.Contains(t, wrapped.Error(), "warranty claim already filed")
	assert.Contains(t, wrapped.Error(), "duplicate entry")
	assert.Equal(t, root, errors.Unwrap(wrapped))
}

func TestNewHasNoCause(t *testing.T) {
	err := New(CodeNotFound, "order not found")
	assert.Nil(t, errors.Unwrap(err))
	assert.Contains(t, err.Error(), "order not found")
}

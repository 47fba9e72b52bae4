// internal/errors/errors_test.go
package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_ErrorMessage(t *testing.T) {
	plain := NewValidationError("愿望内容不能为空", nil)
	assert.Equal(t, "愿望内容不能为空", plain.Error())

	wrapped := NewLoadError("加载藏品集合失败", errors.New("文件不存在"))
	assert.Equal(t, "加载藏品集合失败: 文件不存在", wrapped.Error())
}

func TestAppError_Unwrap(t *testing.T) {
	cause := errors.New("底层错误")
	err := NewProcessingError("处理失败", cause)

	assert.True(t, errors.Is(err, cause))
}

func TestTypePredicates(t *testing.T) {
	assert.True(t, IsValidationError(NewValidationError("x", nil)))
	assert.True(t, IsNotFoundError(NewNotFoundError("x", nil)))
	assert.True(t, IsLoadError(NewLoadError("x", nil)))
	assert.True(t, IsUnauthorizedError(NewUnauthorizedError("x", nil)))

	assert.False(t, IsLoadError(NewValidationError("x", nil)))
	assert.False(t, IsValidationError(errors.New("普通错误")))
	assert.False(t, IsNotFoundError(nil))
}

func TestTypePredicates_SeeThroughWrapping(t *testing.T) {
	inner := NewNotFoundError("藏品不存在", nil)
	outer := fmt.Errorf("查询失败: %w", inner)

	assert.True(t, IsNotFoundError(outer))
}

func TestErrorCodes(t *testing.T) {
	assert.Equal(t, "LOAD_ERROR", NewLoadError("x", nil).Code)
	assert.Equal(t, "VALIDATION_ERROR", NewValidationError("x", nil).Code)
	assert.Equal(t, "NOT_FOUND", NewNotFoundError("x", nil).Code)
}

func TestWrapError(t *testing.T) {
	assert.Nil(t, WrapError(nil, "无事发生", ErrorTypeError))

	cause := errors.New("底层错误")
	wrapped := WrapError(cause, "外层消息", ErrorTypeLoad)
	assert.True(t, IsLoadError(wrapped))

	// 已是 AppError 时保留原有类型
	rewrapped := WrapError(NewValidationError("参数非法", nil), "再包一层", ErrorTypeLoad)
	assert.True(t, IsValidationError(rewrapped))
	assert.False(t, IsLoadError(rewrapped))
}

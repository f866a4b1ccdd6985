package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestNew 测试错误创建
func TestNew(t *testing.T) {
	err := New(ErrStateNotFound)
	assert.Equal(t, ErrStateNotFound, err.Code)
	assert.Equal(t, "游戏状态不存在", err.Message)
	assert.Contains(t, err.Error(), "2000")

	// 带详情
	err = New(ErrInvalidSaveField, "字段 money 需要数值")
	assert.Contains(t, err.Error(), "money")
}

// TestNewf 测试格式化错误
func TestNewf(t *testing.T) {
	err := Newf(ErrInvalidFlag, "未知的标记 %s", "superMode")
	assert.Equal(t, ErrInvalidFlag, err.Code)
	assert.Contains(t, err.Details, "superMode")
}

// TestWrap 测试错误包装
func TestWrap(t *testing.T) {
	cause := fmt.Errorf("connection refused")
	err := Wrap(cause, ErrDatabaseConnect)
	assert.Equal(t, ErrDatabaseConnect, err.Code)
	assert.Equal(t, cause, err.Unwrap())
	assert.Contains(t, err.Details, "connection refused")

	// 包装已有的AppError保留原错误码
	inner := New(ErrStateNotFound)
	wrapped := Wrap(inner, ErrDatabaseQuery)
	assert.Equal(t, ErrStateNotFound, wrapped.Code)

	// nil直接返回nil
	assert.Nil(t, Wrap(nil, ErrUnknown))
}

// TestIs 测试错误码判断
func TestIs(t *testing.T) {
	err := New(ErrInvalidSaveField)
	assert.True(t, Is(err, ErrInvalidSaveField))
	assert.False(t, Is(err, ErrStateNotFound))
	assert.False(t, Is(fmt.Errorf("plain"), ErrInvalidSaveField))
	assert.False(t, Is(nil, ErrInvalidSaveField))
}

// TestHTTPStatus 测试HTTP状态码映射
func TestHTTPStatus(t *testing.T) {
	cases := map[ErrorCode]int{
		ErrInvalidParam:     400,
		ErrInvalidSaveField: 400,
		ErrInvalidFlag:      400,
		ErrStateNotFound:    404,
		ErrNotFound:         404,
		ErrAuthentication:   401,
		ErrTokenExpired:     401,
		ErrPermissionDenied: 403,
		ErrDatabaseQuery:    500,
		ErrUnknown:          500,
	}

	for code, want := range cases {
		assert.Equal(t, want, New(code).HTTPStatus(), "code %d", code)
	}
}

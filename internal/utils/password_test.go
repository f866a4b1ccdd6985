package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestHashPassword 测试密码哈希
func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("mypassword")
	assert.NoError(t, err)
	assert.True(t, strings.HasPrefix(hash, "$argon2id$"))

	// 相同密码每次生成不同的哈希（随机盐）
	hash2, err := HashPassword("mypassword")
	assert.NoError(t, err)
	assert.NotEqual(t, hash, hash2)
}

// TestVerifyPassword 测试密码验证
func TestVerifyPassword(t *testing.T) {
	hash, err := HashPassword("correct-password")
	assert.NoError(t, err)

	valid, err := VerifyPassword("correct-password", hash)
	assert.NoError(t, err)
	assert.True(t, valid)

	valid, err = VerifyPassword("wrong-password", hash)
	assert.NoError(t, err)
	assert.False(t, valid)
}

// TestVerifyPassword_InvalidFormat 测试非法哈希格式
func TestVerifyPassword_InvalidFormat(t *testing.T) {
	_, err := VerifyPassword("password", "not-a-valid-hash")
	assert.Error(t, err)

	_, err = VerifyPassword("password", "$bcrypt$v=19$m=65536,t=1,p=4$salt$hash")
	assert.Error(t, err)
}

// TestGenerateSessionID 测试会话ID生成
func TestGenerateSessionID(t *testing.T) {
	id1, err := GenerateSessionID()
	assert.NoError(t, err)
	assert.Len(t, id1, 32)

	id2, err := GenerateSessionID()
	assert.NoError(t, err)
	assert.NotEqual(t, id1, id2)
}

package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// TestJWTManager_GenerateAndValidate 测试令牌生成和验证
func TestJWTManager_GenerateAndValidate(t *testing.T) {
	manager := NewJWTManager("test-secret", time.Hour, 24*time.Hour)

	token, err := manager.GenerateAccessToken(1, "player1", "player1@example.com", "session-1")
	assert.NoError(t, err)
	assert.NotEmpty(t, token)

	claims, err := manager.ValidateToken(token)
	assert.NoError(t, err)
	assert.Equal(t, uint(1), claims.UserID)
	assert.Equal(t, "player1", claims.Username)
	assert.Equal(t, "session-1", claims.SessionID)
	assert.Equal(t, "access", claims.TokenType)
}

// TestJWTManager_InvalidToken 测试无效令牌
func TestJWTManager_InvalidToken(t *testing.T) {
	manager := NewJWTManager("test-secret", time.Hour, 24*time.Hour)

	_, err := manager.ValidateToken("not.a.token")
	assert.Error(t, err)

	// 不同密钥签发的令牌验证失败
	other := NewJWTManager("other-secret", time.Hour, 24*time.Hour)
	token, err := other.GenerateAccessToken(1, "player1", "player1@example.com", "session-1")
	assert.NoError(t, err)

	_, err = manager.ValidateToken(token)
	assert.Error(t, err)
}

// TestJWTManager_ExpiredToken 测试过期令牌
func TestJWTManager_ExpiredToken(t *testing.T) {
	manager := NewJWTManager("test-secret", -time.Hour, 24*time.Hour)

	token, err := manager.GenerateAccessToken(1, "player1", "player1@example.com", "session-1")
	assert.NoError(t, err)

	_, err = manager.ValidateToken(token)
	assert.Error(t, err)
}

// TestJWTManager_RefreshAccessToken 测试刷新令牌换发访问令牌
func TestJWTManager_RefreshAccessToken(t *testing.T) {
	manager := NewJWTManager("test-secret", time.Hour, 24*time.Hour)

	refreshToken, err := manager.GenerateRefreshToken(1, "session-1")
	assert.NoError(t, err)

	accessToken, err := manager.RefreshAccessToken(refreshToken, "player1", "player1@example.com")
	assert.NoError(t, err)

	claims, err := manager.ValidateToken(accessToken)
	assert.NoError(t, err)
	assert.Equal(t, "access", claims.TokenType)
	assert.Equal(t, "session-1", claims.SessionID)

	// 访问令牌不能用来刷新
	_, err = manager.RefreshAccessToken(accessToken, "player1", "player1@example.com")
	assert.Error(t, err)
}

// TestJWTManager_GetTokenExpiry 测试令牌有效期查询
func TestJWTManager_GetTokenExpiry(t *testing.T) {
	manager := NewJWTManager("test-secret", time.Hour, 24*time.Hour)

	assert.Equal(t, time.Hour, manager.GetTokenExpiry("access"))
	assert.Equal(t, 24*time.Hour, manager.GetTokenExpiry("refresh"))
}

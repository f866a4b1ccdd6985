package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wfunc/clip-game/internal/config"
	"github.com/wfunc/clip-game/internal/repository"
	"go.uber.org/zap"
)

// setupTestRouter 创建带内存数据库的完整路由
func setupTestRouter(t *testing.T, mode string, debugEndpoints bool) *Router {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := repository.SetupTestDB()
	t.Cleanup(func() { repository.CleanupTestDB(db) })

	cfg := &config.Config{}
	cfg.Server.Mode = mode
	cfg.Security.JWT.Secret = "test-secret"
	cfg.Security.JWT.ExpireHours = 1
	cfg.Security.JWT.RefreshHours = 24
	cfg.Game.InitialWire = 1000
	cfg.Game.DebugEndpoints = debugEndpoints
	cfg.Game.MaxSaveBytes = 65536

	return NewRouter(db, cfg, zap.NewNop())
}

// doJSON 发送JSON请求
func doJSON(router *Router, method, path, token string, payload interface{}) *httptest.ResponseRecorder {
	var body *bytes.Buffer
	if payload != nil {
		data, _ := json.Marshal(payload)
		body = bytes.NewBuffer(data)
	} else {
		body = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	router.GetEngine().ServeHTTP(w, req)
	return w
}

// registerUser 注册并返回访问令牌
func registerUser(t *testing.T, router *Router, username string) string {
	t.Helper()

	w := doJSON(router, "POST", "/api/v1/auth/register", "", map[string]string{
		"username": username,
		"email":    username + "@example.com",
		"password": "password123",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	token, _ := resp["access_token"].(string)
	require.NotEmpty(t, token)
	return token
}

// TestHealthCheck 测试健康检查
func TestHealthCheck(t *testing.T) {
	router := setupTestRouter(t, "test", false)

	w := doJSON(router, "GET", "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "healthy", resp["status"])
}

// TestStateFlow 测试注册→读取→保存→再读取的完整流程
func TestStateFlow(t *testing.T) {
	router := setupTestRouter(t, "test", false)
	token := registerUser(t, router, "flowuser")

	// 初始状态
	w := doJSON(router, "GET", "/api/v1/state", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var state map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &state))
	assert.Equal(t, float64(1000), state["wire"])
	assert.Equal(t, float64(0), state["paperclips"])

	// 保存部分字段
	w = doJSON(router, "POST", "/api/v1/state/save", token, map[string]interface{}{
		"paperclips": 55.5,
		"factories":  2,
		"junk":       "ignored",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var saveResp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &saveResp))
	assert.Equal(t, true, saveResp["success"])

	saved := saveResp["saved"].(map[string]interface{})
	assert.Equal(t, 55.5, saved["paperclips"])
	assert.Equal(t, float64(2), saved["factories"])
	assert.NotContains(t, saved, "junk")
	assert.Contains(t, saved, "lastSaved")

	// 再读取：保存的字段生效，其余不变
	w = doJSON(router, "GET", "/api/v1/state", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &state))
	assert.Equal(t, 55.5, state["paperclips"])
	assert.Equal(t, float64(2), state["factories"])
	assert.Equal(t, float64(1000), state["wire"])
}

// TestSaveValidation 测试存档校验
func TestSaveValidation(t *testing.T) {
	router := setupTestRouter(t, "test", false)
	token := registerUser(t, router, "validuser")

	// 类型不匹配返回400并指明字段
	w := doJSON(router, "POST", "/api/v1/state/save", token, map[string]interface{}{
		"money": "lots",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, true, resp["error"])
	assert.Contains(t, resp["message"], "money")

	// 非JSON对象
	req := httptest.NewRequest("POST", "/api/v1/state/save", bytes.NewBufferString("[1,2,3]"))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	w2 := httptest.NewRecorder()
	router.GetEngine().ServeHTTP(w2, req)
	assert.Equal(t, http.StatusBadRequest, w2.Code)
}

// TestUniformUnauthorized 测试统一401响应
func TestUniformUnauthorized(t *testing.T) {
	router := setupTestRouter(t, "test", false)

	// 缺少令牌
	w1 := doJSON(router, "GET", "/api/v1/state", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w1.Code)

	// 伪造令牌
	w2 := doJSON(router, "GET", "/api/v1/state", "garbage.token.value", nil)
	assert.Equal(t, http.StatusUnauthorized, w2.Code)

	// 两种失败返回完全相同的响应体，不泄露失败原因
	assert.JSONEq(t, w1.Body.String(), w2.Body.String())
}

// TestUnauthorizedSaveLeavesStateUntouched 测试未认证的保存请求不产生任何写入
func TestUnauthorizedSaveLeavesStateUntouched(t *testing.T) {
	router := setupTestRouter(t, "test", false)
	token := registerUser(t, router, "lockeduser")

	// 先写入基准状态
	w := doJSON(router, "POST", "/api/v1/state/save", token, map[string]interface{}{
		"paperclips": 42,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	before := doJSON(router, "GET", "/api/v1/state", token, nil)
	require.Equal(t, http.StatusOK, before.Code)

	// 未带令牌的保存被拒绝
	w = doJSON(router, "POST", "/api/v1/state/save", "", map[string]interface{}{
		"paperclips": 999999,
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// 存档完全没有变化（包括lastSaved）
	after := doJSON(router, "GET", "/api/v1/state", token, nil)
	require.Equal(t, http.StatusOK, after.Code)
	assert.JSONEq(t, before.Body.String(), after.Body.String())
}

// TestLogoutInvalidatesToken 测试登出后令牌立即失效
func TestLogoutInvalidatesToken(t *testing.T) {
	router := setupTestRouter(t, "test", false)
	token := registerUser(t, router, "logoutapi")

	w := doJSON(router, "POST", "/api/v1/auth/logout", token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// 会话已删除，同一令牌再访问返回401
	w = doJSON(router, "GET", "/api/v1/state", token, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

// TestDebugEndpoints 测试调试接口开关
func TestDebugEndpoints(t *testing.T) {
	// 非生产模式且开关打开：可用
	router := setupTestRouter(t, "development", true)
	registerUser(t, router, "debuguser")

	w := doJSON(router, "POST", "/api/v1/debug/state/seed", "", map[string]interface{}{
		"email":      "debuguser@example.com",
		"paperclips": 777,
		"diamonds":   5,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = doJSON(router, "GET", "/api/v1/debug/state/debuguser@example.com", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var state map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &state))
	assert.Equal(t, float64(777), state["paperclips"])
	assert.Equal(t, float64(5), state["diamonds"])

	// 生产模式：即使开关打开也不挂载
	prodRouter := setupTestRouter(t, "production", true)
	w = doJSON(prodRouter, "POST", "/api/v1/debug/state/seed", "", map[string]interface{}{
		"email": "nobody@example.com",
	})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

// TestNoRoute 测试404响应
func TestNoRoute(t *testing.T) {
	router := setupTestRouter(t, "test", false)

	w := doJSON(router, "GET", "/no/such/route", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, true, resp["error"])
}

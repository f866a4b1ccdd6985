package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/wfunc/clip-game/internal/errors"
	"github.com/wfunc/clip-game/internal/middleware"
	"github.com/wfunc/clip-game/internal/service"
	"github.com/wfunc/clip-game/internal/websocket"
)

// StateHandler 游戏状态处理器
type StateHandler struct {
	stateService service.StateService
	hub          *websocket.Hub
	maxSaveBytes int64
}

// NewStateHandler 创建游戏状态处理器
func NewStateHandler(stateService service.StateService, hub *websocket.Hub, maxSaveBytes int64) *StateHandler {
	if maxSaveBytes <= 0 {
		maxSaveBytes = 64 * 1024
	}
	return &StateHandler{
		stateService: stateService,
		hub:          hub,
		maxSaveBytes: maxSaveBytes,
	}
}

// GetState 获取游戏状态
// @Summary 获取当前用户的游戏状态
// @Description 返回完整的状态快照
// @Tags State
// @Security Bearer
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /api/v1/state [get]
func (h *StateHandler) GetState(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: true, Message: "未授权"})
		return
	}

	state, err := h.stateService.Get(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, state.Snapshot())
}

// SaveState 保存游戏状态
// @Summary 保存游戏状态
// @Description 保存客户端提交的字段子集，未注册的字段被忽略
// @Tags State
// @Security Bearer
// @Accept json
// @Produce json
// @Param request body map[string]interface{} true "要保存的字段"
// @Success 200 {object} SaveResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /api/v1/state/save [post]
func (h *StateHandler) SaveState(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: true, Message: "未授权"})
		return
	}

	// 限制请求体大小，防止超大存档
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxSaveBytes)

	var payload map[string]interface{}
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   true,
			Message: "请求体必须是JSON对象",
		})
		return
	}

	saved, err := h.stateService.Save(c.Request.Context(), userID, payload)
	if err != nil {
		respondError(c, err)
		return
	}

	// 推送更新给该用户的其他在线连接
	h.notifyStateUpdate(userID, saved)

	c.JSON(http.StatusOK, SaveResponse{
		Success: true,
		Saved:   saved,
	})
}

// notifyStateUpdate 通过WebSocket推送存档更新
func (h *StateHandler) notifyStateUpdate(userID uint, saved map[string]interface{}) {
	if h.hub == nil {
		return
	}

	data, err := json.Marshal(saved)
	if err != nil {
		return
	}

	// 用户没有在线连接时忽略错误
	_ = h.hub.SendToUser(userID, &websocket.Message{
		Type:      websocket.MessageTypeStateUpdate,
		UserID:    userID,
		Timestamp: time.Now().Unix(),
		Data:      data,
	})
}

// SaveResponse 存档响应
type SaveResponse struct {
	Success bool                   `json:"success"`
	Saved   map[string]interface{} `json:"saved"`
}

// respondError 根据错误类型返回HTTP响应
func respondError(c *gin.Context, err error) {
	if appErr, ok := err.(*errors.AppError); ok {
		message := appErr.Message
		if appErr.Details != "" {
			message = appErr.Details
		}
		c.JSON(appErr.HTTPStatus(), ErrorResponse{
			Error:   true,
			Message: message,
		})
		return
	}

	c.JSON(http.StatusInternalServerError, ErrorResponse{
		Error:   true,
		Message: "服务器内部错误",
	})
}

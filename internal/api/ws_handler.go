package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	gorillaws "github.com/gorilla/websocket"
	"github.com/wfunc/clip-game/internal/config"
	"github.com/wfunc/clip-game/internal/middleware"
	"github.com/wfunc/clip-game/internal/websocket"
	"go.uber.org/zap"
)

// WSHandler WebSocket升级处理器
type WSHandler struct {
	hub      *websocket.Hub
	upgrader gorillaws.Upgrader
	log      *zap.Logger
}

// NewWSHandler 创建WebSocket处理器
func NewWSHandler(hub *websocket.Hub, cfg *config.WebSocketConfig, log *zap.Logger) *WSHandler {
	readBuffer := 1024
	writeBuffer := 1024
	compression := false

	if cfg != nil {
		if cfg.ReadBufferSize > 0 {
			readBuffer = cfg.ReadBufferSize
		}
		if cfg.WriteBufferSize > 0 {
			writeBuffer = cfg.WriteBufferSize
		}
		compression = cfg.EnableCompression
	}

	return &WSHandler{
		hub: hub,
		upgrader: gorillaws.Upgrader{
			ReadBufferSize:    readBuffer,
			WriteBufferSize:   writeBuffer,
			EnableCompression: compression,
			CheckOrigin: func(r *http.Request) bool {
				// 握手已经过JWT认证，不再校验Origin
				return true
			},
		},
		log: log,
	}
}

// HandleConnection 处理WebSocket连接请求
func (h *WSHandler) HandleConnection(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: true, Message: "未授权"})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error("WebSocket升级失败",
			zap.Uint("user_id", userID),
			zap.Error(err))
		return
	}

	client := websocket.NewClient(h.hub, conn, userID)
	h.hub.Register(client)

	username, _ := middleware.GetUsername(c)
	h.log.Info("WebSocket客户端已连接",
		zap.Uint("user_id", userID),
		zap.String("username", username),
		zap.String("client_id", client.ID))

	go client.WritePump()
	go client.ReadPump()
}

package websocket

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/wfunc/clip-game/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// StateMessageHandler 状态查询消息处理器
//
// 协议是只读的：客户端只能请求状态快照，存档写入必须走HTTP接口
type StateMessageHandler struct {
	hub       *Hub
	stateRepo repository.GameStateRepository
	logger    *zap.Logger
}

// NewStateMessageHandler 创建状态消息处理器
func NewStateMessageHandler(hub *Hub, db *gorm.DB, logger *zap.Logger) *StateMessageHandler {
	return &StateMessageHandler{
		hub:       hub,
		stateRepo: repository.NewGameStateRepository(db),
		logger:    logger,
	}
}

// HandleClientMessage 处理客户端消息
func (h *StateMessageHandler) HandleClientMessage(client *Client, data []byte) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		h.logger.Error("解析消息失败",
			zap.String("client_id", client.ID),
			zap.Error(err))
		h.sendError(client, "消息格式错误")
		// 断开格式错误的连接
		client.Close()
		return
	}

	if msg.Type == "" {
		h.logger.Warn("收到空消息类型",
			zap.String("client_id", client.ID))
		h.sendError(client, "消息类型不能为空")
		client.Close()
		return
	}

	h.logger.Debug("收到WebSocket消息",
		zap.String("client_id", client.ID),
		zap.String("type", msg.Type),
		zap.Uint("user_id", client.UserID))

	switch msg.Type {
	case MessageTypePing:
		h.handlePing(client)

	case MessageTypePong:
		h.logger.Debug("收到pong", zap.String("client_id", client.ID))

	case MessageTypeGetState:
		h.handleGetState(client)

	default:
		h.logger.Warn("未知消息类型",
			zap.String("client_id", client.ID),
			zap.String("type", msg.Type))
		h.sendError(client, "不支持的消息类型: "+msg.Type)
		client.Close()
	}
}

// handlePing 处理ping消息
func (h *StateMessageHandler) handlePing(client *Client) {
	response := &Message{
		Type:      MessageTypePong,
		Timestamp: time.Now().Unix(),
		Data:      json.RawMessage(`{"message":"pong"}`),
	}
	h.hub.SendToClient(client.ID, response)
}

// handleGetState 处理状态查询请求
func (h *StateMessageHandler) handleGetState(client *Client) {
	ctx := context.Background()
	state, err := h.stateRepo.FindByUserID(ctx, client.UserID)
	if err != nil {
		h.logger.Error("获取游戏状态失败",
			zap.Uint("user_id", client.UserID),
			zap.Error(err))
		h.sendError(client, "获取游戏状态失败")
		return
	}

	data, _ := json.Marshal(state.Snapshot())
	response := &Message{
		Type:      MessageTypeState,
		UserID:    client.UserID,
		Timestamp: time.Now().Unix(),
		Data:      data,
	}
	h.hub.SendToClient(client.ID, response)
}

// sendError 发送错误消息
func (h *StateMessageHandler) sendError(client *Client, message string) {
	errorMsg := &Message{
		Type:      MessageTypeError,
		Timestamp: time.Now().Unix(),
		Data:      json.RawMessage(fmt.Sprintf(`{"error":"%s","timestamp":%d}`, message, time.Now().Unix())),
	}
	h.hub.SendToClient(client.ID, errorMsg)
}

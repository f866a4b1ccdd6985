package websocket

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wfunc/clip-game/internal/models"
	"github.com/wfunc/clip-game/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// 从发送通道读取一条消息（带超时）
func receiveMessage(t *testing.T, client *Client) *Message {
	t.Helper()

	select {
	case data := <-client.Send:
		var msg Message
		require.NoError(t, json.Unmarshal(data, &msg))
		return &msg
	case <-time.After(time.Second):
		t.Fatal("等待消息超时")
		return nil
	}
}

// 搭建测试环境：内存库 + Hub + 已注册的客户端
func setupStateHandlerTest(t *testing.T) (*gorm.DB, *Hub, *Client) {
	t.Helper()

	db := repository.SetupTestDB()
	t.Cleanup(func() { repository.CleanupTestDB(db) })

	hub := NewHub(zap.NewNop())
	hub.SetMessageHandler(NewStateMessageHandler(hub, db, zap.NewNop()))
	go hub.Run()

	user := &models.User{Username: "wsuser", Email: "wsuser@example.com"}
	require.NoError(t, repository.NewUserRepository(db).Create(context.Background(), user))

	state := &models.GameState{UserID: user.ID, Paperclips: 99, Wire: 1000}
	require.NoError(t, repository.NewGameStateRepository(db).Create(context.Background(), state))

	client := &Client{
		ID:     "test-client",
		UserID: user.ID,
		Hub:    hub,
		Send:   make(chan []byte, 16),
	}
	hub.Register(client)

	// 注册后收到connected消息
	msg := receiveMessage(t, client)
	require.Equal(t, MessageTypeConnected, msg.Type)

	return db, hub, client
}

// TestStateHandler_GetState 测试状态查询消息
func TestStateHandler_GetState(t *testing.T) {
	_, hub, client := setupStateHandlerTest(t)

	hub.messageHandler.HandleClientMessage(client, []byte(`{"type":"get_state"}`))

	msg := receiveMessage(t, client)
	assert.Equal(t, MessageTypeState, msg.Type)
	assert.Equal(t, client.UserID, msg.UserID)

	var snapshot map[string]interface{}
	require.NoError(t, json.Unmarshal(msg.Data, &snapshot))
	assert.Equal(t, float64(99), snapshot["paperclips"])
	assert.Equal(t, float64(1000), snapshot["wire"])
}

// TestStateHandler_Ping 测试ping/pong
func TestStateHandler_Ping(t *testing.T) {
	_, hub, client := setupStateHandlerTest(t)

	hub.messageHandler.HandleClientMessage(client, []byte(`{"type":"ping"}`))

	msg := receiveMessage(t, client)
	assert.Equal(t, MessageTypePong, msg.Type)
}

// TestStateHandler_InvalidMessage 测试非法消息
func TestStateHandler_InvalidMessage(t *testing.T) {
	_, hub, client := setupStateHandlerTest(t)

	hub.messageHandler.HandleClientMessage(client, []byte(`not-json`))

	msg := receiveMessage(t, client)
	assert.Equal(t, MessageTypeError, msg.Type)
}

// TestStateHandler_UnknownType 测试未知消息类型（只读协议拒绝写入类消息）
func TestStateHandler_UnknownType(t *testing.T) {
	_, hub, client := setupStateHandlerTest(t)

	hub.messageHandler.HandleClientMessage(client, []byte(`{"type":"save_state"}`))

	msg := receiveMessage(t, client)
	assert.Equal(t, MessageTypeError, msg.Type)
}

// TestHub_SendToUser 测试按用户推送
func TestHub_SendToUser(t *testing.T) {
	_, hub, client := setupStateHandlerTest(t)

	err := hub.SendToUser(client.UserID, &Message{
		Type:      MessageTypeStateUpdate,
		Timestamp: time.Now().Unix(),
		Data:      json.RawMessage(`{"paperclips":1}`),
	})
	assert.NoError(t, err)

	msg := receiveMessage(t, client)
	assert.Equal(t, MessageTypeStateUpdate, msg.Type)

	// 没有连接的用户
	err = hub.SendToUser(99999, &Message{Type: MessageTypeStateUpdate})
	assert.ErrorIs(t, err, ErrUserNotConnected)
}

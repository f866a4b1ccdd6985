package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/wfunc/clip-game/internal/models"
	"github.com/wfunc/clip-game/internal/repository"
	"github.com/wfunc/clip-game/internal/service"
)

// DebugHandler 调试处理器
//
// 仅在非生产模式且显式开启game.debug_endpoints时挂载，
// 供端到端测试直接播种和读取任意账号的状态
type DebugHandler struct {
	stateService service.StateService
	userRepo     repository.UserRepository
}

// NewDebugHandler 创建调试处理器
func NewDebugHandler(stateService service.StateService, userRepo repository.UserRepository) *DebugHandler {
	return &DebugHandler{
		stateService: stateService,
		userRepo:     userRepo,
	}
}

// SeedRequest 播种请求（整行覆盖，未提供的字段归零）
type SeedRequest struct {
	Email                  string  `json:"email" binding:"required"`
	Paperclips             float64 `json:"paperclips"`
	Money                  float64 `json:"money"`
	Wire                   float64 `json:"wire"`
	Diamonds               int64   `json:"diamonds"`
	TotalDiamondsPurchased int64   `json:"totalDiamondsPurchased"`
	Autoclippers           int64   `json:"autoclippers"`
	WireHarvesters         int64   `json:"wireHarvesters"`
	OreHarvesters          int64   `json:"oreHarvesters"`
	Factories              int64   `json:"factories"`
	AutoclippersUnlocked   bool    `json:"autoclippersUnlocked"`
	FactoriesUnlocked      bool    `json:"factoriesUnlocked"`
	PremiumUnlocked        bool    `json:"premiumUnlocked"`
}

// SeedState 播种游戏状态
func (h *DebugHandler) SeedState(c *gin.Context) {
	var req SeedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   true,
			Message: "请求参数错误",
		})
		return
	}

	user, err := h.userRepo.FindByEmail(c.Request.Context(), req.Email)
	if err != nil {
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error:   true,
			Message: "用户不存在",
		})
		return
	}

	state := &models.GameState{
		UserID:                 user.ID,
		Paperclips:             req.Paperclips,
		Money:                  req.Money,
		Wire:                   req.Wire,
		Diamonds:               req.Diamonds,
		TotalDiamondsPurchased: req.TotalDiamondsPurchased,
		Autoclippers:           req.Autoclippers,
		WireHarvesters:         req.WireHarvesters,
		OreHarvesters:          req.OreHarvesters,
		Factories:              req.Factories,
		AutoclippersUnlocked:   req.AutoclippersUnlocked,
		FactoriesUnlocked:      req.FactoriesUnlocked,
		PremiumUnlocked:        req.PremiumUnlocked,
	}

	if err := h.stateService.Seed(c.Request.Context(), user.ID, state); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Success: true,
		Message: "状态已写入",
	})
}

// GetStateByEmail 按邮箱读取游戏状态
func (h *DebugHandler) GetStateByEmail(c *gin.Context) {
	email := c.Param("email")

	user, err := h.userRepo.FindByEmail(c.Request.Context(), email)
	if err != nil {
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error:   true,
			Message: "用户不存在",
		})
		return
	}

	state, err := h.stateService.Get(c.Request.Context(), user.ID)
	if err != nil {
		respondError(c, err)
		return
	}

	snapshot := state.Snapshot()
	// 调试视角额外暴露终身计数
	snapshot["totalDiamondsPurchased"] = state.TotalDiamondsPurchased

	c.JSON(http.StatusOK, snapshot)
}

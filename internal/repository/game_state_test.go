package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"github.com/wfunc/clip-game/internal/models"
	"gorm.io/gorm"
)

// GameStateRepositoryTestSuite 游戏状态仓储测试套件
type GameStateRepositoryTestSuite struct {
	suite.Suite
	db          *gorm.DB
	stateRepo   GameStateRepository
	diamondRepo DiamondRecordRepository
	userRepo    UserRepository
}

func (suite *GameStateRepositoryTestSuite) SetupTest() {
	suite.db = SetupTestDB()
	suite.stateRepo = NewGameStateRepository(suite.db)
	suite.diamondRepo = NewDiamondRecordRepository(suite.db)
	suite.userRepo = NewUserRepository(suite.db)
}

func (suite *GameStateRepositoryTestSuite) TearDownTest() {
	CleanupTestDB(suite.db)
}

// 创建测试用户
func (suite *GameStateRepositoryTestSuite) createTestUser(username string) *models.User {
	user := &models.User{
		Username: username,
		Email:    username + "@example.com",
		Status:   "active",
	}
	err := suite.userRepo.Create(context.Background(), user)
	suite.Require().NoError(err)
	return user
}

// 创建测试状态
func (suite *GameStateRepositoryTestSuite) createTestState(userID uint) *models.GameState {
	state := &models.GameState{
		UserID: userID,
		Wire:   1000,
	}
	err := suite.stateRepo.Create(context.Background(), state)
	suite.Require().NoError(err)
	return state
}

// TestGameStateRepository_Create 测试创建游戏状态
func (suite *GameStateRepositoryTestSuite) TestGameStateRepository_Create() {
	ctx := context.Background()
	user := suite.createTestUser("stateuser")

	state := &models.GameState{
		UserID: user.ID,
		Wire:   1000,
	}

	err := suite.stateRepo.Create(ctx, state)
	assert.NoError(suite.T(), err)
	assert.NotZero(suite.T(), state.ID)
	// 创建时应自动打上last_saved时间戳
	assert.False(suite.T(), state.LastSaved.IsZero())

	found, err := suite.stateRepo.FindByUserID(ctx, user.ID)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), float64(1000), found.Wire)
	assert.Equal(suite.T(), float64(0), found.Paperclips)
	assert.Equal(suite.T(), int64(0), found.Diamonds)
}

// TestGameStateRepository_FindByUserID 测试查找游戏状态
func (suite *GameStateRepositoryTestSuite) TestGameStateRepository_FindByUserID() {
	ctx := context.Background()
	user := suite.createTestUser("finduser")
	suite.createTestState(user.ID)

	found, err := suite.stateRepo.FindByUserID(ctx, user.ID)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), user.ID, found.UserID)

	// 不存在的用户
	_, err = suite.stateRepo.FindByUserID(ctx, 99999)
	assert.ErrorIs(suite.T(), err, ErrStateNotFound)
}

// TestGameStateRepository_SaveColumns 测试部分字段落盘
func (suite *GameStateRepositoryTestSuite) TestGameStateRepository_SaveColumns() {
	ctx := context.Background()
	user := suite.createTestUser("saveuser")
	suite.createTestState(user.ID)

	savedAt, err := suite.stateRepo.SaveColumns(ctx, user.ID, map[string]interface{}{
		"paperclips":   float64(123.5),
		"autoclippers": int64(3),
	})
	assert.NoError(suite.T(), err)
	assert.False(suite.T(), savedAt.IsZero())

	found, err := suite.stateRepo.FindByUserID(ctx, user.ID)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), float64(123.5), found.Paperclips)
	assert.Equal(suite.T(), int64(3), found.Autoclippers)
	// 未提交的字段保持不变
	assert.Equal(suite.T(), float64(1000), found.Wire)
	// last_saved同步更新
	assert.WithinDuration(suite.T(), savedAt, found.LastSaved, time.Second)
}

// TestGameStateRepository_SaveColumns_NotFound 测试落盘到不存在的状态
func (suite *GameStateRepositoryTestSuite) TestGameStateRepository_SaveColumns_NotFound() {
	ctx := context.Background()

	_, err := suite.stateRepo.SaveColumns(ctx, 99999, map[string]interface{}{
		"paperclips": float64(1),
	})
	assert.ErrorIs(suite.T(), err, ErrStateNotFound)
}

// TestGameStateRepository_AddDiamondsTx 测试事务内增加钻石
func (suite *GameStateRepositoryTestSuite) TestGameStateRepository_AddDiamondsTx() {
	ctx := context.Background()
	user := suite.createTestUser("diamonduser")
	suite.createTestState(user.ID)

	err := suite.db.Transaction(func(tx *gorm.DB) error {
		return suite.stateRepo.AddDiamondsTx(tx, user.ID, 50, true)
	})
	assert.NoError(suite.T(), err)

	found, err := suite.stateRepo.FindByUserID(ctx, user.ID)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), int64(50), found.Diamonds)
	assert.Equal(suite.T(), int64(50), found.TotalDiamondsPurchased)

	// 不累计终身计数的加钻
	err = suite.db.Transaction(func(tx *gorm.DB) error {
		return suite.stateRepo.AddDiamondsTx(tx, user.ID, 10, false)
	})
	assert.NoError(suite.T(), err)

	found, _ = suite.stateRepo.FindByUserID(ctx, user.ID)
	assert.Equal(suite.T(), int64(60), found.Diamonds)
	assert.Equal(suite.T(), int64(50), found.TotalDiamondsPurchased)
}

// TestGameStateRepository_SpendDiamondsTx 测试事务内扣减钻石
func (suite *GameStateRepositoryTestSuite) TestGameStateRepository_SpendDiamondsTx() {
	ctx := context.Background()
	user := suite.createTestUser("spenduser")
	suite.createTestState(user.ID)

	err := suite.db.Transaction(func(tx *gorm.DB) error {
		return suite.stateRepo.AddDiamondsTx(tx, user.ID, 30, true)
	})
	suite.Require().NoError(err)

	// 正常扣减
	err = suite.db.Transaction(func(tx *gorm.DB) error {
		return suite.stateRepo.SpendDiamondsTx(tx, user.ID, 20)
	})
	assert.NoError(suite.T(), err)

	found, _ := suite.stateRepo.FindByUserID(ctx, user.ID)
	assert.Equal(suite.T(), int64(10), found.Diamonds)

	// 余额不足
	err = suite.db.Transaction(func(tx *gorm.DB) error {
		return suite.stateRepo.SpendDiamondsTx(tx, user.ID, 100)
	})
	assert.Error(suite.T(), err)
	assert.Contains(suite.T(), err.Error(), "钻石不足")

	// 余额不变
	found, _ = suite.stateRepo.FindByUserID(ctx, user.ID)
	assert.Equal(suite.T(), int64(10), found.Diamonds)
}

// TestDiamondRecordRepository_Create 测试创建钻石流水
func (suite *GameStateRepositoryTestSuite) TestDiamondRecordRepository_Create() {
	ctx := context.Background()
	user := suite.createTestUser("recorduser")

	record := &models.DiamondRecord{
		UserID:        user.ID,
		OrderNo:       "test-order-001",
		Type:          models.DiamondTypeGrant,
		Amount:        100,
		BeforeBalance: 0,
		AfterBalance:  100,
		Source:        "clipadmin",
		Status:        "success",
	}

	err := suite.diamondRepo.Create(ctx, record)
	assert.NoError(suite.T(), err)
	assert.NotZero(suite.T(), record.ID)

	found, err := suite.diamondRepo.FindByOrderNo(ctx, "test-order-001")
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), int64(100), found.Amount)
	assert.Equal(suite.T(), models.DiamondTypeGrant, found.Type)
}

// TestDiamondRecordRepository_FindByUserID 测试分页查询流水
func (suite *GameStateRepositoryTestSuite) TestDiamondRecordRepository_FindByUserID() {
	ctx := context.Background()
	user := suite.createTestUser("pageuser")

	for i := 0; i < 5; i++ {
		record := &models.DiamondRecord{
			UserID:  user.ID,
			OrderNo: "page-order-" + string(rune('a'+i)),
			Type:    models.DiamondTypeGrant,
			Amount:  int64(i + 1),
			Status:  "success",
		}
		suite.Require().NoError(suite.diamondRepo.Create(ctx, record))
	}

	pagination := NewPagination(1, 3)
	records, err := suite.diamondRepo.FindByUserID(ctx, user.ID, pagination)
	assert.NoError(suite.T(), err)
	assert.Len(suite.T(), records, 3)
	assert.Equal(suite.T(), int64(5), pagination.Total)
}

// TestGameStateRepositoryTestSuite 运行测试套件
func TestGameStateRepositoryTestSuite(t *testing.T) {
	suite.Run(t, new(GameStateRepositoryTestSuite))
}

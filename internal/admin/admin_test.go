package admin

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"github.com/wfunc/clip-game/internal/models"
	"github.com/wfunc/clip-game/internal/repository"
	"github.com/wfunc/clip-game/internal/service"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// AdminTestSuite 维护操作测试套件
type AdminTestSuite struct {
	suite.Suite
	db    *gorm.DB
	admin *Admin
	repos *repository.Manager
}

func (suite *AdminTestSuite) SetupTest() {
	suite.db = repository.SetupTestDB()
	suite.repos = repository.NewManager(suite.db)
	suite.admin = New(suite.db, service.DefaultConfig(), zap.NewNop())
}

func (suite *AdminTestSuite) TearDownTest() {
	repository.CleanupTestDB(suite.db)
}

// 创建带状态的测试用户
func (suite *AdminTestSuite) createUserWithState(username string) *models.User {
	ctx := context.Background()

	user := &models.User{
		Username: username,
		Email:    username + "@example.com",
	}
	suite.Require().NoError(suite.repos.User().Create(ctx, user))

	state := &models.GameState{UserID: user.ID, Wire: 1000}
	suite.Require().NoError(suite.repos.GameState().Create(ctx, state))

	return user
}

// TestGrantDiamonds_Batch 测试批量发放（坏记录不中断批次）
func (suite *AdminTestSuite) TestGrantDiamonds_Batch() {
	ctx := context.Background()
	user1 := suite.createUserWithState("grantone")
	user2 := suite.createUserWithState("granttwo")

	results := suite.admin.GrantDiamonds(ctx, 50, []string{
		"grantone@example.com",
		"missing@example.com", // 不存在的用户
		"granttwo@example.com",
	})

	suite.Require().Len(results, 3)
	assert.NoError(suite.T(), results[0].Err)
	assert.NotEmpty(suite.T(), results[0].OrderNo)
	assert.Error(suite.T(), results[1].Err)
	assert.NoError(suite.T(), results[2].Err)

	// 失败的记录不影响成功的发放
	state1, _ := suite.repos.GameState().FindByUserID(ctx, user1.ID)
	assert.Equal(suite.T(), int64(50), state1.Diamonds)
	assert.Equal(suite.T(), int64(50), state1.TotalDiamondsPurchased)

	state2, _ := suite.repos.GameState().FindByUserID(ctx, user2.ID)
	assert.Equal(suite.T(), int64(50), state2.Diamonds)
}

// TestSetFlag 测试标记修正
func (suite *AdminTestSuite) TestSetFlag() {
	ctx := context.Background()
	user := suite.createUserWithState("flagadmin")

	err := suite.admin.SetFlag(ctx, "flagadmin@example.com", "factoriesUnlocked", true)
	assert.NoError(suite.T(), err)

	state, _ := suite.repos.GameState().FindByUserID(ctx, user.ID)
	assert.True(suite.T(), state.FactoriesUnlocked)

	// 未知标记
	err = suite.admin.SetFlag(ctx, "flagadmin@example.com", "notAFlag", true)
	assert.Error(suite.T(), err)

	// 不存在的用户
	err = suite.admin.SetFlag(ctx, "missing@example.com", "factoriesUnlocked", true)
	assert.Error(suite.T(), err)
}

// TestResetPassword 测试密码重置
func (suite *AdminTestSuite) TestResetPassword() {
	ctx := context.Background()
	user := suite.createUserWithState("resetadmin")

	auth := &models.UserAuth{UserID: user.ID, Password: "old-hash"}
	suite.Require().NoError(suite.repos.UserAuth().Create(ctx, auth))

	err := suite.admin.ResetPassword(ctx, "resetadmin@example.com", "newpassword789")
	assert.NoError(suite.T(), err)

	found, _ := suite.repos.UserAuth().FindByUserID(ctx, user.ID)
	assert.NotEqual(suite.T(), "old-hash", found.Password)

	// 不存在的用户
	err = suite.admin.ResetPassword(ctx, "missing@example.com", "whatever123")
	assert.Error(suite.T(), err)
}

// TestShow 测试用户检视
func (suite *AdminTestSuite) TestShow() {
	ctx := context.Background()
	suite.createUserWithState("showadmin")

	info, err := suite.admin.Show(ctx, "showadmin@example.com")
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), "showadmin", info.Username)
	assert.NotNil(suite.T(), info.State)
	assert.Equal(suite.T(), float64(1000), info.State["wire"])
	assert.Contains(suite.T(), info.State, "totalDiamondsPurchased")

	_, err = suite.admin.Show(ctx, "missing@example.com")
	assert.Error(suite.T(), err)
}

// TestMigrate 测试迁移幂等
func (suite *AdminTestSuite) TestMigrate() {
	// 测试库已迁移过，再跑一次应无副作用
	err := suite.admin.Migrate()
	assert.NoError(suite.T(), err)
}

// TestAdminTestSuite 运行测试套件
func TestAdminTestSuite(t *testing.T) {
	suite.Run(t, new(AdminTestSuite))
}

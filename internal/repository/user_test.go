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

// UserRepositoryTestSuite 用户仓储测试套件
type UserRepositoryTestSuite struct {
	suite.Suite
	db          *gorm.DB
	userRepo    UserRepository
	authRepo    UserAuthRepository
	sessionRepo UserSessionRepository
}

func (suite *UserRepositoryTestSuite) SetupTest() {
	suite.db = SetupTestDB()
	suite.userRepo = NewUserRepository(suite.db)
	suite.authRepo = NewUserAuthRepository(suite.db)
	suite.sessionRepo = NewUserSessionRepository(suite.db)
}

func (suite *UserRepositoryTestSuite) TearDownTest() {
	CleanupTestDB(suite.db)
}

// TestUserRepository_Create 测试创建用户
func (suite *UserRepositoryTestSuite) TestUserRepository_Create() {
	ctx := context.Background()

	user := &models.User{
		Username: "testuser",
		Email:    "testuser@example.com",
	}

	err := suite.userRepo.Create(ctx, user)
	assert.NoError(suite.T(), err)
	assert.NotZero(suite.T(), user.ID)
	// BeforeCreate钩子填充默认值
	assert.Equal(suite.T(), "testuser", user.Nickname)
	assert.Equal(suite.T(), "active", user.Status)
}

// TestUserRepository_FindByEmail 测试按邮箱查找
func (suite *UserRepositoryTestSuite) TestUserRepository_FindByEmail() {
	ctx := context.Background()

	user := &models.User{
		Username: "emailuser",
		Email:    "emailuser@example.com",
	}
	suite.Require().NoError(suite.userRepo.Create(ctx, user))

	found, err := suite.userRepo.FindByEmail(ctx, "emailuser@example.com")
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), user.ID, found.ID)

	_, err = suite.userRepo.FindByEmail(ctx, "missing@example.com")
	assert.Error(suite.T(), err)
	assert.Contains(suite.T(), err.Error(), "用户不存在")
}

// TestUserAuthRepository_UpdatePassword 测试更新密码
func (suite *UserRepositoryTestSuite) TestUserAuthRepository_UpdatePassword() {
	ctx := context.Background()

	user := &models.User{Username: "pwduser", Email: "pwduser@example.com"}
	suite.Require().NoError(suite.userRepo.Create(ctx, user))

	auth := &models.UserAuth{UserID: user.ID, Password: "old-hash"}
	suite.Require().NoError(suite.authRepo.Create(ctx, auth))

	err := suite.authRepo.UpdatePassword(ctx, user.ID, "new-hash")
	assert.NoError(suite.T(), err)

	found, err := suite.authRepo.FindByUserID(ctx, user.ID)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), "new-hash", found.Password)
}

// TestUserSessionRepository_FindByToken 测试会话查找与过期过滤
func (suite *UserRepositoryTestSuite) TestUserSessionRepository_FindByToken() {
	ctx := context.Background()

	user := &models.User{Username: "sessuser", Email: "sessuser@example.com"}
	suite.Require().NoError(suite.userRepo.Create(ctx, user))

	// 有效会话
	valid := &models.UserSession{
		UserID:    user.ID,
		SessionID: "valid-session",
		Token:     "valid-token",
		ExpireAt:  time.Now().Add(time.Hour),
	}
	suite.Require().NoError(suite.sessionRepo.Create(ctx, valid))

	found, err := suite.sessionRepo.FindByToken(ctx, "valid-token")
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), user.ID, found.UserID)

	// 过期会话查不到
	expired := &models.UserSession{
		UserID:    user.ID,
		SessionID: "expired-session",
		Token:     "expired-token",
		ExpireAt:  time.Now().Add(-time.Hour),
	}
	suite.Require().NoError(suite.sessionRepo.Create(ctx, expired))

	_, err = suite.sessionRepo.FindByToken(ctx, "expired-token")
	assert.Error(suite.T(), err)
}

// TestUserSessionRepository_DeleteByUserID 测试撤销所有会话
func (suite *UserRepositoryTestSuite) TestUserSessionRepository_DeleteByUserID() {
	ctx := context.Background()

	user := &models.User{Username: "revokeuser", Email: "revokeuser@example.com"}
	suite.Require().NoError(suite.userRepo.Create(ctx, user))

	for _, token := range []string{"token-a", "token-b"} {
		session := &models.UserSession{
			UserID:    user.ID,
			SessionID: token + "-session",
			Token:     token,
			ExpireAt:  time.Now().Add(time.Hour),
		}
		suite.Require().NoError(suite.sessionRepo.Create(ctx, session))
	}

	err := suite.sessionRepo.DeleteByUserID(ctx, user.ID)
	assert.NoError(suite.T(), err)

	sessions, err := suite.sessionRepo.FindByUserID(ctx, user.ID)
	assert.NoError(suite.T(), err)
	assert.Empty(suite.T(), sessions)
}

// TestUserRepositoryTestSuite 运行测试套件
func TestUserRepositoryTestSuite(t *testing.T) {
	suite.Run(t, new(UserRepositoryTestSuite))
}

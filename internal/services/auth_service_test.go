package services

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/suite"
	"github.com/yukikurage/sprint-tracker/internal/models"
	"github.com/yukikurage/sprint-tracker/internal/repository"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type AuthServiceTestSuite struct {
	suite.Suite
	ctx       context.Context
	db        *gorm.DB
	directory *DirectoryService
	service   *AuthService
}

func (suite *AuthServiceTestSuite) SetupTest() {
	var err error
	suite.ctx = context.Background()

	suite.db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	suite.Require().NoError(err)
	suite.Require().NoError(suite.db.AutoMigrate(&models.User{}, &models.App{}))

	userRepo := repository.NewUserRepository(suite.db)
	suite.directory = NewDirectoryService(userRepo, repository.NewAppRepository(suite.db), nil)
	suite.service = NewAuthService(userRepo, suite.directory, func(username string) bool {
		return username == "root"
	})
}

func (suite *AuthServiceTestSuite) TearDownTest() {
	sqlDB, err := suite.db.DB()
	suite.Require().NoError(err)
	sqlDB.Close()
}

func (suite *AuthServiceTestSuite) TestSignupAndLogin() {
	user, err := suite.service.Signup(suite.ctx, SignupInput{
		Username:    "alice",
		Password:    "password123",
		DisplayName: "Alice",
	})
	suite.Require().NoError(err)
	suite.NotZero(user.ID)
	suite.False(user.IsAdmin)
	suite.NotEqual("password123", user.PasswordHash)

	name, _ := suite.directory.Profile(user.ID)
	suite.Equal("Alice", name)

	loggedIn, err := suite.service.Login(suite.ctx, LoginInput{Username: "alice", Password: "password123"})
	suite.Require().NoError(err)
	suite.Equal(user.ID, loggedIn.ID)

	_, err = suite.service.Login(suite.ctx, LoginInput{Username: "alice", Password: "wrong-password"})
	suite.ErrorIs(err, ErrInvalidCredentials)

	_, err = suite.service.Login(suite.ctx, LoginInput{Username: "nobody", Password: "password123"})
	suite.ErrorIs(err, ErrInvalidCredentials)
}

func (suite *AuthServiceTestSuite) TestSignup_AdminAndValidation() {
	root, err := suite.service.Signup(suite.ctx, SignupInput{Username: "root", Password: "password123"})
	suite.Require().NoError(err)
	suite.True(root.IsAdmin)

	_, err = suite.service.Signup(suite.ctx, SignupInput{Username: "root", Password: "password123"})
	suite.ErrorIs(err, ErrUsernameTaken)

	_, err = suite.service.Signup(suite.ctx, SignupInput{Username: "bob", Password: "short"})
	suite.ErrorIs(err, ErrPasswordTooShort)

	_, err = suite.service.Signup(suite.ctx, SignupInput{Username: "  ", Password: "password123"})
	suite.ErrorIs(err, ErrUsernameRequired)
}

func (suite *AuthServiceTestSuite) TestGetUser() {
	user, err := suite.service.Signup(suite.ctx, SignupInput{Username: "carol", Password: "password123"})
	suite.Require().NoError(err)

	found, err := suite.service.GetUser(suite.ctx, user.ID)
	suite.Require().NoError(err)
	suite.Equal("carol", found.Username)

	_, err = suite.service.GetUser(suite.ctx, 9999)
	suite.ErrorIs(err, ErrUserNotFound)
}

func (suite *AuthServiceTestSuite) TestUpdateProfile() {
	user, err := suite.service.Signup(suite.ctx, SignupInput{
		Username:  "carol",
		Password:  "password123",
		AvatarURL: "https://example.com/old.png",
	})
	suite.Require().NoError(err)

	name := "  Carol C.  "
	updated, err := suite.service.UpdateProfile(suite.ctx, user.ID, ProfileInput{DisplayName: &name})
	suite.Require().NoError(err)
	suite.Equal("Carol C.", updated.DisplayName)
	suite.Equal("https://example.com/old.png", updated.AvatarURL)

	shownName, avatar := suite.directory.Profile(user.ID)
	suite.Equal("Carol C.", shownName)
	suite.Equal("https://example.com/old.png", avatar)

	empty := ""
	updated, err = suite.service.UpdateProfile(suite.ctx, user.ID, ProfileInput{AvatarURL: &empty})
	suite.Require().NoError(err)
	suite.Empty(updated.AvatarURL)
	suite.Equal("Carol C.", updated.DisplayName)

	long := strings.Repeat("x", 101)
	_, err = suite.service.UpdateProfile(suite.ctx, user.ID, ProfileInput{DisplayName: &long})
	suite.ErrorIs(err, ErrValidationFailed)

	_, err = suite.service.UpdateProfile(suite.ctx, 9999, ProfileInput{DisplayName: &name})
	suite.ErrorIs(err, ErrUserNotFound)
}

func (suite *AuthServiceTestSuite) TestDirectory_AppNamesAndFallbacks() {
	suite.Require().NoError(suite.db.Create(&models.App{ID: "billing", Name: "Billing"}).Error)

	suite.Equal("Billing", suite.directory.AppName("billing"))
	suite.Equal("", suite.directory.AppName("unknown"))
	suite.Equal("", suite.directory.UserName(42))

	name, avatar := suite.directory.Profile(42)
	suite.Equal("user #42", name)
	suite.Empty(avatar)

	suite.Require().NoError(suite.directory.Refresh(suite.ctx))
	suite.Equal("Billing", suite.directory.AppName("billing"))
}

func TestAuthServiceTestSuite(t *testing.T) {
	suite.Run(t, new(AuthServiceTestSuite))
}

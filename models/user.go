package models

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mmdatafocus/factory_backend/config"
	"github.com/mmdatafocus/factory_backend/utils"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type User struct {
	ID         int       `gorm:"primary_key" json:"id"`
	BusinessId string    `gorm:"index" json:"business_id"`
	Username   string    `gorm:"size:100;not null;unique" json:"username"`
	Name       string    `gorm:"size:100;not null" json:"name"`
	Email      *string   `gorm:"size:100;unique" json:"email"`
	Password   string    `gorm:"size:255;not null" json:"-"`
	IsActive   *bool     `gorm:"not null" json:"is_active"`
	Role       UserRole  `gorm:"type:enum('Admin','User');default:'User'" json:"role"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewUser struct {
	BusinessId string   `json:"business_id"`
	Username   string   `json:"username" validate:"required,max=100"`
	Name       string   `json:"name" validate:"required,max=100"`
	Email      string   `json:"email" validate:"omitempty,email"`
	Password   string   `json:"password" validate:"required,min=6"`
	Role       UserRole `json:"role" validate:"required,oneof=Admin User"`
}

type LoginInfo struct {
	Token        string   `json:"token"`
	AccessToken  string   `json:"access_token"`
	Name         string   `json:"name"`
	Role         UserRole `json:"role"`
	BusinessName string   `json:"business_name"`
}

/*
caches:
	User:$username
	Token:$token -> username
	Tokens:$username (set of live tokens)
*/

func (user User) RemoveInstanceRedis() error {
	return config.RemoveRedisKey("User:" + user.Username)
}

// CreateUser hashes the password; a blank BusinessId falls back to the caller's business.
func CreateUser(ctx context.Context, input *NewUser) (*User, error) {
	if errs := utils.ValidateStruct(input); errs != nil {
		return nil, errors.New("invalid user input")
	}
	businessId := input.BusinessId
	if businessId == "" {
		businessId, _ = utils.GetBusinessIdFromContext(ctx)
	}
	if businessId == "" {
		return nil, ErrBusinessIdRequired
	}
	if err := utils.ValidateUnique[User](ctx, "", "username", input.Username, 0); err != nil {
		return nil, err
	}
	hashed, err := utils.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}
	user := User{
		BusinessId: businessId,
		Username:   strings.TrimSpace(input.Username),
		Name:       input.Name,
		Email:      utils.NilIfEmpty(input.Email),
		Password:   string(hashed),
		IsActive:   utils.NewTrue(),
		Role:       input.Role,
	}
	if err := config.GetDB().WithContext(ctx).Create(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// GetSessionUser reads the cached user, falling back to the db.
func GetSessionUser(ctx context.Context, username string) (*User, error) {
	var user User
	exists, err := config.GetRedisObject("User:"+username, &user)
	if err != nil {
		return nil, err
	}
	if exists {
		return &user, nil
	}
	db := config.GetDB()
	if db == nil {
		return nil, errors.New("db is nil")
	}
	if err := db.WithContext(utils.SetSkipTenantScopeInContext(ctx, true)).
		Where("username = ?", username).Take(&user).Error; err != nil {
		return nil, utils.ErrorUnauthorized
	}
	if user.IsActive == nil || !*user.IsActive {
		return nil, utils.ErrorUnauthorized
	}
	if err := config.SetRedisObject("User:"+user.Username, &user, utils.TokenLifespan()); err != nil {
		return nil, err
	}
	return &user, nil
}

func Login(ctx context.Context, username string, password string) (*LoginInfo, error) {
	db := config.GetDB()
	var user User
	err := db.WithContext(utils.SetSkipTenantScopeInContext(ctx, true)).
		Where("username = ?", username).Take(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("invalid username or password")
		}
		return nil, err
	}
	if err := utils.ComparePassword(user.Password, password); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return nil, errors.New("invalid username or password")
		}
		return nil, err
	}
	if user.IsActive == nil || !*user.IsActive {
		return nil, errors.New("user is disabled")
	}

	var business Business
	if err := db.WithContext(ctx).Where("id = ?", user.BusinessId).First(&business).Error; err != nil {
		return nil, err
	}

	token := uuid.NewString()
	accessToken, err := utils.JwtGenerate(user.Username, user.BusinessId, string(user.Role))
	if err != nil {
		return nil, err
	}
	lifespan := utils.TokenLifespan()
	if err := config.AddRedisSet("Tokens:"+user.Username, token); err != nil {
		return nil, err
	}
	if err := config.SetRedisValue("Token:"+token, user.Username, lifespan); err != nil {
		return nil, err
	}
	if err := config.SetRedisObject("User:"+user.Username, &user, lifespan); err != nil {
		return nil, err
	}
	return &LoginInfo{
		Token:        token,
		AccessToken:  accessToken,
		Name:         user.Name,
		Role:         user.Role,
		BusinessName: business.Name,
	}, nil
}

func Logout(ctx context.Context) (bool, error) {
	token, ok := utils.GetTokenFromContext(ctx)
	if !ok || token == "" {
		return false, errors.New("token is required")
	}
	if err := config.RemoveRedisKey("Token:" + token); err != nil {
		return false, err
	}
	username, ok := utils.GetUsernameFromContext(ctx)
	if !ok || username == "" {
		return false, errors.New("user not found")
	}
	if err := config.RemoveRedisSetMember("Tokens:"+username, token); err != nil {
		return false, err
	}
	return true, nil
}

// DestroyAllSessions drops every live token of the user.
func (user *User) DestroyAllSessions() error {
	tokens, err := config.GetRedisSetMembers("Tokens:" + user.Username)
	if err != nil {
		return err
	}
	for _, t := range tokens {
		if err := config.RemoveRedisKey("Token:" + t); err != nil {
			return err
		}
	}
	if err := config.RemoveRedisKey("Tokens:" + user.Username); err != nil {
		return err
	}
	return user.RemoveInstanceRedis()
}

func ChangePassword(ctx context.Context, oldPassword string, newPassword string) (*User, error) {
	username, ok := utils.GetUsernameFromContext(ctx)
	if !ok || username == "" {
		return nil, utils.ErrorUnauthorized
	}
	if len(newPassword) < 6 {
		return nil, errors.New("password must be at least 6 characters")
	}
	db := config.GetDB()
	var user User
	if err := db.WithContext(ctx).Where("username = ?", username).Take(&user).Error; err != nil {
		return nil, utils.ErrorUnauthorized
	}
	if err := utils.ComparePassword(user.Password, oldPassword); err != nil {
		return nil, errors.New("invalid password")
	}
	hashed, err := utils.HashPassword(newPassword)
	if err != nil {
		return nil, err
	}
	if err := db.WithContext(ctx).Model(&user).Update("password", string(hashed)).Error; err != nil {
		return nil, err
	}
	if err := user.DestroyAllSessions(); err != nil {
		return nil, err
	}
	return &user, nil
}

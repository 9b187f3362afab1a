package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"revizly/internal/model/auth"
	"revizly/internal/pkg/ctxutil"
	"revizly/internal/pkg/id"
	"revizly/internal/pkg/jwt"
	"revizly/internal/pkg/password"
	authRepo "revizly/internal/repository/auth"
)

var (
	ErrUserAlreadyExists  = errors.New("User already exists")
	ErrInvalidCredentials = errors.New("Invalid credentials")
	ErrInvalidEmail       = errors.New("Invalid email")
	ErrInvalidToken       = errors.New("Invalid token")
	ErrExpiredToken       = errors.New("Token expired")
)

// UserStore 用户存储
type UserStore interface {
	Create(ctx context.Context, user *auth.User) error
	FindByID(ctx context.Context, id string) (*auth.User, error)
	FindByEmail(ctx context.Context, email string) (*auth.User, error)
}

// AuthService 认证服务
type AuthService struct {
	users UserStore
	jwt   *jwt.JWT
}

// NewAuthService 创建认证服务
func NewAuthService(users UserStore, jwtSecret string, accessTokenExpiry time.Duration) *AuthService {
	return &AuthService{
		users: users,
		jwt:   jwt.NewJWT(jwtSecret, accessTokenExpiry),
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Signup 用户注册
func (s *AuthService) Signup(ctx context.Context, email, pwd string) (*auth.User, error) {
	email = normalizeEmail(email)
	if email == "" || !strings.Contains(email, "@") {
		return nil, ErrInvalidEmail
	}

	existing, err := s.users.FindByEmail(ctx, email)
	if err != nil && !errors.Is(err, authRepo.ErrUserNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, ErrUserAlreadyExists
	}

	hashed, err := password.Hash(pwd)
	if err != nil {
		return nil, err
	}

	user := &auth.User{
		ID:       id.New(),
		Email:    email,
		Password: hashed,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, authRepo.ErrDuplicateEmail) {
			return nil, ErrUserAlreadyExists
		}
		log.Error().Err(err).Msg("failed to create user")
		return nil, err
	}

	log.Info().Str("user_id", user.ID).Msg("user signed up")
	return user, nil
}

// LoginResult 登录结果
type LoginResult struct {
	Token     string
	ExpiresIn int
	User      *auth.User
}

// Login 用户登录，邮箱不存在与密码错误返回同一错误
func (s *AuthService) Login(ctx context.Context, email, pwd string) (*LoginResult, error) {
	user, err := s.users.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, authRepo.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !password.Verify(pwd, user.Password) {
		return nil, ErrInvalidCredentials
	}

	token, err := s.jwt.GenerateToken(user.ID, user.Email)
	if err != nil {
		log.Error().Err(err).Msg("failed to generate access token")
		return nil, err
	}

	return &LoginResult{
		Token:     token,
		ExpiresIn: int(s.jwt.GetExpiration().Seconds()),
		User:      user,
	}, nil
}

// VerifyToken 校验 Bearer Token 并解析调用者身份
func (s *AuthService) VerifyToken(token string) (ctxutil.Identity, error) {
	claims, err := s.jwt.ValidateToken(token)
	if err != nil {
		if errors.Is(err, jwt.ErrExpiredToken) {
			return ctxutil.Identity{}, ErrExpiredToken
		}
		return ctxutil.Identity{}, ErrInvalidToken
	}
	return ctxutil.Identity{UserID: claims.UserID, Email: claims.Email}, nil
}

// Me 查询当前用户
func (s *AuthService) Me(ctx context.Context, userID string) (*auth.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, authRepo.ErrUserNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}
	return user, nil
}

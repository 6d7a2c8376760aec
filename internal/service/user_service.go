package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/d60-Lab/social-feed/config"
	"github.com/d60-Lab/social-feed/internal/model"
	"github.com/d60-Lab/social-feed/internal/repository"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// RegisterInput 注册参数
type RegisterInput struct {
	FullName string
	Email    string
	Password string
}

// UpdateProfileInput 资料更新；nil 字段不更新
type UpdateProfileInput struct {
	FullName      *string
	Avatar        *string
	Bio           *string
	ShowFollowers *bool
	ShowFollowing *bool
}

// UserService 账号与资料
type UserService interface {
	Register(ctx context.Context, in RegisterInput) (*model.User, error)
	// Login 校验密码并签发 bearer token
	Login(ctx context.Context, email, password string) (string, *model.User, error)
	Get(ctx context.Context, id string) (*model.User, error)
	UpdateProfile(ctx context.Context, userID string, in UpdateProfileInput) (*model.User, error)
}

type userService struct {
	users repository.UserRepository
	jwt   config.JWTConfig
}

func NewUserService(users repository.UserRepository, jwtCfg config.JWTConfig) UserService {
	return &userService{users: users, jwt: jwtCfg}
}

func (s *userService) Register(ctx context.Context, in RegisterInput) (*model.User, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	existing, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	u := &model.User{
		ID:            uuid.New().String(),
		FullName:      strings.TrimSpace(in.FullName),
		Email:         email,
		Password:      string(hash),
		ShowFollowers: true,
		ShowFollowing: true,
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *userService) Login(ctx context.Context, email, password string) (string, *model.User, error) {
	u, err := s.users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return "", nil, err
	}
	if u == nil {
		return "", nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   u.ID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(time.Duration(s.jwt.ExpireHours) * time.Hour)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.jwt.Secret))
	if err != nil {
		return "", nil, err
	}
	return token, u, nil
}

func (s *userService) Get(ctx context.Context, id string) (*model.User, error) {
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrUserNotFound
	}
	return u, nil
}

func (s *userService) UpdateProfile(ctx context.Context, userID string, in UpdateProfileInput) (*model.User, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrUserNotFound
	}

	if in.FullName != nil {
		u.FullName = strings.TrimSpace(*in.FullName)
	}
	if in.Avatar != nil {
		u.Avatar = *in.Avatar
	}
	if in.Bio != nil {
		u.Bio = *in.Bio
	}
	if in.ShowFollowers != nil {
		u.ShowFollowers = *in.ShowFollowers
	}
	if in.ShowFollowing != nil {
		u.ShowFollowing = *in.ShowFollowing
	}

	if err := s.users.Update(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

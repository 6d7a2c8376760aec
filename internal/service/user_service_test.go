package service

import (
	"context"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/d60-Lab/social-feed/config"
	"github.com/d60-Lab/social-feed/internal/repository"
)

func newTestUserService(t *testing.T) (UserService, config.JWTConfig) {
	t.Helper()
	db := setupServiceDB(t)
	jwtCfg := config.JWTConfig{Secret: "test-secret", ExpireHours: 1}
	return NewUserService(repository.NewUserRepository(db), jwtCfg), jwtCfg
}

func TestRegisterAndLogin(t *testing.T) {
	svc, jwtCfg := newTestUserService(t)
	ctx := context.Background()

	u, err := svc.Register(ctx, RegisterInput{FullName: "Alice", Email: "Alice@Example.COM", Password: "password123"})
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", u.Email, "email stored lowercase")
	assert.NotEqual(t, "password123", u.Password, "password stored hashed")
	assert.True(t, u.ShowFollowers)
	assert.True(t, u.ShowFollowing)

	token, logged, err := svc.Login(ctx, "alice@example.com", "password123")
	require.NoError(t, err)
	assert.Equal(t, u.ID, logged.ID)

	// token 的 subject 是用户 id
	parsed, err := jwt.ParseWithClaims(token, &jwt.RegisteredClaims{}, func(*jwt.Token) (interface{}, error) {
		return []byte(jwtCfg.Secret), nil
	})
	require.NoError(t, err)
	claims := parsed.Claims.(*jwt.RegisteredClaims)
	assert.Equal(t, u.ID, claims.Subject)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, _ := newTestUserService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterInput{FullName: "Alice", Email: "a@example.com", Password: "password123"})
	require.NoError(t, err)
	// 大小写不同也算重复
	_, err = svc.Register(ctx, RegisterInput{FullName: "Imposter", Email: "A@EXAMPLE.COM", Password: "password123"})
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	svc, _ := newTestUserService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterInput{FullName: "Alice", Email: "a@example.com", Password: "password123"})
	require.NoError(t, err)

	_, _, err = svc.Login(ctx, "a@example.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, _, err = svc.Login(ctx, "nobody@example.com", "password123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestUpdateProfile(t *testing.T) {
	svc, _ := newTestUserService(t)
	ctx := context.Background()

	u, err := svc.Register(ctx, RegisterInput{FullName: "Alice", Email: "a@example.com", Password: "password123"})
	require.NoError(t, err)

	bio := "hello"
	hide := false
	updated, err := svc.UpdateProfile(ctx, u.ID, UpdateProfileInput{Bio: &bio, ShowFollowers: &hide})
	require.NoError(t, err)
	assert.Equal(t, "hello", updated.Bio)
	assert.False(t, updated.ShowFollowers)
	assert.Equal(t, "Alice", updated.FullName, "untouched fields keep their value")

	_, err = svc.UpdateProfile(ctx, "ghost", UpdateProfileInput{Bio: &bio})
	assert.ErrorIs(t, err, ErrUserNotFound)
}

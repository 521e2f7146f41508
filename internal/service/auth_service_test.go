package service

import (
	"testing"
	"time"
	"zorides_backend/internal/config"
	"zorides_backend/internal/model"
	"zorides_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthRegisterAndLogin(t *testing.T) {
	f := newFixture(t)
	cfg := &config.Config{JWT: config.JWTConfig{Secret: "test-secret", ExpireTime: time.Hour}}
	auth := NewAuthService(f.users, cfg)

	user, err := auth.Register(f.ctx, RegisterInput{Name: "Alice", Email: " Alice@Example.com ", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", user.Email)
	assert.Equal(t, model.RoleUser, user.Role)
	assert.NotEqual(t, "secret1", user.Password)

	_, err = auth.Register(f.ctx, RegisterInput{Name: "Alice", Email: "alice@example.com", Password: "secret1"})
	assert.ErrorIs(t, err, util.ErrEmailRegistered)

	_, err = auth.Register(f.ctx, RegisterInput{Name: "Bob", Email: "bob@example.com", Password: "123"})
	assert.ErrorIs(t, err, util.ErrInvalidArgument)

	token, logged, err := auth.Login(f.ctx, "ALICE@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, user.ID, logged.ID)

	claims, err := util.ParseJWT(token, "test-secret")
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, model.RoleUser, claims.Role)

	_, _, err = auth.Login(f.ctx, "alice@example.com", "wrong-password")
	assert.ErrorIs(t, err, util.ErrInvalidCredentials)
	_, _, err = auth.Login(f.ctx, "nobody@example.com", "secret1")
	assert.ErrorIs(t, err, util.ErrUnauthorized)
}

func TestUserProfile(t *testing.T) {
	f := newFixture(t)
	creator := f.user(t, "Creator")
	users := NewUserService(f.users, f.events, f.groups)
	event := f.event(t, creator, "Concert")
	f.group(t, creator, event, 4)

	bio := "Loves concerts"
	age := 27
	updated, err := users.UpdateProfile(f.ctx, creator.ID, UpdateProfileInput{Bio: &bio, Age: &age})
	require.NoError(t, err)
	assert.Equal(t, "Loves concerts", updated.Bio)
	require.NotNil(t, updated.Age)
	assert.Equal(t, 27, *updated.Age)

	profile, err := users.GetProfile(f.ctx, creator.ID)
	require.NoError(t, err)
	assert.Len(t, profile.Events, 1)
	assert.Len(t, profile.Groups, 1)

	_, err = users.GetUserByID(f.ctx, 9999)
	assert.ErrorIs(t, err, util.ErrUserNotFound)
}

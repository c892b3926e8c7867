package service

import (
	"context"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Skotchmaster/todo_service/internal/models"
	"github.com/Skotchmaster/todo_service/internal/repo"
	"github.com/Skotchmaster/todo_service/internal/tokens"
)

func newTestService(t *testing.T) (*AuthService, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}))

	svc := &AuthService{
		Repo:  &repo.GormRepo{DB: db},
		Codec: &tokens.Codec{Secret: []byte("test-auth-secret")},
	}
	return svc, db
}

func TestAuthService_Register_StoresHashedCredentials(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, "alice", "s3cret")
	require.NoError(t, err)
	require.NotZero(t, user.ID)
	assert.Equal(t, "alice", user.Username)
	assert.False(t, user.IsAdmin)

	var stored models.User
	require.NoError(t, db.First(&stored, user.ID).Error)
	assert.NotEqual(t, "s3cret", stored.PasswordHash)
	assert.NotEmpty(t, stored.Salt)
}

func TestAuthService_Register_DuplicateUsername(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "alice", "s3cret")
	require.NoError(t, err)

	_, err = svc.Register(ctx, "alice", "other")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInternal)
}

func TestAuthService_Login_Success(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	registered, err := svc.Register(ctx, "alice", "s3cret")
	require.NoError(t, err)

	res, err := svc.Login(ctx, "alice", "s3cret")
	require.NoError(t, err)
	require.NotEmpty(t, res.Token)
	assert.Equal(t, registered.ID, res.User.ID)
	assert.Equal(t, "alice", res.User.Username)
	assert.False(t, res.User.IsAdmin)

	claims, err := svc.Codec.Verify(res.Token)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Username)
}

func TestAuthService_Login_NoEnumerationSignal(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "alice", "s3cret")
	require.NoError(t, err)

	tests := []struct {
		name     string
		username string
		password string
	}{
		{name: "unknown username", username: "nobody", password: "s3cret"},
		{name: "wrong password", username: "alice", password: "wrong"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			res, err := svc.Login(ctx, tt.username, tt.password)
			require.Error(t, err)
			assert.Nil(t, res)
			assert.ErrorIs(t, err, ErrInvalidCredentials)
		})
	}
}

func TestAuthService_Login_NoSecretConfigured(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "alice", "s3cret")
	require.NoError(t, err)

	svc.Codec = &tokens.Codec{}
	_, err = svc.Login(ctx, "alice", "s3cret")
	assert.ErrorIs(t, err, tokens.ErrNoSecret)
}

func TestAuthService_GetSession_ReturnsRepositoryState(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "alice", "s3cret")
	require.NoError(t, err)
	res, err := svc.Login(ctx, "alice", "s3cret")
	require.NoError(t, err)

	// Promotion after issuance: the token still says is_admin=false, the
	// session must say true.
	require.NoError(t, db.Model(&models.User{}).Where("id = ?", res.User.ID).Update("is_admin", true).Error)

	sess, err := svc.GetSession(ctx, res.Token)
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, sess.ID)
	assert.True(t, sess.IsAdmin)
}

func TestAuthService_GetSession_DeletedUser(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "alice", "s3cret")
	require.NoError(t, err)
	res, err := svc.Login(ctx, "alice", "s3cret")
	require.NoError(t, err)

	require.NoError(t, db.Where("id = ?", res.User.ID).Delete(&models.User{}).Error)

	sess, err := svc.GetSession(ctx, res.Token)
	require.Error(t, err)
	assert.Nil(t, sess)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestAuthService_GetSession_ExpiredToken(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "alice", "s3cret")
	require.NoError(t, err)

	svc.Codec = &tokens.Codec{Secret: []byte("test-auth-secret"), TTL: -time.Minute}
	res, err := svc.Login(ctx, "alice", "s3cret")
	require.NoError(t, err)

	_, err = svc.GetSession(ctx, res.Token)
	assert.ErrorIs(t, err, tokens.ErrExpired)
}

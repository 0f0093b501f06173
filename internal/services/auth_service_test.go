package services

import (
	"context"
	"testing"
	"time"

	"github.com/prudhvinik1/mobilerp/internal/erpnext"
	"github.com/prudhvinik1/mobilerp/internal/models"
	"github.com/prudhvinik1/mobilerp/internal/repositories"
	"github.com/prudhvinik1/mobilerp/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testJWTSecret = "test-secret"

func remoteLoginGateway(profile *erpnext.Profile, err error) *stubGateway {
	return &stubGateway{
		loginFunc: func(ctx context.Context, username, password string) (*erpnext.Profile, error) {
			return profile, err
		},
	}
}

func TestLogin_RemoteSuccessProvisionsUser(t *testing.T) {
	store := repositories.NewMemoryStore()
	gateway := remoteLoginGateway(&erpnext.Profile{FullName: "Rajiv Kumar", Email: "rajiv@example.com"}, nil)
	service := NewAuthService(store.Users, gateway, testJWTSecret, time.Hour)
	ctx := context.Background()

	resp, err := service.Login(ctx, "rajiv", "secret-password")

	require.NoError(t, err)
	assert.Equal(t, "rajiv", resp.User.Username)
	assert.Equal(t, "Rajiv Kumar", resp.User.FullName)
	assert.Equal(t, "RK", resp.User.AvatarInitials)
	assert.NotEmpty(t, resp.Token)

	// The token round-trips back to the user it was issued to.
	userID, err := service.VerifyToken(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, userID)

	// A second login reuses the provisioned record.
	again, err := service.Login(ctx, "rajiv", "secret-password")
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, again.User.ID)
}

func TestLogin_RemoteRejectionIsFinal(t *testing.T) {
	store := repositories.NewMemoryStore()
	hash, err := utils.HashPassword("local-password")
	require.NoError(t, err)
	user := &models.User{Username: "rajiv", PasswordHash: hash, FullName: "Rajiv Kumar", Email: "rajiv@example.com"}
	require.NoError(t, store.Users.Create(context.Background(), user))

	// The remote rejected the credentials; the local hash must not rescue
	// the login.
	gateway := remoteLoginGateway(nil, erpnext.ErrRemoteAuth)
	service := NewAuthService(store.Users, gateway, testJWTSecret, time.Hour)

	_, err = service.Login(context.Background(), "rajiv", "local-password")

	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLogin_RemoteUnreachableFallsBackToLocal(t *testing.T) {
	store := repositories.NewMemoryStore()
	hash, err := utils.HashPassword("local-password")
	require.NoError(t, err)
	user := &models.User{Username: "rajiv", PasswordHash: hash, FullName: "Rajiv Kumar", Email: "rajiv@example.com"}
	require.NoError(t, store.Users.Create(context.Background(), user))

	gateway := remoteLoginGateway(nil, erpnext.ErrRemoteUnavailable)
	service := NewAuthService(store.Users, gateway, testJWTSecret, time.Hour)

	resp, err := service.Login(context.Background(), "rajiv", "local-password")

	require.NoError(t, err)
	assert.Equal(t, user.ID, resp.User.ID)
	assert.NotEmpty(t, resp.Token)
}

func TestLogin_RemoteUnreachableWrongLocalPassword(t *testing.T) {
	store := repositories.NewMemoryStore()
	hash, err := utils.HashPassword("local-password")
	require.NoError(t, err)
	require.NoError(t, store.Users.Create(context.Background(), &models.User{
		Username: "rajiv", PasswordHash: hash, FullName: "Rajiv Kumar", Email: "rajiv@example.com",
	}))

	gateway := remoteLoginGateway(nil, erpnext.ErrRemoteUnavailable)
	service := NewAuthService(store.Users, gateway, testJWTSecret, time.Hour)

	_, err = service.Login(context.Background(), "rajiv", "wrong")

	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLogin_RemoteUnreachableUnknownUser(t *testing.T) {
	store := repositories.NewMemoryStore()
	gateway := remoteLoginGateway(nil, erpnext.ErrRemoteUnavailable)
	service := NewAuthService(store.Users, gateway, testJWTSecret, time.Hour)

	_, err := service.Login(context.Background(), "nobody", "whatever")

	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestVerifyToken_Garbage(t *testing.T) {
	store := repositories.NewMemoryStore()
	service := NewAuthService(store.Users, remoteLoginGateway(nil, nil), testJWTSecret, time.Hour)

	_, err := service.VerifyToken("not-a-token")

	assert.ErrorIs(t, err, ErrInvalidToken)
}

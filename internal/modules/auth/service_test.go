package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"filemanager/internal/database"
	"filemanager/internal/repository"
)

type stubIssuer struct{}

func (stubIssuer) GenerateToken(userID int64, username string) (string, error) {
	return "test-token", nil
}

func newTestService(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()
	db, err := database.Connect(":memory:")
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return NewService(repository.NewUserRepository(db), stubIssuer{}, 1<<20), db
}

func TestService_Register(t *testing.T) {
	svc, _ := newTestService(t)

	user, err := svc.Register(context.Background(), RegisterRequest{
		Username: "alice",
		Password: "password123",
		Email:    "Alice@Example.com",
	})
	require.NoError(t, err)
	assert.NotZero(t, user.ID)
	assert.Equal(t, "alice@example.com", user.Email)
	assert.Equal(t, int64(1<<20), user.StorageLimit)
	assert.NotEqual(t, "password123", user.PasswordHash)
}

func TestService_Register_DuplicateUsername(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Register(context.Background(), RegisterRequest{Username: "bob", Password: "password123"})
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), RegisterRequest{Username: "bob", Password: "otherpass456"})
	assert.ErrorIs(t, err, ErrUsernameTaken)
}

func TestService_Login(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Register(context.Background(), RegisterRequest{Username: "carol", Password: "password123"})
	require.NoError(t, err)

	user, token, err := svc.Login(context.Background(), LoginRequest{Username: "carol", Password: "password123"})
	require.NoError(t, err)
	assert.Equal(t, "carol", user.Username)
	assert.Equal(t, "test-token", token)

	_, _, err = svc.Login(context.Background(), LoginRequest{Username: "carol", Password: "wrongpass"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, _, err = svc.Login(context.Background(), LoginRequest{Username: "nobody", Password: "password123"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

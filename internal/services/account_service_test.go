package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quillside/backend/internal/models"
	"github.com/quillside/backend/internal/store/memstore"
)

func registerReq(username string) *models.RegisterRequest {
	return &models.RegisterRequest{
		Username:        username,
		FirstName:       "Test",
		LastName:        "User",
		Email:           username + "@example.com",
		AccountType:     models.AccountBlogger,
		Password:        "correct-horse",
		ConfirmPassword: "correct-horse",
	}
}

func TestRegister(t *testing.T) {
	ctx := context.Background()

	t.Run("new accounts start in good standing", func(t *testing.T) {
		svc := NewAccountService(memstore.New())

		user, err := svc.Register(ctx, registerReq("Alice"))
		require.NoError(t, err)
		assert.Equal(t, "alice", user.Username)
		assert.Equal(t, models.StatusGood, user.Status)
		assert.False(t, user.Public)
		assert.NotEqual(t, "correct-horse", user.PasswordHash)
	})

	t.Run("username and email are unique", func(t *testing.T) {
		svc := NewAccountService(memstore.New())
		_, err := svc.Register(ctx, registerReq("alice"))
		require.NoError(t, err)

		_, err = svc.Register(ctx, registerReq("alice"))
		assert.ErrorIs(t, err, ErrUsernameExists)

		req := registerReq("alice2")
		req.Email = "alice@example.com"
		_, err = svc.Register(ctx, req)
		assert.ErrorIs(t, err, ErrEmailExists)
	})

	t.Run("privileged account types cannot self-register", func(t *testing.T) {
		req := registerReq("mallory")
		req.AccountType = models.AccountAdmin
		assert.Contains(t, req.Validate(), "account_type")

		req.AccountType = models.AccountModerator
		assert.Contains(t, req.Validate(), "account_type")
	})
}

func TestLogin(t *testing.T) {
	ctx := context.Background()

	setup := func(t *testing.T) *AccountService {
		svc := NewAccountService(memstore.New())
		_, err := svc.Register(ctx, registerReq("alice"))
		require.NoError(t, err)
		return svc
	}

	t.Run("valid credentials", func(t *testing.T) {
		svc := setup(t)
		user, err := svc.Login(ctx, &models.LoginRequest{Username: "Alice", Password: "correct-horse"})
		require.NoError(t, err)
		assert.Equal(t, "alice", user.Username)
	})

	t.Run("wrong password", func(t *testing.T) {
		svc := setup(t)
		_, err := svc.Login(ctx, &models.LoginRequest{Username: "alice", Password: "battery-staple"})
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("unknown user gets the same error", func(t *testing.T) {
		svc := setup(t)
		_, err := svc.Login(ctx, &models.LoginRequest{Username: "nobody", Password: "whatever"})
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})
}

func TestUpdateProfile(t *testing.T) {
	ctx := context.Background()

	t.Run("cannot take another user's email", func(t *testing.T) {
		svc := NewAccountService(memstore.New())
		alice, err := svc.Register(ctx, registerReq("alice"))
		require.NoError(t, err)
		_, err = svc.Register(ctx, registerReq("bob"))
		require.NoError(t, err)

		taken := "bob@example.com"
		_, err = svc.UpdateProfile(ctx, alice.ID, &models.UpdateProfileRequest{Email: &taken})
		assert.ErrorIs(t, err, ErrEmailExists)

		// Re-submitting your own email is fine.
		own := "alice@example.com"
		_, err = svc.UpdateProfile(ctx, alice.ID, &models.UpdateProfileRequest{Email: &own})
		assert.NoError(t, err)
	})
}

func TestChangePassword(t *testing.T) {
	ctx := context.Background()

	t.Run("requires the old password", func(t *testing.T) {
		svc := NewAccountService(memstore.New())
		alice, err := svc.Register(ctx, registerReq("alice"))
		require.NoError(t, err)

		err = svc.ChangePassword(ctx, alice.ID, &models.ChangePasswordRequest{
			OldPassword: "wrong", Password: "new-password", ConfirmPassword: "new-password",
		})
		assert.ErrorIs(t, err, ErrInvalidCredentials)

		err = svc.ChangePassword(ctx, alice.ID, &models.ChangePasswordRequest{
			OldPassword: "correct-horse", Password: "new-password", ConfirmPassword: "new-password",
		})
		require.NoError(t, err)

		_, err = svc.Login(ctx, &models.LoginRequest{Username: "alice", Password: "new-password"})
		assert.NoError(t, err)
	})
}

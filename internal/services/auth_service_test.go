package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/goldspin/casino-backend/internal/models"
	"github.com/goldspin/casino-backend/internal/repositories/memory"
	"github.com/goldspin/casino-backend/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogin(t *testing.T) {
	store := memory.NewStore()
	svc := services.NewAuthService(store.AdminUsers(), "test-secret", time.Hour)

	_, err := svc.CreateAdmin(context.Background(), "ops@example.com", "s3cret", "admin")
	require.NoError(t, err)

	resp, err := svc.Login(context.Background(), &models.LoginRequest{
		Email:    "ops@example.com",
		Password: "s3cret",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, 3600, resp.ExpiresIn)
}

func TestLoginWrongPassword(t *testing.T) {
	store := memory.NewStore()
	svc := services.NewAuthService(store.AdminUsers(), "test-secret", time.Hour)

	_, err := svc.CreateAdmin(context.Background(), "ops@example.com", "s3cret", "admin")
	require.NoError(t, err)

	_, err = svc.Login(context.Background(), &models.LoginRequest{
		Email:    "ops@example.com",
		Password: "wrong",
	})
	assert.ErrorIs(t, err, services.ErrInvalidCredentials)
}

func TestLoginUnknownEmail(t *testing.T) {
	store := memory.NewStore()
	svc := services.NewAuthService(store.AdminUsers(), "test-secret", time.Hour)

	_, err := svc.Login(context.Background(), &models.LoginRequest{
		Email:    "nobody@example.com",
		Password: "s3cret",
	})
	assert.ErrorIs(t, err, services.ErrInvalidCredentials)
}

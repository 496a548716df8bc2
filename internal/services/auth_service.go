package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goldspin/casino-backend/internal/models"
	"github.com/goldspin/casino-backend/internal/repositories"
	"github.com/goldspin/casino-backend/internal/utils"
	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/exp/slog"
)

// Compile-time check to ensure AuthServiceImpl implements AuthService
var _ AuthService = (*AuthServiceImpl)(nil)

// AuthServiceImpl authenticates back-office operators and issues JWTs
type AuthServiceImpl struct {
	adminRepo repositories.AdminUserRepository
	jwtSecret string
	jwtExpiry time.Duration
}

// NewAuthService creates a new AuthServiceImpl
func NewAuthService(adminRepo repositories.AdminUserRepository, jwtSecret string, jwtExpiry time.Duration) *AuthServiceImpl {
	if jwtExpiry <= 0 {
		jwtExpiry = 24 * time.Hour
	}
	return &AuthServiceImpl{
		adminRepo: adminRepo,
		jwtSecret: jwtSecret,
		jwtExpiry: jwtExpiry,
	}
}

// Login verifies operator credentials and returns a signed token
func (s *AuthServiceImpl) Login(ctx context.Context, req *models.LoginRequest) (*models.LoginResponse, error) {
	admin, err := s.adminRepo.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to look up admin user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(req.Password)); err != nil {
		slog.Warn("Failed admin login attempt", "email", utils.MaskUsername(req.Email))
		return nil, ErrInvalidCredentials
	}

	expiry := time.Now().Add(s.jwtExpiry)
	claims := jwt.MapClaims{
		"sub":   admin.ID.Hex(),
		"email": admin.Email,
		"role":  admin.Role,
		"exp":   expiry.Unix(),
		"iat":   time.Now().Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}

	slog.Info("Admin logged in", "adminId", admin.ID.Hex(), "email", admin.Email)
	return &models.LoginResponse{
		Token:     signed,
		ExpiresIn: int(s.jwtExpiry.Seconds()),
	}, nil
}

// CreateAdmin registers a back-office operator with a bcrypt password hash
func (s *AuthServiceImpl) CreateAdmin(ctx context.Context, email, password, role string) (*models.AdminUser, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	admin := &models.AdminUser{
		ID:           primitive.NewObjectID(),
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
	}
	if err := s.adminRepo.Create(ctx, admin); err != nil {
		return nil, fmt.Errorf("failed to create admin user: %w", err)
	}
	return admin, nil
}

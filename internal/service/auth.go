package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/coursehive/course-auction/internal/model"
	"github.com/coursehive/course-auction/pkg/config"
	"github.com/coursehive/course-auction/pkg/jwt"
	"github.com/coursehive/course-auction/pkg/utils"
)

type AuthServicer interface {
	AddUser(ctx context.Context, email, username, password string) (uuid.UUID, error)
	ValidateUser(ctx context.Context, username, password string) (jwt.Tokens, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	BlacklistUserToken(ctx context.Context, accessTokenString string) error
	ValidateRefreshToken(tokenString string) (*config.RefreshClaims, error)
	ValidateAccessToken(tokenString string) (*config.UserClaims, error)
	IssueTokenPair(userID uuid.UUID) (jwt.Tokens, error)
}

type AuthService struct {
	accounts AccountStore
	JM       *jwt.JwtManager
}

func NewAuthService(accounts AccountStore) (*AuthService, error) {
	jwtManger, err := jwt.NewJwtManager()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize AuthService: %w", err)
	}
	return &AuthService{
		accounts: accounts,
		JM:       jwtManger,
	}, nil
}

// Register
func (as *AuthService) AddUser(ctx context.Context, email, username, password string) (uuid.UUID, error) {
	exists, err := as.accounts.GetUserByEmail(ctx, email)
	if err != nil {
		return uuid.Nil, err
	}
	if exists != nil {
		return uuid.Nil, ErrUserExists
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to hash password: %w", err)
	}

	userID, err := as.accounts.CreateUser(ctx, email, username, hash)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to create user: %w", err)
	}

	return userID, nil
}

func (as *AuthService) ValidateUser(ctx context.Context, username, password string) (jwt.Tokens, error) {
	user, err := as.accounts.GetUserByUsername(ctx, username)
	if err != nil || user == nil {
		return jwt.Tokens{}, ErrInvalidCredentials
	}

	if err := utils.ComparePassword(password, user.Password); err != nil {
		slog.Error(err.Error())
		return jwt.Tokens{}, ErrInvalidCredentials
	}
	tokens, err := as.JM.GenerateTokenPair(user.ID)
	if err != nil {
		return jwt.Tokens{}, fmt.Errorf("failed to generate tokens: %w", err)
	}

	return tokens, nil
}

func (as *AuthService) GetUserByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	user, err := as.accounts.GetUserByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

func (as *AuthService) BlacklistUserToken(ctx context.Context, accessTokenString string) error {
	accessClaims, err := as.JM.ValidateAccessToken(accessTokenString)
	if err != nil {
		// Already invalid or expired; nothing to revoke.
		return nil
	}

	remainingDuration := time.Until(accessClaims.ExpiresAt.Time)
	if remainingDuration > 0 {
		if err := as.JM.AddToBlackList(accessClaims.ID, remainingDuration); err != nil {
			return fmt.Errorf("failed to blacklist access token: %w", err)
		}
	}

	return nil
}

func (as *AuthService) ValidateRefreshToken(tokenString string) (*config.RefreshClaims, error) {
	return as.JM.ValidateRefreshToken(tokenString)
}

func (as *AuthService) ValidateAccessToken(tokenString string) (*config.UserClaims, error) {
	return as.JM.ValidateAccessToken(tokenString)
}

func (as *AuthService) IssueTokenPair(userID uuid.UUID) (jwt.Tokens, error) {
	return as.JM.GenerateTokenPair(userID)
}

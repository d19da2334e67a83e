package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/yigit/iatracker/internal/app/models"
	"github.com/yigit/iatracker/internal/app/models/dto"
	"github.com/yigit/iatracker/internal/app/repositories"
	"github.com/yigit/iatracker/internal/pkg/apperrors"
	"github.com/yigit/iatracker/internal/pkg/auth"
	"github.com/yigit/iatracker/internal/pkg/validation"
)

// AuthService handles authentication operations
type AuthService interface {
	Login(ctx context.Context, username, password string) (*dto.AuthResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*dto.AuthResponse, error)
	Logout(ctx context.Context, refreshToken string) error
	Me(ctx context.Context, userID int64) (*dto.UserResponse, error)
	ResetPassword(ctx context.Context, username, newPassword string) error
}

type authService struct {
	users  repositories.IUserRepository
	tokens repositories.ITokenRepository
	jwt    *auth.JWTService
	logger zerolog.Logger
}

// NewAuthService creates a new AuthService
func NewAuthService(users repositories.IUserRepository, tokens repositories.ITokenRepository, jwt *auth.JWTService, logger zerolog.Logger) AuthService {
	return &authService{users: users, tokens: tokens, jwt: jwt, logger: logger}
}

func (s *authService) Login(ctx context.Context, username, password string) (*dto.AuthResponse, error) {
	username = strings.TrimSpace(username)
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("error loading user: %w", err)
	}
	if !auth.CheckPassword(user.Password, password) {
		s.logger.Warn().Str("username", username).Msg("Failed login attempt")
		return nil, apperrors.ErrInvalidCredentials
	}

	resp, err := s.issue(ctx, user)
	if err != nil {
		return nil, err
	}
	s.logger.Info().Int64("userID", user.ID).Str("role", string(user.Role)).Msg("User logged in")
	return resp, nil
}

// Refresh rotates a refresh token: the presented token is revoked and a new pair issued.
func (s *authService) Refresh(ctx context.Context, refreshToken string) (*dto.AuthResponse, error) {
	if strings.TrimSpace(refreshToken) == "" {
		return nil, apperrors.ErrTokenInvalid
	}
	stored, err := s.tokens.Get(ctx, refreshToken)
	if err != nil {
		return nil, err
	}
	user, err := s.users.GetByID(ctx, stored.UserID)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return nil, apperrors.ErrTokenInvalid
		}
		return nil, err
	}
	if err := s.tokens.Revoke(ctx, refreshToken); err != nil {
		return nil, err
	}
	return s.issue(ctx, user)
}

func (s *authService) Logout(ctx context.Context, refreshToken string) error {
	if strings.TrimSpace(refreshToken) == "" {
		return apperrors.ErrTokenInvalid
	}
	return s.tokens.Revoke(ctx, refreshToken)
}

func (s *authService) Me(ctx context.Context, userID int64) (*dto.UserResponse, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	resp := dto.NewUserResponse(user)
	return &resp, nil
}

// ResetPassword sets a new password and revokes the user's sessions.
func (s *authService) ResetPassword(ctx context.Context, username, newPassword string) error {
	if err := validation.ValidatePassword(newPassword); err != nil {
		return apperrors.NewCustomError(apperrors.ErrValidationFailed, err.Error())
	}
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return err
	}
	hash, err := auth.HashPassword(newPassword)
	if err != nil {
		return err
	}
	if err := s.users.UpdatePassword(ctx, user.ID, hash); err != nil {
		return err
	}
	if err := s.tokens.RevokeAllForUser(ctx, user.ID); err != nil {
		return err
	}
	s.logger.Info().Int64("userID", user.ID).Msg("Password reset")
	return nil
}

func (s *authService) issue(ctx context.Context, user *models.User) (*dto.AuthResponse, error) {
	pair, err := s.jwt.GenerateTokenPair(user)
	if err != nil {
		return nil, err
	}
	if err := s.tokens.Create(ctx, pair.RefreshToken, user.ID, pair.RefreshExpiry); err != nil {
		return nil, fmt.Errorf("error storing refresh token: %w", err)
	}
	return &dto.AuthResponse{
		Token: dto.TokenResponse{
			AccessToken:           pair.AccessToken,
			TokenType:             "Bearer",
			ExpiresIn:             pair.ExpiresIn,
			RefreshToken:          pair.RefreshToken,
			RefreshTokenExpiresIn: pair.RefreshExpiresIn,
		},
		User: dto.NewUserResponse(user),
	}, nil
}

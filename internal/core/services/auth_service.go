package services

import (
	"context"
	"errors"

	"github.com/simha10/survey-ops-backend/internal/adapters/persistence/models"
	"github.com/simha10/survey-ops-backend/internal/adapters/persistence/repositories"
	"github.com/simha10/survey-ops-backend/internal/core/domain"
	"github.com/simha10/survey-ops-backend/internal/pkg/jwt"
	"github.com/simha10/survey-ops-backend/internal/pkg/password"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AuthConfig carries the token parameters the auth service needs
type AuthConfig struct {
	JWTSecret           string
	AccessExpiryMinutes int
	RefreshExpiryDays   int
}

// AuthService handles login, token refresh, and logout
type AuthService struct {
	cfg            AuthConfig
	userRepo       *repositories.UserRepository
	roleRepo       *repositories.RoleMappingRepository
	tokenRepo      *repositories.RefreshTokenRepository
	surveyorRepo   *repositories.SurveyorRepository
	supervisorRepo *repositories.SupervisorRepository
}

// NewAuthService creates a new auth service
func NewAuthService(
	cfg AuthConfig,
	userRepo *repositories.UserRepository,
	roleRepo *repositories.RoleMappingRepository,
	tokenRepo *repositories.RefreshTokenRepository,
	surveyorRepo *repositories.SurveyorRepository,
	supervisorRepo *repositories.SupervisorRepository,
) *AuthService {
	return &AuthService{
		cfg:            cfg,
		userRepo:       userRepo,
		roleRepo:       roleRepo,
		tokenRepo:      tokenRepo,
		surveyorRepo:   surveyorRepo,
		supervisorRepo: supervisorRepo,
	}
}

// LoginInput represents a login request
type LoginInput struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// TokenPair carries the issued tokens and the authenticated user
type TokenPair struct {
	AccessToken  string               `json:"access_token"`
	RefreshToken string               `json:"refresh_token"`
	User         *models.UserResponse `json:"user"`
	Role         string               `json:"role"`
}

// Login authenticates a user and issues an access/refresh token pair. The
// role embedded in the access token is the user's single active role mapping.
// A surveyor login also touches the surveyor's last-active timestamp.
func (s *AuthService) Login(ctx context.Context, input *LoginInput) (*TokenPair, error) {
	user, err := s.userRepo.GetByUsername(ctx, input.Username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.Authorization("invalid username or password")
		}
		return nil, domain.Internal(err)
	}
	if !password.Verify(input.Password, user.Password) {
		return nil, domain.Authorization("invalid username or password")
	}
	if !user.IsActive {
		return nil, domain.Authorization("account is deactivated")
	}

	mapping, err := s.roleRepo.GetActiveByUserID(ctx, user.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.Authorization("no active role assigned")
		}
		return nil, domain.Internal(err)
	}

	pair, err := s.issueTokens(ctx, user, mapping.Role)
	if err != nil {
		return nil, err
	}

	if mapping.Role == string(domain.RoleSurveyor) {
		if err := s.surveyorRepo.TouchLastActive(ctx, user.ID); err != nil {
			return nil, domain.Internal(err)
		}
	}
	return pair, nil
}

func (s *AuthService) issueTokens(ctx context.Context, user *models.User, role string) (*TokenPair, error) {
	// supervisors carry their current ward in the token so ward-scoped
	// routes can check it without another lookup
	var wardID *uint
	if role == string(domain.RoleSupervisor) {
		if supervisor, err := s.supervisorRepo.GetByUserID(ctx, user.ID); err == nil {
			wardID = supervisor.WardID
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.Internal(err)
		}
	}

	access, err := jwt.GenerateAccessToken(user.ID, user.Username, role, wardID,
		s.cfg.JWTSecret, s.cfg.AccessExpiryMinutes)
	if err != nil {
		return nil, domain.Internal(err)
	}

	tokenID := uuid.New().String()
	refresh, err := jwt.GenerateRefreshToken(user.ID, tokenID, s.cfg.JWTSecret, s.cfg.RefreshExpiryDays)
	if err != nil {
		return nil, domain.Internal(err)
	}

	record := &models.RefreshToken{
		UserID:    user.ID,
		TokenHash: password.HashToken(refresh),
		ExpiresAt: jwt.GetExpiryTime(s.cfg.RefreshExpiryDays),
	}
	if err := s.tokenRepo.Create(ctx, record); err != nil {
		return nil, domain.Internal(err)
	}

	return &TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		User:         user.ToResponse(),
		Role:         role,
	}, nil
}

// Refresh exchanges a valid refresh token for a new token pair. The used
// token is revoked so each refresh token works exactly once.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	claims, err := jwt.ValidateRefreshToken(refreshToken, s.cfg.JWTSecret)
	if err != nil {
		return nil, domain.Authorization("invalid refresh token")
	}

	record, err := s.tokenRepo.GetByTokenHash(ctx, password.HashToken(refreshToken))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.Authorization("refresh token not recognized")
		}
		return nil, domain.Internal(err)
	}
	if record.IsRevoked() || record.IsExpired() {
		return nil, domain.Authorization("refresh token expired or revoked")
	}

	user, err := s.userRepo.GetByID(ctx, claims.UserID)
	if err != nil {
		return nil, domain.Authorization("invalid refresh token")
	}
	if !user.IsActive {
		return nil, domain.Authorization("account is deactivated")
	}

	mapping, err := s.roleRepo.GetActiveByUserID(ctx, user.ID)
	if err != nil {
		return nil, domain.Authorization("no active role assigned")
	}

	if err := s.tokenRepo.RevokeByTokenHash(ctx, record.TokenHash); err != nil {
		return nil, domain.Internal(err)
	}
	return s.issueTokens(ctx, user, mapping.Role)
}

// Logout revokes the presented refresh token
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	if err := s.tokenRepo.RevokeByTokenHash(ctx, password.HashToken(refreshToken)); err != nil {
		return domain.Internal(err)
	}
	return nil
}

// LogoutAll revokes every refresh token the user holds
func (s *AuthService) LogoutAll(ctx context.Context, userID uint) error {
	if err := s.tokenRepo.RevokeAllByUserID(ctx, userID); err != nil {
		return domain.Internal(err)
	}
	return nil
}

// Me returns the authenticated user's profile with their active role
func (s *AuthService) Me(ctx context.Context, userID uint) (*models.UserResponse, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NotFound("user %d not found", userID)
		}
		return nil, domain.Internal(err)
	}

	resp := user.ToResponse()
	if mapping, err := s.roleRepo.GetActiveByUserID(ctx, userID); err == nil {
		resp.Role = mapping.Role
	}
	return resp, nil
}

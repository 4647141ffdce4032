package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/clubhouse-ops/membership-admin/internal/auth"
	"github.com/clubhouse-ops/membership-admin/internal/config"
	"github.com/clubhouse-ops/membership-admin/internal/domain"
	"github.com/clubhouse-ops/membership-admin/internal/repository"
	apperrors "github.com/clubhouse-ops/membership-admin/pkg/util/errorutil"
)

// AuthService handles operator login.
type AuthService struct {
	operators  repository.OperatorRepository
	tokenMgr   *auth.TokenManager
	bcryptCost int
	logger     *zap.Logger
}

// NewAuthService builds the service.
func NewAuthService(cfg config.AuthConfig, operators repository.OperatorRepository, logger *zap.Logger) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		operators:  operators,
		tokenMgr:   auth.NewTokenManager(cfg.JWTSecret, cfg.AccessTokenTTLMinutes),
		bcryptCost: cfg.BcryptCost,
		logger:     logger,
	}
}

// Login authenticates an operator and returns a role-bearing token.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.Operator, string, time.Time, error) {
	operator, err := s.operators.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, "", time.Time{}, apperrors.NewUnauthorized("invalid credentials")
		}
		return nil, "", time.Time{}, storeError("operator", err)
	}
	if !operator.Active {
		return nil, "", time.Time{}, apperrors.NewUnauthorized("operator inactive")
	}
	if err := auth.ComparePassword(operator.PasswordHash, password); err != nil {
		return nil, "", time.Time{}, apperrors.NewUnauthorized("invalid credentials")
	}
	token, exp, err := s.tokenMgr.GenerateToken(operator)
	if err != nil {
		return nil, "", time.Time{}, apperrors.NewInternalError(err)
	}
	return operator, token, exp, nil
}

// CreateOperator stores a new back-office account.
func (s *AuthService) CreateOperator(ctx context.Context, name, email, password string, role domain.OperatorRole) (*domain.Operator, error) {
	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	operator := &domain.Operator{
		Name:         name,
		Email:        strings.TrimSpace(email),
		PasswordHash: hash,
		Role:         role,
		Active:       true,
	}
	if err := s.operators.Create(ctx, operator); err != nil {
		return nil, storeError("operator", err)
	}
	return operator, nil
}

// EnsureBootstrapAdmin creates the configured admin account when it does not exist yet.
func (s *AuthService) EnsureBootstrapAdmin(ctx context.Context, cfg config.AuthConfig) error {
	if cfg.BootstrapEmail == "" || cfg.BootstrapPassword == "" {
		return nil
	}
	_, err := s.operators.GetByEmail(ctx, cfg.BootstrapEmail)
	if err == nil {
		return nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return err
	}
	operator, err := s.CreateOperator(ctx, cfg.BootstrapName, cfg.BootstrapEmail, cfg.BootstrapPassword, domain.OperatorRoleAdmin)
	if err != nil {
		return err
	}
	s.logger.Info("bootstrap admin created", zap.String("operator_id", operator.ID), zap.String("email", operator.Email))
	return nil
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}

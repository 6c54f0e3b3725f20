package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/emifrog/SaaS-RH/internal/dto"
	"github.com/emifrog/SaaS-RH/internal/model"
	"github.com/emifrog/SaaS-RH/internal/repository"
	"github.com/emifrog/SaaS-RH/pkg/jwt"
)

var (
	ErrBadCredentials = errors.New("bad badge number or password")
	ErrAccountLocked  = errors.New("account is not active")
	ErrBadTokenType   = errors.New("wrong token type")
)

// TokenStore revokes tokens by jti. Satisfied by pkg/redis.Client.
type TokenStore interface {
	BlacklistToken(ctx context.Context, jti string, ttl time.Duration) error
	IsBlacklisted(ctx context.Context, jti string) (bool, error)
}

// AuthService authenticates by badge number and manages the token pair.
type AuthService interface {
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error)
	Refresh(ctx context.Context, req *dto.RefreshRequest) (*dto.LoginResponse, error)
	// Logout blacklists the access token until its natural expiry.
	Logout(ctx context.Context, claims *jwt.Claims) error
	Me(ctx context.Context, personnelID string) (*model.Personnel, error)
}

type authService struct {
	repo   *repository.Repository
	jwtMgr *jwt.Manager
	rdb    TokenStore
	logger *zap.Logger
}

func NewAuthService(repo *repository.Repository, jwtMgr *jwt.Manager, rdb TokenStore, logger *zap.Logger) AuthService {
	return &authService{repo: repo, jwtMgr: jwtMgr, rdb: rdb, logger: logger}
}

// Login checks the badge number and password, refusing inactive
// accounts. The answer never says which of the two was wrong.
func (s *authService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error) {
	person, err := s.repo.Personnel.GetByBadgeNumber(ctx, req.BadgeNumber)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBadCredentials
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(person.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrBadCredentials
	}
	if person.Status != model.PersonnelActive {
		return nil, ErrAccountLocked
	}

	resp, err := s.issuePair(person)
	if err != nil {
		return nil, err
	}

	s.logger.Info("login",
		zap.String("personnel_id", person.PersonnelID),
		zap.String("role", person.Role))
	return resp, nil
}

// Refresh exchanges a valid refresh token for a fresh pair. The claims
// are re-read from the roster so a role change or deactivation takes
// effect at the next refresh at the latest.
func (s *authService) Refresh(ctx context.Context, req *dto.RefreshRequest) (*dto.LoginResponse, error) {
	claims, err := s.jwtMgr.ParseToken(req.RefreshToken)
	if err != nil {
		return nil, err
	}
	if claims.TokenType != "refresh" {
		return nil, ErrBadTokenType
	}
	blacklisted, err := s.rdb.IsBlacklisted(ctx, claims.ID)
	if err != nil {
		return nil, err
	}
	if blacklisted {
		return nil, jwt.ErrTokenInvalid
	}

	person, err := s.repo.Personnel.GetByID(ctx, claims.PersonnelID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBadCredentials
		}
		return nil, err
	}
	if person.Status != model.PersonnelActive {
		return nil, ErrAccountLocked
	}

	// Refresh tokens are single use.
	if err := s.rdb.BlacklistToken(ctx, claims.ID, time.Until(claims.ExpiresAt.Time)); err != nil {
		s.logger.Warn("refresh token not blacklisted", zap.Error(err))
	}

	return s.issuePair(person)
}

func (s *authService) Logout(ctx context.Context, claims *jwt.Claims) error {
	ttl := time.Until(claims.ExpiresAt.Time)
	if ttl <= 0 {
		return nil
	}
	return s.rdb.BlacklistToken(ctx, claims.ID, ttl)
}

func (s *authService) Me(ctx context.Context, personnelID string) (*model.Personnel, error) {
	person, err := s.repo.Personnel.GetByID(ctx, personnelID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrPersonnelNotFound
	}
	return person, err
}

func (s *authService) issuePair(person *model.Personnel) (*dto.LoginResponse, error) {
	access, err := s.jwtMgr.GenerateAccessToken(person.PersonnelID, person.Role, person.CentreID)
	if err != nil {
		return nil, err
	}
	refresh, err := s.jwtMgr.GenerateRefreshToken(person.PersonnelID, person.Role, person.CentreID)
	if err != nil {
		return nil, err
	}
	return &dto.LoginResponse{
		AccessToken:  access,
		RefreshToken: refresh,
		Personnel: dto.PersonnelBrief{
			ID:          person.PersonnelID,
			BadgeNumber: person.BadgeNumber,
			LastName:    person.LastName,
			FirstName:   person.FirstName,
			Grade:       person.Grade,
			Role:        person.Role,
			CentreID:    person.CentreID,
		},
	}, nil
}

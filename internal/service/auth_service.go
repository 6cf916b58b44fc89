package service

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"itoparty/internal/apperr"
	"itoparty/internal/model"
	"itoparty/internal/repository"
)

// AuthService mints and validates anonymous player identities.
type AuthService struct {
	accounts  repository.AccountRepo
	jwtSecret []byte
}

// NewAuthService creates a new auth service.
func NewAuthService(accounts repository.AccountRepo, jwtSecret string) *AuthService {
	return &AuthService{
		accounts:  accounts,
		jwtSecret: []byte(jwtSecret),
	}
}

// Register creates a fresh anonymous account and returns its token.
func (s *AuthService) Register(ctx context.Context) (*model.RegisterResponse, error) {
	playerID := uuid.New().String()

	account := &model.Account{
		ID:        playerID,
		CreatedAt: time.Now().UnixMilli(),
	}
	if err := s.accounts.Create(ctx, account); err != nil {
		return nil, apperr.Wrap(apperr.CodeInternal, "failed to create account", err)
	}

	claims := &model.PlayerClaims{
		PlayerID: playerID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(24 * time.Hour)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeInternal, "failed to sign token", err)
	}

	return &model.RegisterResponse{
		Token:    tokenString,
		PlayerID: playerID,
	}, nil
}

// ValidateToken validates a player JWT and returns its claims.
func (s *AuthService) ValidateToken(tokenString string) (*model.PlayerClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &model.PlayerClaims{}, func(token *jwt.Token) (interface{}, error) {
		return s.jwtSecret, nil
	})
	if err != nil {
		return nil, apperr.New(apperr.CodeUnauthenticated, "invalid or expired token")
	}

	claims, ok := token.Claims.(*model.PlayerClaims)
	if !ok || !token.Valid {
		return nil, apperr.New(apperr.CodeUnauthenticated, "invalid or expired token")
	}

	return claims, nil
}

// VerifyAccountAge rejects accounts younger than the cooldown window. Brand
// new accounts cannot create or enter games for a few seconds, which blunts
// throwaway-identity abuse.
func (s *AuthService) VerifyAccountAge(ctx context.Context, playerID string, nowMS int64) error {
	account, err := s.accounts.GetByID(ctx, playerID)
	if err != nil {
		return apperr.Wrap(apperr.CodeInternal, "failed to load account", err)
	}
	if account == nil {
		return apperr.New(apperr.CodeFailedPrecondition, "account not found")
	}
	if nowMS-account.CreatedAt < model.AccountCooldownMS {
		return apperr.New(apperr.CodeFailedPrecondition, "account is too new, wait a few seconds")
	}
	return nil
}

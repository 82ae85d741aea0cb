package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/mansoorceksport/platepal/internal/config"
	"github.com/mansoorceksport/platepal/internal/domain"
)

// ErrInvalidRefreshToken covers unknown, revoked and expired refresh tokens
var ErrInvalidRefreshToken = errors.New("invalid or expired refresh token")

// TokenService issues access JWTs and rotates refresh tokens
type TokenService struct {
	jwtConfig        config.JWTConfig
	refreshTokenRepo domain.RefreshTokenRepository
	userRepo         domain.UserRepository
	now              func() time.Time
}

func NewTokenService(
	jwtConfig config.JWTConfig,
	refreshTokenRepo domain.RefreshTokenRepository,
	userRepo domain.UserRepository,
) *TokenService {
	return &TokenService{
		jwtConfig:        jwtConfig,
		refreshTokenRepo: refreshTokenRepo,
		userRepo:         userRepo,
		now:              time.Now,
	}
}

// TokenPair contains both access and refresh tokens
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"` // seconds
}

func (s *TokenService) GenerateTokenPair(ctx context.Context, user *domain.User, userAgent string) (*TokenPair, error) {
	accessToken, err := s.generateAccessToken(user)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	refreshToken, err := s.generateAndStoreRefreshToken(ctx, user.ID, userAgent)
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(s.jwtConfig.AccessTokenExpiry.Seconds()),
	}, nil
}

// RefreshAccessToken exchanges a refresh token for a new pair. The presented
// token is revoked, so each refresh token works once.
func (s *TokenService) RefreshAccessToken(ctx context.Context, refreshToken, userAgent string) (*TokenPair, error) {
	tokenHash := hashToken(refreshToken)

	stored, err := s.refreshTokenRepo.FindByHash(ctx, tokenHash)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrInvalidRefreshToken
		}
		return nil, fmt.Errorf("failed to find refresh token: %w", err)
	}
	if !stored.IsValid(s.now()) {
		return nil, ErrInvalidRefreshToken
	}

	user, err := s.userRepo.GetByID(ctx, stored.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if err := s.refreshTokenRepo.RevokeByHash(ctx, tokenHash); err != nil {
		return nil, fmt.Errorf("failed to revoke old token: %w", err)
	}

	return s.GenerateTokenPair(ctx, user, userAgent)
}

// RevokeRefreshToken invalidates a single refresh token (logout)
func (s *TokenService) RevokeRefreshToken(ctx context.Context, refreshToken string) error {
	return s.refreshTokenRepo.RevokeByHash(ctx, hashToken(refreshToken))
}

func (s *TokenService) RevokeAllUserTokens(ctx context.Context, userID string) error {
	return s.refreshTokenRepo.RevokeAllByUserID(ctx, userID)
}

func (s *TokenService) generateAccessToken(user *domain.User) (string, error) {
	now := s.now()
	claims := domain.PlatePalClaims{
		UserID: user.ID,
		Email:  user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			ExpiresAt: jwt.NewNumericDate(now.Add(s.jwtConfig.AccessTokenExpiry)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.jwtConfig.Secret))
}

// generateAndStoreRefreshToken creates a random token and persists only its hash
func (s *TokenService) generateAndStoreRefreshToken(ctx context.Context, userID, userAgent string) (string, error) {
	tokenBytes := make([]byte, 32)
	if _, err := rand.Read(tokenBytes); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}
	rawToken := hex.EncodeToString(tokenBytes)

	refreshToken := &domain.RefreshToken{
		UserID:    userID,
		TokenHash: hashToken(rawToken),
		ExpiresAt: s.now().Add(s.jwtConfig.RefreshTokenExpiry),
		UserAgent: userAgent,
	}
	if err := s.refreshTokenRepo.Create(ctx, refreshToken); err != nil {
		return "", fmt.Errorf("failed to store refresh token: %w", err)
	}

	return rawToken, nil
}

func hashToken(token string) string {
	hash := sha256.Sum256([]byte(token))
	return hex.EncodeToString(hash[:])
}

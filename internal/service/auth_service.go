package service

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/ascmontjoie/club-portal-backend/internal/config"
	"github.com/ascmontjoie/club-portal-backend/internal/db"
	"github.com/ascmontjoie/club-portal-backend/internal/repository"
	"github.com/ascmontjoie/club-portal-backend/internal/types"
)

// ============================================
// Auth Service
// ============================================

type AuthService interface {
	Register(ctx context.Context, fullName, email, password string) (*repository.Profile, string, string, error)
	Login(ctx context.Context, email, password string) (*repository.Profile, string, string, error)
	RefreshToken(ctx context.Context, refreshToken string) (string, string, error)
	Logout(ctx context.Context, refreshToken string) error
	ValidateToken(token string) (*jwt.Token, error)
	GetUserIDFromToken(token *jwt.Token) (string, error)
}

type authService struct {
	cfg         *config.Config
	profileRepo repository.ProfileRepository
	redis       *db.RedisDB
}

func NewAuthService(cfg *config.Config, profileRepo repository.ProfileRepository, redis *db.RedisDB) AuthService {
	return &authService{cfg: cfg, profileRepo: profileRepo, redis: redis}
}

// Register creates a viewer profile. Roles are only ever raised by an
// admin afterwards; self-registration never grants privilege.
func (s *authService) Register(ctx context.Context, fullName, email, password string) (*repository.Profile, string, string, error) {
	existing, _ := s.profileRepo.FindByEmail(ctx, email)
	if existing != nil {
		return nil, "", "", ErrUserExists
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", "", fmt.Errorf("failed to hash password: %w", err)
	}

	profile := &repository.Profile{
		Email:    email,
		Password: string(hashedPassword),
		FullName: fullName,
		Role:     types.RoleViewer,
		IsActive: true,
	}
	if err := s.profileRepo.Create(ctx, profile); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, "", "", ErrUserExists
		}
		return nil, "", "", fmt.Errorf("failed to create profile: %w", err)
	}

	accessToken, refreshToken, err := s.generateTokens(ctx, profile.ID)
	if err != nil {
		return nil, "", "", fmt.Errorf("failed to generate tokens: %w", err)
	}

	return profile, accessToken, refreshToken, nil
}

func (s *authService) Login(ctx context.Context, email, password string) (*repository.Profile, string, string, error) {
	profile, err := s.profileRepo.FindByEmail(ctx, email)
	if err != nil || profile == nil {
		return nil, "", "", ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(profile.Password), []byte(password)); err != nil {
		return nil, "", "", ErrInvalidCredentials
	}

	if !profile.IsActive {
		return nil, "", "", ErrSuspended
	}

	accessToken, refreshToken, err := s.generateTokens(ctx, profile.ID)
	if err != nil {
		return nil, "", "", fmt.Errorf("failed to generate tokens: %w", err)
	}

	return profile, accessToken, refreshToken, nil
}

func (s *authService) RefreshToken(ctx context.Context, refreshToken string) (string, string, error) {
	if s.redis == nil {
		return "", "", ErrInvalidToken
	}

	userID, err := s.redis.GetRefreshToken(ctx, refreshToken)
	if err != nil || userID == "" {
		return "", "", ErrInvalidToken
	}

	profile, err := s.profileRepo.FindByID(ctx, userID)
	if err != nil || profile == nil {
		return "", "", ErrInvalidToken
	}
	if !profile.IsActive {
		s.redis.DeleteRefreshToken(ctx, refreshToken)
		return "", "", ErrSuspended
	}

	// Rotate: the old token dies with the exchange.
	s.redis.DeleteRefreshToken(ctx, refreshToken)

	accessToken, newRefreshToken, err := s.generateTokens(ctx, userID)
	if err != nil {
		return "", "", fmt.Errorf("failed to generate tokens: %w", err)
	}

	return accessToken, newRefreshToken, nil
}

func (s *authService) Logout(ctx context.Context, refreshToken string) error {
	if s.redis == nil {
		return nil
	}
	return s.redis.DeleteRefreshToken(ctx, refreshToken)
}

func (s *authService) ValidateToken(tokenString string) (*jwt.Token, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil {
		return nil, err
	}
	return token, nil
}

func (s *authService) GetUserIDFromToken(token *jwt.Token) (string, error) {
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", ErrInvalidToken
	}
	userID, ok := claims["sub"].(string)
	if !ok {
		return "", ErrInvalidToken
	}
	return userID, nil
}

func (s *authService) generateTokens(ctx context.Context, userID string) (string, string, error) {
	accessToken := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": userID,
		"exp": time.Now().Add(time.Hour * time.Duration(s.cfg.JWTExpiry)).Unix(),
		"iat": time.Now().Unix(),
	})

	accessTokenString, err := accessToken.SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return "", "", err
	}

	refreshTokenString := uuid.New().String()

	if s.redis != nil {
		expiry := time.Hour * 24 * time.Duration(s.cfg.RefreshExpiry)
		if err := s.redis.SetRefreshToken(ctx, refreshTokenString, userID, expiry); err != nil {
			return "", "", err
		}
	}

	return accessTokenString, refreshTokenString, nil
}

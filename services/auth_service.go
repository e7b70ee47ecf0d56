// Package services holds the business logic. Handlers call services;
// services call repositories and publish WebSocket events.
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/akinalp/forum/models"
	"github.com/akinalp/forum/pkg"
	"github.com/akinalp/forum/repository"
)

// DefaultBcryptCost is the production hashing cost. Tests pass
// bcrypt.MinCost.
const DefaultBcryptCost = 12

// ErrCaptchaFailed is returned by Register when the challenge answer is
// wrong, expired or already used.
var ErrCaptchaFailed = fmt.Errorf("%w: captcha failed", pkg.ErrBadRequest)

type AuthService interface {
	Register(ctx context.Context, req *models.CreateUserRequest) (*AuthTokens, error)
	Login(ctx context.Context, req *models.LoginRequest) (*AuthTokens, error)
	ValidateAccessToken(tokenString string) (*models.TokenClaims, error)
	GetUser(ctx context.Context, userID int64) (*models.User, error)
}

type AuthTokens struct {
	AccessToken string      `json:"access_token"`
	ExpiresAt   time.Time   `json:"expires_at"`
	User        models.User `json:"user"`
}

// CaptchaVerifier is the part of CaptchaService registration needs.
type CaptchaVerifier interface {
	Verify(id, answer string) bool
}

type authService struct {
	userRepo   repository.UserRepository
	captcha    CaptchaVerifier
	jwtSecret  []byte
	accessExp  time.Duration
	bcryptCost int
}

func NewAuthService(
	userRepo repository.UserRepository,
	captcha CaptchaVerifier,
	jwtSecret string,
	accessExp time.Duration,
	bcryptCost int,
) AuthService {
	return &authService{
		userRepo:   userRepo,
		captcha:    captcha,
		jwtSecret:  []byte(jwtSecret),
		accessExp:  accessExp,
		bcryptCost: bcryptCost,
	}
}

func (s *authService) Register(ctx context.Context, req *models.CreateUserRequest) (*AuthTokens, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", pkg.ErrBadRequest, err.Error())
	}

	if !s.captcha.Verify(req.CaptchaID, req.CaptchaAnswer) {
		return nil, ErrCaptchaFailed
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	var displayName *string
	if req.DisplayName != "" {
		displayName = &req.DisplayName
	}

	user := &models.User{
		Username:     req.Username,
		DisplayName:  displayName,
		PasswordHash: string(hash),
		Status:       models.UserStatusOffline,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	return s.generateTokens(user)
}

// Login checks the password and records the login for the activity
// rankings.
func (s *authService) Login(ctx context.Context, req *models.LoginRequest) (*AuthTokens, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", pkg.ErrBadRequest, err.Error())
	}

	user, err := s.userRepo.GetByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, pkg.ErrNotFound) {
			return nil, fmt.Errorf("%w: invalid username or password", pkg.ErrUnauthorized)
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, fmt.Errorf("%w: invalid username or password", pkg.ErrUnauthorized)
	}

	if err := s.userRepo.RecordLogin(ctx, user.ID); err != nil {
		return nil, fmt.Errorf("failed to record login: %w", err)
	}
	user.LoginCount++
	now := time.Now()
	user.LastLoginAt = &now

	return s.generateTokens(user)
}

func (s *authService) ValidateAccessToken(tokenString string) (*models.TokenClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &models.TokenClaims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: invalid token", pkg.ErrUnauthorized)
	}

	claims, ok := token.Claims.(*models.TokenClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("%w: invalid token claims", pkg.ErrUnauthorized)
	}

	return claims, nil
}

func (s *authService) GetUser(ctx context.Context, userID int64) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	user.PasswordHash = ""
	return user, nil
}

func (s *authService) generateTokens(user *models.User) (*AuthTokens, error) {
	now := time.Now()
	expiresAt := now.Add(s.accessExp)

	claims := &models.TokenClaims{
		UserID:      user.ID,
		Username:    user.Username,
		IsModerator: user.IsModerator,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    "forum",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to sign access token: %w", err)
	}

	user.PasswordHash = ""

	return &AuthTokens{
		AccessToken: signed,
		ExpiresAt:   expiresAt,
		User:        *user,
	}, nil
}

// AngelaMos | 2026
// service.go

package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/buttuura/getcash/internal/core"
	"github.com/buttuura/getcash/internal/middleware"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUsernameExists     = errors.New("username already exists")
	ErrPhoneExists        = errors.New("phone already registered")
)

type UserInfo struct {
	ID           int64
	Username     string
	Phone        string
	PasswordHash string
	IsAdmin      bool
	CreatedAt    time.Time
}

func (u *UserInfo) Role() string {
	if u.IsAdmin {
		return middleware.RoleAdmin
	}
	return "user"
}

type UserProvider interface {
	GetByUsername(ctx context.Context, username string) (*UserInfo, error)
	Create(
		ctx context.Context,
		username, passwordHash, phone string,
	) (*UserInfo, error)
}

type Service struct {
	jwt          *JWTManager
	userProvider UserProvider
	blacklist    Blacklist
}

func NewService(
	jwt *JWTManager,
	userProvider UserProvider,
	blacklist Blacklist,
) *Service {
	return &Service{
		jwt:          jwt,
		userProvider: userProvider,
		blacklist:    blacklist,
	}
}

func (s *Service) Register(
	ctx context.Context,
	req RegisterRequest,
) (*RegisterResponse, error) {
	passwordHash, err := core.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.userProvider.Create(ctx, req.Username, passwordHash, req.Phone)
	if err != nil {
		switch {
		case errors.Is(err, core.ErrPhoneTaken):
			return nil, ErrPhoneExists
		case errors.Is(err, core.ErrDuplicateKey):
			return nil, ErrUsernameExists
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	slog.InfoContext(ctx, "user registered", "user_id", user.ID, "username", user.Username)

	return &RegisterResponse{
		Success: true,
		Message: "Registration successful.",
		User: RegisteredUser{
			ID:       user.ID,
			Username: user.Username,
			Phone:    user.Phone,
			JoinDate: user.CreatedAt,
		},
	}, nil
}

func (s *Service) Login(
	ctx context.Context,
	req LoginRequest,
) (*LoginResponse, error) {
	user, err := s.userProvider.GetByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			//nolint:errcheck // timing attack prevention
			_, _ = core.VerifyPasswordTimingSafe(req.Password, nil)
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	valid, err := core.VerifyPasswordTimingSafe(req.Password, &user.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("verify password: %w", err)
	}

	if !valid {
		return nil, ErrInvalidCredentials
	}

	issued, err := s.jwt.CreateAccessToken(AccessTokenClaims{
		UserID:   user.ID,
		Username: user.Username,
		Role:     user.Role(),
	})
	if err != nil {
		return nil, fmt.Errorf("create access token: %w", err)
	}

	return &LoginResponse{
		Success:   true,
		Message:   "Login successful.",
		Token:     issued.Token,
		UserID:    user.ID,
		Username:  user.Username,
		IsAdmin:   user.IsAdmin,
		ExpiresAt: issued.ExpiresAt,
	}, nil
}

// Logout revokes the presented token. Other tokens held by the same user
// stay valid.
func (s *Service) Logout(
	ctx context.Context,
	claims *middleware.AccessTokenClaims,
) error {
	if claims == nil || claims.TokenID == "" {
		return fmt.Errorf("logout: %w", core.ErrUnauthorized)
	}

	if err := s.blacklist.Revoke(ctx, claims.TokenID, claims.ExpiresAt); err != nil {
		return fmt.Errorf("logout: %w", err)
	}

	return nil
}

// VerifyAccessToken satisfies middleware.TokenVerifier. A blacklist outage
// rejects the token rather than letting a revoked one through.
func (s *Service) VerifyAccessToken(
	ctx context.Context,
	token string,
) (*middleware.AccessTokenClaims, error) {
	claims, err := s.jwt.VerifyAccessToken(ctx, token)
	if err != nil {
		return nil, err
	}

	revoked, err := s.blacklist.IsRevoked(ctx, claims.TokenID)
	if err != nil {
		return nil, core.NewAppError(
			err,
			"authentication temporarily unavailable",
			http.StatusServiceUnavailable,
			"AUTH_UNAVAILABLE",
		)
	}

	if revoked {
		return nil, fmt.Errorf("verify token: %w", core.ErrTokenRevoked)
	}

	return claims, nil
}

var _ middleware.TokenVerifier = (*Service)(nil)

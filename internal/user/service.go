// AngelaMos | 2026
// service.go

package user

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/buttuura/getcash/internal/auth"
	"github.com/buttuura/getcash/internal/config"
	"github.com/buttuura/getcash/internal/core"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) GetByUsername(
	ctx context.Context,
	username string,
) (*auth.UserInfo, error) {
	user, err := s.repo.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		return nil, err
	}

	return toUserInfo(user), nil
}

func (s *Service) Create(
	ctx context.Context,
	username, passwordHash, phone string,
) (*auth.UserInfo, error) {
	user := &User{
		Username:     strings.TrimSpace(username),
		PasswordHash: passwordHash,
		Phone:        strings.TrimSpace(phone),
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}

	return toUserInfo(user), nil
}

// UserExists lets the ledger check ownership without importing this package.
func (s *Service) UserExists(ctx context.Context, id int64) (bool, error) {
	return s.repo.Exists(ctx, id)
}

func (s *Service) GetMe(ctx context.Context, userID int64) (*User, error) {
	if userID == 0 {
		return nil, fmt.Errorf("get me: %w", core.ErrUnauthorized)
	}

	return s.repo.GetByID(ctx, userID)
}

func (s *Service) ListUsers(
	ctx context.Context,
	params ListUsersParams,
) ([]User, int, error) {
	return s.repo.List(ctx, params)
}

// EnsureAdmin creates the configured admin account, or promotes an existing
// account with that username. Running it again changes nothing, and an
// existing password is never overwritten.
func (s *Service) EnsureAdmin(ctx context.Context, cfg config.AdminConfig) error {
	if cfg.Username == "" {
		return nil
	}

	existing, err := s.repo.GetByUsername(ctx, cfg.Username)
	switch {
	case err == nil:
		if existing.IsAdmin {
			return nil
		}
		if err := s.repo.PromoteToAdmin(ctx, existing.ID); err != nil {
			return fmt.Errorf("ensure admin: %w", err)
		}
		slog.Info("admin account promoted", "user_id", existing.ID, "username", existing.Username)
		return nil
	case !errors.Is(err, core.ErrNotFound):
		return fmt.Errorf("ensure admin: %w", err)
	}

	hash, err := core.HashPassword(cfg.Password)
	if err != nil {
		return fmt.Errorf("ensure admin: %w", err)
	}

	admin := &User{
		Username:     cfg.Username,
		PasswordHash: hash,
		Phone:        cfg.Phone,
		IsAdmin:      true,
	}

	if err := s.repo.Create(ctx, admin); err != nil {
		if errors.Is(err, core.ErrDuplicateKey) && !errors.Is(err, core.ErrPhoneTaken) {
			return nil
		}
		return fmt.Errorf("ensure admin: %w", err)
	}

	slog.Info("admin account seeded", "user_id", admin.ID, "username", admin.Username)
	return nil
}

func toUserInfo(u *User) *auth.UserInfo {
	return &auth.UserInfo{
		ID:           u.ID,
		Username:     u.Username,
		Phone:        u.Phone,
		PasswordHash: u.PasswordHash,
		IsAdmin:      u.IsAdmin,
		CreatedAt:    u.CreatedAt,
	}
}

var _ auth.UserProvider = (*Service)(nil)

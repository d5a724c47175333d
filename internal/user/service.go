// AngelaMos | 2026
// service.go

package user

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/carterperez-dev/jeddrive/internal/auth"
	"github.com/carterperez-dev/jeddrive/internal/core"
	"github.com/carterperez-dev/jeddrive/internal/domain"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) GetByID(
	ctx context.Context,
	id string,
) (*auth.UserInfo, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	return toUserInfo(user), nil
}

func (s *Service) GetByIdentifier(
	ctx context.Context,
	identifier string,
) (*auth.UserInfo, error) {
	user, err := s.repo.GetByIdentifier(ctx, identifier)
	if err != nil {
		return nil, err
	}

	return toUserInfo(user), nil
}

func (s *Service) Create(
	ctx context.Context,
	in auth.NewUser,
) (*auth.UserInfo, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	phone := strings.TrimSpace(in.Phone)

	exists, err := s.repo.ExistsByEmailOrPhone(ctx, email, phone)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("create user: %w", core.ErrDuplicateKey)
	}

	user := domain.User{
		ID:           uuid.New().String(),
		Name:         in.Name,
		Phone:        phone,
		Email:        email,
		Role:         domain.RoleUser,
		PasswordHash: in.PasswordHash,
		CreatedAt:    time.Now().UTC(),
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}

	return toUserInfo(&user), nil
}

func (s *Service) UpdatePassword(
	ctx context.Context,
	userID, passwordHash string,
) error {
	_, err := s.repo.Update(ctx, userID, domain.UserPatch{PasswordHash: &passwordHash})
	return err
}

// SetCurrentUser records the last signed-in user. An empty id clears it.
func (s *Service) SetCurrentUser(ctx context.Context, userID string) error {
	if userID == "" {
		return s.repo.SetCurrent(ctx, nil)
	}

	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	user.PasswordHash = ""

	return s.repo.SetCurrent(ctx, user)
}

func (s *Service) GetUser(ctx context.Context, id string) (*domain.User, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) UpdateUser(
	ctx context.Context,
	id string,
	req UpdateUserRequest,
) (*domain.User, error) {
	return s.update(ctx, id, req.patch())
}

func (s *Service) UpdateUserRole(
	ctx context.Context,
	id, role string,
) (*domain.User, error) {
	r := domain.Role(role)
	if !r.Valid() {
		return nil, fmt.Errorf(
			"update role: invalid role %q: %w",
			role,
			core.ErrInvalidInput,
		)
	}

	return s.repo.Update(ctx, id, domain.UserPatch{Role: &r})
}

func (s *Service) ListUsers(
	ctx context.Context,
	params ListUsersParams,
) ([]domain.User, int, error) {
	return s.repo.List(ctx, params)
}

func (s *Service) GetMe(ctx context.Context, userID string) (*domain.User, error) {
	if userID == "" {
		return nil, fmt.Errorf("get me: %w", core.ErrUnauthorized)
	}

	return s.repo.GetByID(ctx, userID)
}

func (s *Service) UpdateMe(
	ctx context.Context,
	userID string,
	req UpdateMeRequest,
) (*domain.User, error) {
	if userID == "" {
		return nil, fmt.Errorf("update me: %w", core.ErrUnauthorized)
	}

	return s.update(ctx, userID, req.patch())
}

func (s *Service) update(
	ctx context.Context,
	id string,
	patch domain.UserPatch,
) (*domain.User, error) {
	if patch.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*patch.Email))
		patch.Email = &email
	}

	if err := s.ensureUnique(ctx, id, patch); err != nil {
		return nil, err
	}

	return s.repo.Update(ctx, id, patch)
}

func (s *Service) ensureUnique(
	ctx context.Context,
	id string,
	patch domain.UserPatch,
) error {
	for _, identifier := range []*string{patch.Email, patch.Phone} {
		if identifier == nil || *identifier == "" {
			continue
		}
		other, err := s.repo.GetByIdentifier(ctx, *identifier)
		if err == nil && other.ID != id {
			return fmt.Errorf("update user: %w", core.ErrDuplicateKey)
		}
	}
	return nil
}

func toUserInfo(u *domain.User) *auth.UserInfo {
	return &auth.UserInfo{
		ID:           u.ID,
		Name:         u.Name,
		Email:        u.Email,
		Phone:        u.Phone,
		PasswordHash: u.PasswordHash,
		Role:         string(u.Role),
		IsPremium:    u.IsPremium,
		CreatedAt:    u.CreatedAt,
	}
}

var _ auth.UserProvider = (*Service)(nil)

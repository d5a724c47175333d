// AngelaMos | 2026
// repository.go

package user

import (
	"context"
	"fmt"
	"strings"

	"github.com/carterperez-dev/jeddrive/internal/core"
	"github.com/carterperez-dev/jeddrive/internal/domain"
	"github.com/carterperez-dev/jeddrive/internal/store"
)

type Repository interface {
	Create(ctx context.Context, user domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByIdentifier(ctx context.Context, identifier string) (*domain.User, error)
	Update(ctx context.Context, id string, patch domain.UserPatch) (*domain.User, error)
	SetCurrent(ctx context.Context, user *domain.User) error
	List(ctx context.Context, params ListUsersParams) ([]domain.User, int, error)
	ExistsByEmailOrPhone(ctx context.Context, email, phone string) (bool, error)
}

type repository struct {
	store *store.Store
}

func NewRepository(s *store.Store) Repository {
	return &repository{store: s}
}

func (r *repository) Create(ctx context.Context, user domain.User) error {
	if _, err := r.store.Dispatch(ctx, store.AddUser{User: user}); err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (r *repository) GetByID(_ context.Context, id string) (*domain.User, error) {
	state := r.store.Snapshot()
	u, ok := state.FindUser(id)
	if !ok {
		return nil, fmt.Errorf("get user %s: %w", id, core.ErrNotFound)
	}
	return &u, nil
}

func (r *repository) GetByIdentifier(
	_ context.Context,
	identifier string,
) (*domain.User, error) {
	state := r.store.Snapshot()
	u, ok := state.FindUserBy(identifier)
	if !ok {
		return nil, fmt.Errorf("get user by identifier: %w", core.ErrNotFound)
	}
	return &u, nil
}

func (r *repository) Update(
	ctx context.Context,
	id string,
	patch domain.UserPatch,
) (*domain.User, error) {
	eff, err := r.store.Dispatch(ctx, store.UpdateUser{ID: id, Patch: patch})
	if err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	if !eff.Changed {
		return nil, fmt.Errorf("update user %s: %w", id, core.ErrNotFound)
	}
	return r.GetByID(ctx, id)
}

func (r *repository) SetCurrent(ctx context.Context, user *domain.User) error {
	if _, err := r.store.Dispatch(ctx, store.SetUser{User: user}); err != nil {
		return fmt.Errorf("set current user: %w", err)
	}
	return nil
}

func (r *repository) List(
	_ context.Context,
	params ListUsersParams,
) ([]domain.User, int, error) {
	params.Normalize()
	state := r.store.Snapshot()

	search := strings.ToLower(strings.TrimSpace(params.Search))
	matched := make([]domain.User, 0, len(state.Users))
	for _, u := range state.Users {
		if params.Role != "" && string(u.Role) != params.Role {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(u.Name), search) &&
			!strings.Contains(strings.ToLower(u.Email), search) &&
			!strings.Contains(u.Phone, search) {
			continue
		}
		matched = append(matched, u)
	}

	total := len(matched)
	start := min(params.Offset(), total)
	end := min(start+params.PageSize, total)

	return matched[start:end], total, nil
}

func (r *repository) ExistsByEmailOrPhone(
	_ context.Context,
	email, phone string,
) (bool, error) {
	state := r.store.Snapshot()
	for _, u := range state.Users {
		if email != "" && strings.EqualFold(u.Email, email) {
			return true, nil
		}
		if phone != "" && u.Phone == phone {
			return true, nil
		}
	}
	return false, nil
}

// AngelaMos | 2026
// repository.go

package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/carterperez-dev/jeddrive/internal/core"
	"github.com/carterperez-dev/jeddrive/internal/kv"
)

type Repository interface {
	Create(ctx context.Context, token *RefreshToken) error
	FindByHash(ctx context.Context, tokenHash string) (*RefreshToken, error)
	FindByID(ctx context.Context, userID, id string) (*RefreshToken, error)
	MarkAsUsed(ctx context.Context, userID, id, replacedByID string) error
	RevokeByID(ctx context.Context, userID, id string) error
	RevokeByFamilyID(ctx context.Context, userID, familyID string) error
	RevokeAllForUser(ctx context.Context, userID string) error
	GetActiveSessionsForUser(
		ctx context.Context,
		userID string,
	) ([]RefreshToken, error)

	SaveResetCode(ctx context.Context, identifier string, code ResetCode) error
	GetResetCode(ctx context.Context, identifier string) (*ResetCode, error)
	DeleteResetCode(ctx context.Context, identifier string) error
}

const (
	sessionsKeyPrefix = "auth:sessions:"
	tokenKeyPrefix    = "auth:refresh:"
	resetKeyPrefix    = "auth:reset:"
)

// repository keeps every session of a user under one key and a hash to user
// index next to it. Writes for one user are serialized by mu.
type repository struct {
	kv kv.Store
	mu sync.Mutex
}

func NewRepository(store kv.Store) Repository {
	return &repository{kv: store}
}

func (r *repository) Create(ctx context.Context, token *RefreshToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tokens, err := r.load(ctx, token.UserID)
	if err != nil {
		return fmt.Errorf("create refresh token: %w", err)
	}

	if token.CreatedAt.IsZero() {
		token.CreatedAt = time.Now()
	}
	tokens = append(pruneExpired(tokens), *token)

	raw, err := json.Marshal(tokens)
	if err != nil {
		return fmt.Errorf("encode sessions: %w", err)
	}

	err = r.kv.SetMulti(ctx, map[string][]byte{
		sessionsKeyPrefix + token.UserID: raw,
		tokenKeyPrefix + token.TokenHash: []byte(token.UserID),
	})
	if err != nil {
		return fmt.Errorf("create refresh token: %w", err)
	}

	return nil
}

func (r *repository) FindByHash(
	ctx context.Context,
	tokenHash string,
) (*RefreshToken, error) {
	userID, err := r.kv.Get(ctx, tokenKeyPrefix+tokenHash)
	if errors.Is(err, kv.ErrNotFound) {
		return nil, fmt.Errorf("find refresh token: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("find refresh token: %w", err)
	}

	tokens, err := r.load(ctx, string(userID))
	if err != nil {
		return nil, fmt.Errorf("find refresh token: %w", err)
	}

	for i := range tokens {
		if tokens[i].TokenHash == tokenHash {
			return &tokens[i], nil
		}
	}

	return nil, fmt.Errorf("find refresh token: %w", core.ErrNotFound)
}

func (r *repository) FindByID(
	ctx context.Context,
	userID, id string,
) (*RefreshToken, error) {
	tokens, err := r.load(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("find session: %w", err)
	}

	for i := range tokens {
		if tokens[i].ID == id {
			return &tokens[i], nil
		}
	}

	return nil, fmt.Errorf("find session: %w", core.ErrNotFound)
}

func (r *repository) MarkAsUsed(
	ctx context.Context,
	userID, id, replacedByID string,
) error {
	return r.mutate(ctx, userID, func(t *RefreshToken) bool {
		if t.ID != id {
			return false
		}
		t.MarkAsUsed(replacedByID)
		return true
	})
}

func (r *repository) RevokeByID(ctx context.Context, userID, id string) error {
	return r.mutate(ctx, userID, func(t *RefreshToken) bool {
		if t.ID != id {
			return false
		}
		t.Revoke()
		return true
	})
}

func (r *repository) RevokeByFamilyID(
	ctx context.Context,
	userID, familyID string,
) error {
	err := r.mutate(ctx, userID, func(t *RefreshToken) bool {
		if t.FamilyID != familyID {
			return false
		}
		t.Revoke()
		return true
	})
	if errors.Is(err, core.ErrNotFound) {
		return nil
	}
	return err
}

func (r *repository) RevokeAllForUser(ctx context.Context, userID string) error {
	err := r.mutate(ctx, userID, func(t *RefreshToken) bool {
		t.Revoke()
		return true
	})
	if errors.Is(err, core.ErrNotFound) {
		return nil
	}
	return err
}

func (r *repository) GetActiveSessionsForUser(
	ctx context.Context,
	userID string,
) ([]RefreshToken, error) {
	tokens, err := r.load(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get sessions: %w", err)
	}

	active := make([]RefreshToken, 0, len(tokens))
	for _, t := range tokens {
		if t.IsValid() {
			active = append(active, t)
		}
	}

	return active, nil
}

func (r *repository) SaveResetCode(
	ctx context.Context,
	identifier string,
	code ResetCode,
) error {
	raw, err := json.Marshal(code)
	if err != nil {
		return fmt.Errorf("encode reset code: %w", err)
	}

	if err := r.kv.Set(ctx, resetKeyPrefix+identifier, raw); err != nil {
		return fmt.Errorf("save reset code: %w", err)
	}
	return nil
}

func (r *repository) GetResetCode(
	ctx context.Context,
	identifier string,
) (*ResetCode, error) {
	raw, err := r.kv.Get(ctx, resetKeyPrefix+identifier)
	if errors.Is(err, kv.ErrNotFound) {
		return nil, fmt.Errorf("get reset code: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get reset code: %w", err)
	}

	var code ResetCode
	if err := json.Unmarshal(raw, &code); err != nil {
		return nil, fmt.Errorf("decode reset code: %w", err)
	}
	return &code, nil
}

func (r *repository) DeleteResetCode(ctx context.Context, identifier string) error {
	if err := r.kv.Delete(ctx, resetKeyPrefix+identifier); err != nil {
		return fmt.Errorf("delete reset code: %w", err)
	}
	return nil
}

func (r *repository) load(ctx context.Context, userID string) ([]RefreshToken, error) {
	raw, err := r.kv.Get(ctx, sessionsKeyPrefix+userID)
	if errors.Is(err, kv.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var tokens []RefreshToken
	if err := json.Unmarshal(raw, &tokens); err != nil {
		return nil, fmt.Errorf("decode sessions: %w", err)
	}
	return tokens, nil
}

func (r *repository) mutate(
	ctx context.Context,
	userID string,
	fn func(t *RefreshToken) bool,
) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tokens, err := r.load(ctx, userID)
	if err != nil {
		return err
	}

	touched := false
	for i := range tokens {
		if fn(&tokens[i]) {
			touched = true
		}
	}
	if !touched {
		return fmt.Errorf("update session: %w", core.ErrNotFound)
	}

	raw, err := json.Marshal(tokens)
	if err != nil {
		return fmt.Errorf("encode sessions: %w", err)
	}

	return r.kv.Set(ctx, sessionsKeyPrefix+userID, raw)
}

// pruneExpired drops sessions that can never be used again so the per-user
// list stays bounded.
func pruneExpired(tokens []RefreshToken) []RefreshToken {
	kept := tokens[:0]
	for _, t := range tokens {
		if !t.IsExpired() {
			kept = append(kept, t)
		}
	}
	return kept
}

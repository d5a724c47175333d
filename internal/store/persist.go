// AngelaMos | 2026
// persist.go

package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/carterperez-dev/jeddrive/internal/domain"
	"github.com/carterperez-dev/jeddrive/internal/kv"
)

// Slice names one independently persisted part of the state. The value is
// the persistence key.
type Slice string

const (
	SliceUser             Slice = "user"
	SliceUsers            Slice = "users"
	SliceProviders        Slice = "providers"
	SliceOrders           Slice = "orders"
	SliceCoupons          Slice = "coupons"
	SliceTheme            Slice = "theme"
	SliceLanguage         Slice = "language"
	SliceBannerURL        Slice = "banner_url"
	SliceTicker           Slice = "scrolling_ticker"
	SliceNotifications    Slice = "notifications"
	SliceProviderRequests Slice = "provider_requests"
)

var AllSlices = []Slice{
	SliceUser,
	SliceUsers,
	SliceProviders,
	SliceOrders,
	SliceCoupons,
	SliceTheme,
	SliceLanguage,
	SliceBannerURL,
	SliceTicker,
	SliceNotifications,
	SliceProviderRequests,
}

const (
	SchemaVersion    = 2
	schemaVersionKey = "schema_version"
)

var ErrUnsupportedSchema = errors.New("unsupported schema version")

func (s *State) value(slice Slice) any {
	switch slice {
	case SliceUser:
		return s.User
	case SliceUsers:
		return s.Users
	case SliceProviders:
		return s.Providers
	case SliceOrders:
		return s.Orders
	case SliceCoupons:
		return s.Coupons
	case SliceTheme:
		return s.Theme
	case SliceLanguage:
		return s.Language
	case SliceBannerURL:
		return s.BannerURL
	case SliceTicker:
		return s.Ticker
	case SliceNotifications:
		return s.Notifications
	case SliceProviderRequests:
		return s.ProviderRequests
	}
	return nil
}

func (s *State) target(slice Slice) any {
	switch slice {
	case SliceUser:
		return &s.User
	case SliceUsers:
		return &s.Users
	case SliceProviders:
		return &s.Providers
	case SliceOrders:
		return &s.Orders
	case SliceCoupons:
		return &s.Coupons
	case SliceTheme:
		return &s.Theme
	case SliceLanguage:
		return &s.Language
	case SliceBannerURL:
		return &s.BannerURL
	case SliceTicker:
		return &s.Ticker
	case SliceNotifications:
		return &s.Notifications
	case SliceProviderRequests:
		return &s.ProviderRequests
	}
	return nil
}

func encodeSlices(s State, slices []Slice) (map[string][]byte, error) {
	s.normalize()

	entries := make(map[string][]byte, len(slices))
	for _, slice := range slices {
		b, err := json.Marshal(s.value(slice))
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", slice, err)
		}
		entries[string(slice)] = b
	}
	return entries, nil
}

// normalize replaces nil collections with empty ones so they persist as
// JSON arrays.
func (s *State) normalize() {
	if s.Users == nil {
		s.Users = []domain.User{}
	}
	if s.Providers == nil {
		s.Providers = []domain.Provider{}
	}
	if s.Orders == nil {
		s.Orders = []domain.Order{}
	}
	if s.Coupons == nil {
		s.Coupons = []domain.Coupon{}
	}
	if s.ProviderRequests == nil {
		s.ProviderRequests = []domain.ProviderRequest{}
	}
	if s.Notifications == nil {
		s.Notifications = []domain.Notification{}
	}
}

type snapshot struct {
	state   State
	version int
	present map[Slice]bool
}

func (p *snapshot) empty() bool {
	return len(p.present) == 0
}

func readSnapshot(ctx context.Context, store kv.Store) (*snapshot, error) {
	snap := &snapshot{present: make(map[Slice]bool)}

	raw, err := store.Get(ctx, schemaVersionKey)
	switch {
	case errors.Is(err, kv.ErrNotFound):
	case err != nil:
		return nil, fmt.Errorf("read schema version: %w", err)
	default:
		if err := json.Unmarshal(raw, &snap.version); err != nil {
			return nil, fmt.Errorf("decode schema version: %w", err)
		}
	}

	for _, slice := range AllSlices {
		raw, err := store.Get(ctx, string(slice))
		if errors.Is(err, kv.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", slice, err)
		}
		if err := json.Unmarshal(raw, snap.state.target(slice)); err != nil {
			return nil, fmt.Errorf("decode %s: %w", slice, err)
		}
		snap.present[slice] = true
	}

	return snap, nil
}

func writeAll(ctx context.Context, store kv.Store, s State) error {
	entries, err := encodeSlices(s, AllSlices)
	if err != nil {
		return err
	}

	version, err := json.Marshal(SchemaVersion)
	if err != nil {
		return fmt.Errorf("encode schema version: %w", err)
	}
	entries[schemaVersionKey] = version

	if err := store.SetMulti(ctx, entries); err != nil {
		return fmt.Errorf("persist state: %w", err)
	}
	return nil
}

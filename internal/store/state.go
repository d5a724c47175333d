// AngelaMos | 2026
// state.go

package store

import (
	"github.com/carterperez-dev/jeddrive/internal/domain"
)

// State is the whole marketplace held by the store. Slices are replaced,
// never mutated in place, so a State value handed to a reader stays valid
// after later dispatches.
type State struct {
	User             *domain.User
	Users            []domain.User
	Providers        []domain.Provider
	Orders           []domain.Order
	Coupons          []domain.Coupon
	ProviderRequests []domain.ProviderRequest
	Notifications    []domain.Notification
	Theme            domain.Theme
	Language         domain.Language
	BannerURL        string
	Ticker           string
}

func (s State) FindUser(id string) (domain.User, bool) {
	i := indexOf(s.Users, func(u domain.User) bool { return u.ID == id })
	if i < 0 {
		return domain.User{}, false
	}
	return s.Users[i], true
}

func (s State) FindUserBy(identifier string) (domain.User, bool) {
	i := indexOf(s.Users, func(u domain.User) bool { return u.Matches(identifier) })
	if i < 0 {
		return domain.User{}, false
	}
	return s.Users[i], true
}

func (s State) FindProvider(id string) (domain.Provider, bool) {
	i := indexOf(s.Providers, func(p domain.Provider) bool { return p.ID == id })
	if i < 0 {
		return domain.Provider{}, false
	}
	return s.Providers[i], true
}

func (s State) ProviderForUser(userID string) (domain.Provider, bool) {
	i := indexOf(s.Providers, func(p domain.Provider) bool { return p.UserID == userID })
	if i < 0 {
		return domain.Provider{}, false
	}
	return s.Providers[i], true
}

func (s State) FindOrder(id string) (domain.Order, bool) {
	i := indexOf(s.Orders, func(o domain.Order) bool { return o.ID == id })
	if i < 0 {
		return domain.Order{}, false
	}
	return s.Orders[i], true
}

func (s State) FindCoupon(id string) (domain.Coupon, bool) {
	i := indexOf(s.Coupons, func(c domain.Coupon) bool { return c.ID == id })
	if i < 0 {
		return domain.Coupon{}, false
	}
	return s.Coupons[i], true
}

func (s State) FindProviderRequest(id string) (domain.ProviderRequest, bool) {
	i := indexOf(s.ProviderRequests, func(r domain.ProviderRequest) bool { return r.ID == id })
	if i < 0 {
		return domain.ProviderRequest{}, false
	}
	return s.ProviderRequests[i], true
}

func indexOf[T any](items []T, match func(T) bool) int {
	for i, item := range items {
		if match(item) {
			return i
		}
	}
	return -1
}

func replaceAt[T any](items []T, i int, v T) []T {
	out := make([]T, len(items))
	copy(out, items)
	out[i] = v
	return out
}

func removeAt[T any](items []T, i int) []T {
	out := make([]T, 0, len(items)-1)
	out = append(out, items[:i]...)
	return append(out, items[i+1:]...)
}

func appendCopy[T any](items []T, v T) []T {
	out := make([]T, 0, len(items)+1)
	out = append(out, items...)
	return append(out, v)
}

func prependCopy[T any](items []T, v T) []T {
	out := make([]T, 0, len(items)+1)
	out = append(out, v)
	return append(out, items...)
}

// AngelaMos | 2026
// action.go

package store

import (
	"fmt"
	"time"

	"github.com/carterperez-dev/jeddrive/internal/domain"
)

type ActionKind string

const (
	KindSetUser                ActionKind = "set_user"
	KindAddUser                ActionKind = "add_user"
	KindUpdateUser             ActionKind = "update_user"
	KindSetTheme               ActionKind = "set_theme"
	KindSetLanguage            ActionKind = "set_language"
	KindSetBannerURL           ActionKind = "set_banner_url"
	KindSetTicker              ActionKind = "set_ticker"
	KindAddNotification        ActionKind = "add_notification"
	KindMarkNotificationsRead  ActionKind = "mark_notifications_read"
	KindAddProvider            ActionKind = "add_provider"
	KindUpdateProvider         ActionKind = "update_provider"
	KindDeleteProvider         ActionKind = "delete_provider"
	KindToggleOfflineMode      ActionKind = "toggle_offline_mode"
	KindToggleOnline           ActionKind = "toggle_online"
	KindAddOrder               ActionKind = "add_order"
	KindUpdateOrder            ActionKind = "update_order"
	KindTransitionOrder        ActionKind = "transition_order"
	KindCompleteOrder          ActionKind = "complete_order"
	KindSyncOfflineOrders      ActionKind = "sync_offline_orders"
	KindSubmitReview           ActionKind = "submit_review"
	KindAddCoupon              ActionKind = "add_coupon"
	KindToggleCoupon           ActionKind = "toggle_coupon"
	KindDeleteCoupon           ActionKind = "delete_coupon"
	KindAddProviderRequest     ActionKind = "add_provider_request"
	KindApproveProviderRequest ActionKind = "approve_provider_request"
	KindRejectProviderRequest  ActionKind = "reject_provider_request"
)

type Action interface {
	Kind() ActionKind
}

type (
	SetUser struct{ User *domain.User }
	AddUser struct{ User domain.User }

	UpdateUser struct {
		ID    string
		Patch domain.UserPatch
	}

	SetTheme              struct{ Theme domain.Theme }
	SetLanguage           struct{ Language domain.Language }
	SetBannerURL          struct{ URL string }
	SetTicker             struct{ Text string }
	AddNotification       struct{ Notification domain.Notification }
	MarkNotificationsRead struct{}

	AddProvider struct{ Provider domain.Provider }

	UpdateProvider struct {
		ID    string
		Patch domain.ProviderPatch
	}

	DeleteProvider    struct{ ID string }
	ToggleOfflineMode struct{ ProviderID string }
	ToggleOnline      struct{ ProviderID string }

	// AddOrder inserts an order. A non-empty CouponID redeems that coupon
	// in the same action; the coupon must still be active, unexpired at Now
	// and below its max uses.
	AddOrder struct {
		Order    domain.Order
		CouponID string
		Now      time.Time
	}

	// UpdateOrder merges a patch. A status change in the patch is held to
	// the same transition rules as TransitionOrder.
	UpdateOrder struct {
		ID    string
		Patch domain.OrderPatch
	}

	TransitionOrder struct {
		ID string
		To domain.OrderStatus
	}

	// CompleteOrder verifies the OTP and, for an online provider, credits
	// Fee to the provider's debt in the same step.
	CompleteOrder struct {
		ID  string
		OTP string
		Fee float64
	}

	// SyncOfflineOrders clears the pending flag on every order. A positive
	// SettleFee also credits that amount per cleared order to its provider.
	SyncOfflineOrders struct{ SettleFee float64 }

	SubmitReview struct {
		OrderID string
		Review  domain.Review
	}

	AddCoupon    struct{ Coupon domain.Coupon }
	ToggleCoupon struct{ ID string }
	DeleteCoupon struct{ ID string }

	AddProviderRequest struct{ Request domain.ProviderRequest }

	// ApproveProviderRequest removes the request and adds Provider. NewOwner
	// is appended to users when set; PromoteUserID gets the provider role.
	ApproveProviderRequest struct {
		ID            string
		Provider      domain.Provider
		NewOwner      *domain.User
		PromoteUserID string
	}

	RejectProviderRequest struct{ ID string }
)

func (SetUser) Kind() ActionKind                { return KindSetUser }
func (AddUser) Kind() ActionKind                { return KindAddUser }
func (UpdateUser) Kind() ActionKind             { return KindUpdateUser }
func (SetTheme) Kind() ActionKind               { return KindSetTheme }
func (SetLanguage) Kind() ActionKind            { return KindSetLanguage }
func (SetBannerURL) Kind() ActionKind           { return KindSetBannerURL }
func (SetTicker) Kind() ActionKind              { return KindSetTicker }
func (AddNotification) Kind() ActionKind        { return KindAddNotification }
func (MarkNotificationsRead) Kind() ActionKind  { return KindMarkNotificationsRead }
func (AddProvider) Kind() ActionKind            { return KindAddProvider }
func (UpdateProvider) Kind() ActionKind         { return KindUpdateProvider }
func (DeleteProvider) Kind() ActionKind         { return KindDeleteProvider }
func (ToggleOfflineMode) Kind() ActionKind      { return KindToggleOfflineMode }
func (ToggleOnline) Kind() ActionKind           { return KindToggleOnline }
func (AddOrder) Kind() ActionKind               { return KindAddOrder }
func (UpdateOrder) Kind() ActionKind            { return KindUpdateOrder }
func (TransitionOrder) Kind() ActionKind        { return KindTransitionOrder }
func (CompleteOrder) Kind() ActionKind          { return KindCompleteOrder }
func (SyncOfflineOrders) Kind() ActionKind      { return KindSyncOfflineOrders }
func (SubmitReview) Kind() ActionKind           { return KindSubmitReview }
func (AddCoupon) Kind() ActionKind              { return KindAddCoupon }
func (ToggleCoupon) Kind() ActionKind           { return KindToggleCoupon }
func (DeleteCoupon) Kind() ActionKind           { return KindDeleteCoupon }
func (AddProviderRequest) Kind() ActionKind     { return KindAddProviderRequest }
func (ApproveProviderRequest) Kind() ActionKind { return KindApproveProviderRequest }
func (RejectProviderRequest) Kind() ActionKind  { return KindRejectProviderRequest }

// Effect describes what a reduction did. Changed is false when the action
// targeted an id that does not exist; the state is then returned as-is.
type Effect struct {
	Changed bool
	Slices  []Slice
}

func changed(slices ...Slice) Effect {
	return Effect{Changed: true, Slices: slices}
}

// Reduce applies a to s and returns the next state. It never mutates s.
//
//nolint:gocyclo,funlen // one case per action kind
func Reduce(s State, a Action) (State, Effect, error) {
	switch a := a.(type) {
	case SetUser:
		if a.User == nil {
			s.User = nil
		} else {
			u := *a.User
			s.User = &u
		}
		return s, changed(SliceUser), nil

	case AddUser:
		s.Users = appendCopy(s.Users, a.User)
		return s, changed(SliceUsers), nil

	case UpdateUser:
		i := indexOf(s.Users, func(u domain.User) bool { return u.ID == a.ID })
		if i < 0 {
			return s, Effect{}, nil
		}
		updated := a.Patch.Apply(s.Users[i])
		s.Users = replaceAt(s.Users, i, updated)
		if s.User != nil && s.User.ID == a.ID {
			current := updated
			current.PasswordHash = ""
			s.User = &current
			return s, changed(SliceUsers, SliceUser), nil
		}
		return s, changed(SliceUsers), nil

	case SetTheme:
		s.Theme = a.Theme
		return s, changed(SliceTheme), nil

	case SetLanguage:
		s.Language = a.Language
		return s, changed(SliceLanguage), nil

	case SetBannerURL:
		s.BannerURL = a.URL
		return s, changed(SliceBannerURL), nil

	case SetTicker:
		s.Ticker = a.Text
		return s, changed(SliceTicker), nil

	case AddNotification:
		n := a.Notification
		if len(s.Notifications) > 0 && n.ID <= s.Notifications[0].ID {
			n.ID = s.Notifications[0].ID + 1
		}
		s.Notifications = prependCopy(s.Notifications, n)
		return s, changed(SliceNotifications), nil

	case MarkNotificationsRead:
		out := make([]domain.Notification, len(s.Notifications))
		for i, n := range s.Notifications {
			n.Status = domain.NotificationRead
			out[i] = n
		}
		s.Notifications = out
		return s, changed(SliceNotifications), nil

	case AddProvider:
		s.Providers = appendCopy(s.Providers, a.Provider)
		return s, changed(SliceProviders), nil

	case UpdateProvider:
		i := indexOf(s.Providers, func(p domain.Provider) bool { return p.ID == a.ID })
		if i < 0 {
			return s, Effect{}, nil
		}
		s.Providers = replaceAt(s.Providers, i, a.Patch.Apply(s.Providers[i]))
		return s, changed(SliceProviders), nil

	case DeleteProvider:
		i := indexOf(s.Providers, func(p domain.Provider) bool { return p.ID == a.ID })
		if i < 0 {
			return s, Effect{}, nil
		}
		s.Providers = removeAt(s.Providers, i)
		return s, changed(SliceProviders), nil

	case ToggleOfflineMode:
		i := indexOf(s.Providers, func(p domain.Provider) bool { return p.ID == a.ProviderID })
		if i < 0 {
			return s, Effect{}, nil
		}
		p := s.Providers[i]
		if p.IsBlocked() {
			return s, Effect{}, domain.ErrProviderBlocked
		}
		switch p.Status {
		case domain.ProviderOffline:
			p.Status = domain.ProviderActive
		case domain.ProviderActive:
			p.Status = domain.ProviderOffline
		default:
			return s, Effect{}, fmt.Errorf(
				"offline mode from %s: %w", p.Status, domain.ErrInvalidTransition,
			)
		}
		s.Providers = replaceAt(s.Providers, i, p)
		return s, changed(SliceProviders), nil

	case ToggleOnline:
		i := indexOf(s.Providers, func(p domain.Provider) bool { return p.ID == a.ProviderID })
		if i < 0 {
			return s, Effect{}, nil
		}
		p := s.Providers[i]
		if p.IsBlocked() {
			return s, Effect{}, domain.ErrProviderBlocked
		}
		if p.Status != domain.ProviderActive {
			return s, Effect{}, fmt.Errorf(
				"availability from %s: %w", p.Status, domain.ErrInvalidTransition,
			)
		}
		p.IsOnline = !p.IsOnline
		s.Providers = replaceAt(s.Providers, i, p)
		return s, changed(SliceProviders), nil

	case AddOrder:
		if a.CouponID == "" {
			s.Orders = prependCopy(s.Orders, a.Order)
			return s, changed(SliceOrders), nil
		}
		i := indexOf(s.Coupons, func(c domain.Coupon) bool { return c.ID == a.CouponID })
		if i < 0 {
			return s, Effect{}, domain.ErrCouponInvalid
		}
		c := s.Coupons[i]
		if !c.IsActive || c.Expired(a.Now) || c.Exhausted() {
			return s, Effect{}, domain.ErrCouponInvalid
		}
		c.CurrentUses++
		s.Coupons = replaceAt(s.Coupons, i, c)
		s.Orders = prependCopy(s.Orders, a.Order)
		return s, changed(SliceOrders, SliceCoupons), nil

	case UpdateOrder:
		i := indexOf(s.Orders, func(o domain.Order) bool { return o.ID == a.ID })
		if i < 0 {
			return s, Effect{}, nil
		}
		cur := s.Orders[i]
		if a.Patch.Status != nil && *a.Patch.Status != cur.Status &&
			!cur.Status.CanTransition(*a.Patch.Status) {
			return s, Effect{}, transitionError(cur.Status, *a.Patch.Status)
		}
		s.Orders = replaceAt(s.Orders, i, a.Patch.Apply(cur))
		return s, changed(SliceOrders), nil

	case TransitionOrder:
		i := indexOf(s.Orders, func(o domain.Order) bool { return o.ID == a.ID })
		if i < 0 {
			return s, Effect{}, nil
		}
		o := s.Orders[i]
		if !o.Status.CanTransition(a.To) {
			return s, Effect{}, transitionError(o.Status, a.To)
		}
		o.Status = a.To
		s.Orders = replaceAt(s.Orders, i, o)
		return s, changed(SliceOrders), nil

	case CompleteOrder:
		return reduceCompleteOrder(s, a)

	case SyncOfflineOrders:
		return reduceSyncOfflineOrders(s, a)

	case SubmitReview:
		i := indexOf(s.Orders, func(o domain.Order) bool { return o.ID == a.OrderID })
		if i < 0 {
			return s, Effect{}, nil
		}
		o := s.Orders[i]
		if o.Status != domain.OrderCompleted {
			return s, Effect{}, domain.ErrReviewNotAllowed
		}
		r := a.Review
		o.Review = &r
		s.Orders = replaceAt(s.Orders, i, o)
		return s, changed(SliceOrders), nil

	case AddCoupon:
		s.Coupons = appendCopy(s.Coupons, a.Coupon)
		return s, changed(SliceCoupons), nil

	case ToggleCoupon:
		i := indexOf(s.Coupons, func(c domain.Coupon) bool { return c.ID == a.ID })
		if i < 0 {
			return s, Effect{}, nil
		}
		c := s.Coupons[i]
		c.IsActive = !c.IsActive
		s.Coupons = replaceAt(s.Coupons, i, c)
		return s, changed(SliceCoupons), nil

	case DeleteCoupon:
		i := indexOf(s.Coupons, func(c domain.Coupon) bool { return c.ID == a.ID })
		if i < 0 {
			return s, Effect{}, nil
		}
		s.Coupons = removeAt(s.Coupons, i)
		return s, changed(SliceCoupons), nil

	case AddProviderRequest:
		s.ProviderRequests = appendCopy(s.ProviderRequests, a.Request)
		return s, changed(SliceProviderRequests), nil

	case ApproveProviderRequest:
		return reduceApproveRequest(s, a)

	case RejectProviderRequest:
		i := indexOf(s.ProviderRequests, func(r domain.ProviderRequest) bool { return r.ID == a.ID })
		if i < 0 {
			return s, Effect{}, nil
		}
		if !s.ProviderRequests[i].Status.CanTransition(domain.RequestRejected) {
			return s, Effect{}, fmt.Errorf(
				"reject request %s: %w", a.ID, domain.ErrInvalidTransition,
			)
		}
		s.ProviderRequests = removeAt(s.ProviderRequests, i)
		return s, changed(SliceProviderRequests), nil
	}

	return s, Effect{}, fmt.Errorf("unknown action %T", a)
}

func reduceCompleteOrder(s State, a CompleteOrder) (State, Effect, error) {
	i := indexOf(s.Orders, func(o domain.Order) bool { return o.ID == a.ID })
	if i < 0 {
		return s, Effect{}, nil
	}
	o := s.Orders[i]

	if !o.Status.CanTransition(domain.OrderCompleted) {
		return s, Effect{}, transitionError(o.Status, domain.OrderCompleted)
	}

	pi := -1
	if o.ProviderID != nil {
		pi = indexOf(s.Providers, func(p domain.Provider) bool { return p.ID == *o.ProviderID })
	}
	if pi >= 0 && s.Providers[pi].IsBlocked() {
		return s, Effect{}, domain.ErrProviderBlocked
	}

	if !o.VerifyOTP(a.OTP) {
		return s, Effect{}, domain.ErrOTPMismatch
	}

	o.Status = domain.OrderCompleted

	if pi >= 0 && s.Providers[pi].IsOffline() {
		o.OfflineSyncPending = true
		s.Orders = replaceAt(s.Orders, i, o)
		return s, changed(SliceOrders), nil
	}

	s.Orders = replaceAt(s.Orders, i, o)
	if pi < 0 {
		return s, changed(SliceOrders), nil
	}

	p := s.Providers[pi]
	p.DebtBalance += a.Fee
	s.Providers = replaceAt(s.Providers, pi, p)
	return s, changed(SliceOrders, SliceProviders), nil
}

func reduceSyncOfflineOrders(s State, a SyncOfflineOrders) (State, Effect, error) {
	owed := make(map[string]float64)
	pending := 0

	orders := make([]domain.Order, len(s.Orders))
	for i, o := range s.Orders {
		if o.OfflineSyncPending {
			o.OfflineSyncPending = false
			pending++
			if a.SettleFee > 0 && o.ProviderID != nil {
				owed[*o.ProviderID] += a.SettleFee
			}
		}
		orders[i] = o
	}

	if pending == 0 {
		return s, Effect{}, nil
	}
	s.Orders = orders

	if len(owed) == 0 {
		return s, changed(SliceOrders), nil
	}

	providers := make([]domain.Provider, len(s.Providers))
	for i, p := range s.Providers {
		p.DebtBalance += owed[p.ID]
		providers[i] = p
	}
	s.Providers = providers
	return s, changed(SliceOrders, SliceProviders), nil
}

func reduceApproveRequest(s State, a ApproveProviderRequest) (State, Effect, error) {
	i := indexOf(s.ProviderRequests, func(r domain.ProviderRequest) bool { return r.ID == a.ID })
	if i < 0 {
		return s, Effect{}, nil
	}
	if !s.ProviderRequests[i].Status.CanTransition(domain.RequestApproved) {
		return s, Effect{}, fmt.Errorf(
			"approve request %s: %w", a.ID, domain.ErrInvalidTransition,
		)
	}

	s.ProviderRequests = removeAt(s.ProviderRequests, i)
	s.Providers = appendCopy(s.Providers, a.Provider)
	eff := changed(SliceProviderRequests, SliceProviders)

	if a.NewOwner != nil {
		s.Users = appendCopy(s.Users, *a.NewOwner)
		eff.Slices = append(eff.Slices, SliceUsers)
	} else if a.PromoteUserID != "" {
		ui := indexOf(s.Users, func(u domain.User) bool { return u.ID == a.PromoteUserID })
		if ui >= 0 {
			u := s.Users[ui]
			u.Role = domain.RoleProvider
			s.Users = replaceAt(s.Users, ui, u)
			eff.Slices = append(eff.Slices, SliceUsers)
		}
	}

	return s, eff, nil
}

func transitionError(from, to domain.OrderStatus) error {
	return fmt.Errorf("%s → %s: %w", from, to, domain.ErrInvalidTransition)
}

// AngelaMos | 2026
// order.go

package domain

import (
	"crypto/rand"
	"encoding/base32"
	"fmt"
	"strings"
	"time"
)

type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderAccepted  OrderStatus = "accepted"
	OrderInRoute   OrderStatus = "in_route"
	OrderStarted   OrderStatus = "started"
	OrderCompleted OrderStatus = "completed"
	OrderCancelled OrderStatus = "cancelled"
)

// orderRank orders the forward path. Cancelled sits outside it.
var orderRank = map[OrderStatus]int{
	OrderPending:   0,
	OrderAccepted:  1,
	OrderInRoute:   2,
	OrderStarted:   3,
	OrderCompleted: 4,
}

func (s OrderStatus) Valid() bool {
	if s == OrderCancelled {
		return true
	}
	_, ok := orderRank[s]
	return ok
}

func (s OrderStatus) IsTerminal() bool {
	return s == OrderCompleted || s == OrderCancelled
}

// IsActive reports the statuses a customer sees under the "active" filter.
func (s OrderStatus) IsActive() bool {
	switch s {
	case OrderPending, OrderAccepted, OrderInRoute, OrderStarted:
		return true
	}
	return false
}

// CanTransition allows any forward move along
// pending → accepted → in_route → started → completed, and cancellation from
// any non-terminal status. Terminal statuses accept nothing.
func (s OrderStatus) CanTransition(to OrderStatus) bool {
	if s.IsTerminal() || !to.Valid() {
		return false
	}
	if to == OrderCancelled {
		return true
	}
	return orderRank[to] > orderRank[s]
}

type OrderType string

const (
	OrderStationary OrderType = "Stationary"
	OrderMobile     OrderType = "Mobile"
)

type PaymentMethod string

const (
	PaymentBank   PaymentMethod = "bank"
	PaymentCenter PaymentMethod = "center"
	PaymentCash   PaymentMethod = "cash"
	PaymentOnline PaymentMethod = "online"
	PaymentWallet PaymentMethod = "wallet"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentBank, PaymentCenter, PaymentCash, PaymentOnline, PaymentWallet:
		return true
	}
	return false
}

type Location struct {
	Lat     float64 `json:"lat"`
	Lng     float64 `json:"lng"`
	Address string  `json:"address"`
}

type Review struct {
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"created_at"`
}

type Order struct {
	ID                 string            `json:"id"`
	UserID             string            `json:"user_id"`
	ProviderID         *string           `json:"provider_id"`
	ServiceID          string            `json:"service_id"`
	ServiceName        string            `json:"service_name"`
	Services           []ProviderService `json:"services"`
	Status             OrderStatus       `json:"status"`
	LocationGPS        Location          `json:"location_gps"`
	TotalPrice         float64           `json:"total_price"`
	UniqueOTP          string            `json:"unique_otp"`
	CreatedAt          time.Time         `json:"created_at"`
	Commission         float64           `json:"commission"`
	PaymentMethod      PaymentMethod     `json:"payment_method"`
	OrderType          OrderType         `json:"order_type"`
	CouponCode         string            `json:"coupon_code,omitempty"`
	Review             *Review           `json:"review,omitempty"`
	OfflineSyncPending bool              `json:"offline_sync_pending,omitempty"`
}

func (o *Order) BelongsToProvider(providerID string) bool {
	return o.ProviderID != nil && *o.ProviderID == providerID
}

// VerifyOTP compares typed input with the stored code, ignoring surrounding
// whitespace and letter case.
func (o *Order) VerifyOTP(input string) bool {
	want := strings.ToUpper(strings.TrimSpace(o.UniqueOTP))
	got := strings.ToUpper(strings.TrimSpace(input))
	return want != "" && got == want
}

type OrderPatch struct {
	Status             *OrderStatus
	ProviderID         *string
	LocationGPS        *Location
	TotalPrice         *float64
	Commission         *float64
	PaymentMethod      *PaymentMethod
	Review             *Review
	OfflineSyncPending *bool
}

func (p OrderPatch) Apply(o Order) Order {
	if p.Status != nil {
		o.Status = *p.Status
	}
	if p.ProviderID != nil {
		id := *p.ProviderID
		o.ProviderID = &id
	}
	if p.LocationGPS != nil {
		o.LocationGPS = *p.LocationGPS
	}
	if p.TotalPrice != nil {
		o.TotalPrice = *p.TotalPrice
	}
	if p.Commission != nil {
		o.Commission = *p.Commission
	}
	if p.PaymentMethod != nil {
		o.PaymentMethod = *p.PaymentMethod
	}
	if p.Review != nil {
		r := *p.Review
		o.Review = &r
	}
	if p.OfflineSyncPending != nil {
		o.OfflineSyncPending = *p.OfflineSyncPending
	}
	return o
}

const otpPrefix = "JD-"

// GenerateOTP returns a single-use completion code such as "JD-K3VQ7A".
func GenerateOTP() (string, error) {
	b := make([]byte, 5)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate otp: %w", err)
	}
	return otpPrefix + base32.StdEncoding.EncodeToString(b)[:6], nil
}

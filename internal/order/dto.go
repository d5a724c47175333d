// AngelaMos | 2026
// dto.go

package order

import (
	"github.com/carterperez-dev/jeddrive/internal/domain"
)

type LocationInput struct {
	Lat     float64 `json:"lat"     validate:"latitude"`
	Lng     float64 `json:"lng"     validate:"longitude"`
	Address string  `json:"address" validate:"max=200"`
}

type QuoteRequest struct {
	ProviderID string   `json:"provider_id" validate:"required,max=64"`
	ServiceIDs []string `json:"service_ids" validate:"required,min=1,max=10,dive,required"`
	CouponCode string   `json:"coupon_code" validate:"omitempty,max=32"`
}

type CheckoutRequest struct {
	QuoteRequest
	PaymentMethod string         `json:"payment_method" validate:"required,oneof=bank center cash online wallet"`
	Location      *LocationInput `json:"location"`
}

type QuoteResponse struct {
	ProviderID string                   `json:"provider_id"`
	Services   []domain.ProviderService `json:"services"`
	OrderType  domain.OrderType         `json:"order_type"`
	domain.Quote
}

type ReviewRequest struct {
	Rating  int    `json:"rating"  validate:"required,min=1,max=5"`
	Comment string `json:"comment" validate:"max=500"`
}

type StatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending accepted in_route started completed cancelled"`
}

type Filter string

const (
	FilterAll       Filter = "all"
	FilterActive    Filter = "active"
	FilterCompleted Filter = "completed"
)

func parseFilter(v string) Filter {
	switch Filter(v) {
	case FilterActive, FilterCompleted:
		return Filter(v)
	}
	return FilterAll
}

func (f Filter) match(o domain.Order) bool {
	switch f {
	case FilterActive:
		return o.Status.IsActive()
	case FilterCompleted:
		return o.Status == domain.OrderCompleted
	}
	return true
}

type ListParams struct {
	Page       int
	PageSize   int
	Status     string
	ProviderID string
	UserID     string
}

func (p *ListParams) Normalize() {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 {
		p.PageSize = 20
	}
	if p.PageSize > 100 {
		p.PageSize = 100
	}
}

func (p *ListParams) Offset() int {
	return (p.Page - 1) * p.PageSize
}

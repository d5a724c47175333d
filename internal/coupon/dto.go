// AngelaMos | 2026
// dto.go

package coupon

import (
	"github.com/carterperez-dev/jeddrive/internal/domain"
)

type ValidateRequest struct {
	Code     string  `json:"code"     validate:"required,max=32"`
	Subtotal float64 `json:"subtotal" validate:"gte=0"`
}

type ValidateResponse struct {
	Code          string            `json:"code"`
	Type          domain.CouponType `json:"type"`
	DiscountValue float64           `json:"discount_value"`
	Discount      float64           `json:"discount"`
}

type CreateCouponRequest struct {
	Code          string  `json:"code"           validate:"required,alphanum,min=3,max=32"`
	DiscountValue float64 `json:"discount_value" validate:"required,gt=0"`
	Type          string  `json:"type"           validate:"required,oneof=fixed percent"`
	ExpiryDate    string  `json:"expiry_date"    validate:"omitempty,datetime=2006-01-02"`
	MaxUses       int     `json:"max_uses"       validate:"gte=0"`
}

type CouponResponse struct {
	domain.Coupon
	Expired   bool `json:"expired"`
	Exhausted bool `json:"exhausted"`
}

// AngelaMos | 2026
// coupon.go

package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type CouponType string

const (
	CouponFixed   CouponType = "fixed"
	CouponPercent CouponType = "percent"
)

type Coupon struct {
	ID            string     `json:"id"`
	Code          string     `json:"code"`
	DiscountValue float64    `json:"discount_value"`
	Type          CouponType `json:"type"`
	IsActive      bool       `json:"is_active"`
	ExpiryDate    string     `json:"expiry_date"`
	MaxUses       int        `json:"max_uses"`
	CurrentUses   int        `json:"current_uses"`
}

const expiryLayout = "2006-01-02"

// Discount is the amount this coupon takes off subtotal. Percent coupons
// scale with the subtotal; fixed coupons are returned as-is and may exceed it.
func (c *Coupon) Discount(subtotal float64) float64 {
	if c.Type == CouponPercent {
		d := decimal.NewFromFloat(subtotal).
			Mul(decimal.NewFromFloat(c.DiscountValue)).
			Div(decimal.NewFromInt(100))
		return d.Round(2).InexactFloat64()
	}
	return c.DiscountValue
}

// Expired reports whether now is past the end of the expiry day. Coupons
// without a parseable expiry date never expire.
func (c *Coupon) Expired(now time.Time) bool {
	if c.ExpiryDate == "" {
		return false
	}
	day, err := time.Parse(expiryLayout, c.ExpiryDate)
	if err != nil {
		return false
	}
	return now.After(day.Add(24 * time.Hour))
}

func (c *Coupon) Exhausted() bool {
	return c.MaxUses > 0 && c.CurrentUses >= c.MaxUses
}

// FindCoupon matches code case-insensitively against active coupons only.
// With enforceLimits set, expired and exhausted coupons are skipped too.
func FindCoupon(coupons []Coupon, code string, enforceLimits bool, now time.Time) (Coupon, bool) {
	code = strings.TrimSpace(code)
	if code == "" {
		return Coupon{}, false
	}
	for _, c := range coupons {
		if !c.IsActive || !strings.EqualFold(c.Code, code) {
			continue
		}
		if enforceLimits && (c.Expired(now) || c.Exhausted()) {
			continue
		}
		return c, true
	}
	return Coupon{}, false
}

// AngelaMos | 2026
// pricing.go

package domain

import (
	"github.com/shopspring/decimal"
)

type PricingRules struct {
	PremiumDiscount float64
	CommissionRate  float64
}

type Quote struct {
	BasePrice       float64 `json:"base_price"`
	PremiumDiscount float64 `json:"premium_discount"`
	CouponDiscount  float64 `json:"coupon_discount"`
	Total           float64 `json:"total"`
	Commission      float64 `json:"commission"`
	CouponCode      string  `json:"coupon_code,omitempty"`
}

// PriceOrder sums the selected services, takes the premium and coupon
// discounts off the base price, and records the platform commission on the
// resulting total. The total never drops below zero.
func PriceOrder(
	services []ProviderService,
	premium bool,
	coupon *Coupon,
	rules PricingRules,
) Quote {
	base := decimal.Zero
	for _, s := range services {
		base = base.Add(decimal.NewFromFloat(s.Price))
	}

	premiumDiscount := decimal.Zero
	if premium {
		premiumDiscount = base.Mul(decimal.NewFromFloat(rules.PremiumDiscount))
	}

	couponDiscount := decimal.Zero
	code := ""
	if coupon != nil {
		couponDiscount = decimal.NewFromFloat(coupon.Discount(base.InexactFloat64()))
		code = coupon.Code
	}

	total := base.Sub(premiumDiscount).Sub(couponDiscount)
	if total.IsNegative() {
		total = decimal.Zero
	}

	commission := total.Mul(decimal.NewFromFloat(rules.CommissionRate))

	return Quote{
		BasePrice:       base.Round(2).InexactFloat64(),
		PremiumDiscount: premiumDiscount.Round(2).InexactFloat64(),
		CouponDiscount:  couponDiscount.Round(2).InexactFloat64(),
		Total:           total.Round(2).InexactFloat64(),
		Commission:      commission.Round(2).InexactFloat64(),
		CouponCode:      code,
	}
}

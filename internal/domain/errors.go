// AngelaMos | 2026
// errors.go

package domain

import (
	"errors"
)

var (
	ErrInvalidTransition  = errors.New("invalid status transition")
	ErrOTPMismatch        = errors.New("otp does not match")
	ErrProviderBlocked    = errors.New("provider debt has reached the credit limit")
	ErrProviderNotListed  = errors.New("provider is not accepting orders")
	ErrCouponInvalid      = errors.New("coupon code is not valid")
	ErrNoServicesSelected = errors.New("no services selected")
	ErrUnknownService     = errors.New("service not offered by provider")
	ErrReviewNotAllowed   = errors.New("only completed orders can be reviewed")
)

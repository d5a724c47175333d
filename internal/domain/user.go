// AngelaMos | 2026
// user.go

package domain

import (
	"strings"
	"time"
)

type Role string

const (
	RoleAdmin    Role = "admin"
	RoleUser     Role = "user"
	RoleProvider Role = "provider"
)

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleUser, RoleProvider:
		return true
	}
	return false
}

type User struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Phone         string    `json:"phone"`
	Email         string    `json:"email"`
	Role          Role      `json:"role"`
	IsPremium     bool      `json:"is_premium"`
	WalletBalance float64   `json:"wallet_balance"`
	Lat           *float64  `json:"lat,omitempty"`
	Lng           *float64  `json:"lng,omitempty"`
	Address       string    `json:"address,omitempty"`
	PasswordHash  string    `json:"password_hash,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Matches reports whether identifier is this user's email (case-insensitive)
// or phone number.
func (u *User) Matches(identifier string) bool {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return false
	}
	return strings.EqualFold(u.Email, identifier) || u.Phone == identifier
}

type UserPatch struct {
	Name          *string
	Phone         *string
	Email         *string
	Role          *Role
	IsPremium     *bool
	WalletBalance *float64
	Lat           *float64
	Lng           *float64
	Address       *string
	PasswordHash  *string
}

func (p UserPatch) Apply(u User) User {
	if p.Name != nil {
		u.Name = *p.Name
	}
	if p.Phone != nil {
		u.Phone = *p.Phone
	}
	if p.Email != nil {
		u.Email = *p.Email
	}
	if p.Role != nil {
		u.Role = *p.Role
	}
	if p.IsPremium != nil {
		u.IsPremium = *p.IsPremium
	}
	if p.WalletBalance != nil {
		u.WalletBalance = *p.WalletBalance
	}
	if p.Lat != nil {
		u.Lat = p.Lat
	}
	if p.Lng != nil {
		u.Lng = p.Lng
	}
	if p.Address != nil {
		u.Address = *p.Address
	}
	if p.PasswordHash != nil {
		u.PasswordHash = *p.PasswordHash
	}
	return u
}

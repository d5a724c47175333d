// AngelaMos | 2026
// dto.go

package user

import (
	"time"

	"github.com/carterperez-dev/jeddrive/internal/domain"
)

type UpdateMeRequest struct {
	Name    *string  `json:"name,omitempty"    validate:"omitempty,min=1,max=100"`
	Phone   *string  `json:"phone,omitempty"   validate:"omitempty,min=9,max=20"`
	Email   *string  `json:"email,omitempty"   validate:"omitempty,email,max=255"`
	Lat     *float64 `json:"lat,omitempty"     validate:"omitempty,latitude"`
	Lng     *float64 `json:"lng,omitempty"     validate:"omitempty,longitude"`
	Address *string  `json:"address,omitempty" validate:"omitempty,max=255"`
}

func (r UpdateMeRequest) patch() domain.UserPatch {
	return domain.UserPatch{
		Name:    r.Name,
		Phone:   r.Phone,
		Email:   r.Email,
		Lat:     r.Lat,
		Lng:     r.Lng,
		Address: r.Address,
	}
}

type UpdateUserRequest struct {
	Name          *string  `json:"name,omitempty"           validate:"omitempty,min=1,max=100"`
	Phone         *string  `json:"phone,omitempty"          validate:"omitempty,min=9,max=20"`
	Email         *string  `json:"email,omitempty"          validate:"omitempty,email,max=255"`
	IsPremium     *bool    `json:"is_premium,omitempty"`
	WalletBalance *float64 `json:"wallet_balance,omitempty" validate:"omitempty,gte=0"`
}

func (r UpdateUserRequest) patch() domain.UserPatch {
	return domain.UserPatch{
		Name:          r.Name,
		Phone:         r.Phone,
		Email:         r.Email,
		IsPremium:     r.IsPremium,
		WalletBalance: r.WalletBalance,
	}
}

type UpdateUserRoleRequest struct {
	Role string `json:"role" validate:"required,oneof=user admin provider"`
}

type UserResponse struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Phone         string    `json:"phone"`
	Email         string    `json:"email"`
	Role          string    `json:"role"`
	IsPremium     bool      `json:"is_premium"`
	WalletBalance float64   `json:"wallet_balance"`
	Lat           *float64  `json:"lat,omitempty"`
	Lng           *float64  `json:"lng,omitempty"`
	Address       string    `json:"address,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

type ListUsersParams struct {
	Page     int    `json:"page"`
	PageSize int    `json:"page_size"`
	Search   string `json:"search"`
	Role     string `json:"role"`
}

func (p *ListUsersParams) Normalize() {
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

func (p *ListUsersParams) Offset() int {
	return (p.Page - 1) * p.PageSize
}

func ToUserResponse(u *domain.User) UserResponse {
	return UserResponse{
		ID:            u.ID,
		Name:          u.Name,
		Phone:         u.Phone,
		Email:         u.Email,
		Role:          string(u.Role),
		IsPremium:     u.IsPremium,
		WalletBalance: u.WalletBalance,
		Lat:           u.Lat,
		Lng:           u.Lng,
		Address:       u.Address,
		CreatedAt:     u.CreatedAt,
	}
}

func ToUserResponseList(users []domain.User) []UserResponse {
	responses := make([]UserResponse, 0, len(users))
	for _, u := range users {
		responses = append(responses, ToUserResponse(&u))
	}
	return responses
}

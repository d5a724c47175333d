// AngelaMos | 2026
// dto.go

package auth

import (
	"time"
)

// LoginRequest.Identifier is an email address or a phone number.
type LoginRequest struct {
	Identifier string `json:"identifier" validate:"required,max=255"`
	Password   string `json:"password"   validate:"required,min=8,max=128"`
}

type RegisterRequest struct {
	Name     string `json:"name"     validate:"required,min=1,max=100"`
	Phone    string `json:"phone"    validate:"required,min=9,max=20"`
	Email    string `json:"email"    validate:"omitempty,email,max=255"`
	Password string `json:"password" validate:"required,min=8,max=128"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type ForgotPasswordRequest struct {
	Identifier string `json:"identifier" validate:"required,max=255"`
}

type ResetPasswordRequest struct {
	Identifier  string `json:"identifier"   validate:"required,max=255"`
	Code        string `json:"code"         validate:"required,len=4,numeric"`
	NewPassword string `json:"new_password" validate:"required,min=8,max=128"`
}

// ForgotPasswordResponse carries the reset code back to the caller since no
// SMS gateway exists. DeliveredTo is the masked destination it would go to.
type ForgotPasswordResponse struct {
	Code        string    `json:"code"`
	DeliveredTo string    `json:"delivered_to"`
	ExpiresAt   time.Time `json:"expires_at"`
}

type TokenResponse struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	TokenType    string    `json:"token_type"`
	ExpiresIn    int       `json:"expires_in"`
	ExpiresAt    time.Time `json:"expires_at"`
}

type UserResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Role      string    `json:"role"`
	Tier      string    `json:"tier"`
	CreatedAt time.Time `json:"created_at"`
}

type AuthResponse struct {
	User   UserResponse  `json:"user"`
	Tokens TokenResponse `json:"tokens"`
}

type SessionInfo struct {
	ID        string    `json:"id"`
	UserAgent string    `json:"user_agent"`
	IPAddress string    `json:"ip_address"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

type SessionsResponse struct {
	Sessions []SessionInfo `json:"sessions"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password"     validate:"required,min=8,max=128"`
}

// AngelaMos | 2026
// dto.go

package provider

import (
	"github.com/google/uuid"

	"github.com/carterperez-dev/jeddrive/internal/domain"
)

type ServiceInput struct {
	ID    string  `json:"id"    validate:"omitempty,max=64"`
	Name  string  `json:"name"  validate:"required,min=1,max=80"`
	Price float64 `json:"price" validate:"gte=0"`
}

func toServices(in []ServiceInput) []domain.ProviderService {
	if in == nil {
		return nil
	}
	out := make([]domain.ProviderService, len(in))
	for i, s := range in {
		id := s.ID
		if id == "" {
			id = uuid.New().String()
		}
		out[i] = domain.ProviderService{ID: id, Name: s.Name, Price: s.Price}
	}
	return out
}

type CreateProviderRequest struct {
	UserID        string         `json:"user_id"         validate:"omitempty,max=64"`
	BusinessName  string         `json:"business_name"   validate:"required,min=2,max=120"`
	ServiceType   string         `json:"service_type"    validate:"required,oneof=Tow Wash Repair Tinting"`
	City          string         `json:"city"            validate:"required,max=60"`
	CRNumber      string         `json:"cr_number"       validate:"omitempty,max=20"`
	Lat           *float64       `json:"lat"             validate:"omitempty,latitude"`
	Lng           *float64       `json:"lng"             validate:"omitempty,longitude"`
	GoogleMapsURL string         `json:"google_maps_url" validate:"omitempty,url"`
	ImageURL      string         `json:"image_url"       validate:"omitempty,url"`
	IsFeatured    bool           `json:"is_featured"`
	CreditLimit   float64        `json:"credit_limit"    validate:"gte=0"`
	Services      []ServiceInput `json:"services_list"   validate:"required,min=1,dive"`
}

// UpdateProviderRequest is a partial update; absent fields are left alone.
// Debt is deliberately unconstrained so admins can record credits.
type UpdateProviderRequest struct {
	BusinessName  *string        `json:"business_name"   validate:"omitempty,min=2,max=120"`
	ServiceType   *string        `json:"service_type"    validate:"omitempty,oneof=Tow Wash Repair Tinting"`
	City          *string        `json:"city"            validate:"omitempty,max=60"`
	Status        *string        `json:"status"          validate:"omitempty,oneof=pending active blocked offline"`
	IsOnline      *bool          `json:"is_online"`
	Rating        *float64       `json:"rating"          validate:"omitempty,gte=0,lte=5"`
	DebtBalance   *float64       `json:"debt_balance"`
	CreditLimit   *float64       `json:"credit_limit"    validate:"omitempty,gte=0"`
	CRNumber      *string        `json:"cr_number"       validate:"omitempty,max=20"`
	Lat           *float64       `json:"lat"             validate:"omitempty,latitude"`
	Lng           *float64       `json:"lng"             validate:"omitempty,longitude"`
	GoogleMapsURL *string        `json:"google_maps_url" validate:"omitempty,url"`
	ImageURL      *string        `json:"image_url"       validate:"omitempty,url"`
	IsFeatured    *bool          `json:"is_featured"`
	Services      []ServiceInput `json:"services_list"   validate:"omitempty,dive"`
}

func (r UpdateProviderRequest) patch() domain.ProviderPatch {
	p := domain.ProviderPatch{
		BusinessName:  r.BusinessName,
		City:          r.City,
		IsOnline:      r.IsOnline,
		Rating:        r.Rating,
		DebtBalance:   r.DebtBalance,
		CreditLimit:   r.CreditLimit,
		CRNumber:      r.CRNumber,
		Lat:           r.Lat,
		Lng:           r.Lng,
		GoogleMapsURL: r.GoogleMapsURL,
		ImageURL:      r.ImageURL,
		IsFeatured:    r.IsFeatured,
		ServicesList:  toServices(r.Services),
	}
	if r.ServiceType != nil {
		c := domain.Category(*r.ServiceType)
		p.ServiceType = &c
	}
	if r.Status != nil {
		s := domain.ProviderStatus(*r.Status)
		p.Status = &s
	}
	return p
}

type ServicePriceRequest struct {
	Price float64 `json:"price" validate:"gte=0"`
}

type CompleteOrderRequest struct {
	OTP string `json:"otp" validate:"required,max=16"`
}

type AdvanceOrderRequest struct {
	Status string `json:"status" validate:"required,oneof=in_route started cancelled"`
}

type ProviderResponse struct {
	domain.Provider
	IsBlocked bool             `json:"is_blocked"`
	OrderType domain.OrderType `json:"order_type"`
}

func toResponse(p domain.Provider) ProviderResponse {
	return ProviderResponse{
		Provider:  p,
		IsBlocked: p.IsBlocked(),
		OrderType: p.OrderType(),
	}
}

func toResponseList(ps []domain.Provider) []ProviderResponse {
	out := make([]ProviderResponse, len(ps))
	for i, p := range ps {
		out[i] = toResponse(p)
	}
	return out
}

type DashboardStats struct {
	TotalOrders     int     `json:"total_orders"`
	ActiveOrders    int     `json:"active_orders"`
	CompletedOrders int     `json:"completed_orders"`
	PendingSync     int     `json:"pending_sync"`
	GrossRevenue    float64 `json:"gross_revenue"`
	Commission      float64 `json:"commission"`
	RemainingCredit float64 `json:"remaining_credit"`
}

type DashboardResponse struct {
	Provider ProviderResponse `json:"provider"`
	Stats    DashboardStats   `json:"stats"`
	Orders   []domain.Order   `json:"orders"`
}

type SyncResponse struct {
	Provider ProviderResponse `json:"provider"`
	Synced   int              `json:"synced"`
}

type DebtEntry struct {
	ProviderID   string  `json:"provider_id"`
	BusinessName string  `json:"business_name"`
	DebtBalance  float64 `json:"debt_balance"`
	CreditLimit  float64 `json:"credit_limit"`
	IsBlocked    bool    `json:"is_blocked"`
}

type DebtsResponse struct {
	Providers []DebtEntry `json:"providers"`
	TotalOwed float64     `json:"total_owed"`
	Blocked   int         `json:"blocked"`
}

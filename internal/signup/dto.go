// AngelaMos | 2026
// dto.go

package signup

import (
	"github.com/google/uuid"

	"github.com/carterperez-dev/jeddrive/internal/domain"
)

type ServiceInput struct {
	Name  string  `json:"name"  validate:"required,min=1,max=80"`
	Price float64 `json:"price" validate:"gte=0"`
}

type SubmitRequest struct {
	BusinessName  string         `json:"business_name"   validate:"required,min=2,max=120"`
	OwnerName     string         `json:"owner_name"      validate:"required,min=2,max=100"`
	Phone         string         `json:"phone"           validate:"required,min=9,max=15,numeric"`
	Email         string         `json:"email"           validate:"omitempty,email,max=254"`
	ServiceType   string         `json:"service_type"    validate:"required,oneof=Tow Wash Repair Tinting"`
	City          string         `json:"city"            validate:"required,max=60"`
	CRNumber      string         `json:"cr_number"       validate:"omitempty,max=20"`
	GoogleMapsURL string         `json:"google_maps_url" validate:"omitempty,url"`
	ImageURL      string         `json:"image_url"       validate:"omitempty,url"`
	Services      []ServiceInput `json:"services_list"   validate:"max=20,dive"`
}

func (r SubmitRequest) services() []domain.ProviderService {
	out := make([]domain.ProviderService, len(r.Services))
	for i, s := range r.Services {
		out[i] = domain.ProviderService{
			ID:    uuid.New().String(),
			Name:  s.Name,
			Price: s.Price,
		}
	}
	return out
}

type ApproveResponse struct {
	Provider domain.Provider `json:"provider"`
	OwnerID  string          `json:"owner_id"`
	// NewAccount is set when the owner had no account and one was created
	// without a password. The owner sets it through password reset.
	NewAccount bool `json:"new_account"`
}

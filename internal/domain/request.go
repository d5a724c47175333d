// AngelaMos | 2026
// request.go

package domain

import (
	"time"
)

type RequestStatus string

const (
	RequestPending  RequestStatus = "pending"
	RequestApproved RequestStatus = "approved"
	RequestRejected RequestStatus = "rejected"
)

// CanTransition allows a pending application to be decided exactly once.
func (s RequestStatus) CanTransition(to RequestStatus) bool {
	return s == RequestPending && (to == RequestApproved || to == RequestRejected)
}

// ProviderRequest is a provider signup application awaiting admin review.
type ProviderRequest struct {
	ID            string            `json:"id"`
	BusinessName  string            `json:"business_name"`
	OwnerName     string            `json:"owner_name"`
	Phone         string            `json:"phone"`
	Email         string            `json:"email,omitempty"`
	ServiceType   Category          `json:"service_type"`
	City          string            `json:"city"`
	CRNumber      string            `json:"cr_number,omitempty"`
	GoogleMapsURL string            `json:"google_maps_url,omitempty"`
	ImageURL      string            `json:"image_url,omitempty"`
	ServicesList  []ProviderService `json:"services_list"`
	Status        RequestStatus     `json:"status"`
	CreatedAt     time.Time         `json:"created_at"`
}

// ToProvider builds the active provider an approved request turns into.
func (r *ProviderRequest) ToProvider(id, userID string, creditLimit float64) Provider {
	return Provider{
		ID:            id,
		UserID:        userID,
		BusinessName:  r.BusinessName,
		ServiceType:   r.ServiceType,
		City:          r.City,
		Status:        ProviderActive,
		IsOnline:      true,
		Rating:        5.0,
		DebtBalance:   0,
		CreditLimit:   creditLimit,
		CRNumber:      r.CRNumber,
		GoogleMapsURL: r.GoogleMapsURL,
		ImageURL:      r.ImageURL,
		ServicesList:  append([]ProviderService(nil), r.ServicesList...),
	}
}

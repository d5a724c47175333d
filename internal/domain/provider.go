// AngelaMos | 2026
// provider.go

package domain

type Category string

const (
	CategoryTow     Category = "Tow"
	CategoryWash    Category = "Wash"
	CategoryRepair  Category = "Repair"
	CategoryTinting Category = "Tinting"
)

func (c Category) Valid() bool {
	switch c {
	case CategoryTow, CategoryWash, CategoryRepair, CategoryTinting:
		return true
	}
	return false
}

type ProviderStatus string

const (
	ProviderPending ProviderStatus = "pending"
	ProviderActive  ProviderStatus = "active"
	ProviderBlocked ProviderStatus = "blocked"
	ProviderOffline ProviderStatus = "offline"
)

func (s ProviderStatus) Valid() bool {
	switch s {
	case ProviderPending, ProviderActive, ProviderBlocked, ProviderOffline:
		return true
	}
	return false
}

const DefaultCreditLimit = 500

type ProviderService struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

type Provider struct {
	ID            string            `json:"id"`
	UserID        string            `json:"user_id"`
	BusinessName  string            `json:"business_name"`
	ServiceType   Category          `json:"service_type"`
	City          string            `json:"city"`
	Status        ProviderStatus    `json:"status"`
	IsOnline      bool              `json:"is_online"`
	Rating        float64           `json:"rating"`
	DebtBalance   float64           `json:"debt_balance"`
	CreditLimit   float64           `json:"credit_limit"`
	CRNumber      string            `json:"cr_number,omitempty"`
	Lat           *float64          `json:"lat,omitempty"`
	Lng           *float64          `json:"lng,omitempty"`
	GoogleMapsURL string            `json:"google_maps_url,omitempty"`
	ImageURL      string            `json:"image_url"`
	IsFeatured    bool              `json:"is_featured,omitempty"`
	ServicesList  []ProviderService `json:"services_list"`
}

// IsBlocked reports whether accumulated debt has reached the credit limit.
// It is derived on every call and never stored.
func (p *Provider) IsBlocked() bool {
	return p.DebtBalance >= p.CreditLimit
}

func (p *Provider) IsOffline() bool {
	return p.Status == ProviderOffline
}

// Listed reports whether the provider appears in the customer catalog.
// With hideOverLimit unset, only the status is consulted and an over-limit
// provider remains visible.
func (p *Provider) Listed(hideOverLimit bool) bool {
	if p.Status != ProviderActive {
		return false
	}
	if hideOverLimit && p.IsBlocked() {
		return false
	}
	return true
}

func (p *Provider) Service(id string) (ProviderService, bool) {
	for _, s := range p.ServicesList {
		if s.ID == id {
			return s, true
		}
	}
	return ProviderService{}, false
}

// OrderType derives the order type from the provider category: towing is
// delivered on site, everything else happens at the provider's center.
func (p *Provider) OrderType() OrderType {
	if p.ServiceType == CategoryTow {
		return OrderMobile
	}
	return OrderStationary
}

type ProviderPatch struct {
	BusinessName  *string
	ServiceType   *Category
	City          *string
	Status        *ProviderStatus
	IsOnline      *bool
	Rating        *float64
	DebtBalance   *float64
	CreditLimit   *float64
	CRNumber      *string
	Lat           *float64
	Lng           *float64
	GoogleMapsURL *string
	ImageURL      *string
	IsFeatured    *bool
	ServicesList  []ProviderService
}

func (p ProviderPatch) Apply(pr Provider) Provider {
	if p.BusinessName != nil {
		pr.BusinessName = *p.BusinessName
	}
	if p.ServiceType != nil {
		pr.ServiceType = *p.ServiceType
	}
	if p.City != nil {
		pr.City = *p.City
	}
	if p.Status != nil {
		pr.Status = *p.Status
	}
	if p.IsOnline != nil {
		pr.IsOnline = *p.IsOnline
	}
	if p.Rating != nil {
		pr.Rating = *p.Rating
	}
	if p.DebtBalance != nil {
		pr.DebtBalance = *p.DebtBalance
	}
	if p.CreditLimit != nil {
		pr.CreditLimit = *p.CreditLimit
	}
	if p.CRNumber != nil {
		pr.CRNumber = *p.CRNumber
	}
	if p.Lat != nil {
		pr.Lat = p.Lat
	}
	if p.Lng != nil {
		pr.Lng = p.Lng
	}
	if p.GoogleMapsURL != nil {
		pr.GoogleMapsURL = *p.GoogleMapsURL
	}
	if p.ImageURL != nil {
		pr.ImageURL = *p.ImageURL
	}
	if p.IsFeatured != nil {
		pr.IsFeatured = *p.IsFeatured
	}
	if p.ServicesList != nil {
		pr.ServicesList = append([]ProviderService(nil), p.ServicesList...)
	}
	return pr
}

// WithServicePrice returns a copy of the services list with one entry
// repriced. The second return is false when the service id is unknown.
func (p *Provider) WithServicePrice(serviceID string, price float64) ([]ProviderService, bool) {
	found := false
	out := make([]ProviderService, len(p.ServicesList))
	for i, s := range p.ServicesList {
		if s.ID == serviceID {
			s.Price = price
			found = true
		}
		out[i] = s
	}
	return out, found
}

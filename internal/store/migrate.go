// AngelaMos | 2026
// migrate.go

package store

import (
	"fmt"

	"github.com/carterperez-dev/jeddrive/internal/domain"
)

// upgrade brings a loaded snapshot to SchemaVersion. It reports whether the
// state changed and has to be written back.
func upgrade(snap *snapshot) (bool, error) {
	version := snap.version
	if version == 0 && !snap.empty() {
		version = 1
	}

	switch {
	case version == SchemaVersion:
		return false, nil
	case version > SchemaVersion:
		return false, fmt.Errorf("%w: %d", ErrUnsupportedSchema, version)
	case version == 1:
		migrateV1(&snap.state)
		return true, nil
	}

	return false, nil
}

// migrateV1 upgrades the single-user layout that predates the users and
// provider_requests collections.
func migrateV1(s *State) {
	if s.Users == nil && s.User != nil {
		s.Users = []domain.User{*s.User}
	}
	s.normalize()

	providers := make([]domain.Provider, len(s.Providers))
	for i, p := range s.Providers {
		if p.CreditLimit == 0 {
			p.CreditLimit = domain.DefaultCreditLimit
		}
		if p.ServicesList == nil {
			p.ServicesList = []domain.ProviderService{}
		}
		providers[i] = p
	}
	s.Providers = providers

	orders := make([]domain.Order, len(s.Orders))
	for i, o := range s.Orders {
		if len(o.Services) == 0 && o.ServiceID != "" {
			o.Services = []domain.ProviderService{{
				ID:    o.ServiceID,
				Name:  o.ServiceName,
				Price: o.TotalPrice,
			}}
		}
		orders[i] = o
	}
	s.Orders = orders
}

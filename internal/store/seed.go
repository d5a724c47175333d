// AngelaMos | 2026
// seed.go

package store

import (
	"time"

	"github.com/carterperez-dev/jeddrive/internal/domain"
)

const (
	DefaultBannerURL = "https://images.unsplash.com/photo-1492144534655-ae79c964c9d7?auto=format&fit=crop&q=80&w=1000"
	DefaultTicker    = "أهلاً بكم في JedDrive - أفضل خدمات السيارات في جدة متوفرة الآن بين يديك! متميزون في السطحات والغسيل والتلميع."
)

func coord(v float64) *float64 {
	return &v
}

// Seed returns the demo marketplace a fresh store starts from. Every seeded
// account gets passwordHash; an empty hash leaves them unable to log in.
func Seed(passwordHash string, now time.Time) State {
	admin := domain.User{
		ID:            "u1",
		Name:          "Faisal Admin",
		Phone:         "0501234567",
		Email:         "faisal@jeddrive.com",
		Role:          domain.RoleAdmin,
		IsPremium:     true,
		WalletBalance: 1500,
		PasswordHash:  passwordHash,
		CreatedAt:     now,
	}

	owner := func(id, name, phone, email string) domain.User {
		return domain.User{
			ID:           id,
			Name:         name,
			Phone:        phone,
			Email:        email,
			Role:         domain.RoleProvider,
			PasswordHash: passwordHash,
			CreatedAt:    now,
		}
	}

	customer := domain.User{
		ID:            "u2",
		Name:          "Sara Customer",
		Phone:         "0559876543",
		Email:         "sara@jeddrive.com",
		Role:          domain.RoleUser,
		WalletBalance: 200,
		PasswordHash:  passwordHash,
		CreatedAt:     now,
	}

	return State{
		User: nil,
		Users: []domain.User{
			admin,
			customer,
			owner("up1", "Fast Towing Owner", "0500000001", "tow@jeddrive.com"),
			owner("up2", "Sparkle Owner", "0500000002", "spa@jeddrive.com"),
			owner("up3", "Master Mechanics Owner", "0500000003", "repair@jeddrive.com"),
		},
		Providers: []domain.Provider{
			{
				ID:           "p1",
				UserID:       "up1",
				BusinessName: "Fast Towing Jeddah",
				ServiceType:  domain.CategoryTow,
				City:         "Jeddah",
				Status:       domain.ProviderActive,
				IsOnline:     true,
				Rating:       4.8,
				DebtBalance:  120,
				CreditLimit:  500,
				Lat:          coord(21.5433),
				Lng:          coord(39.1728),
				ImageURL:     "https://images.unsplash.com/photo-1580273916550-e323be2ae537?auto=format&fit=crop&q=80&w=300",
				ServicesList: []domain.ProviderService{
					{ID: "ps1", Name: "Normal Tow", Price: 150},
					{ID: "ps2", Name: "Hydraulic Tow", Price: 250},
				},
			},
			{
				ID:           "p2",
				UserID:       "up2",
				BusinessName: "Sparkle Auto Spa",
				ServiceType:  domain.CategoryWash,
				City:         "Jeddah",
				Status:       domain.ProviderActive,
				IsOnline:     true,
				Rating:       4.5,
				DebtBalance:  550,
				CreditLimit:  500,
				Lat:          coord(21.6167),
				Lng:          coord(39.15),
				ImageURL:     "https://images.unsplash.com/photo-1601362840469-51e4d8d59085?auto=format&fit=crop&q=80&w=300",
				ServicesList: []domain.ProviderService{
					{ID: "ps3", Name: "Internal Wash", Price: 60},
					{ID: "ps4", Name: "Polishing", Price: 400},
				},
			},
			{
				ID:           "p3",
				UserID:       "up3",
				BusinessName: "Master Mechanics",
				ServiceType:  domain.CategoryRepair,
				City:         "Jeddah",
				Status:       domain.ProviderPending,
				IsOnline:     false,
				Rating:       0,
				DebtBalance:  0,
				CreditLimit:  500,
				Lat:          coord(21.4858),
				Lng:          coord(39.1925),
				ImageURL:     "https://images.unsplash.com/photo-1486262715619-67b85e0b08d3?auto=format&fit=crop&q=80&w=300",
				ServicesList: []domain.ProviderService{
					{ID: "ps5", Name: "Oil Change", Price: 120},
					{ID: "ps6", Name: "Engine Diagnostic", Price: 200},
				},
			},
		},
		Orders: []domain.Order{},
		Coupons: []domain.Coupon{
			{
				ID:            "c1",
				Code:          "JED20",
				DiscountValue: 20,
				Type:          domain.CouponPercent,
				IsActive:      true,
				ExpiryDate:    "2025-12-31",
				MaxUses:       100,
				CurrentUses:   45,
			},
			{
				ID:            "c2",
				Code:          "FIRST50",
				DiscountValue: 50,
				Type:          domain.CouponFixed,
				IsActive:      false,
				ExpiryDate:    "2024-01-01",
				MaxUses:       50,
				CurrentUses:   50,
			},
		},
		ProviderRequests: []domain.ProviderRequest{},
		Notifications:    []domain.Notification{},
		Theme:            domain.ThemeLight,
		Language:         domain.LanguageArabic,
		BannerURL:        DefaultBannerURL,
		Ticker:           DefaultTicker,
	}
}

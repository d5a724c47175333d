// AngelaMos | 2026
// service.go

package settings

import (
	"context"
	"fmt"
	"strings"

	"github.com/carterperez-dev/jeddrive/internal/domain"
	"github.com/carterperez-dev/jeddrive/internal/store"
)

type Settings struct {
	Theme     domain.Theme    `json:"theme"`
	Language  domain.Language `json:"language"`
	BannerURL string          `json:"banner_url"`
	Ticker    string          `json:"scrolling_ticker"`
}

type Service struct {
	store *store.Store
}

func NewService(s *store.Store) *Service {
	return &Service{store: s}
}

func (s *Service) Get(_ context.Context) Settings {
	state := s.store.Snapshot()
	return Settings{
		Theme:     state.Theme,
		Language:  state.Language,
		BannerURL: state.BannerURL,
		Ticker:    state.Ticker,
	}
}

func (s *Service) UpdatePreferences(ctx context.Context, req PreferencesRequest) (Settings, error) {
	var actions []store.Action
	if req.Theme != nil {
		actions = append(actions, store.SetTheme{Theme: domain.Theme(*req.Theme)})
	}
	if req.Language != nil {
		actions = append(actions, store.SetLanguage{Language: domain.Language(*req.Language)})
	}
	return s.apply(ctx, actions)
}

func (s *Service) UpdateBranding(ctx context.Context, req BrandingRequest) (Settings, error) {
	var actions []store.Action
	if req.BannerURL != nil {
		actions = append(actions, store.SetBannerURL{URL: strings.TrimSpace(*req.BannerURL)})
	}
	if req.Ticker != nil {
		actions = append(actions, store.SetTicker{Text: strings.TrimSpace(*req.Ticker)})
	}
	return s.apply(ctx, actions)
}

func (s *Service) apply(ctx context.Context, actions []store.Action) (Settings, error) {
	for _, a := range actions {
		if _, err := s.store.Dispatch(ctx, a); err != nil {
			return Settings{}, fmt.Errorf("update settings: %w", err)
		}
	}
	return s.Get(ctx), nil
}

// Language reports the storefront language.
func (s *Service) Language() domain.Language {
	return s.store.Snapshot().Language
}

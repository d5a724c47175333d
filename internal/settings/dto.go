// AngelaMos | 2026
// dto.go

package settings

type PreferencesRequest struct {
	Theme    *string `json:"theme"    validate:"omitempty,oneof=light dark luxury"`
	Language *string `json:"language" validate:"omitempty,oneof=ar en"`
}

type BrandingRequest struct {
	BannerURL *string `json:"banner_url"       validate:"omitempty,url,max=2048"`
	Ticker    *string `json:"scrolling_ticker" validate:"omitempty,max=500"`
}

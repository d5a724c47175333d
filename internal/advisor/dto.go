// AngelaMos | 2026
// dto.go

package advisor

import (
	"github.com/carterperez-dev/jeddrive/internal/domain"
)

type AdviceRequest struct {
	Message  string `json:"message"  validate:"required,min=2,max=2000"`
	Language string `json:"language" validate:"omitempty,oneof=ar en"`
}

type AdviceResponse struct {
	Reply    string          `json:"reply"`
	Language domain.Language `json:"language"`
	Fallback bool            `json:"fallback"`
}

// AngelaMos | 2026
// service.go

package advisor

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"google.golang.org/api/generativelanguage/v1beta"
	"google.golang.org/api/option"

	"github.com/carterperez-dev/jeddrive/internal/config"
	"github.com/carterperez-dev/jeddrive/internal/domain"
)

const (
	temperature     = 0.7
	maxOutputTokens = 500
)

var systemPrompts = map[domain.Language]string{
	domain.LanguageArabic: "أنت 'خبير جيد درايف' (JedDrive AI Mechanic)، مساعد ذكي متخصص في السيارات في مدينة جدة. " +
		"ساعد المستخدم في تشخيص مشاكل سيارته، أعطه نصائح صيانة، واقترح عليه نوع الخدمة المناسبة " +
		"(ورشة صيانة، مغسلة، سطح، أو زينة). اجعل أسلوبك ودوداً واحترافياً واستخدم اللهجة السعودية البيضاء قليلاً.",
	domain.LanguageEnglish: "You are the 'JedDrive AI Mechanic', a smart car assistant in Jeddah. " +
		"Help users diagnose car issues, give maintenance tips, and suggest appropriate service categories " +
		"(Repair, Wash, Tow, or Tinting). Be professional, helpful, and friendly.",
}

type fallbackKind int

const (
	fallbackNoKey fallbackKind = iota
	fallbackEmpty
	fallbackError
)

var fallbacks = map[fallbackKind]map[domain.Language]string{
	fallbackNoKey: {
		domain.LanguageArabic:  "عذراً، مفتاح الـ API غير متوفر حالياً.",
		domain.LanguageEnglish: "Sorry, API key is not configured.",
	},
	fallbackEmpty: {
		domain.LanguageArabic:  "عذراً، لم أستطع فهم ذلك.",
		domain.LanguageEnglish: "Sorry, I couldn't understand that.",
	},
	fallbackError: {
		domain.LanguageArabic:  "حدث خطأ في الاتصال بالذكاء الاصطناعي.",
		domain.LanguageEnglish: "Error connecting to the AI assistant.",
	},
}

// LanguageSource supplies the language used when a request names none.
type LanguageSource interface {
	Language() domain.Language
}

type Service struct {
	client   *generativelanguage.Service
	model    string
	timeout  time.Duration
	language LanguageSource
	logger   *slog.Logger
}

// NewService builds the advisor. Without an API key no client is created
// and every answer is the localized "not configured" reply.
func NewService(
	ctx context.Context,
	cfg config.AdvisorConfig,
	language LanguageSource,
	logger *slog.Logger,
) (*Service, error) {
	s := &Service{
		model:    "models/" + strings.TrimPrefix(cfg.Model, "models/"),
		timeout:  cfg.Timeout,
		language: language,
		logger:   logger,
	}
	if s.timeout <= 0 {
		s.timeout = 20 * time.Second
	}

	if cfg.APIKey == "" {
		return s, nil
	}

	opts := []option.ClientOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(cfg.Endpoint))
	}

	client, err := generativelanguage.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("advisor client: %w", err)
	}
	s.client = client
	return s, nil
}

func (s *Service) Configured() bool {
	return s.client != nil
}

// Advise asks the model once. Every failure resolves to a localized
// fallback reply rather than an error.
func (s *Service) Advise(ctx context.Context, req AdviceRequest) AdviceResponse {
	lang := s.resolveLanguage(req.Language)

	if s.client == nil {
		return s.fallback(fallbackNoKey, lang)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	prompt := fmt.Sprintf("%s\n\nUser Question: %s", systemPrompts[lang], strings.TrimSpace(req.Message))

	resp, err := s.client.Models.GenerateContent(s.model, &generativelanguage.GenerateContentRequest{
		Contents: []*generativelanguage.Content{{
			Role:  "user",
			Parts: []*generativelanguage.Part{{Text: prompt}},
		}},
		GenerationConfig: &generativelanguage.GenerationConfig{
			Temperature:     temperature,
			MaxOutputTokens: maxOutputTokens,
		},
	}).Context(ctx).Do()
	if err != nil {
		s.logger.Warn("advisor request failed", "model", s.model, "error", err)
		return s.fallback(fallbackError, lang)
	}

	text := firstText(resp)
	if text == "" {
		return s.fallback(fallbackEmpty, lang)
	}

	return AdviceResponse{Reply: text, Language: lang}
}

func (s *Service) resolveLanguage(requested string) domain.Language {
	switch domain.Language(requested) {
	case domain.LanguageArabic, domain.LanguageEnglish:
		return domain.Language(requested)
	}
	if s.language != nil {
		if l := s.language.Language(); l == domain.LanguageEnglish {
			return l
		}
	}
	return domain.LanguageArabic
}

func (s *Service) fallback(kind fallbackKind, lang domain.Language) AdviceResponse {
	return AdviceResponse{
		Reply:    fallbacks[kind][lang],
		Language: lang,
		Fallback: true,
	}
}

func firstText(resp *generativelanguage.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}
	c := resp.Candidates[0]
	if c == nil || c.Content == nil || len(c.Content.Parts) == 0 || c.Content.Parts[0] == nil {
		return ""
	}
	return c.Content.Parts[0].Text
}

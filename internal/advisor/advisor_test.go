// AngelaMos | 2026
// advisor_test.go

package advisor

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/jeddrive/internal/config"
	"github.com/carterperez-dev/jeddrive/internal/domain"
)

type fixedLanguage domain.Language

func (f fixedLanguage) Language() domain.Language { return domain.Language(f) }

type captured struct {
	path  string
	key   string
	body  map[string]any
	calls int
}

func newUpstream(t *testing.T, status int, reply string) (*httptest.Server, *captured) {
	t.Helper()
	c := &captured{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c.calls++
		c.path = r.URL.Path
		c.key = r.URL.Query().Get("key")
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &c.body)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, reply)
	}))
	t.Cleanup(srv.Close)
	return srv, c
}

func newService(t *testing.T, endpoint, key string, lang domain.Language) *Service {
	t.Helper()
	svc, err := NewService(context.Background(), config.AdvisorConfig{
		Endpoint: endpoint,
		APIKey:   key,
		Model:    "gemini-1.5-flash",
		Timeout:  2 * time.Second,
	}, fixedLanguage(lang), slog.Default())
	require.NoError(t, err)
	return svc
}

func TestAdviseSendsPromptAndReturnsFirstCandidate(t *testing.T) {
	srv, c := newUpstream(t, http.StatusOK,
		`{"candidates":[{"content":{"role":"model","parts":[{"text":"Check the battery terminals."}]}}]}`)
	svc := newService(t, srv.URL+"/", "test-key", domain.LanguageArabic)

	got := svc.Advise(context.Background(), AdviceRequest{Message: "car will not start", Language: "en"})

	assert.Equal(t, "Check the battery terminals.", got.Reply)
	assert.Equal(t, domain.LanguageEnglish, got.Language)
	assert.False(t, got.Fallback)

	assert.Equal(t, "/v1beta/models/gemini-1.5-flash:generateContent", c.path)
	assert.Equal(t, "test-key", c.key)

	cfg, ok := c.body["generationConfig"].(map[string]any)
	require.True(t, ok)
	assert.InDelta(t, 0.7, cfg["temperature"], 0.0001)
	assert.EqualValues(t, 500, cfg["maxOutputTokens"])

	raw, _ := json.Marshal(c.body["contents"])
	assert.Contains(t, string(raw), "JedDrive AI Mechanic")
	assert.Contains(t, string(raw), "User Question: car will not start")
}

func TestAdviseFallbacks(t *testing.T) {
	ctx := context.Background()

	t.Run("no key", func(t *testing.T) {
		svc := newService(t, "", "", domain.LanguageArabic)
		got := svc.Advise(ctx, AdviceRequest{Message: "hello"})
		assert.False(t, svc.Configured())
		assert.True(t, got.Fallback)
		assert.Equal(t, domain.LanguageArabic, got.Language)
		assert.Equal(t, "عذراً، مفتاح الـ API غير متوفر حالياً.", got.Reply)
	})

	t.Run("store language applies", func(t *testing.T) {
		svc := newService(t, "", "", domain.LanguageEnglish)
		got := svc.Advise(ctx, AdviceRequest{Message: "hello"})
		assert.Equal(t, "Sorry, API key is not configured.", got.Reply)
	})

	t.Run("empty candidates", func(t *testing.T) {
		srv, _ := newUpstream(t, http.StatusOK, `{"candidates":[]}`)
		svc := newService(t, srv.URL+"/", "k", domain.LanguageArabic)
		got := svc.Advise(ctx, AdviceRequest{Message: "hello", Language: "en"})
		assert.True(t, got.Fallback)
		assert.Equal(t, "Sorry, I couldn't understand that.", got.Reply)
	})

	t.Run("upstream error", func(t *testing.T) {
		srv, c := newUpstream(t, http.StatusInternalServerError, `{"error":{"code":500,"message":"boom"}}`)
		svc := newService(t, srv.URL+"/", "k", domain.LanguageArabic)
		got := svc.Advise(ctx, AdviceRequest{Message: "hello", Language: "ar"})
		assert.True(t, got.Fallback)
		assert.Equal(t, "حدث خطأ في الاتصال بالذكاء الاصطناعي.", got.Reply)
		assert.GreaterOrEqual(t, c.calls, 1)
	})
}

func TestHandler(t *testing.T) {
	h := NewHandler(newService(t, "", "", domain.LanguageEnglish))
	pass := func(next http.Handler) http.Handler { return next }

	r := chi.NewRouter()
	h.RegisterRoutes(r, pass, pass)

	tests := []struct {
		name   string
		body   string
		status int
	}{
		{"empty message", `{"message":""}`, http.StatusBadRequest},
		{"bad language", `{"message":"noise from brakes","language":"fr"}`, http.StatusBadRequest},
		{"ok", `{"message":"noise from brakes"}`, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/advisor", strings.NewReader(tt.body)))
			assert.Equal(t, tt.status, rec.Code)
		})
	}
}

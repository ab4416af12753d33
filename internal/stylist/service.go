package stylist

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/jo-hoe/styleai/internal/metrics"
	"github.com/jo-hoe/styleai/internal/shopping"
)

const (
	DefaultAdviceTimeout  = 30 * time.Second
	DefaultExplainTimeout = 15 * time.Second
	DefaultCacheTTL       = 24 * time.Hour
	DefaultProductLimit   = 4
)

// Advisor produces a recommendation from an external model.
type Advisor interface {
	Advise(ctx context.Context, p Profile) (Bundle, error)
}

// Explainer rewrites the explanation for a palette in friendlier prose.
type Explainer interface {
	Explain(ctx context.Context, p Profile, palette []NamedColor) (string, error)
}

// Cache stores serialized advisor replies.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

type Service struct {
	tables         *Tables
	advisor        Advisor
	explainer      Explainer
	cache          Cache
	links          shopping.LinkBuilder
	metrics        *metrics.Registry
	adviceTimeout  time.Duration
	explainTimeout time.Duration
	cacheTTL       time.Duration
	productLimit   int
}

type ServiceOption func(*Service)

func WithAdvisor(a Advisor) ServiceOption {
	return func(s *Service) { s.advisor = a }
}

func WithExplainer(e Explainer) ServiceOption {
	return func(s *Service) { s.explainer = e }
}

func WithCache(c Cache, ttl time.Duration) ServiceOption {
	return func(s *Service) {
		s.cache = c
		if ttl > 0 {
			s.cacheTTL = ttl
		}
	}
}

func WithLinkBuilder(lb shopping.LinkBuilder) ServiceOption {
	return func(s *Service) { s.links = lb }
}

func WithMetrics(reg *metrics.Registry) ServiceOption {
	return func(s *Service) { s.metrics = reg }
}

// WithTimeouts bounds advisor and explainer calls. Zero keeps the default.
func WithTimeouts(advice, explain time.Duration) ServiceOption {
	return func(s *Service) {
		if advice > 0 {
			s.adviceTimeout = advice
		}
		if explain > 0 {
			s.explainTimeout = explain
		}
	}
}

// WithProductLimit caps the products listed per shopping platform.
func WithProductLimit(n int) ServiceOption {
	return func(s *Service) {
		if n > 0 {
			s.productLimit = n
		}
	}
}

func NewService(tables *Tables, opts ...ServiceOption) *Service {
	s := &Service{
		tables:         tables,
		adviceTimeout:  DefaultAdviceTimeout,
		explainTimeout: DefaultExplainTimeout,
		cacheTTL:       DefaultCacheTTL,
		productLimit:   DefaultProductLimit,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) Tables() *Tables {
	return s.tables
}

// Recommend never fails: any advisor or explainer problem is logged and
// the static tables fill in.
func (s *Service) Recommend(ctx context.Context, p Profile) Bundle {
	p = p.WithDefaults()

	bundle := s.advise(ctx, p)
	if bundle.Source == SourceStatic && s.explainer != nil {
		bundle.Explanation = s.explain(ctx, p, bundle)
	}
	if s.links != nil {
		bundle.Shopping = shopping.SearchAll(s.links, shopping.Query{
			Occasion: p.Occasion,
			Budget:   p.Budget,
			Gender:   p.Gender,
			Color:    p.Color,
			Limit:    s.productLimit,
		})
	}

	s.metrics.Inc(ctx, metrics.RecommendationsTotal, map[string]string{"source": string(bundle.Source)}, 1)
	return bundle
}

func (s *Service) advise(ctx context.Context, p Profile) Bundle {
	static := s.tables.Lookup(p)
	if s.advisor == nil {
		return static
	}

	if cached, ok := s.cached(ctx, p); ok {
		cached.fillFrom(static)
		return cached
	}

	adviceCtx, cancel := context.WithTimeout(ctx, s.adviceTimeout)
	defer cancel()

	bundle, err := s.advisor.Advise(adviceCtx, p)
	if err == nil && len(bundle.ColorPalette) == 0 {
		err = fmt.Errorf("advisor reply has no color palette")
	}
	if err != nil {
		slog.Warn("advisor failed, using static recommendations", "palette", p.PaletteKey(), "occasion", p.Occasion, "error", err)
		s.metrics.Inc(ctx, metrics.AIFallbacksTotal, map[string]string{"stage": "advice"}, 1)
		static.AIUnavailable = true
		return static
	}

	bundle.Source = SourceAI
	bundle.AIUnavailable = false
	s.store(ctx, p, bundle)
	bundle.fillFrom(static)
	return bundle
}

func (s *Service) cached(ctx context.Context, p Profile) (Bundle, bool) {
	if s.cache == nil {
		return Bundle{}, false
	}
	data, ok, err := s.cache.Get(ctx, p.CacheKey())
	if err != nil {
		slog.Warn("advice cache read failed", "key", p.CacheKey(), "error", err)
		return Bundle{}, false
	}
	if !ok {
		return Bundle{}, false
	}

	var bundle Bundle
	if err := json.Unmarshal(data, &bundle); err != nil || len(bundle.ColorPalette) == 0 {
		slog.Warn("ignoring unusable cached advice", "key", p.CacheKey(), "error", err)
		return Bundle{}, false
	}
	s.metrics.Inc(ctx, metrics.CacheHitsTotal, nil, 1)
	bundle.Source = SourceAI
	return bundle, true
}

func (s *Service) store(ctx context.Context, p Profile, bundle Bundle) {
	if s.cache == nil {
		return
	}
	data, err := json.Marshal(bundle)
	if err != nil {
		slog.Warn("failed to encode advice for cache", "error", err)
		return
	}
	if err := s.cache.Set(ctx, p.CacheKey(), data, s.cacheTTL); err != nil {
		slog.Warn("advice cache write failed", "key", p.CacheKey(), "error", err)
	}
}

func (s *Service) explain(ctx context.Context, p Profile, bundle Bundle) string {
	explainCtx, cancel := context.WithTimeout(ctx, s.explainTimeout)
	defer cancel()

	text, err := s.explainer.Explain(explainCtx, p, bundle.ColorPalette)
	if err != nil || text == "" {
		slog.Warn("explainer failed, keeping templated explanation", "error", err)
		s.metrics.Inc(ctx, metrics.AIFallbacksTotal, map[string]string{"stage": "explain"}, 1)
		return bundle.Explanation
	}
	return text
}

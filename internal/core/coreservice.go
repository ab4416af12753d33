package core

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/jo-hoe/styleai/internal/backend/database"
	"github.com/jo-hoe/styleai/internal/cache"
	"github.com/jo-hoe/styleai/internal/facedetect"
	"github.com/jo-hoe/styleai/internal/imaging"
	"github.com/jo-hoe/styleai/internal/llm"
	"github.com/jo-hoe/styleai/internal/metrics"
	"github.com/jo-hoe/styleai/internal/shopping"
	"github.com/jo-hoe/styleai/internal/skintone"
	"github.com/jo-hoe/styleai/internal/stylist"
	"github.com/jo-hoe/styleai/internal/upload"
)

const (
	SwatchWidth  = 500
	SwatchHeight = 100
)

var (
	ErrAIDisabled     = errors.New("ai collaborator not configured")
	ErrUnknownPalette = errors.New("unknown skin tone or undertone")
)

type CoreService struct {
	config          *ServiceConfig
	databaseService database.DatabaseService
	uploads         *upload.Store
	analyzer        *skintone.Analyzer
	detector        *facedetect.CascadeDetector
	stylist         *stylist.Service
	links           shopping.LinkBuilder
	xai             *llm.XAIClient
	cache           cache.Cache
	metrics         *metrics.Registry
}

// NewCoreService wires every collaborator named in config. Optional
// collaborators that fail to start are logged and left out.
func NewCoreService(ctx context.Context, config *ServiceConfig, reg *metrics.Registry) (*CoreService, error) {
	if reg == nil {
		reg = metrics.NewRegistry()
	}
	service := &CoreService{
		config:  config,
		links:   shopping.NewBuilder(),
		metrics: reg,
	}

	databaseService, err := getDatabaseService(config)
	if err != nil {
		return nil, err
	}
	service.databaseService = databaseService

	if service.uploads, err = upload.NewStore(config.UploadDir); err != nil {
		_ = service.Close()
		return nil, err
	}

	if service.analyzer, err = service.newAnalyzer(); err != nil {
		_ = service.Close()
		return nil, err
	}

	if service.stylist, err = service.newStylist(ctx); err != nil {
		_ = service.Close()
		return nil, err
	}

	return service, nil
}

func getDatabaseService(config *ServiceConfig) (database.DatabaseService, error) {
	databaseService, err := database.NewDatabase(config.Database.Type, config.Database.ConnectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	slog.Info("database initialized successfully", "type", config.Database.Type)
	return databaseService, nil
}

func (service *CoreService) newAnalyzer() (*skintone.Analyzer, error) {
	var opts []skintone.Option

	if len(service.config.Commands) > 0 {
		invoker, err := imaging.NewCommandInvokerFromConfig(imaging.DefaultRegistry, service.config.Commands)
		if err != nil {
			return nil, fmt.Errorf("failed to build preprocessing pipeline: %w", err)
		}
		opts = append(opts, skintone.WithPreprocessor(invoker.Execute))
	}

	if service.config.FaceCascade != "" {
		detector, err := facedetect.NewCascadeDetector(service.config.FaceCascade)
		if err != nil {
			slog.Warn("face detection disabled, sampling image center instead",
				"path", service.config.FaceCascade, "error", err)
		} else {
			service.detector = detector
			opts = append(opts, skintone.WithFaceDetector(detector))
		}
	}

	return skintone.NewAnalyzer(opts...), nil
}

func (service *CoreService) newStylist(ctx context.Context) (*stylist.Service, error) {
	tables, err := stylist.DefaultTables()
	if service.config.StylistTables != "" {
		tables, err = stylist.LoadTables(service.config.StylistTables)
	}
	if err != nil {
		return nil, err
	}

	ai := service.config.AI
	secrets := service.config.Secrets
	opts := []stylist.ServiceOption{
		stylist.WithLinkBuilder(service.links),
		stylist.WithMetrics(service.metrics),
		stylist.WithTimeouts(ai.AdviceTimeout, ai.ExplainTimeout),
		stylist.WithProductLimit(service.config.ProductLimit),
	}

	if secrets.GeminiAPIKey != "" {
		advisor, err := llm.NewGeminiAdvisor(ctx, secrets.GeminiAPIKey, ai.GeminiModel)
		if err != nil {
			slog.Warn("gemini advisor disabled", "error", err)
		} else {
			opts = append(opts, stylist.WithAdvisor(advisor))
			slog.Info("gemini advisor enabled")
		}
	}

	if secrets.XAIAPIKey != "" {
		client, err := llm.NewXAIClient(llm.XAIConfig{
			APIKey:      secrets.XAIAPIKey,
			BaseURL:     ai.XAIBaseURL,
			Model:       ai.XAIModel,
			VisionModel: ai.XAIVisionModel,
		})
		if err != nil {
			slog.Warn("xai client disabled", "error", err)
		} else {
			service.xai = client
			opts = append(opts, stylist.WithExplainer(client))
			slog.Info("xai client enabled")
		}
	}

	if c := service.newCache(ctx); c != nil {
		service.cache = c
		opts = append(opts, stylist.WithCache(c, service.config.Cache.TTL))
	}

	return stylist.NewService(tables, opts...), nil
}

func (service *CoreService) newCache(ctx context.Context) cache.Cache {
	switch strings.ToLower(service.config.Cache.Type) {
	case "memory":
		return cache.NewMemoryCache()
	case "redis":
		secrets := service.config.Secrets
		c, err := cache.NewRedisCache(ctx, secrets.RedisAddr, secrets.RedisPassword, service.config.Cache.RedisDB)
		if err != nil {
			slog.Warn("redis cache unavailable, using in-memory cache", "error", err)
			return cache.NewMemoryCache()
		}
		return c
	default:
		return nil
	}
}

func (service *CoreService) Metrics() *metrics.Registry {
	return service.metrics
}

func (service *CoreService) AIEnabled() bool {
	return service.xai != nil
}

// Upload stores an uploaded photo and returns its path.
func (service *CoreService) Upload(filename string, r io.Reader) (string, error) {
	return service.uploads.Save(filename, r)
}

// Analyze classifies a previously uploaded photo. The file is removed
// afterwards whether or not the analysis succeeded.
func (service *CoreService) Analyze(ctx context.Context, path string) (skintone.Result, error) {
	resolved, err := service.uploads.Resolve(path)
	if err != nil {
		return skintone.Result{}, err
	}

	data, readErr := os.ReadFile(resolved)
	if err := service.uploads.Remove(resolved); err != nil {
		slog.Warn("failed to remove upload", "path", resolved, "error", err)
	}
	if readErr != nil {
		return skintone.Result{}, fmt.Errorf("%w: %v", skintone.ErrUnreadableImage, readErr)
	}

	return service.AnalyzeBytes(ctx, data)
}

// AnalyzeBytes classifies an in-memory photo.
func (service *CoreService) AnalyzeBytes(ctx context.Context, data []byte) (skintone.Result, error) {
	result, err := service.analyzer.AnalyzeBytes(data)
	if err != nil {
		reason := "unreadable"
		if errors.Is(err, skintone.ErrNoFaceDetected) {
			reason = "no_face"
		}
		service.metrics.Inc(ctx, metrics.AnalysisErrorsTotal, map[string]string{"reason": reason}, 1)
		return skintone.Result{}, err
	}

	service.metrics.Inc(ctx, metrics.AnalysesTotal, map[string]string{
		"skin_tone": string(result.SkinTone),
		"undertone": string(result.Undertone),
		"region":    result.Region,
	}, 1)
	slog.Debug("skin tone analyzed",
		"skin_tone", result.SkinTone, "undertone", result.Undertone, "hex", result.Hex, "region", result.Region)
	return result, nil
}

// Recommend builds a bundle for profile. When userID is set the bundle is
// stored and its id returned, otherwise the id is zero.
func (service *CoreService) Recommend(ctx context.Context, userID string, profile stylist.Profile) (stylist.Bundle, int64, error) {
	profile = profile.WithDefaults()
	bundle := service.stylist.Recommend(ctx, profile)
	if userID == "" {
		return bundle, 0, nil
	}

	payload, err := json.Marshal(bundle)
	if err != nil {
		return bundle, 0, fmt.Errorf("failed to encode recommendation: %w", err)
	}
	id, err := service.databaseService.SaveRecommendation(&database.Recommendation{
		UserID:    userID,
		SkinTone:  string(profile.SkinTone),
		Undertone: string(profile.Undertone),
		Payload:   payload,
	})
	if err != nil {
		return bundle, 0, err
	}
	return bundle, id, nil
}

func (service *CoreService) SubmitFeedback(feedback *database.Feedback) (int64, error) {
	return service.databaseService.SaveFeedback(feedback)
}

func (service *CoreService) AddWardrobeItem(item *database.WardrobeItem) (int64, error) {
	return service.databaseService.AddWardrobeItem(item)
}

func (service *CoreService) Wardrobe(userID string) ([]*database.WardrobeItem, error) {
	return service.databaseService.GetWardrobe(userID)
}

// MixAndMatch pairs items into an outfit. Without explicit items the
// stored wardrobe of userID is used, newest first.
func (service *CoreService) MixAndMatch(userID string, items []stylist.Item, occasion string) (stylist.Combination, error) {
	if len(items) == 0 && userID != "" {
		stored, err := service.databaseService.GetWardrobe(userID)
		if err != nil {
			return stylist.Combination{}, err
		}
		for _, w := range stored {
			items = append(items, stylist.Item{
				ID:       w.ID,
				Type:     w.ItemType,
				Color:    w.Color,
				Style:    w.Style,
				ImageURL: w.ImageURL,
			})
		}
	}
	return stylist.MixAndMatch(items, occasion)
}

func (service *CoreService) Preferences(userID string) (*database.Preferences, error) {
	return service.databaseService.GetUserPreferences(userID)
}

func (service *CoreService) History(userID string, limit int) ([]*database.Recommendation, error) {
	return service.databaseService.GetRecommendations(userID, limit)
}

func (service *CoreService) Trending(limit int) []shopping.TrendingProduct {
	return service.links.Trending(limit)
}

// PaletteSwatch renders the static palette for a tone as a PNG strip.
func (service *CoreService) PaletteSwatch(tone, undertone string) ([]byte, error) {
	skinTone, ok := skintone.ParseSkinTone(tone)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownPalette, tone)
	}
	under, ok := skintone.ParseUndertone(undertone)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownPalette, undertone)
	}

	bundle := service.stylist.Tables().Lookup(stylist.Profile{SkinTone: skinTone, Undertone: under})
	return imaging.RenderSwatch(bundle.PaletteHexes(), SwatchWidth, SwatchHeight)
}

// Advice asks the xAI chat model for free-form styling advice.
func (service *CoreService) Advice(ctx context.Context, profile stylist.Profile) (llm.Advice, error) {
	if service.xai == nil {
		return llm.Advice{}, ErrAIDisabled
	}
	ctx, cancel := context.WithTimeout(ctx, service.config.AI.AdviceTimeout)
	defer cancel()
	return service.xai.Advice(ctx, profile.WithDefaults())
}

// VisionAnalyze asks the xAI vision model to describe the photo.
func (service *CoreService) VisionAnalyze(ctx context.Context, image []byte) (string, error) {
	if service.xai == nil {
		return "", ErrAIDisabled
	}
	ctx, cancel := context.WithTimeout(ctx, service.config.AI.AdviceTimeout)
	defer cancel()
	return service.xai.AnalyzeImage(ctx, image)
}

func (service *CoreService) Close() error {
	var errs []error
	if service.detector != nil {
		errs = append(errs, service.detector.Close())
	}
	if service.cache != nil {
		errs = append(errs, service.cache.Close())
	}
	if service.databaseService != nil {
		errs = append(errs, service.databaseService.Close())
	}
	return errors.Join(errs...)
}

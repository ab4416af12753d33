package frontend

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/jo-hoe/styleai/internal/core"
	"github.com/jo-hoe/styleai/internal/shopping"
	"github.com/jo-hoe/styleai/internal/skintone"
	"github.com/jo-hoe/styleai/internal/stylist"
	"github.com/jo-hoe/styleai/internal/upload"
)

const (
	MainPageName   = "index.html"
	ResultViewName = "result.html"
)

type FrontendService struct {
	coreService *core.CoreService
}

func NewFrontendService(coreService *core.CoreService) *FrontendService {
	return &FrontendService{
		coreService: coreService,
	}
}

type indexData struct {
	Occasions []string
	Budgets   []string
}

type resultData struct {
	Analysis         skintone.Result
	Bundle           stylist.Bundle
	RecommendationID int64
	Platforms        []string
}

// rootRedirectHandler redirects root path to index.html
func (service *FrontendService) rootRedirectHandler(ctx echo.Context) error {
	return ctx.Redirect(http.StatusMovedPermanently, "/"+MainPageName)
}

func (service *FrontendService) SetRoutes(e *echo.Echo) {
	e.Renderer = NewTemplate()

	e.GET("/", service.rootRedirectHandler) // Redirect root to index.html
	e.GET("/"+MainPageName, service.indexHandler)
	e.POST("/htmx/analyze", service.htmxAnalyzeHandler)

	// Favicon (SVG) route
	e.GET("/icon.svg", service.iconHandler)
}

func (service *FrontendService) indexHandler(ctx echo.Context) error {
	return ctx.Render(http.StatusOK, MainPageName, indexData{
		Occasions: shopping.Occasions(),
		Budgets:   []string{"low", "medium", "high"},
	})
}

// htmxAnalyzeHandler uploads, analyzes and recommends in one step and
// answers with the result fragment.
func (service *FrontendService) htmxAnalyzeHandler(ctx echo.Context) error {
	file, err := ctx.FormFile("image")
	if err != nil {
		slog.Error("htmxAnalyzeHandler: failed to get uploaded file",
			"status", http.StatusBadRequest, "error", err)
		return ctx.String(http.StatusBadRequest, "Please choose a photo first")
	}

	src, err := file.Open()
	if err != nil {
		slog.Error("htmxAnalyzeHandler: failed to open uploaded file",
			"status", http.StatusInternalServerError, "error", err, "filename", file.Filename)
		return ctx.String(http.StatusInternalServerError, "Failed to open uploaded file")
	}
	defer func() {
		if cerr := src.Close(); cerr != nil {
			slog.Error("htmxAnalyzeHandler: failed to close uploaded file reader", "error", cerr, "filename", file.Filename)
		}
	}()

	path, err := service.coreService.Upload(file.Filename, src)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, upload.ErrEmptyUpload) {
			status = http.StatusBadRequest
		}
		slog.Error("htmxAnalyzeHandler: failed to store uploaded file",
			"status", status, "error", err, "filename", file.Filename)
		return ctx.String(status, "Failed to store uploaded file")
	}

	analysis, err := service.coreService.Analyze(ctx.Request().Context(), path)
	if err != nil {
		slog.Warn("htmxAnalyzeHandler: failed to analyze image",
			"status", http.StatusUnprocessableEntity, "error", err, "filename", file.Filename)
		return ctx.String(http.StatusUnprocessableEntity, analysisMessage(err))
	}

	profile := stylist.Profile{
		SkinTone:  analysis.SkinTone,
		Undertone: analysis.Undertone,
		Occasion:  ctx.FormValue("occasion"),
		Gender:    ctx.FormValue("gender"),
		Budget:    ctx.FormValue("budget"),
		Vibe:      ctx.FormValue("vibe"),
	}
	bundle, id, err := service.coreService.Recommend(ctx.Request().Context(), ctx.FormValue("user_id"), profile)
	if err != nil {
		slog.Error("htmxAnalyzeHandler: failed to save recommendation",
			"status", http.StatusInternalServerError, "error", err)
		return ctx.String(http.StatusInternalServerError, "Failed to save recommendation")
	}

	service.setNoCache(ctx)
	return ctx.Render(http.StatusOK, ResultViewName, resultData{
		Analysis:         analysis,
		Bundle:           bundle,
		RecommendationID: id,
		Platforms:        shopping.Platforms,
	})
}

func analysisMessage(err error) string {
	switch {
	case errors.Is(err, skintone.ErrNoFaceDetected):
		return "No face found in the photo. Try a well lit, front facing picture."
	case errors.Is(err, skintone.ErrUnreadableImage):
		return "The file could not be read as an image."
	default:
		return "Failed to analyze image"
	}
}

func (service *FrontendService) setNoCache(ctx echo.Context) {
	ctx.Response().Header().Set("Cache-Control", "no-store, no-cache, must-revalidate, max-age=0")
	ctx.Response().Header().Set("Pragma", "no-cache")
	ctx.Response().Header().Set("Expires", "0")
}

func (service *FrontendService) iconHandler(ctx echo.Context) error {
	data, err := assetsFS.ReadFile("views/icon.svg")
	if err != nil {
		slog.Error("iconHandler: failed to read icon.svg", "status", http.StatusInternalServerError, "error", err)
		return ctx.String(http.StatusInternalServerError, "Failed to load icon")
	}
	// Cache for 7 days
	ctx.Response().Header().Set("Cache-Control", "public, max-age=604800, immutable")
	return ctx.Blob(http.StatusOK, "image/svg+xml", data)
}

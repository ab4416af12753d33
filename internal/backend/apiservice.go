package backend

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/jo-hoe/styleai/internal/backend/database"
	"github.com/jo-hoe/styleai/internal/core"
	"github.com/jo-hoe/styleai/internal/skintone"
	"github.com/jo-hoe/styleai/internal/stylist"
	"github.com/jo-hoe/styleai/internal/upload"
)

const (
	imageFormField      = "image"
	defaultHistoryLimit = 10
	anonymousUser       = "anonymous"
)

type APIService struct {
	coreService *core.CoreService
}

func NewAPIService(coreService *core.CoreService) *APIService {
	return &APIService{
		coreService: coreService,
	}
}

func (s *APIService) SetRoutes(e *echo.Echo) {
	// Set probe route
	e.GET("/probe", func(c echo.Context) error {
		return c.String(http.StatusOK, "API Service is running")
	})
	e.GET("/metrics", s.coreService.Metrics().EchoHandlerText)

	e.POST("/upload", s.uploadHandler)
	e.POST("/analyze", s.analyzeHandler)
	e.POST("/analyze/photo", s.analyzePhotoHandler)
	e.POST("/analyze/vision", s.visionHandler)
	e.POST("/recommend", s.recommendHandler)
	e.POST("/advice", s.adviceHandler)
	e.POST("/feedback", s.feedbackHandler)

	e.POST("/wardrobe", s.addWardrobeHandler)
	e.GET("/wardrobe/:userId", s.getWardrobeHandler)
	e.POST("/wardrobe/mix", s.mixHandler)

	e.GET("/preferences/:userId", s.preferencesHandler)
	e.GET("/history/:userId", s.historyHandler)
	e.GET("/shopping/trending", s.trendingHandler)
	e.GET("/palette/:tone/:undertone", s.paletteHandler)
}

type analyzeRequest struct {
	FilePath string `json:"filepath" validate:"required"`
}

type analyzeResponse struct {
	Success bool `json:"success"`
	skintone.Result
}

type profileRequest struct {
	UserID    string `json:"user_id"`
	SkinTone  string `json:"skin_tone"`
	Undertone string `json:"undertone"`
	Occasion  string `json:"occasion"`
	Gender    string `json:"gender" validate:"omitempty,oneof=female male Female Male"`
	Budget    string `json:"budget"`
	Vibe      string `json:"vibe"`
	Weather   string `json:"weather"`
	Color     string `json:"color" validate:"max=40"`
}

func (r profileRequest) profile() stylist.Profile {
	return stylist.Profile{
		SkinTone:  skintone.SkinTone(r.SkinTone),
		Undertone: skintone.Undertone(r.Undertone),
		Occasion:  r.Occasion,
		Gender:    r.Gender,
		Budget:    r.Budget,
		Vibe:      r.Vibe,
		Weather:   r.Weather,
		Color:     r.Color,
	}
}

type recommendResponse struct {
	Success          bool  `json:"success"`
	RecommendationID int64 `json:"recommendation_id,omitempty"`
	stylist.Bundle
}

type feedbackRequest struct {
	UserID           string `json:"user_id"`
	RecommendationID *int64 `json:"recommendation_id"`
	Liked            bool   `json:"liked"`
	Comment          string `json:"comment" validate:"max=2000"`
}

type wardrobeRequest struct {
	UserID   string `json:"user_id" validate:"required"`
	Type     string `json:"type" validate:"required"`
	Color    string `json:"color"`
	Style    string `json:"style"`
	ImageURL string `json:"image_url" validate:"omitempty,url"`
}

type mixRequest struct {
	UserID   string         `json:"user_id"`
	Items    []stylist.Item `json:"items"`
	Occasion string         `json:"occasion"`
}

type paletteRequest struct {
	Tone      string `validate:"required,skintone"`
	Undertone string `validate:"required,undertone"`
}

func (s *APIService) uploadHandler(c echo.Context) error {
	path, err := s.saveUpload(c, "uploadHandler")
	if err != nil {
		return s.fail(c, "uploadHandler", "failed to store uploaded file", err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"success":  true,
		"filepath": path,
		"filename": filepath.Base(path),
	})
}

func (s *APIService) analyzeHandler(c echo.Context) error {
	var req analyzeRequest
	if err := s.bind(c, &req); err != nil {
		return s.badRequest(c, "analyzeHandler", err)
	}

	result, err := s.coreService.Analyze(c.Request().Context(), req.FilePath)
	if err != nil {
		return s.fail(c, "analyzeHandler", "failed to analyze image", err)
	}
	return c.JSON(http.StatusOK, analyzeResponse{Success: true, Result: result})
}

func (s *APIService) analyzePhotoHandler(c echo.Context) error {
	path, err := s.saveUpload(c, "analyzePhotoHandler")
	if err != nil {
		return s.fail(c, "analyzePhotoHandler", "failed to store uploaded file", err)
	}

	result, err := s.coreService.Analyze(c.Request().Context(), path)
	if err != nil {
		return s.fail(c, "analyzePhotoHandler", "failed to analyze image", err)
	}
	return c.JSON(http.StatusOK, analyzeResponse{Success: true, Result: result})
}

func (s *APIService) visionHandler(c echo.Context) error {
	data, err := readUpload(c)
	if err != nil {
		return s.fail(c, "visionHandler", "failed to read uploaded file", err)
	}

	analysis, err := s.coreService.VisionAnalyze(c.Request().Context(), data)
	if err != nil {
		return s.failUpstream(c, "visionHandler", "vision analysis failed", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "analysis": analysis})
}

func (s *APIService) recommendHandler(c echo.Context) error {
	var req profileRequest
	if err := s.bind(c, &req); err != nil {
		return s.badRequest(c, "recommendHandler", err)
	}

	bundle, id, err := s.coreService.Recommend(c.Request().Context(), req.UserID, req.profile())
	if err != nil {
		return s.fail(c, "recommendHandler", "failed to save recommendation", err)
	}
	return c.JSON(http.StatusOK, recommendResponse{Success: true, RecommendationID: id, Bundle: bundle})
}

func (s *APIService) adviceHandler(c echo.Context) error {
	var req profileRequest
	if err := s.bind(c, &req); err != nil {
		return s.badRequest(c, "adviceHandler", err)
	}

	advice, err := s.coreService.Advice(c.Request().Context(), req.profile())
	if err != nil {
		return s.failUpstream(c, "adviceHandler", "failed to get advice", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "advice": advice.Text, "model": advice.Model})
}

func (s *APIService) feedbackHandler(c echo.Context) error {
	var req feedbackRequest
	if err := s.bind(c, &req); err != nil {
		return s.badRequest(c, "feedbackHandler", err)
	}
	if req.UserID == "" {
		req.UserID = anonymousUser
	}

	_, err := s.coreService.SubmitFeedback(&database.Feedback{
		UserID:           req.UserID,
		RecommendationID: req.RecommendationID,
		Liked:            req.Liked,
		Comment:          req.Comment,
	})
	if err != nil {
		return s.fail(c, "feedbackHandler", "failed to save feedback", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "message": "Feedback saved"})
}

func (s *APIService) addWardrobeHandler(c echo.Context) error {
	var req wardrobeRequest
	if err := s.bind(c, &req); err != nil {
		return s.badRequest(c, "addWardrobeHandler", err)
	}

	_, err := s.coreService.AddWardrobeItem(&database.WardrobeItem{
		UserID:   req.UserID,
		ItemType: req.Type,
		Color:    req.Color,
		Style:    req.Style,
		ImageURL: req.ImageURL,
	})
	if err != nil {
		return s.fail(c, "addWardrobeHandler", "failed to add wardrobe item", err)
	}
	return s.wardrobeResponse(c, "addWardrobeHandler", req.UserID)
}

func (s *APIService) getWardrobeHandler(c echo.Context) error {
	return s.wardrobeResponse(c, "getWardrobeHandler", c.Param("userId"))
}

func (s *APIService) wardrobeResponse(c echo.Context, handlerName, userID string) error {
	items, err := s.coreService.Wardrobe(userID)
	if err != nil {
		return s.fail(c, handlerName, "failed to load wardrobe", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "items": items})
}

func (s *APIService) mixHandler(c echo.Context) error {
	var req mixRequest
	if err := s.bind(c, &req); err != nil {
		return s.badRequest(c, "mixHandler", err)
	}

	outfit, err := s.coreService.MixAndMatch(req.UserID, req.Items, req.Occasion)
	if err != nil {
		return s.fail(c, "mixHandler", err.Error(), err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "outfit": outfit})
}

func (s *APIService) preferencesHandler(c echo.Context) error {
	prefs, err := s.coreService.Preferences(c.Param("userId"))
	if err != nil {
		return s.fail(c, "preferencesHandler", "failed to load preferences", err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"success":          true,
		"liked_percentage": prefs.LikedPercentage,
		"total_feedback":   prefs.TotalFeedback,
	})
}

func (s *APIService) historyHandler(c echo.Context) error {
	limit, err := intQueryParam(c, "limit", defaultHistoryLimit)
	if err != nil {
		return s.badRequest(c, "historyHandler", err)
	}

	recs, err := s.coreService.History(c.Param("userId"), limit)
	if err != nil {
		return s.fail(c, "historyHandler", "failed to load history", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "recommendations": recs})
}

func (s *APIService) trendingHandler(c echo.Context) error {
	limit, err := intQueryParam(c, "limit", 0)
	if err != nil {
		return s.badRequest(c, "trendingHandler", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "products": s.coreService.Trending(limit)})
}

func (s *APIService) paletteHandler(c echo.Context) error {
	req := paletteRequest{
		Tone:      c.Param("tone"),
		Undertone: strings.TrimSuffix(c.Param("undertone"), ".png"),
	}
	if err := c.Validate(&req); err != nil {
		return s.jsonError(c, "paletteHandler", http.StatusNotFound, "unknown palette", err)
	}

	png, err := s.coreService.PaletteSwatch(req.Tone, req.Undertone)
	if err != nil {
		return s.fail(c, "paletteHandler", "failed to render palette", err)
	}
	c.Response().Header().Set("Cache-Control", "public, max-age=86400")
	return c.Blob(http.StatusOK, "image/png", png)
}

var errMissingImage = errors.New("no image provided")

func (s *APIService) saveUpload(c echo.Context, handlerName string) (string, error) {
	file, err := c.FormFile(imageFormField)
	if err != nil {
		return "", errMissingImage
	}
	if file.Filename == "" || file.Size == 0 {
		return "", upload.ErrEmptyUpload
	}

	src, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer func() {
		if cerr := src.Close(); cerr != nil {
			slog.Error(handlerName+": failed to close uploaded file reader", "error", cerr, "filename", file.Filename)
		}
	}()

	return s.coreService.Upload(file.Filename, src)
}

func readUpload(c echo.Context) ([]byte, error) {
	file, err := c.FormFile(imageFormField)
	if err != nil {
		return nil, errMissingImage
	}
	src, err := file.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer func() {
		_ = src.Close()
	}()

	data, err := io.ReadAll(src)
	if err != nil {
		return nil, fmt.Errorf("failed to read uploaded file: %w", err)
	}
	if len(data) == 0 {
		return nil, upload.ErrEmptyUpload
	}
	return data, nil
}

func (s *APIService) bind(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return err
	}
	return c.Validate(req)
}

func (s *APIService) badRequest(c echo.Context, handlerName string, err error) error {
	msg := err.Error()
	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		msg = fmt.Sprint(httpErr.Message)
	}
	return s.jsonError(c, handlerName, http.StatusBadRequest, msg, err)
}

// fail maps domain errors onto status codes and writes a JSON error body.
func (s *APIService) fail(c echo.Context, handlerName, msg string, err error) error {
	status := errorStatus(err)
	if status != http.StatusInternalServerError {
		msg = err.Error()
	}
	return s.jsonError(c, handlerName, status, msg, err)
}

// failUpstream reports errors from the AI collaborators as 502 unless the
// collaborator is not configured at all.
func (s *APIService) failUpstream(c echo.Context, handlerName, msg string, err error) error {
	if errors.Is(err, core.ErrAIDisabled) {
		return s.fail(c, handlerName, msg, err)
	}
	return s.jsonError(c, handlerName, http.StatusBadGateway, msg, err)
}

func (s *APIService) jsonError(c echo.Context, handlerName string, status int, msg string, err error) error {
	if status >= http.StatusInternalServerError {
		slog.Error(handlerName+": "+msg, "status", status, "error", err)
	} else {
		slog.Warn(handlerName+": "+msg, "status", status, "error", err)
	}
	return c.JSON(status, echo.Map{"error": msg})
}

func errorStatus(err error) int {
	switch {
	case errors.Is(err, upload.ErrInvalidPath), errors.Is(err, upload.ErrEmptyUpload), errors.Is(err, errMissingImage):
		return http.StatusBadRequest
	case errors.Is(err, skintone.ErrUnreadableImage), errors.Is(err, skintone.ErrNoFaceDetected):
		return http.StatusUnprocessableEntity
	case errors.Is(err, stylist.ErrNotEnoughItems), errors.Is(err, stylist.ErrNoCombination):
		return http.StatusUnprocessableEntity
	case errors.Is(err, database.ErrUnknownRecommendation), errors.Is(err, core.ErrUnknownPalette):
		return http.StatusNotFound
	case errors.Is(err, core.ErrAIDisabled):
		return http.StatusServiceUnavailable
	default:
		var httpErr *echo.HTTPError
		if errors.As(err, &httpErr) {
			return httpErr.Code
		}
		return http.StatusInternalServerError
	}
}

func intQueryParam(c echo.Context, name string, defaultValue int) (int, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return defaultValue, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 0 {
		return 0, fmt.Errorf("invalid %s: %q", name, raw)
	}
	return value, nil
}

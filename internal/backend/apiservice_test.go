package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/jo-hoe/styleai/internal/common"
	"github.com/jo-hoe/styleai/internal/core"
	"github.com/jo-hoe/styleai/internal/metrics"
)

func newTestServer(t *testing.T) *echo.Echo {
	t.Helper()
	e, _ := newTestServerWithCore(t)
	return e
}

func newTestServerWithCore(t *testing.T) (*echo.Echo, *core.CoreService) {
	t.Helper()
	config := core.DefaultConfig()
	config.Database = core.Database{Type: "sqlite", ConnectionString: ":memory:"}
	config.UploadDir = filepath.Join(t.TempDir(), "uploads")

	coreService, err := core.NewCoreService(context.Background(), config, metrics.NewRegistry())
	if err != nil {
		t.Fatalf("NewCoreService error: %v", err)
	}
	t.Cleanup(func() { _ = coreService.Close() })

	e := echo.New()
	e.Validator = &common.GenericEchoValidator{}
	NewAPIService(coreService).SetRoutes(e)
	return e, coreService
}

func doJSON(t *testing.T, e *echo.Echo, method, target, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	var out map[string]any
	if strings.HasPrefix(rec.Header().Get(echo.HeaderContentType), echo.MIMEApplicationJSON) {
		if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
			t.Fatalf("response is not JSON: %v (%s)", err, rec.Body.String())
		}
	}
	return rec, out
}

func doMultipart(t *testing.T, e *echo.Echo, target, filename string, data []byte) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	if filename != "" {
		part, err := writer.CreateFormFile("image", filename)
		if err != nil {
			t.Fatalf("CreateFormFile error: %v", err)
		}
		_, _ = part.Write(data)
	}
	_ = writer.Close()

	req := httptest.NewRequest(http.MethodPost, target, &body)
	req.Header.Set(echo.HeaderContentType, writer.FormDataContentType())
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	var out map[string]any
	_ = json.Unmarshal(rec.Body.Bytes(), &out)
	return rec, out
}

func facePNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 32, 32))
	for y := 0; y < 32; y++ {
		for x := 0; x < 32; x++ {
			img.Set(x, y, color.RGBA{R: 170, G: 130, B: 100, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png.Encode error: %v", err)
	}
	return buf.Bytes()
}

func TestAPI_Probe(t *testing.T) {
	e := newTestServer(t)
	rec, _ := doJSON(t, e, http.MethodGet, "/probe", "")
	if rec.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", rec.Code)
	}
}

func TestAPI_UploadThenAnalyze(t *testing.T) {
	e := newTestServer(t)

	rec, out := doMultipart(t, e, "/upload", "me.png", facePNG(t))
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}
	path, _ := out["filepath"].(string)
	if path == "" || out["success"] != true {
		t.Fatalf("Unexpected upload response: %v", out)
	}
	if !strings.HasSuffix(out["filename"].(string), "_me.png") {
		t.Errorf("Unexpected filename %v", out["filename"])
	}

	body, _ := json.Marshal(map[string]string{"filepath": path})
	rec, out = doJSON(t, e, http.MethodPost, "/analyze", string(body))
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if out["skin_tone"] != "Olive" || out["undertone"] != "warm" || out["hex"] != "#aa8264" || out["region"] != "center" {
		t.Errorf("Unexpected analysis: %v", out)
	}

	// the upload is consumed by the first analysis
	rec, _ = doJSON(t, e, http.MethodPost, "/analyze", string(body))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400 for consumed upload, got %d", rec.Code)
	}
}

func TestAPI_UploadErrors(t *testing.T) {
	e := newTestServer(t)

	tests := []struct {
		name     string
		filename string
		data     []byte
	}{
		{"missing field", "", nil},
		{"empty file", "me.png", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, out := doMultipart(t, e, "/upload", tt.filename, tt.data)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("Expected status 400, got %d", rec.Code)
			}
			if out["error"] == nil {
				t.Errorf("Expected error body, got %v", out)
			}
		})
	}
}

func TestAPI_AnalyzeErrors(t *testing.T) {
	e := newTestServer(t)

	tests := []struct {
		name string
		body string
		want int
	}{
		{"missing filepath", `{}`, http.StatusBadRequest},
		{"outside uploads", `{"filepath":"/etc/passwd"}`, http.StatusBadRequest},
		{"malformed json", `{"filepath":`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, out := doJSON(t, e, http.MethodPost, "/analyze", tt.body)
			if rec.Code != tt.want {
				t.Errorf("Expected status %d, got %d", tt.want, rec.Code)
			}
			if out["error"] == nil {
				t.Errorf("Expected error body, got %v", out)
			}
		})
	}

	rec, _ := doMultipart(t, e, "/analyze/photo", "broken.png", []byte("definitely not a png"))
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("Expected status 422 for unreadable image, got %d", rec.Code)
	}
}

func TestAPI_AnalyzePhoto(t *testing.T) {
	e := newTestServer(t)
	rec, out := doMultipart(t, e, "/analyze/photo", "me.png", facePNG(t))
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if out["skin_tone"] != "Olive" {
		t.Errorf("Expected Olive, got %v", out["skin_tone"])
	}
}

func TestAPI_RecommendAndFeedback(t *testing.T) {
	e := newTestServer(t)

	rec, out := doJSON(t, e, http.MethodPost, "/recommend",
		`{"user_id":"u1","skin_tone":"Fair","undertone":"warm","occasion":"wedding","budget":"high"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if out["success"] != true || out["source"] != "static" || out["ai_unavailable"] != false {
		t.Errorf("Unexpected recommendation flags: %v", out)
	}
	if palette, _ := out["color_palette"].([]any); len(palette) == 0 {
		t.Error("Expected a color palette")
	}
	shop, _ := out["shopping"].(map[string]any)
	for _, platform := range []string{"amazon", "flipkart", "myntra"} {
		if _, ok := shop[platform]; !ok {
			t.Errorf("Expected shopping links for %s", platform)
		}
	}
	id, _ := out["recommendation_id"].(float64)
	if id == 0 {
		t.Fatalf("Expected recommendation_id, got %v", out["recommendation_id"])
	}

	rec, out = doJSON(t, e, http.MethodPost, "/feedback",
		`{"user_id":"u1","recommendation_id":`+jsonNumber(id)+`,"liked":true,"comment":"nice"}`)
	if rec.Code != http.StatusOK || out["message"] != "Feedback saved" {
		t.Fatalf("Unexpected feedback response %d: %v", rec.Code, out)
	}

	rec, _ = doJSON(t, e, http.MethodPost, "/feedback", `{"user_id":"u1","recommendation_id":9999,"liked":true}`)
	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected status 404 for unknown recommendation, got %d", rec.Code)
	}

	rec, out = doJSON(t, e, http.MethodGet, "/preferences/u1", "")
	if rec.Code != http.StatusOK || out["total_feedback"] != float64(1) || out["liked_percentage"] != float64(100) {
		t.Errorf("Unexpected preferences %d: %v", rec.Code, out)
	}

	rec, out = doJSON(t, e, http.MethodGet, "/history/u1?limit=5", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rec.Code)
	}
	if recs, _ := out["recommendations"].([]any); len(recs) != 1 {
		t.Errorf("Expected 1 history entry, got %v", out["recommendations"])
	}

	rec, _ = doJSON(t, e, http.MethodGet, "/history/u1?limit=abc", "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400 for bad limit, got %d", rec.Code)
	}
}

func TestAPI_RecommendValidation(t *testing.T) {
	e := newTestServer(t)
	rec, out := doJSON(t, e, http.MethodPost, "/recommend", `{"gender":"robot"}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", rec.Code)
	}
	if msg, _ := out["error"].(string); !strings.Contains(msg, "gender") {
		t.Errorf("Expected error to name gender, got %q", msg)
	}
}

func TestAPI_Wardrobe(t *testing.T) {
	e := newTestServer(t)

	rec, _ := doJSON(t, e, http.MethodPost, "/wardrobe", `{"user_id":"u1"}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400 for missing type, got %d", rec.Code)
	}

	rec, out := doJSON(t, e, http.MethodPost, "/wardrobe", `{"user_id":"u1","type":"Jeans","color":"Blue"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if items, _ := out["items"].([]any); len(items) != 1 {
		t.Errorf("Expected 1 item, got %v", out["items"])
	}

	rec, _ = doJSON(t, e, http.MethodPost, "/wardrobe/mix", `{"user_id":"u1"}`)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("Expected status 422 with a single item, got %d", rec.Code)
	}

	_, _ = doJSON(t, e, http.MethodPost, "/wardrobe", `{"user_id":"u1","type":"Kurta","color":"Red"}`)
	rec, out = doJSON(t, e, http.MethodGet, "/wardrobe/u1", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rec.Code)
	}
	items, _ := out["items"].([]any)
	if len(items) != 2 || items[0].(map[string]any)["type"] != "Kurta" {
		t.Errorf("Expected newest item first, got %v", items)
	}

	rec, out = doJSON(t, e, http.MethodPost, "/wardrobe/mix", `{"user_id":"u1","occasion":"office"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}
	outfit, _ := out["outfit"].(map[string]any)
	if outfit["occasion"] != "office" || outfit["top"].(map[string]any)["type"] != "Kurta" {
		t.Errorf("Unexpected outfit: %v", outfit)
	}
}

func TestAPI_Trending(t *testing.T) {
	e := newTestServer(t)
	rec, out := doJSON(t, e, http.MethodGet, "/shopping/trending?limit=2", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rec.Code)
	}
	if products, _ := out["products"].([]any); len(products) != 2 {
		t.Errorf("Expected 2 products, got %v", out["products"])
	}
}

func TestAPI_Palette(t *testing.T) {
	e := newTestServer(t)

	rec, _ := doJSON(t, e, http.MethodGet, "/palette/Deep/cool.png", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get(echo.HeaderContentType); ct != "image/png" {
		t.Errorf("Expected image/png, got %s", ct)
	}
	if _, err := png.Decode(rec.Body); err != nil {
		t.Errorf("Expected PNG body: %v", err)
	}

	rec, _ = doJSON(t, e, http.MethodGet, "/palette/Green/cool.png", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected status 404 for unknown tone, got %d", rec.Code)
	}
}

func TestAPI_AIDisabled(t *testing.T) {
	e := newTestServer(t)

	rec, _ := doJSON(t, e, http.MethodPost, "/advice", `{"skin_tone":"Fair"}`)
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("Expected status 503 for advice, got %d", rec.Code)
	}
	rec, _ = doMultipart(t, e, "/analyze/vision", "me.png", facePNG(t))
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("Expected status 503 for vision, got %d", rec.Code)
	}
}

func TestAPI_Metrics(t *testing.T) {
	e := newTestServer(t)
	_, _ = doMultipart(t, e, "/analyze/photo", "me.png", facePNG(t))

	rec, _ := doJSON(t, e, http.MethodGet, "/metrics", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "skin_analyses_total") {
		t.Errorf("Expected analysis counter in metrics, got %s", rec.Body.String())
	}
}

func TestAPI_AnalyzePhotoCountsAnalysis(t *testing.T) {
	e, coreService := newTestServerWithCore(t)
	rec, _ := doMultipart(t, e, "/analyze/photo", "me.png", facePNG(t))
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	labels := map[string]string{"skin_tone": "Olive", "undertone": "warm", "region": "center"}
	if got := coreService.Metrics().Value(metrics.AnalysesTotal, labels); got != 1 {
		t.Errorf("Expected 1 counted analysis, got %d", got)
	}
}

func TestAPI_RecommendUnknownBudgetFallsBack(t *testing.T) {
	e := newTestServer(t)
	rec, out := doJSON(t, e, http.MethodPost, "/recommend", `{"skin_tone":"Deep","undertone":"cool","budget":"luxury"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}
	shop, _ := out["shopping"].(map[string]any)
	products, _ := shop["amazon"].([]any)
	if len(products) == 0 {
		t.Fatalf("Expected amazon products, got %v", shop)
	}
	for _, p := range products {
		price, _ := p.(map[string]any)["price"].(float64)
		if price < 2099 || price > 5099 {
			t.Errorf("Expected a medium budget price, got %v", price)
		}
	}
}

func jsonNumber(f float64) string {
	b, _ := json.Marshal(int64(f))
	return string(b)
}

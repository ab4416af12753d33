package imaging

import (
	"fmt"
	"image"
	"log/slog"

	"golang.org/x/image/draw"
)

const ScaleCommandName = "ScaleCommand"

// ScaleParams bounds the output size. Images already inside the box are
// left untouched.
type ScaleParams struct {
	MaxWidth  int
	MaxHeight int
}

func NewScaleParamsFromMap(params map[string]any) (*ScaleParams, error) {
	if err := ValidateRequiredParams(params, []string{"maxWidth", "maxHeight"}); err != nil {
		return nil, err
	}

	maxWidth := GetIntParam(params, "maxWidth", 0)
	maxHeight := GetIntParam(params, "maxHeight", 0)
	if maxWidth <= 0 {
		return nil, fmt.Errorf("maxWidth must be positive, got %d", maxWidth)
	}
	if maxHeight <= 0 {
		return nil, fmt.Errorf("maxHeight must be positive, got %d", maxHeight)
	}

	return &ScaleParams{MaxWidth: maxWidth, MaxHeight: maxHeight}, nil
}

// ScaleCommand downsizes large photos, preserving the aspect ratio.
type ScaleCommand struct {
	params *ScaleParams
}

func NewScaleCommand(params map[string]any) (Command, error) {
	typedParams, err := NewScaleParamsFromMap(params)
	if err != nil {
		return nil, err
	}
	return &ScaleCommand{params: typedParams}, nil
}

func (c *ScaleCommand) Name() string {
	return ScaleCommandName
}

func (c *ScaleCommand) Params() ScaleParams {
	return *c.params
}

func (c *ScaleCommand) Execute(imageData []byte) ([]byte, error) {
	img, _, err := decodeImage(imageData)
	if err != nil {
		return nil, err
	}

	bounds := img.Bounds()
	width, height := fitWithin(bounds.Dx(), bounds.Dy(), c.params.MaxWidth, c.params.MaxHeight)
	if width == bounds.Dx() && height == bounds.Dy() {
		slog.Debug("ScaleCommand: image within bounds; returning original bytes",
			"width", width,
			"height", height)
		return imageData, nil
	}

	slog.Debug("ScaleCommand: scaling image",
		"original_width", bounds.Dx(),
		"original_height", bounds.Dy(),
		"scaled_width", width,
		"scaled_height", height)

	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Src, nil)
	return encodePNG(dst)
}

// fitWithin returns the largest size with the same aspect ratio that fits
// into maxW x maxH. It never enlarges and never returns a zero side.
func fitWithin(w, h, maxW, maxH int) (int, int) {
	if w <= maxW && h <= maxH {
		return w, h
	}
	scale := min(float64(maxW)/float64(w), float64(maxH)/float64(h))
	return max(1, int(float64(w)*scale)), max(1, int(float64(h)*scale))
}

func init() {
	if err := DefaultRegistry.Register(ScaleCommandName, NewScaleCommand); err != nil {
		panic(fmt.Sprintf("failed to register %s: %v", ScaleCommandName, err))
	}
}

package imaging

import (
	"fmt"
	"image"
	"log/slog"

	"golang.org/x/image/draw"
)

const CropCommandName = "CropCommand"

// CropParams keeps the central Fraction of each side. Width and height,
// when set, cap the result in pixels.
type CropParams struct {
	Fraction float64
	Width    int
	Height   int
}

func NewCropParamsFromMap(params map[string]any) (*CropParams, error) {
	fraction := GetFloatParam(params, "fraction", 1)
	width := GetIntParam(params, "width", 0)
	height := GetIntParam(params, "height", 0)

	if fraction <= 0 || fraction > 1 {
		return nil, fmt.Errorf("fraction must be in (0, 1], got %v", fraction)
	}
	if width < 0 {
		return nil, fmt.Errorf("width must not be negative, got %d", width)
	}
	if height < 0 {
		return nil, fmt.Errorf("height must not be negative, got %d", height)
	}
	if fraction == 1 && width == 0 && height == 0 {
		return nil, fmt.Errorf("crop needs a fraction below 1 or a width/height")
	}

	return &CropParams{Fraction: fraction, Width: width, Height: height}, nil
}

// CropCommand center crops photos so the subject fills more of the frame.
type CropCommand struct {
	params *CropParams
}

func NewCropCommand(params map[string]any) (Command, error) {
	typedParams, err := NewCropParamsFromMap(params)
	if err != nil {
		return nil, err
	}
	return &CropCommand{params: typedParams}, nil
}

func (c *CropCommand) Name() string {
	return CropCommandName
}

func (c *CropCommand) Params() CropParams {
	return *c.params
}

func (c *CropCommand) Execute(imageData []byte) ([]byte, error) {
	img, _, err := decodeImage(imageData)
	if err != nil {
		return nil, err
	}

	bounds := img.Bounds()
	rect := c.cropRect(bounds)
	if rect == bounds {
		slog.Debug("CropCommand: no crop needed",
			"width", bounds.Dx(),
			"height", bounds.Dy())
		return imageData, nil
	}

	slog.Debug("CropCommand: performing center crop",
		"original_width", bounds.Dx(),
		"original_height", bounds.Dy(),
		"crop_x", rect.Min.X,
		"crop_y", rect.Min.Y,
		"crop_width", rect.Dx(),
		"crop_height", rect.Dy())

	dst := image.NewRGBA(image.Rect(0, 0, rect.Dx(), rect.Dy()))
	draw.Copy(dst, image.Point{}, img, rect, draw.Src, nil)
	return encodePNG(dst)
}

func (c *CropCommand) cropRect(bounds image.Rectangle) image.Rectangle {
	w := max(1, int(float64(bounds.Dx())*c.params.Fraction))
	h := max(1, int(float64(bounds.Dy())*c.params.Fraction))
	if c.params.Width > 0 {
		w = min(w, c.params.Width)
	}
	if c.params.Height > 0 {
		h = min(h, c.params.Height)
	}

	x0 := bounds.Min.X + (bounds.Dx()-w)/2
	y0 := bounds.Min.Y + (bounds.Dy()-h)/2
	return image.Rect(x0, y0, x0+w, y0+h)
}

func init() {
	if err := DefaultRegistry.Register(CropCommandName, NewCropCommand); err != nil {
		panic(fmt.Sprintf("failed to register %s: %v", CropCommandName, err))
	}
}

package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/png"
	"log/slog"

	_ "image/gif"
	_ "image/jpeg"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

const NormalizeCommandName = "NormalizeCommand"

var pngSignature = []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A}

// NormalizeCommand re-encodes any supported raster format as PNG.
type NormalizeCommand struct{}

func NewNormalizeCommand(map[string]any) (Command, error) {
	return &NormalizeCommand{}, nil
}

func (c *NormalizeCommand) Name() string {
	return NormalizeCommandName
}

func (c *NormalizeCommand) Execute(imageData []byte) ([]byte, error) {
	if bytes.HasPrefix(imageData, pngSignature) {
		slog.Debug("NormalizeCommand: PNG detected; returning original bytes")
		return imageData, nil
	}

	img, format, err := decodeImage(imageData)
	if err != nil {
		return nil, err
	}
	slog.Debug("NormalizeCommand: decoded image",
		"format", format,
		"width", img.Bounds().Dx(),
		"height", img.Bounds().Dy())

	return encodePNG(img)
}

// MaxPixels bounds width*height of an image any command will decode.
const MaxPixels = 89_478_485

var ErrImageTooLarge = errors.New("image too large")

// decodeImage checks the header dimensions against MaxPixels before
// decoding the pixel data.
func decodeImage(imageData []byte) (image.Image, string, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(imageData))
	if err != nil {
		return nil, "", fmt.Errorf("failed to decode image: %w", err)
	}
	if int64(cfg.Width)*int64(cfg.Height) > MaxPixels {
		return nil, "", fmt.Errorf("%w: %dx%d exceeds %d pixels", ErrImageTooLarge, cfg.Width, cfg.Height, MaxPixels)
	}

	img, format, err := image.Decode(bytes.NewReader(imageData))
	if err != nil {
		return nil, "", fmt.Errorf("failed to decode image: %w", err)
	}
	return img, format, nil
}

func encodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode image to PNG: %w", err)
	}
	return buf.Bytes(), nil
}

func init() {
	if err := DefaultRegistry.Register(NormalizeCommandName, NewNormalizeCommand); err != nil {
		panic(fmt.Sprintf("failed to register %s: %v", NormalizeCommandName, err))
	}
}

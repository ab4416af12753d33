package skintone

import (
	"bytes"
	"fmt"
	"image"
)

// MaxPixels bounds width*height of a photo accepted for analysis. Larger
// headers are rejected before any pixel buffer is allocated.
const MaxPixels = 89_478_485

// CheckDimensions reads only the image header and rejects images whose
// pixel count exceeds MaxPixels.
func CheckDimensions(data []byte) (image.Config, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return image.Config{}, fmt.Errorf("%w: %v", ErrUnreadableImage, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return image.Config{}, fmt.Errorf("%w: empty image", ErrUnreadableImage)
	}
	if int64(cfg.Width)*int64(cfg.Height) > MaxPixels {
		return image.Config{}, fmt.Errorf("%w: %dx%d exceeds %d pixels", ErrUnreadableImage, cfg.Width, cfg.Height, MaxPixels)
	}
	return cfg, nil
}

// Decode decodes data once its header has passed CheckDimensions.
func Decode(data []byte) (image.Image, string, error) {
	if _, err := CheckDimensions(data); err != nil {
		return nil, "", err
	}
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrUnreadableImage, err)
	}
	return img, format, nil
}

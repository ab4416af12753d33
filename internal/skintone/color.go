package skintone

import (
	"fmt"
	"strconv"
	"strings"
)

// ColorSample is an 8-bit RGB triple, usually the mean color of a sampled region.
type ColorSample struct {
	R int `json:"r"`
	G int `json:"g"`
	B int `json:"b"`
}

// Brightness returns the unweighted channel mean.
func (c ColorSample) Brightness() float64 {
	return float64(c.R+c.G+c.B) / 3
}

// RGB returns the components as an array, the shape used in API responses.
func (c ColorSample) RGB() [3]int {
	return [3]int{c.R, c.G, c.B}
}

// Hex renders the sample as a lowercase, zero padded "#rrggbb" string.
func (c ColorSample) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", clampByte(c.R), clampByte(c.G), clampByte(c.B))
}

// ParseHex decodes "#rrggbb" or "rrggbb" (any case) into a ColorSample.
func ParseHex(s string) (ColorSample, error) {
	h := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(h) != 6 {
		return ColorSample{}, fmt.Errorf("invalid hex color %q: expected 6 hex digits", s)
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return ColorSample{}, fmt.Errorf("invalid hex color %q: %w", s, err)
	}
	return ColorSample{
		R: int(v >> 16 & 0xff),
		G: int(v >> 8 & 0xff),
		B: int(v & 0xff),
	}, nil
}

func clampByte(v int) int {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return v
}

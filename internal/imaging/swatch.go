package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"strings"

	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
)

// RenderSwatch draws one vertical stripe per hex color and returns the PNG.
func RenderSwatch(hexColors []string, width, height int) ([]byte, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid swatch dimensions: %dx%d", width, height)
	}
	if len(hexColors) == 0 {
		return nil, fmt.Errorf("swatch needs at least one color")
	}
	return renderSVGToPNG([]byte(swatchSVG(hexColors, width, height)), width, height)
}

func swatchSVG(hexColors []string, width, height int) string {
	stripe := float64(width) / float64(len(hexColors))

	var sb strings.Builder
	fmt.Fprintf(&sb, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">`, width, height, width, height)
	for i, hex := range hexColors {
		fmt.Fprintf(&sb, `<rect x="%.2f" y="0" width="%.2f" height="%d" fill="%s"/>`, float64(i)*stripe, stripe, height, hex)
	}
	sb.WriteString(`</svg>`)
	return sb.String()
}

func renderSVGToPNG(svgData []byte, targetW, targetH int) ([]byte, error) {
	icon, err := oksvg.ReadIconStream(bytes.NewReader(svgData))
	if err != nil {
		return nil, fmt.Errorf("failed to parse SVG: %w", err)
	}
	icon.SetTarget(0, 0, float64(targetW), float64(targetH))

	dst := image.NewRGBA(image.Rect(0, 0, targetW, targetH))
	draw.Draw(dst, dst.Bounds(), &image.Uniform{C: color.White}, image.Point{}, draw.Src)

	scanner := rasterx.NewScannerGV(targetW, targetH, dst, dst.Bounds())
	dasher := rasterx.NewDasher(targetW, targetH, scanner)
	icon.Draw(dasher, 1.0)

	return encodePNG(dst)
}

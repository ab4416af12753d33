package skintone

import (
	"fmt"
	"image"
	"image/color"

	"gonum.org/v1/gonum/stat"
)

type rowSum struct {
	r, g, b int64
	n       int64
}

type regionStats struct {
	mean ColorSample
	// weighted standard deviation of per-row mean brightness
	brightnessSpread float64
}

// MeanColor averages R, G and B over every pixel of the given regions and
// truncates each channel to an integer. Regions are clipped to the image
// bounds. Overlapping regions count shared pixels twice.
func MeanColor(img image.Image, regions ...image.Rectangle) (ColorSample, error) {
	stats, err := sampleRegions(img, regions...)
	if err != nil {
		return ColorSample{}, err
	}
	return stats.mean, nil
}

func sampleRegions(img image.Image, regions ...image.Rectangle) (regionStats, error) {
	if img == nil {
		return regionStats{}, fmt.Errorf("%w: nil image", ErrUnreadableImage)
	}

	var rows []rowSum
	for _, region := range regions {
		rows = append(rows, sumRows(img, region.Intersect(img.Bounds()))...)
	}

	var total rowSum
	rowBrightness := make([]float64, 0, len(rows))
	weights := make([]float64, 0, len(rows))
	for _, row := range rows {
		if row.n == 0 {
			continue
		}
		total.r += row.r
		total.g += row.g
		total.b += row.b
		total.n += row.n
		rowBrightness = append(rowBrightness, float64(row.r+row.g+row.b)/float64(3*row.n))
		weights = append(weights, float64(row.n))
	}
	if total.n == 0 {
		return regionStats{}, fmt.Errorf("%w: sampled region is empty", ErrUnreadableImage)
	}

	stats := regionStats{
		mean: ColorSample{
			R: int(total.r / total.n),
			G: int(total.g / total.n),
			B: int(total.b / total.n),
		},
	}
	if len(rowBrightness) > 1 {
		stats.brightnessSpread = stat.StdDev(rowBrightness, weights)
	}
	return stats, nil
}

// sumRows returns the channel sums of each row of r, computed in parallel.
func sumRows(img image.Image, r image.Rectangle) []rowSum {
	if r.Empty() {
		return nil
	}
	rows := make([]rowSum, r.Dy())
	parallelFor(r.Dy(), func(dy int) {
		y := r.Min.Y + dy
		var s rowSum
		for x := r.Min.X; x < r.Max.X; x++ {
			c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
			s.r += int64(c.R)
			s.g += int64(c.G)
			s.b += int64(c.B)
			s.n++
		}
		rows[dy] = s
	})
	return rows
}

package skintone

import "image"

// CenterRegion returns the middle half of bounds in both dimensions,
// i.e. [w/4, h/4] to [3w/4, 3h/4] relative to the bounds origin.
func CenterRegion(bounds image.Rectangle) image.Rectangle {
	w, h := bounds.Dx(), bounds.Dy()
	return image.Rect(
		bounds.Min.X+w/4, bounds.Min.Y+h/4,
		bounds.Min.X+3*w/4, bounds.Min.Y+3*h/4,
	).Intersect(bounds)
}

// CheekRegions returns the left and right cheek boxes of a face: the 40-70%
// vertical band, intersected with the 10-35% and 65-90% horizontal bands.
// Eyes, nose and mouth stay outside both boxes.
func CheekRegions(face image.Rectangle) (left, right image.Rectangle) {
	w, h := float64(face.Dx()), float64(face.Dy())
	y0 := face.Min.Y + int(h*0.4)
	y1 := face.Min.Y + int(h*0.7)

	left = image.Rect(face.Min.X+int(w*0.1), y0, face.Min.X+int(w*0.35), y1)
	right = image.Rect(face.Min.X+int(w*0.65), y0, face.Min.X+int(w*0.9), y1)
	return left, right
}

// LargestFace picks the box with the largest area. The first box wins ties.
// ok is false for an empty slice.
func LargestFace(faces []image.Rectangle) (largest image.Rectangle, ok bool) {
	best := -1
	for _, f := range faces {
		area := f.Dx() * f.Dy()
		if area > best {
			best = area
			largest = f
			ok = true
		}
	}
	return largest, ok
}

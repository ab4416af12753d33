// Package facedetect locates faces with an OpenCV Haar cascade.
package facedetect

import (
	"errors"
	"fmt"
	"image"
	"log/slog"
	"os"
	"sync"

	"gocv.io/x/gocv"
)

const (
	DefaultScaleFactor  = 1.3
	DefaultMinNeighbors = 5
)

var ErrCascadeNotLoaded = errors.New("face cascade could not be loaded")

// CascadeDetector is safe for concurrent use. Detection calls are serialized
// because the underlying classifier is not.
type CascadeDetector struct {
	mu           sync.Mutex
	classifier   gocv.CascadeClassifier
	scaleFactor  float64
	minNeighbors int
	closed       bool
}

// NewCascadeDetector loads the cascade XML at path, typically
// haarcascade_frontalface_default.xml.
func NewCascadeDetector(path string) (*CascadeDetector, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: no cascade path configured", ErrCascadeNotLoaded)
	}
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCascadeNotLoaded, err)
	}

	classifier := gocv.NewCascadeClassifier()
	if !classifier.Load(path) {
		classifier.Close()
		return nil, fmt.Errorf("%w: invalid cascade file %s", ErrCascadeNotLoaded, path)
	}

	slog.Info("loaded face cascade", "path", path)
	return &CascadeDetector{
		classifier:   classifier,
		scaleFactor:  DefaultScaleFactor,
		minNeighbors: DefaultMinNeighbors,
	}, nil
}

// Detect returns face bounding boxes in image coordinates.
func (d *CascadeDetector) Detect(img image.Image) ([]image.Rectangle, error) {
	mat, err := gocv.ImageToMatRGB(img)
	if err != nil {
		return nil, fmt.Errorf("failed to convert image: %w", err)
	}
	defer mat.Close()

	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(mat, &gray, gocv.ColorBGRToGray)

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil, ErrCascadeNotLoaded
	}
	faces := d.classifier.DetectMultiScaleWithParams(gray, d.scaleFactor, d.minNeighbors, 0, image.Point{}, image.Point{})

	// Mat coordinates start at zero; shift back to the image origin.
	origin := img.Bounds().Min
	for i := range faces {
		faces[i] = faces[i].Add(origin)
	}
	slog.Debug("face detection finished", "faces", len(faces))
	return faces, nil
}

func (d *CascadeDetector) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil
	}
	d.closed = true
	return d.classifier.Close()
}

package skintone

import (
	"fmt"
	"image"
	"log/slog"
	"os"

	// registered decoders for uploads
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

const (
	RegionFace   = "face"
	RegionCenter = "center"
)

// FaceDetector finds face bounding boxes in an image.
type FaceDetector interface {
	Detect(img image.Image) ([]image.Rectangle, error)
}

// Preprocessor transforms raw image bytes before decoding.
type Preprocessor func(data []byte) ([]byte, error)

type Result struct {
	SkinTone         SkinTone    `json:"skin_tone"`
	Undertone        Undertone   `json:"undertone"`
	Color            ColorSample `json:"color"`
	Hex              string      `json:"hex"`
	RGB              [3]int      `json:"rgb"`
	Region           string      `json:"region"`
	BrightnessStdDev float64     `json:"brightness_std_dev"`
}

type Analyzer struct {
	detector   FaceDetector
	preprocess Preprocessor
}

type Option func(*Analyzer)

// WithFaceDetector samples the cheeks of the largest detected face
// instead of the center of the frame.
func WithFaceDetector(detector FaceDetector) Option {
	return func(a *Analyzer) {
		a.detector = detector
	}
}

func WithPreprocessor(p Preprocessor) Option {
	return func(a *Analyzer) {
		a.preprocess = p
	}
}

func NewAnalyzer(opts ...Option) *Analyzer {
	a := &Analyzer{}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// FaceDetection reports whether the analyzer samples detected faces.
func (a *Analyzer) FaceDetection() bool {
	return a.detector != nil
}

func (a *Analyzer) AnalyzeFile(path string) (Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrUnreadableImage, err)
	}
	return a.AnalyzeBytes(data)
}

func (a *Analyzer) AnalyzeBytes(data []byte) (Result, error) {
	if len(data) == 0 {
		return Result{}, fmt.Errorf("%w: empty input", ErrUnreadableImage)
	}
	if a.preprocess != nil {
		if _, err := CheckDimensions(data); err != nil {
			return Result{}, err
		}
		processed, err := a.preprocess(data)
		if err != nil {
			return Result{}, fmt.Errorf("%w: %v", ErrUnreadableImage, err)
		}
		data = processed
	}

	img, format, err := Decode(data)
	if err != nil {
		return Result{}, err
	}
	slog.Debug("decoded image", "format", format, "bounds", img.Bounds().String())
	return a.AnalyzeImage(img)
}

func (a *Analyzer) AnalyzeImage(img image.Image) (Result, error) {
	if img == nil || img.Bounds().Empty() {
		return Result{}, fmt.Errorf("%w: empty image", ErrUnreadableImage)
	}

	if a.detector == nil {
		return classify(img, RegionCenter, CenterRegion(img.Bounds()))
	}

	faces, err := a.detector.Detect(img)
	if err != nil {
		return Result{}, fmt.Errorf("face detection failed: %w", err)
	}
	face, ok := LargestFace(faces)
	if !ok {
		return Result{}, ErrNoFaceDetected
	}
	left, right := CheekRegions(face)
	return classify(img, RegionFace, left, right)
}

// Classify samples the given regions and classifies their mean color.
func Classify(img image.Image, regions ...image.Rectangle) (Result, error) {
	return classify(img, "", regions...)
}

func classify(img image.Image, region string, regions ...image.Rectangle) (Result, error) {
	stats, err := sampleRegions(img, regions...)
	if err != nil {
		return Result{}, err
	}
	c := stats.mean
	return Result{
		SkinTone:         ClassifyTone(c),
		Undertone:        DetectUndertone(c),
		Color:            c,
		Hex:              c.Hex(),
		RGB:              c.RGB(),
		Region:           region,
		BrightnessStdDev: stats.brightnessSpread,
	}, nil
}

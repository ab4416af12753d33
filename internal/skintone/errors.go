package skintone

import "errors"

var (
	// ErrUnreadableImage is returned for empty, corrupt or undecodable input.
	ErrUnreadableImage = errors.New("could not read image")
	// ErrNoFaceDetected is returned when face detection is enabled and finds nothing.
	ErrNoFaceDetected = errors.New("no face detected")
)

package ocr

import "errors"

var (
	// ErrNoTextFound is returned when recognition succeeds but yields no
	// readable text. Callers should treat this differently from backend
	// failures when guiding the user.
	ErrNoTextFound = errors.New("no text could be extracted from the image")

	// ErrEngineUnavailable is returned when the recognition backend cannot
	// be reached or is not configured.
	ErrEngineUnavailable = errors.New("OCR backend unavailable")

	// ErrRecognitionFailed is returned for recognition errors that are
	// neither "no text" nor availability problems.
	ErrRecognitionFailed = errors.New("text recognition failed")
)

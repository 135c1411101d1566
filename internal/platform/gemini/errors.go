package gemini

import "errors"

// Error definitions for the gemini package.
var (
	// ErrInvalidConfig is returned when the recognizer cannot be constructed.
	ErrInvalidConfig = errors.New("invalid gemini configuration")

	// ErrEmptyImage is returned when no image bytes were supplied.
	ErrEmptyImage = errors.New("image cannot be empty")

	// ErrUnsupportedImage is returned for MIME types Gemini does not accept as images.
	ErrUnsupportedImage = errors.New("unsupported image type")

	// ErrNoText is returned when the model produced no text for the image.
	ErrNoText = errors.New("no text recognized")

	// ErrBlocked is returned when the response was withheld by safety filters.
	ErrBlocked = errors.New("response blocked by content filter")
)

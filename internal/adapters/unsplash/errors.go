package unsplash

import "errors"

var (
	// ErrMissingAccessKey is returned when no API key is configured.
	ErrMissingAccessKey = errors.New("unsplash access key is not configured")

	// ErrNoResult is returned when the search yields no usable photo.
	ErrNoResult = errors.New("no image found")
)

package api

import "errors"

// Sentinel kinds for API errors.
var (
	ErrBadRequest       = errors.New("bad request")
	ErrMissingUserID    = errors.New("missing user_id")
	ErrMissingCityID    = errors.New("missing city_id")
	ErrInvalidPreferred = errors.New("preferred must be \"new\" or \"existing\"")
	ErrMissingQuery     = errors.New("missing query")
	ErrUnavailable      = errors.New("feature not configured")
)

package types

import "errors"

var (
	ErrInvalidRequest     = errors.New("invalid request")
	ErrNotFound           = errors.New("not found")
	ErrDatasetNotLoaded   = errors.New("dataset not loaded")
	ErrSessionNotFound    = errors.New("agent session not found")
	ErrUnsupportedFormat  = errors.New("unsupported file format")
	ErrClimateUnavailable = errors.New("climate data unavailable")
)

// Package common provides shared utilities and types used across the application.
package common

import "errors"

// Common application errors.
var (
	// Storage errors.
	ErrNotFound = errors.New("not found")
	ErrStorage  = errors.New("storage failed")

	// Pipeline errors. These are routine traffic-shaping outcomes, not
	// exceptional conditions; only ErrStorage warrants caller escalation.
	ErrExtraction = errors.New("extraction failed")
	ErrValidation = errors.New("validation failed")

	// Inference errors.
	ErrNoScore       = errors.New("no parseable score")
	ErrEmptyResponse = errors.New("empty inference response")

	// Configuration errors.
	ErrMissingConfig = errors.New("missing configuration")
	ErrInvalidConfig = errors.New("invalid configuration")
)

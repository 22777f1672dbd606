package contract

import "errors"

var (
	ErrGeneration = errors.New("model generation failed")
	ErrLookup     = errors.New("catalog lookup failed")
	ErrValidation = errors.New("validation failed")
)

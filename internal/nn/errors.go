package nn

import "github.com/pkg/errors"

var (
	// ErrInvalidPoolMode is returned for a pooling mode other than max or mean.
	ErrInvalidPoolMode = errors.New("invalid pool mode")

	// ErrInvalidBatchSize is returned for a non-positive batch size.
	ErrInvalidBatchSize = errors.New("invalid batch size")

	// ErrStateDict is returned when a state dict does not match the layer.
	ErrStateDict = errors.New("state dict mismatch")
)

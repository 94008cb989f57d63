package domain

import (
	"errors"
	"fmt"
)

// ErrValidation marks errors caused by bad caller input, so transports can
// classify them without knowing each message.
var ErrValidation = errors.New("invalid input")

// Invalidf builds a validation error with a formatted message.
func Invalidf(format string, args ...any) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrValidation)
}

package graph

import "errors"

var (
	ErrElementNotFound   = errors.New("element not found")
	ErrInvalidKind       = errors.New("invalid element kind")
	ErrNotLight          = errors.New("element is not a light")
	ErrInvalidConnection = errors.New("elements cannot be connected")
	ErrInvariant         = errors.New("circuit invariant violated")
)

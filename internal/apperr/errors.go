// Package apperr holds the error kinds shared across the search pipeline.
package apperr

import "errors"

var (
	ErrMalformedArchive  = errors.New("malformed archive")
	ErrUnsupportedType   = errors.New("unsupported object type")
	ErrCyclicReference   = errors.New("cyclic reference")
	ErrTypeMismatch      = errors.New("type mismatch")
	ErrEngineUnavailable = errors.New("query engine unavailable")
)

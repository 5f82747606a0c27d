package trx

import "errors"

var (
	ErrNotFound            = errors.New("not found")
	ErrInvalidID           = errors.New("invalid id")
	ErrUnresolvedReference = errors.New("unresolved product reference")
)

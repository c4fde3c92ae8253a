package imports

import "errors"

var (
	ErrNotFound    = errors.New("saved import not found")
	ErrUnknownKind = errors.New("unknown import kind")
)

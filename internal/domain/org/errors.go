package org

import "errors"

var (
	ErrNotFound       = errors.New("organization not found")
	ErrParentNotFound = errors.New("parent organization not found")
	ErrNotTemplate    = errors.New("organization is not a template")
)

// Package domain provides shared domain-level sentinel errors.
package domain

import "errors"

// ErrNotFound indicates the requested entity does not exist.
var ErrNotFound = errors.New("not found")

// ErrValidation indicates the input failed validation before any state change.
var ErrValidation = errors.New("validation failed")

// ErrConflict indicates the resource already exists.
var ErrConflict = errors.New("already exists")

// Package errors provides custom error types for inventory operations.
package errors

import "errors"

var ErrBookNotFound = errors.New("book not found")

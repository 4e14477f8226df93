package storage

import "errors"

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// ErrInvalidPath is returned for document paths that are empty, contain
// empty segments, or do not address a document (odd segment count).
var ErrInvalidPath = errors.New("invalid document path")

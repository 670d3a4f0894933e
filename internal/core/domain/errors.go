package domain

import "errors"

var (
	// ErrTransitionAborted is returned by a camera host when a newer
	// transition superseded the one in flight.
	ErrTransitionAborted = errors.New("camera transition aborted")

	// ErrSpatialReferenceMismatch means a polygon and a point (or the host)
	// do not share a spatial reference.
	ErrSpatialReferenceMismatch = errors.New("spatial reference mismatch")

	// ErrNotFound is returned by repositories when a record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput marks a request that failed validation.
	ErrInvalidInput = errors.New("invalid input")
)

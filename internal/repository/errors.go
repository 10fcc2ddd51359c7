package repository

import "errors"

var (
	// ErrVisitNotFound is returned when no visit carries the requested id.
	ErrVisitNotFound = errors.New("visit not found")

	// ErrActiveVisitExists is returned when the national id already has an open visit.
	ErrActiveVisitExists = errors.New("visitor already has an active visit")
)

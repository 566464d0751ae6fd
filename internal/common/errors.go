// Package common defines shared constants and sentinel errors used across
// the storage layers of drivedb. Callers should use errors.Is to match
// these values.
package common

import "errors"

var (
	// Caller/contract violations. Raised before any statement executes.
	ErrInvalidArgument = errors.New("invalid argument")
	ErrInvalidCursor   = errors.New("invalid cursor")

	// Repository-level errors.
	ErrNotFound         = errors.New("not found")
	ErrUniqueConstraint = errors.New("unique constraint violation")

	// Data-integrity impossibilities (schema promised something the row
	// does not satisfy). Never defaulted, always surfaced.
	ErrDataCorruption = errors.New("data corruption")
)

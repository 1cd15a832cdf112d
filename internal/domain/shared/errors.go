// Package shared contains common domain types, errors and events that are
// used across all domain packages.
package shared

import "errors"

// Common domain errors. Infrastructure implementations translate their
// backend-specific failures into these so callers never switch on driver
// error strings.
var (
	// ErrNotFound indicates the requested entity does not exist locally.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates a uniqueness violation.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidArgument indicates the caller supplied a value that can
	// never be valid (negative XP, empty user id, unknown period).
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrChallengeExpired indicates an attempt to advance a challenge past
	// its deadline. Expired incomplete challenges are terminally failed.
	ErrChallengeExpired = errors.New("challenge expired")

	// ErrXPDecrease indicates an operation that would lower total XP,
	// which the progress model never allows.
	ErrXPDecrease = errors.New("total xp must not decrease")

	// ErrStoreClosed indicates the local store has been shut down.
	ErrStoreClosed = errors.New("store closed")
)

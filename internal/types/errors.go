package types

import "errors"

// Sentinel errors for ListCutter operations.
var (
	// ErrEmptySegment indicates a segment was compiled with no active rules.
	// Compiling an empty segment would ambiguously match everyone or no one,
	// so callers must skip inactive rules and check for this instead.
	ErrEmptySegment = errors.New("segment has no active rules")

	// ErrUnknownActivity indicates an activity value outside the enum.
	ErrUnknownActivity = errors.New("unknown activity kind")

	// ErrEventNotFound indicates an event lookup by ID matched no row.
	ErrEventNotFound = errors.New("activity event not found")
)

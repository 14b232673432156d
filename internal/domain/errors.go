package domain

import "errors"

// Sentinel errors returned by store implementations. Service layers map
// these onto structured errors with HTTP semantics.
var (
	ErrNotFound      = errors.New("not found")
	ErrDuplicateVote = errors.New("already voted")
)

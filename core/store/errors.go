package store

import "errors"

// Errors returned by Store operations. Only StoreFailure-class errors
// (wrapping an underlying rawdb/I-O error) are fatal to the engine; these
// sentinel errors are all ordinary, locally-recoverable conditions.
var (
	// ErrAlreadyExists is returned by PutBlock and ApplyBlock when any
	// block is already recorded at the requested unfinalized height, and by
	// WriteGenesis once genesis has been written.
	ErrAlreadyExists = errors.New("store: block already exists at height")

	// ErrFinalityViolation is returned by PutBlock when writing at or
	// below finalized_height.
	ErrFinalityViolation = errors.New("store: write below finalized height")

	// ErrNotFound is returned by lookups for an absent block, certificate,
	// or receipt.
	ErrNotFound = errors.New("store: not found")

	// ErrNonMonotonic is returned by SetFinalizedHeight on an attempted
	// decrease.
	ErrNonMonotonic = errors.New("store: finalized height must not decrease")
)

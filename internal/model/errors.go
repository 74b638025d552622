package model

import "errors"

// Sentinel errors forming the run-level failure taxonomy. Callers classify
// failures with errors.Is; stages add context with fmt.Errorf("...: %w", ...).
//
// Row-level parse failures are not part of this taxonomy: the ingestor
// recovers from them locally and surfaces only a skip count.
var (
	// ErrInput marks an unreadable input path or an input with no usable header.
	ErrInput = errors.New("input error")

	// ErrInsufficientData marks an input with fewer valid rows than the
	// configured minimum after skipping malformed ones.
	ErrInsufficientData = errors.New("insufficient data")

	// ErrConfiguration marks an invalid parameter, detected before any data
	// is processed.
	ErrConfiguration = errors.New("configuration error")

	// ErrClustering marks a fatal clustering failure, e.g. more clusters
	// requested than distinct feature vectors.
	ErrClustering = errors.New("clustering error")

	// ErrOutput marks a report destination that cannot be written. It occurs
	// only after the computation succeeded.
	ErrOutput = errors.New("output error")
)

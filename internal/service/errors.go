// Package service implements the reservation core: inventory
// snapshots, seat allocation, cancellation and sales reporting. The
// services own the concurrency protocol (transaction + FOR UPDATE
// discipline via the store's WithTx) and return typed errors; they
// never expose half-applied state.
package service

import "errors"

// ErrInvalidRank is returned when a rank is not one of S, A, B, C.
var ErrInvalidRank = errors.New("invalid rank")

// ErrSoldOut is returned when no sheet of the requested rank is free.
var ErrSoldOut = errors.New("sold out")

// ErrNotReserved is returned when cancelling a sheet with no active
// reservation. A second cancel of the same sheet lands here; callers
// must not treat it as retryable-to-success.
var ErrNotReserved = errors.New("not reserved")

// ErrNotPermitted is returned when a user tries to cancel a
// reservation they do not own. Nothing beyond this boolean leaks
// about the actual owner.
var ErrNotPermitted = errors.New("not permitted")

// ErrStorageUnavailable is returned when the storage layer fails.
// Mutating operations surface it after a full rollback and are never
// retried internally; read paths retry a few times first.
var ErrStorageUnavailable = errors.New("storage unavailable")

// readAttempts bounds the internal retries of the read-only snapshot
// and report paths on transient storage errors.
const readAttempts = 3

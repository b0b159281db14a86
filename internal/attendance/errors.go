package attendance

import "errors"

var (
	// ErrTenantNotSet means the tenant context is missing; no core operation
	// runs without one.
	ErrTenantNotSet = errors.New("tenant context not set")

	// ErrDuplicateEvent means an online event of the same type already exists
	// for the worker today.
	ErrDuplicateEvent = errors.New("already recorded for today")

	// ErrNoPriorCheckIn means a check-out arrived with no check-in to close.
	ErrNoPriorCheckIn = errors.New("no check-in found for today")
)

// Package services defines the business logic for catalog synchronization,
// webhook reconciliation, product queries, and store configuration. This file
// centralizes common service-level error values so that they can be
// consistently returned by service methods and checked by callers.
//
// These errors are intended for internal use by the service layer and
// translation into user-facing messages or HTTP status codes should be
// performed at the handler layer.
package services

import "errors"

var (
	// ErrProductNotFound indicates that the requested product does not exist
	// or has been soft-deleted.
	ErrProductNotFound = errors.New("product not found")

	// ErrInvalidMargin is returned when a price margin falls outside the
	// exclusive (0, 1) range.
	ErrInvalidMargin = errors.New("margin must be greater than zero and less than 1")

	// ErrProcessNotFound indicates that the requested sync process id is not
	// present in the active registry.
	ErrProcessNotFound = errors.New("sync process not found")

	// ErrSyncAlreadyRunning is returned by the trigger path when another sync
	// process is still active and exclusivity is requested.
	ErrSyncAlreadyRunning = errors.New("a sync process is already running")

	// ErrMissingIdentity is returned by the mapper when an upstream record
	// carries no usable identifiers.
	ErrMissingIdentity = errors.New("upstream product has no usable identity")
)

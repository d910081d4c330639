package interfaces

import "currency-observer/src/models"

// -----------------------------------------------------------------------------
// IRateSource defines the contract for fetching the current rate table.
// -----------------------------------------------------------------------------

type IRateSource interface {

	// -----------------------------------------------------------------------------

	// Name returns the unique identifier of the source
	Name() string

	// -----------------------------------------------------------------------------

	// Fetch performs exactly one live request and returns the resulting
	// snapshot. No internal retry, no caching; any shape deviation in the
	// response is an error.
	Fetch() (*models.MRateSnapshot, error)
}

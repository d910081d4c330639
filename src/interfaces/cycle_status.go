package interfaces

import "currency-observer/src/models"

// -----------------------------------------------------------------------------
// ICycleStatus exposes read-only facts about the most recent dispatch cycle,
// for the HTTP status endpoints.
// -----------------------------------------------------------------------------

type ICycleStatus interface {

	// -----------------------------------------------------------------------------

	// LastCycleAt returns the fetch timestamp of the last successful cycle,
	// or 0 if none has completed yet.
	LastCycleAt() int64

	// -----------------------------------------------------------------------------

	// Currencies lists the codes seen in the last successful cycle's
	// snapshot, sorted by code.
	Currencies() []models.MCurrencyInfo
}

package interfaces

import "currency-observer/src/models"

// -----------------------------------------------------------------------------
// IDelivery defines the transport contract for pushing a payload to one
// connected session. Owned by the server; the dispatcher only enqueues.
// -----------------------------------------------------------------------------

type IDelivery interface {

	// -----------------------------------------------------------------------------

	// SendToSession pushes a payload to exactly one identified connection.
	// Fire-and-forget: no acknowledgment is awaited and a failed send is
	// never retried by the caller.
	SendToSession(sessionID string, payload models.MRateUpdate) error
}

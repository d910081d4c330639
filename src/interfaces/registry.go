package interfaces

// -----------------------------------------------------------------------------
// ISubscriptionRegistry defines the shared subscription table reachable by
// both the connection-event handlers and the poll loop.
// -----------------------------------------------------------------------------

// SubscriptionEntry is one (session, currency) pair at snapshot time.
type SubscriptionEntry struct {
	SessionID    string
	CurrencyCode string
}

type ISubscriptionRegistry interface {

	// -----------------------------------------------------------------------------

	// Register inserts or overwrites the entry for sessionID. Last write wins.
	Register(sessionID, currencyCode string)

	// -----------------------------------------------------------------------------

	// Unregister removes the entry if present; no-op when absent.
	Unregister(sessionID string)

	// -----------------------------------------------------------------------------

	// SnapshotEntries returns a point-in-time copy of the current entries,
	// safe to call while concurrent Register/Unregister calls occur.
	SnapshotEntries() []SubscriptionEntry
}

package registry

import (
	"strings"
	"sync"

	"currency-observer/src/interfaces"
	"currency-observer/src/logger"
)

// -----------------------------------------------------------------------------

// SubscriptionRegistry is the shared subscription table: one currency code per
// session. Connection-event handlers write to it while the poll loop reads;
// a single RWMutex keeps both sides consistent. Keys are session ids, so a
// session absent from the map receives no updates.
type SubscriptionRegistry struct {
	entries map[string]string
	mu      sync.RWMutex
	Logger  *logger.Logger
}

// -----------------------------------------------------------------------------

func NewSubscriptionRegistry(log *logger.Logger) *SubscriptionRegistry {
	return &SubscriptionRegistry{
		entries: make(map[string]string),
		Logger:  log,
	}
}

// -----------------------------------------------------------------------------

// Register inserts or overwrites the entry for sessionID. Codes are not
// validated here: an unknown code is simply never matched during dispatch.
// Repeated calls replace the prior choice (last write wins).
func (r *SubscriptionRegistry) Register(sessionID, currencyCode string) {
	code := strings.ToUpper(strings.TrimSpace(currencyCode))

	r.mu.Lock()
	r.entries[sessionID] = code
	r.mu.Unlock()

	r.Logger.Info("Session %s subscribed to %s", sessionID, code)
}

// -----------------------------------------------------------------------------

// Unregister removes the entry if present. Unregistering an unknown session
// is a no-op, not an error.
func (r *SubscriptionRegistry) Unregister(sessionID string) {
	r.mu.Lock()
	_, found := r.entries[sessionID]
	delete(r.entries, sessionID)
	r.mu.Unlock()

	if found {
		r.Logger.Info("Session %s unsubscribed", sessionID)
	}
}

// -----------------------------------------------------------------------------

// SnapshotEntries returns a point-in-time copy of the table. Safe to call
// while concurrent Register/Unregister calls occur; the caller iterates the
// copy without holding any lock.
func (r *SubscriptionRegistry) SnapshotEntries() []interfaces.SubscriptionEntry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entries := make([]interfaces.SubscriptionEntry, 0, len(r.entries))
	for sessionID, code := range r.entries {
		entries = append(entries, interfaces.SubscriptionEntry{
			SessionID:    sessionID,
			CurrencyCode: code,
		})
	}
	return entries
}

// -----------------------------------------------------------------------------

// Len reports the number of active subscriptions.
func (r *SubscriptionRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

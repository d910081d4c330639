package dispatcher

import (
	"sort"
	"sync"

	"currency-observer/src/interfaces"
	"currency-observer/src/logger"
	"currency-observer/src/models"
)

// -----------------------------------------------------------------------------

// Dispatcher runs one notification cycle: fetch a snapshot, filter the
// registry against it, and hand per-subscriber payloads to the delivery
// channel. RunOnce is driven sequentially by the poll loop, which is what
// keeps per-subscriber delivery order monotonic across cycles.
type Dispatcher struct {
	Source   interfaces.IRateSource
	Registry interfaces.ISubscriptionRegistry
	Delivery interfaces.IDelivery
	Logger   *logger.Logger

	lastCycleAt    int64
	lastCurrencies []models.MCurrencyInfo
	statsMu        sync.RWMutex
}

// -----------------------------------------------------------------------------

func NewDispatcher(
	source interfaces.IRateSource,
	reg interfaces.ISubscriptionRegistry,
	delivery interfaces.IDelivery,
	log *logger.Logger,
) *Dispatcher {
	return &Dispatcher{
		Source:   source,
		Registry: reg,
		Delivery: delivery,
		Logger:   log,
	}
}

// -----------------------------------------------------------------------------

// RunOnce executes a single cycle. A fetch failure abandons the whole cycle
// (zero deliveries); a failed send to one session is logged and the rest of
// the cycle proceeds. Never returns an error to the caller: no cycle outcome
// is fatal to the poll loop.
func (d *Dispatcher) RunOnce() {
	snapshot, err := d.Source.Fetch()
	if err != nil {
		d.Logger.Warning("Fetch failed, skipping cycle: %v", err)
		return
	}

	delivered := 0
	skipped := 0

	for _, entry := range d.Registry.SnapshotEntries() {
		quote, ok := snapshot.Quote(entry.CurrencyCode)
		if !ok {
			// Code absent from this snapshot: not an error, the subscriber
			// stays registered and may match again next cycle.
			skipped++
			continue
		}

		payload := models.MRateUpdate{
			Type:         "update",
			CurrencyCode: entry.CurrencyCode,
			CurrentRate:  quote.Value,
			PreviousRate: quote.Previous,
		}

		if err := d.Delivery.SendToSession(entry.SessionID, payload); err != nil {
			// Delivery failure never unregisters; only an explicit
			// disconnect event does.
			d.Logger.Warning("Delivery to session %s failed: %v", entry.SessionID, err)
			continue
		}
		delivered++
	}

	currencies := make([]models.MCurrencyInfo, 0, len(snapshot.Rates))
	for code, quote := range snapshot.Rates {
		currencies = append(currencies, models.MCurrencyInfo{
			Code:    code,
			Name:    quote.Name,
			Nominal: quote.Nominal,
		})
	}
	sort.Slice(currencies, func(i, j int) bool { return currencies[i].Code < currencies[j].Code })

	d.statsMu.Lock()
	d.lastCycleAt = snapshot.FetchedAt
	d.lastCurrencies = currencies
	d.statsMu.Unlock()

	if delivered > 0 || skipped > 0 {
		d.Logger.Debug("Cycle complete: %d delivered, %d skipped", delivered, skipped)
	}
}

// -----------------------------------------------------------------------------

// LastCycleAt returns the fetch timestamp of the most recent successful cycle.
func (d *Dispatcher) LastCycleAt() int64 {
	d.statsMu.RLock()
	defer d.statsMu.RUnlock()
	return d.lastCycleAt
}

// -----------------------------------------------------------------------------

// Currencies lists the codes seen in the most recent successful snapshot,
// sorted by code. Used by the HTTP status endpoints for rendering; this is
// within-cycle state, not rate storage.
func (d *Dispatcher) Currencies() []models.MCurrencyInfo {
	d.statsMu.RLock()
	defer d.statsMu.RUnlock()

	out := make([]models.MCurrencyInfo, len(d.lastCurrencies))
	copy(out, d.lastCurrencies)
	return out
}

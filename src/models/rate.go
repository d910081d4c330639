package models

import "github.com/shopspring/decimal"

// -----------------------------------------------------------------------------
// Rate Snapshot Structures
// -----------------------------------------------------------------------------

// MRateQuote holds one currency's current and previous values from a fetch.
type MRateQuote struct {
	CharCode string          `json:"currency_code"`
	Name     string          `json:"name"`
	Nominal  int             `json:"nominal"`
	Value    decimal.Decimal `json:"current_rate"`
	Previous decimal.Decimal `json:"previous_rate"`
}

// -----------------------------------------------------------------------------

// MRateSnapshot is the result of one fetch, keyed by currency code.
// Immutable once produced; discarded after the dispatch cycle that used it.
type MRateSnapshot struct {
	Rates     map[string]MRateQuote
	FetchedAt int64
}

// -----------------------------------------------------------------------------

// Quote returns the entry for code, if present.
func (s *MRateSnapshot) Quote(code string) (MRateQuote, bool) {
	q, ok := s.Rates[code]
	return q, ok
}

package models

import "github.com/shopspring/decimal"

// -----------------------------------------------------------------------------
// WebSocket Protocol Structures (Matches the socket events of the legacy app)
// -----------------------------------------------------------------------------

// MSelectCommand for client messages
type MSelectCommand struct {
	Command      string `json:"command"`
	CurrencyCode string `json:"currency_code"`
}

// -----------------------------------------------------------------------------

// MSessionHello announces the session id back to a freshly connected client.
type MSessionHello struct {
	Type string `json:"type"` // "client_id"
	ID   string `json:"id"`
}

// -----------------------------------------------------------------------------

// MSelectAck confirms a currency selection.
type MSelectAck struct {
	Type    string `json:"type"` // "currency_selected"
	Message string `json:"message"`
	ID      string `json:"id"`
}

// -----------------------------------------------------------------------------

// MRateUpdate is the per-subscriber payload pushed on each cycle.
type MRateUpdate struct {
	Type         string          `json:"type"` // "update"
	CurrencyCode string          `json:"currency_code"`
	CurrentRate  decimal.Decimal `json:"current_rate"`
	PreviousRate decimal.Decimal `json:"previous_rate"`
}

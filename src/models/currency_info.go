package models

// MCurrencyInfo is one selectable currency, as last seen in the feed.
type MCurrencyInfo struct {
	Code    string `json:"code"`
	Name    string `json:"name"`
	Nominal int    `json:"nominal"`
}

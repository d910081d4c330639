package cbr

import (
	"encoding/json"
	"fmt"
	"time"

	"currency-observer/src/helpers"
	"currency-observer/src/interfaces"
	"currency-observer/src/logger"
	"currency-observer/src/models"

	"github.com/shopspring/decimal"
)

// -----------------------------------------------------------------------------

// CBRSource fetches the daily rate table published by the Central Bank of
// Russia (daily_json.js). Every Fetch is one live request; the feed already
// carries the current and previous value per currency, so no state is kept
// between calls.
type CBRSource struct {
	Config  *models.MConfig
	Network interfaces.INetworkManager
	Logger  *logger.Logger
}

// -----------------------------------------------------------------------------

func NewCBRSource(cfg *models.MConfig, netMgr interfaces.INetworkManager) *CBRSource {
	return &CBRSource{
		Config:  cfg,
		Network: netMgr,
		Logger:  logger.NewLogger(cfg.LogLevel, "CBRSource"),
	}
}

// -----------------------------------------------------------------------------

func (s *CBRSource) Name() string {
	return "cbr"
}

// -----------------------------------------------------------------------------

// cbrResponse mirrors the daily_json.js document. Only the Valute map is
// consumed; the date fields are kept for debug logging.
type cbrResponse struct {
	Date         string `json:"Date"`
	PreviousDate string `json:"PreviousDate"`
	Valute       map[string]struct {
		ID       string          `json:"ID"`
		NumCode  string          `json:"NumCode"`
		CharCode string          `json:"CharCode"`
		Nominal  int             `json:"Nominal"`
		Name     string          `json:"Name"`
		Value    decimal.Decimal `json:"Value"`
		Previous decimal.Decimal `json:"Previous"`
	} `json:"Valute"`
}

// -----------------------------------------------------------------------------

// Fetch performs one request against the configured endpoint and parses the
// result into a snapshot. Any shape deviation is a fetch failure.
func (s *CBRSource) Fetch() (*models.MRateSnapshot, error) {
	body, err := s.Network.Get(s.Config.Source.EndpointURL, nil)
	if err != nil {
		return nil, helpers.NewFetchError("rate request failed", err)
	}

	return s.parseDailyResponse(body)
}

// -----------------------------------------------------------------------------

func (s *CBRSource) parseDailyResponse(data []byte) (*models.MRateSnapshot, error) {
	var resp cbrResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, helpers.NewFetchError("json unmarshal failed", err)
	}

	if len(resp.Valute) == 0 {
		return nil, helpers.NewFetchError("no Valute map in response", nil)
	}

	snapshot := &models.MRateSnapshot{
		Rates:     make(map[string]models.MRateQuote, len(resp.Valute)),
		FetchedAt: time.Now().Unix(),
	}

	for code, entry := range resp.Valute {
		// The map key and CharCode agree in practice; trust the key and skip
		// entries without a usable value.
		if code == "" {
			continue
		}
		if entry.Value.IsZero() && entry.Previous.IsZero() {
			s.Logger.Debug("Skipping empty quote for %s", code)
			continue
		}

		snapshot.Rates[code] = models.MRateQuote{
			CharCode: code,
			Name:     entry.Name,
			Nominal:  entry.Nominal,
			Value:    entry.Value,
			Previous: entry.Previous,
		}
	}

	if len(snapshot.Rates) == 0 {
		return nil, helpers.NewFetchError(fmt.Sprintf("no usable quotes among %d entries", len(resp.Valute)), nil)
	}

	s.Logger.Debug("Fetched %d currencies [%s <- %s]", len(snapshot.Rates), resp.Date, resp.PreviousDate)

	return snapshot, nil
}

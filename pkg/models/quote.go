package models

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// Quote is a single price observation for an instrument. Values are
// immutable once constructed; a newer Quote for the same symbol replaces
// the old one wholesale.
type Quote struct {
	Symbol    string
	Price     decimal.Decimal
	Timestamp time.Time
}

type quoteJSON struct {
	Symbol    string          `json:"symbol"`
	Price     json.RawMessage `json:"price"`
	Timestamp string          `json:"timestamp"`
}

// MarshalJSON emits the price as a plain JSON number (no quotes, no float
// rounding) and the timestamp as an ISO-8601 UTC string.
func (q Quote) MarshalJSON() ([]byte, error) {
	return json.Marshal(quoteJSON{
		Symbol:    q.Symbol,
		Price:     json.RawMessage(q.Price.String()),
		Timestamp: q.Timestamp.UTC().Format(time.RFC3339Nano),
	})
}

func (q *Quote) UnmarshalJSON(data []byte) error {
	var raw struct {
		Symbol    string          `json:"symbol"`
		Price     decimal.Decimal `json:"price"`
		Timestamp time.Time       `json:"timestamp"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	q.Symbol = raw.Symbol
	q.Price = raw.Price
	q.Timestamp = raw.Timestamp
	return nil
}

// Instrument is one entry of the static catalog exposed over HTTP.
type Instrument struct {
	Symbol string `json:"symbol"`
	Name   string `json:"name"`
}

package store

import (
	"context"

	"github.com/fasihgithub/LivePricesProject/pkg/models"
)

// Store is the latest-value price cache: one entry per symbol, newest
// quote wins. Lookups for symbols never written report not-found rather
// than a zero quote.
type Store interface {
	// Set unconditionally replaces the cached quote for its symbol.
	// A quote with an empty symbol is ignored.
	Set(ctx context.Context, q models.Quote) error

	// Get returns the current quote for the symbol (case-insensitive)
	// and whether one exists.
	Get(ctx context.Context, symbol string) (models.Quote, bool, error)

	Close() error
}

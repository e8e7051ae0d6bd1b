package store_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fasihgithub/LivePricesProject/cmd/server/internal/store"
	"github.com/fasihgithub/LivePricesProject/pkg/models"
)

func quote(symbol, price string) models.Quote {
	return models.Quote{
		Symbol:    symbol,
		Price:     decimal.RequireFromString(price),
		Timestamp: time.Now().UTC(),
	}
}

func TestMemoryStore_LastWriteWins(t *testing.T) {
	s := store.NewMemoryStore()
	ctx := context.Background()

	s.Set(ctx, quote("BTCUSD", "65000.50"))
	s.Set(ctx, quote("BTCUSD", "65001.00"))

	q, ok, err := s.Get(ctx, "BTCUSD")
	if err != nil || !ok {
		t.Fatalf("expected quote, got ok=%v err=%v", ok, err)
	}
	if !q.Price.Equal(decimal.RequireFromString("65001.00")) {
		t.Errorf("expected latest price 65001.00, got %s", q.Price)
	}
}

func TestMemoryStore_MissingSymbol(t *testing.T) {
	s := store.NewMemoryStore()

	_, ok, err := s.Get(context.Background(), "ETHUSD")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Error("expected not-found for symbol never written")
	}
}

func TestMemoryStore_CaseInsensitive(t *testing.T) {
	s := store.NewMemoryStore()
	ctx := context.Background()

	s.Set(ctx, quote("btcusd", "100"))

	q, ok, _ := s.Get(ctx, "BTCUSD")
	if !ok {
		t.Fatal("expected lookup with different case to succeed")
	}
	if !q.Price.Equal(decimal.RequireFromString("100")) {
		t.Errorf("unexpected price %s", q.Price)
	}
}

func TestMemoryStore_EmptySymbolIgnored(t *testing.T) {
	s := store.NewMemoryStore()
	ctx := context.Background()

	if err := s.Set(ctx, quote("  ", "1")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok, _ := s.Get(ctx, ""); ok {
		t.Error("empty symbol should never be stored")
	}
}

func TestMemoryStore_ConcurrentAccess(t *testing.T) {
	// Run with `go test -race ./...`
	s := store.NewMemoryStore()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			s.Set(ctx, quote("BTCUSD", fmt.Sprintf("%d", i)))
		}(i)
		go func() {
			defer wg.Done()
			s.Get(ctx, "BTCUSD")
		}()
	}
	wg.Wait()

	if _, ok, _ := s.Get(ctx, "BTCUSD"); !ok {
		t.Error("expected some quote to be stored")
	}
}

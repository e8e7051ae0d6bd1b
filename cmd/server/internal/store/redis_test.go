package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/fasihgithub/LivePricesProject/cmd/server/internal/store"
	"github.com/fasihgithub/LivePricesProject/pkg/models"
)

func newRedisStore(t *testing.T) *store.RedisStore {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return store.NewRedisStore(client)
}

func TestRedisStore_RoundTrip(t *testing.T) {
	s := newRedisStore(t)
	ctx := context.Background()

	ts := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	in := models.Quote{Symbol: "BTCUSD", Price: decimal.RequireFromString("65000.50"), Timestamp: ts}

	if err := s.Set(ctx, in); err != nil {
		t.Fatalf("set: %v", err)
	}

	out, ok, err := s.Get(ctx, "btcusd")
	if err != nil || !ok {
		t.Fatalf("expected quote, got ok=%v err=%v", ok, err)
	}
	if out.Symbol != "BTCUSD" {
		t.Errorf("expected symbol BTCUSD, got %s", out.Symbol)
	}
	if !out.Price.Equal(in.Price) {
		t.Errorf("expected price %s, got %s", in.Price, out.Price)
	}
	if !out.Timestamp.Equal(ts) {
		t.Errorf("expected timestamp %s, got %s", ts, out.Timestamp)
	}
}

func TestRedisStore_Overwrite(t *testing.T) {
	s := newRedisStore(t)
	ctx := context.Background()

	s.Set(ctx, quote("BTCUSD", "1"))
	s.Set(ctx, quote("BTCUSD", "2"))

	out, ok, _ := s.Get(ctx, "BTCUSD")
	if !ok || !out.Price.Equal(decimal.RequireFromString("2")) {
		t.Errorf("expected overwritten price 2, got ok=%v price=%s", ok, out.Price)
	}
}

func TestRedisStore_MissingSymbol(t *testing.T) {
	s := newRedisStore(t)

	_, ok, err := s.Get(context.Background(), "ETHUSD")
	if err != nil {
		t.Fatalf("miss must not be an error, got %v", err)
	}
	if ok {
		t.Error("expected not-found")
	}
}

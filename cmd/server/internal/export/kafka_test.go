package export_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/fasihgithub/LivePricesProject/cmd/server/internal/export"
	"github.com/fasihgithub/LivePricesProject/pkg/models"
)

type mockWriter struct {
	mu       sync.Mutex
	messages []kafka.Message
	failNext bool
	closed   bool
}

func (m *mockWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failNext {
		m.failNext = false
		return errors.New("broker unavailable")
	}
	m.messages = append(m.messages, msgs...)
	return nil
}

func (m *mockWriter) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

func TestExporter_PublishesOneMessagePerQuote(t *testing.T) {
	w := &mockWriter{}
	e := export.NewExporter(w, zap.NewNop())

	q := models.Quote{
		Symbol:    "BTCUSD",
		Price:     decimal.RequireFromString("65000.50"),
		Timestamp: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}
	e.Export(context.Background(), q)

	w.mu.Lock()
	defer w.mu.Unlock()
	if len(w.messages) != 1 {
		t.Fatalf("expected 1 kafka message, got %d", len(w.messages))
	}
	if string(w.messages[0].Key) != "BTCUSD" {
		t.Errorf("message must be keyed by symbol, got %q", w.messages[0].Key)
	}
	if !strings.Contains(string(w.messages[0].Value), `"price":65000.5`) {
		t.Errorf("unexpected payload: %s", w.messages[0].Value)
	}
}

func TestExporter_WriteFailureIsSwallowed(t *testing.T) {
	w := &mockWriter{failNext: true}
	e := export.NewExporter(w, zap.NewNop())

	q := models.Quote{Symbol: "BTCUSD", Price: decimal.RequireFromString("1")}
	e.Export(context.Background(), q) // must not panic or propagate
	e.Export(context.Background(), q)

	w.mu.Lock()
	defer w.mu.Unlock()
	if len(w.messages) != 1 {
		t.Fatalf("second export should succeed, got %d messages", len(w.messages))
	}
}

func TestExporter_Close(t *testing.T) {
	w := &mockWriter{}
	e := export.NewExporter(w, zap.NewNop())

	if err := e.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if !w.closed {
		t.Error("underlying writer must be closed")
	}
}

package feed

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/fasihgithub/LivePricesProject/cmd/server/internal/store"
	"github.com/fasihgithub/LivePricesProject/pkg/models"
)

const defaultReconnectDelay = 5 * time.Second

// Publisher receives every normalized quote for fan-out.
type Publisher interface {
	Publish(q models.Quote)
}

// Exporter optionally mirrors every quote onto an external stream.
type Exporter interface {
	Export(ctx context.Context, q models.Quote)
}

// Ingestor maintains the single upstream feed session: connect, stream,
// and on any failure reconnect after a fixed delay, forever. There is
// deliberately no backoff growth or retry cap; the feed is expected to
// come back, and the delay is the whole policy.
type Ingestor struct {
	url      string
	delay    time.Duration
	store    store.Store
	hub      Publisher
	exporter Exporter
	logger   *zap.Logger

	now func() time.Time
}

func NewIngestor(url string, delay time.Duration, st store.Store, hub Publisher, exporter Exporter, logger *zap.Logger) *Ingestor {
	if delay <= 0 {
		delay = defaultReconnectDelay
	}
	return &Ingestor{
		url:      url,
		delay:    delay,
		store:    st,
		hub:      hub,
		exporter: exporter,
		logger:   logger,
		now:      time.Now,
	}
}

// Run loops until ctx is cancelled. Each iteration is one upstream
// session: dial, stream until the connection dies, wait, retry.
func (in *Ingestor) Run(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}

		dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
		conn, _, err := dialer.DialContext(ctx, in.url, nil)
		if err != nil {
			in.logger.Error("Feed connect failed, retrying", zap.String("url", in.url), zap.Duration("delay", in.delay), zap.Error(err))
			if !in.wait(ctx) {
				return
			}
			continue
		}

		in.logger.Info("Connected to upstream feed", zap.String("url", in.url))
		in.stream(ctx, conn)

		if !in.wait(ctx) {
			return
		}
	}
}

func (in *Ingestor) stream(ctx context.Context, conn *websocket.Conn) {
	// Unblock the pending read when ctx is cancelled.
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-stop:
		}
	}()
	defer conn.Close()

	for {
		if ctx.Err() != nil {
			return
		}

		_, data, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() == nil {
				in.logger.Error("Feed read failed, reconnecting", zap.Duration("delay", in.delay), zap.Error(err))
			}
			return
		}

		q, err := in.parseTick(data)
		if err != nil {
			in.logger.Debug("Skipping feed message", zap.Error(err))
			continue
		}

		if err := in.store.Set(ctx, q); err != nil {
			in.logger.Error("Failed to cache quote", zap.String("symbol", q.Symbol), zap.Error(err))
		}
		in.hub.Publish(q)
		if in.exporter != nil {
			in.exporter.Export(ctx, q)
		}
	}
}

// wait sleeps for the reconnect delay, returning false if ctx was
// cancelled first.
func (in *Ingestor) wait(ctx context.Context) bool {
	select {
	case <-time.After(in.delay):
		return true
	case <-ctx.Done():
		return false
	}
}

var errIncompleteTick = errors.New("tick missing symbol or price")

// parseTick turns one upstream record into a Quote. The feed's aggTrade
// records carry the symbol in "s" and a string-encoded price in "p";
// everything else is ignored. Records missing either field, or with an
// unparseable price, are skipped.
func (in *Ingestor) parseTick(data []byte) (models.Quote, error) {
	var raw struct {
		Symbol string `json:"s"`
		Price  string `json:"p"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return models.Quote{}, err
	}
	if raw.Symbol == "" || raw.Price == "" {
		return models.Quote{}, errIncompleteTick
	}

	price, err := decimal.NewFromString(raw.Price)
	if err != nil {
		return models.Quote{}, err
	}

	return models.Quote{
		Symbol:    NormalizeSymbol(raw.Symbol),
		Price:     price,
		Timestamp: in.now().UTC(),
	}, nil
}

// NormalizeSymbol maps the feed's instrument naming onto ours: upper
// case, with USDT-quoted pairs presented as USD (BTCUSDT -> BTCUSD).
func NormalizeSymbol(symbol string) string {
	s := strings.ToUpper(strings.TrimSpace(symbol))
	return strings.ReplaceAll(s, "USDT", "USD")
}

package export

import (
	"context"
	"encoding/json"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/fasihgithub/LivePricesProject/pkg/models"
)

// KafkaWriter abstracts the output stream
type KafkaWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Exporter mirrors every normalized quote onto a Kafka topic, keyed by
// symbol so partition order matches per-symbol publish order. Write
// failures are logged and dropped; the export is best-effort and must
// never stall ingestion.
type Exporter struct {
	writer KafkaWriter
	logger *zap.Logger
}

func NewExporter(writer KafkaWriter, logger *zap.Logger) *Exporter {
	return &Exporter{writer: writer, logger: logger}
}

func (e *Exporter) Export(ctx context.Context, q models.Quote) {
	payload, err := json.Marshal(q)
	if err != nil {
		e.logger.Error("Failed to serialize quote for export", zap.String("symbol", q.Symbol), zap.Error(err))
		return
	}

	err = e.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(q.Symbol),
		Value: payload,
	})
	if err != nil {
		e.logger.Error("Kafka Write Error", zap.String("symbol", q.Symbol), zap.Error(err))
	}
}

func (e *Exporter) Close() error {
	return e.writer.Close()
}

package usecase

import (
	"context"
	"encoding/json"
	"time"

	"OddsEngine/internal/domain/models"
	domrepo "OddsEngine/internal/domain/repository"
	pkgkafka "OddsEngine/pkg/kafka"
)

// KafkaTicksHandler consumes live-stats ticks from Kafka and feeds them to
// the tick processor. The topic is partitioned by fixture id upstream, so
// per-fixture ordering holds.
type KafkaTicksHandler struct {
	topic   string
	proc    *TickProcessor
	metrics domrepo.Metrics
}

func NewKafkaTicksHandler(topic string, proc *TickProcessor, metrics domrepo.Metrics) *KafkaTicksHandler {
	return &KafkaTicksHandler{topic: topic, proc: proc, metrics: metrics}
}

func (h *KafkaTicksHandler) Topic() string { return h.topic }

// Handle decodes one tick message and processes it. Decode failures are
// permanent; processing failures bubble up so the consumer retries.
func (h *KafkaTicksHandler) Handle(ctx context.Context, b []byte) error {
	var tick models.LiveStats
	if err := json.Unmarshal(b, &tick); err != nil {
		h.metrics.RecordError("consumer_unmarshal")
		return err
	}
	if !tick.Timestamp.IsZero() {
		h.metrics.RecordLatency("ingest_e2e", time.Since(tick.Timestamp).Seconds())
	}
	return h.proc.Process(ctx, &tick)
}

var _ pkgkafka.MessageHandler = (*KafkaTicksHandler)(nil)

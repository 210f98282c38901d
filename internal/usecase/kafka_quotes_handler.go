package usecase

import (
	"context"
	"encoding/json"
	"time"

	"BotBourse/internal/domain/models"
	domrepo "BotBourse/internal/domain/repository"
	pkgkafka "BotBourse/pkg/kafka"
)

// KafkaQuotesHandler consumes Kafka quote messages and writes to storage.
type KafkaQuotesHandler struct {
	topic   string
	storage domrepo.Storage
	metrics domrepo.Metrics
}

func NewKafkaQuotesHandler(topic string, storage domrepo.Storage, metrics domrepo.Metrics) *KafkaQuotesHandler {
	return &KafkaQuotesHandler{topic: topic, storage: storage, metrics: metrics}
}

func (h *KafkaQuotesHandler) Topic() string { return h.topic }

// incoming message schema: {ticker, t, c, v}
func (h *KafkaQuotesHandler) Handle(ctx context.Context, b []byte) error {
	var m struct {
		Ticker string  `json:"ticker"`
		T      int64   `json:"t"`
		C      float64 `json:"c"`
		V      float64 `json:"v"`
	}
	if err := json.Unmarshal(b, &m); err != nil {
		h.metrics.RecordError("consumer_unmarshal")
		return err
	}
	if m.T < 1e11 { // seconds
		m.T = m.T * 1000
	}
	// E2E latency from event time to now (approx)
	h.metrics.RecordLatency("ingest_e2e_seconds", time.Since(time.UnixMilli(m.T)).Seconds())

	start := time.Now()
	err := h.storage.Store(ctx, &models.Quote{
		Ticker:    m.Ticker,
		Timestamp: m.T,
		Price:     m.C,
		Volume:    m.V,
	})
	h.metrics.RecordLatency("ch_insert_seconds", time.Since(start).Seconds())
	if err != nil {
		h.metrics.RecordError("consumer_store")
		return err
	}
	h.metrics.RecordMessageSent("clickhouse", m.Ticker)
	return nil
}

var _ pkgkafka.MessageHandler = (*KafkaQuotesHandler)(nil)

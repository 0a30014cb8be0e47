package usecase

import (
	"context"
	"encoding/json"
	"time"

	"AlbionPulse/internal/domain/models"
	drepo "AlbionPulse/internal/domain/repository"
	pkgkafka "AlbionPulse/pkg/kafka"
)

// KafkaQuotesHandler consumes quote messages and persists them.
type KafkaQuotesHandler struct {
	topic   string
	store   drepo.MarketStore
	metrics drepo.Metrics
}

func NewKafkaQuotesHandler(topic string, store drepo.MarketStore, metrics drepo.Metrics) *KafkaQuotesHandler {
	return &KafkaQuotesHandler{topic: topic, store: store, metrics: metrics}
}

func (h *KafkaQuotesHandler) Topic() string { return h.topic }

func (h *KafkaQuotesHandler) Handle(ctx context.Context, b []byte) error {
	var q models.PriceQuote
	if err := json.Unmarshal(b, &q); err != nil {
		h.metrics.RecordError("consumer_unmarshal")
		return err
	}
	// E2E latency from observation time to persistence (approx)
	h.metrics.RecordLatency("ingest_e2e_seconds", time.Since(q.Timestamp).Seconds())

	start := time.Now()
	if err := h.store.StoreQuote(ctx, &q); err != nil {
		h.metrics.RecordError("consumer_store")
		return err
	}
	h.metrics.RecordLatency("ch_insert_seconds", time.Since(start).Seconds())
	h.metrics.RecordQuoteIngested("clickhouse", q.City)
	return nil
}

var _ pkgkafka.MessageHandler = (*KafkaQuotesHandler)(nil)

// KafkaGoldHandler consumes gold messages and persists them.
type KafkaGoldHandler struct {
	topic   string
	store   drepo.MarketStore
	metrics drepo.Metrics
}

func NewKafkaGoldHandler(topic string, store drepo.MarketStore, metrics drepo.Metrics) *KafkaGoldHandler {
	return &KafkaGoldHandler{topic: topic, store: store, metrics: metrics}
}

func (h *KafkaGoldHandler) Topic() string { return h.topic }

func (h *KafkaGoldHandler) Handle(ctx context.Context, b []byte) error {
	var g models.GoldQuote
	if err := json.Unmarshal(b, &g); err != nil {
		h.metrics.RecordError("consumer_unmarshal")
		return err
	}
	if err := h.store.StoreGold(ctx, &g); err != nil {
		h.metrics.RecordError("consumer_store")
		return err
	}
	h.metrics.RecordGoldPrice(float64(g.Price))
	return nil
}

var _ pkgkafka.MessageHandler = (*KafkaGoldHandler)(nil)

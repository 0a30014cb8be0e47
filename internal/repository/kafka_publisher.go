package repository

import (
	"context"

	"AlbionPulse/internal/domain/models"
	drepo "AlbionPulse/internal/domain/repository"
	pkgkafka "AlbionPulse/pkg/kafka"
)

// KafkaPublisher implements Publisher for Kafka.
type KafkaPublisher struct {
	producer    *pkgkafka.Producer
	quotesTopic string
	goldTopic   string
}

// NewKafkaPublisher creates the Kafka publisher.
func NewKafkaPublisher(producer *pkgkafka.Producer, quotesTopic, goldTopic string) drepo.Publisher {
	return &KafkaPublisher{producer: producer, quotesTopic: quotesTopic, goldTopic: goldTopic}
}

func (p *KafkaPublisher) PublishQuote(ctx context.Context, q *models.PriceQuote) error {
	return p.producer.Publish(ctx, p.quotesTopic, quoteKey(q), q)
}

func (p *KafkaPublisher) PublishQuoteBatch(ctx context.Context, quotes []*models.PriceQuote) error {
	if len(quotes) == 0 {
		return nil
	}
	msgs := make([]pkgkafka.Message, len(quotes))
	for i, q := range quotes {
		msgs[i] = pkgkafka.Message{Key: quoteKey(q), Value: q}
	}
	return p.producer.PublishBatch(ctx, p.quotesTopic, msgs)
}

func (p *KafkaPublisher) PublishGold(ctx context.Context, g *models.GoldQuote) error {
	return p.producer.Publish(ctx, p.goldTopic, []byte("gold"), g)
}

func (p *KafkaPublisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}

// quoteKey partitions by item and city so per-market ordering is preserved.
func quoteKey(q *models.PriceQuote) []byte {
	return []byte(q.ItemID + "|" + q.City)
}

package usecase

import (
	"context"
	"fmt"
	"time"

	"AlbionPulse/internal/domain/models"
	drepo "AlbionPulse/internal/domain/repository"
)

// QuoteProcessor routes canonical records to the configured backend:
// kafka publishes for the consumer to persist, clickhouse stores directly.
type QuoteProcessor struct {
	pub     drepo.Publisher
	store   drepo.MarketStore
	metrics drepo.Metrics
	backend string
}

// NewQuoteProcessor creates a QuoteProcessor.
func NewQuoteProcessor(pub drepo.Publisher, store drepo.MarketStore, metrics drepo.Metrics, backend string) *QuoteProcessor {
	return &QuoteProcessor{pub: pub, store: store, metrics: metrics, backend: backend}
}

// ProcessQuote routes a single quote to the configured backend.
func (p *QuoteProcessor) ProcessQuote(ctx context.Context, q *models.PriceQuote) error {
	if q == nil {
		return fmt.Errorf("quote is nil")
	}

	start := time.Now()
	var err error
	switch p.backend {
	case "kafka":
		err = p.pub.PublishQuote(ctx, q)
	case "clickhouse":
		err = p.store.StoreQuote(ctx, q)
	default:
		err = fmt.Errorf("unknown backend: %s", p.backend)
	}

	if err != nil {
		p.metrics.RecordError("process_quote")
		return fmt.Errorf("process quote: %w", err)
	}

	p.metrics.RecordQuoteIngested(p.backend, q.City)
	p.metrics.RecordLatency("process_quote", time.Since(start).Seconds())
	return nil
}

// ProcessQuoteBatch routes a batch of quotes.
func (p *QuoteProcessor) ProcessQuoteBatch(ctx context.Context, quotes []*models.PriceQuote) error {
	if len(quotes) == 0 {
		return nil
	}

	start := time.Now()
	var err error
	switch p.backend {
	case "kafka":
		err = p.pub.PublishQuoteBatch(ctx, quotes)
	case "clickhouse":
		err = p.store.StoreQuoteBatch(ctx, quotes)
	default:
		err = fmt.Errorf("unknown backend: %s", p.backend)
	}

	if err != nil {
		p.metrics.RecordError("process_quote_batch")
		return fmt.Errorf("process quote batch: %w", err)
	}

	for _, q := range quotes {
		p.metrics.RecordQuoteIngested(p.backend, q.City)
	}
	p.metrics.RecordLatency("process_quote_batch", time.Since(start).Seconds())
	return nil
}

// ProcessGold routes a gold quote.
func (p *QuoteProcessor) ProcessGold(ctx context.Context, g *models.GoldQuote) error {
	if g == nil {
		return fmt.Errorf("gold quote is nil")
	}

	var err error
	switch p.backend {
	case "kafka":
		err = p.pub.PublishGold(ctx, g)
	case "clickhouse":
		err = p.store.StoreGold(ctx, g)
	default:
		err = fmt.Errorf("unknown backend: %s", p.backend)
	}
	if err != nil {
		p.metrics.RecordError("process_gold")
		return fmt.Errorf("process gold: %w", err)
	}
	return nil
}

// Close closes underlying resources if available.
func (p *QuoteProcessor) Close() {
	if p.pub != nil {
		_ = p.pub.Close()
	}
	if p.store != nil {
		_ = p.store.Close()
	}
}

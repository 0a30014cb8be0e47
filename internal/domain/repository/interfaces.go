package repository

import (
	"context"
	"time"

	"AlbionPulse/internal/domain/models"
)

// EventStream is a push feed of market-order and gold-price events.
type EventStream interface {
	Connect(ctx context.Context) error
	Subscribe(ctx context.Context) error
	Read(ctx context.Context) (<-chan *models.MarketOrderEvent, <-chan *models.GoldPriceEvent, <-chan error)
	Reconnect(ctx context.Context) error
	Close() error
	IsConnected() bool
}

// Publisher fans normalized quotes out to a message broker.
type Publisher interface {
	PublishQuote(ctx context.Context, q *models.PriceQuote) error
	PublishQuoteBatch(ctx context.Context, quotes []*models.PriceQuote) error
	PublishGold(ctx context.Context, g *models.GoldQuote) error
	Close() error
}

// MarketStore is the persisted relational store.
type MarketStore interface {
	Init(ctx context.Context) error // ensure tables, health checks
	StoreQuote(ctx context.Context, q *models.PriceQuote) error
	StoreQuoteBatch(ctx context.Context, quotes []*models.PriceQuote) error
	StoreGold(ctx context.Context, g *models.GoldQuote) error
	QueryQuotes(ctx context.Context, items, cities []string, qualities []int, limit int) ([]*models.PriceQuote, error)
	QueryGold(ctx context.Context, from, to time.Time, limit int) ([]*models.GoldQuote, error)
	QueryKillEvents(ctx context.Context, from, to time.Time, limit int) ([]*models.KillEvent, error)
	ReplaceAggregates(ctx context.Context, aggs []*models.BuildAggregate) error
	QueryAggregates(ctx context.Context, limit int) ([]*models.BuildAggregate, error)
	Health(ctx context.Context) error // ping
	Close() error
}

// Metrics records operational counters for the pipeline.
type Metrics interface {
	RecordQuoteIngested(backend, city string)
	RecordError(kind string)
	RecordLastSellPrice(item, city string, price float64)
	RecordGoldPrice(price float64)
	RecordLatency(op string, seconds float64)
	RecordCacheLookup(tier string, hit bool)
	RecordScanResults(n int)
}

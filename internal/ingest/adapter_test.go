package ingest

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"AlbionPulse/internal/domain/models"
	"AlbionPulse/internal/normalize"
	"AlbionPulse/pkg/logger"
)

type fakeStream struct {
	orders chan *models.MarketOrderEvent
	gold   chan *models.GoldPriceEvent
	errs   chan error

	connects atomic.Int32
	closed   atomic.Bool
}

func newFakeStream() *fakeStream {
	return &fakeStream{
		orders: make(chan *models.MarketOrderEvent, 16),
		gold:   make(chan *models.GoldPriceEvent, 16),
		errs:   make(chan error, 1),
	}
}

func (f *fakeStream) Connect(ctx context.Context) error {
	f.connects.Add(1)
	return nil
}
func (f *fakeStream) Subscribe(ctx context.Context) error { return nil }
func (f *fakeStream) Read(ctx context.Context) (<-chan *models.MarketOrderEvent, <-chan *models.GoldPriceEvent, <-chan error) {
	return f.orders, f.gold, f.errs
}
func (f *fakeStream) Reconnect(ctx context.Context) error { return f.Connect(ctx) }
func (f *fakeStream) Close() error {
	f.closed.Store(true)
	return nil
}
func (f *fakeStream) IsConnected() bool { return !f.closed.Load() }

type recordingSink struct {
	mu       sync.Mutex
	quotes   []*models.PriceQuote
	golds    []*models.GoldQuote
	failNext atomic.Bool
}

func (s *recordingSink) ProcessQuote(ctx context.Context, q *models.PriceQuote) error {
	if s.failNext.CompareAndSwap(true, false) {
		return errors.New("backend unavailable")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.quotes = append(s.quotes, q)
	return nil
}

func (s *recordingSink) ProcessGold(ctx context.Context, g *models.GoldQuote) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.golds = append(s.golds, g)
	return nil
}

func (s *recordingSink) quoteCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.quotes)
}

func (s *recordingSink) goldCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.golds)
}

type nopMetrics struct{}

func (nopMetrics) RecordQuoteIngested(backend, city string)             {}
func (nopMetrics) RecordError(kind string)                              {}
func (nopMetrics) RecordLastSellPrice(item, city string, price float64) {}
func (nopMetrics) RecordGoldPrice(price float64)                        {}
func (nopMetrics) RecordLatency(op string, seconds float64)             {}
func (nopMetrics) RecordCacheLookup(tier string, hit bool)              {}
func (nopMetrics) RecordScanResults(n int)                              {}

func newTestAdapter(t *testing.T, stream *fakeStream, sink *recordingSink) *Adapter {
	t.Helper()
	log, err := logger.New(&logger.Config{Level: "error", Format: "json", Output: "stderr"})
	if err != nil {
		t.Fatalf("logger.New: %v", err)
	}
	return NewAdapter(stream, normalize.New(log), sink, nopMetrics{}, log)
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("condition not met within deadline")
}

func TestStartIsIdempotent(t *testing.T) {
	stream := newFakeStream()
	sink := &recordingSink{}
	a := newTestAdapter(t, stream, sink)
	defer a.Stop()

	if err := a.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := a.Start(context.Background()); err != nil {
		t.Fatalf("second Start: %v", err)
	}
	if got := stream.connects.Load(); got != 1 {
		t.Fatalf("expected 1 connect, got %d", got)
	}
	if !a.IsRunning() {
		t.Fatalf("adapter should be running")
	}
}

func TestPersistFailureSkipsEventOnly(t *testing.T) {
	stream := newFakeStream()
	sink := &recordingSink{}
	sink.failNext.Store(true)
	a := newTestAdapter(t, stream, sink)
	defer a.Stop()

	if err := a.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}

	stream.orders <- &models.MarketOrderEvent{
		ItemCode: "T4_BAG", LocationCode: "3005", UnitPrice: 100,
		Side: models.SideOffer, Expires: int64(1700000000),
	}
	stream.orders <- &models.MarketOrderEvent{
		ItemCode: "T5_BAG", LocationCode: "1002", UnitPrice: 200,
		Side: models.SideOffer, Expires: int64(1700000000),
	}

	waitFor(t, func() bool { return sink.quoteCount() == 1 })
	if sink.quotes[0].ItemID != "T5_BAG" {
		t.Fatalf("expected the second event to survive, got %s", sink.quotes[0].ItemID)
	}
	if !a.IsRunning() {
		t.Fatalf("adapter must survive a persist failure")
	}
}

func TestFeedErrorDoesNotStopConsumption(t *testing.T) {
	stream := newFakeStream()
	sink := &recordingSink{}
	a := newTestAdapter(t, stream, sink)
	defer a.Stop()

	if err := a.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}

	stream.errs <- errors.New("feed read: connection reset")
	stream.orders <- &models.MarketOrderEvent{
		ItemCode: "T4_BAG", LocationCode: "3005", UnitPrice: 100, Amount: 2,
		Side: models.SideOffer, Expires: int64(1700000000),
	}

	waitFor(t, func() bool { return sink.quoteCount() == 1 })
	if sink.quotes[0].Amount != 2 {
		t.Fatalf("order volume lost: %+v", sink.quotes[0])
	}
	if !a.IsRunning() {
		t.Fatalf("adapter must keep consuming after a feed error")
	}
	// Reconnection is the stream's job; the adapter must not re-dial.
	if got := stream.connects.Load(); got != 1 {
		t.Fatalf("expected 1 connect, got %d", got)
	}
}

func TestNegativeGoldPriceNormalizedToZero(t *testing.T) {
	stream := newFakeStream()
	sink := &recordingSink{}
	a := newTestAdapter(t, stream, sink)
	defer a.Stop()

	if err := a.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}

	stream.gold <- &models.GoldPriceEvent{Price: -50, Timestamp: int64(1700000000)}

	waitFor(t, func() bool { return sink.goldCount() == 1 })
	if sink.golds[0].Price != 0 {
		t.Fatalf("expected -50 to store as 0, got %d", sink.golds[0].Price)
	}
}

func TestStopIsIdempotentAndRestartable(t *testing.T) {
	stream := newFakeStream()
	sink := &recordingSink{}
	a := newTestAdapter(t, stream, sink)

	if err := a.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := a.Stop(); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if err := a.Stop(); err != nil {
		t.Fatalf("second Stop: %v", err)
	}
	if a.IsRunning() {
		t.Fatalf("adapter should not be running after Stop")
	}
	if !stream.closed.Load() {
		t.Fatalf("stream should be closed")
	}

	// A stopped adapter can be started again.
	stream.closed.Store(false)
	if err := a.Start(context.Background()); err != nil {
		t.Fatalf("restart: %v", err)
	}
	if !a.IsRunning() {
		t.Fatalf("adapter should run after restart")
	}
	_ = a.Stop()
}

package ingest

import (
	"context"
	"sync"
	"sync/atomic"

	"AlbionPulse/internal/domain/models"
	drepo "AlbionPulse/internal/domain/repository"
	"AlbionPulse/internal/normalize"
	"AlbionPulse/pkg/logger"
)

const (
	stateIdle int32 = iota
	stateRunning
	stateStopped
)

// QuoteSink receives canonical records from the adapter.
type QuoteSink interface {
	ProcessQuote(ctx context.Context, q *models.PriceQuote) error
	ProcessGold(ctx context.Context, g *models.GoldQuote) error
}

// Adapter is the long-lived subscriber that funnels push-feed events through
// the normalizer into the sink. One failing event is logged and skipped; the
// subscription survives.
type Adapter struct {
	stream  drepo.EventStream
	norm    *normalize.Normalizer
	sink    QuoteSink
	metrics drepo.Metrics
	log     *logger.Logger

	state atomic.Int32

	mu     sync.Mutex
	cancel context.CancelFunc
}

// NewAdapter creates the ingestion adapter.
func NewAdapter(stream drepo.EventStream, norm *normalize.Normalizer, sink QuoteSink, metrics drepo.Metrics, log *logger.Logger) *Adapter {
	return &Adapter{
		stream:  stream,
		norm:    norm,
		sink:    sink,
		metrics: metrics,
		log:     log,
	}
}

// Start connects, subscribes, and begins consuming. Starting an
// already-started adapter is a no-op.
func (a *Adapter) Start(ctx context.Context) error {
	if !a.state.CompareAndSwap(stateIdle, stateRunning) {
		a.log.Debug("ingest adapter already running")
		return nil
	}

	runCtx, cancel := context.WithCancel(ctx)
	a.mu.Lock()
	a.cancel = cancel
	a.mu.Unlock()

	if err := a.stream.Connect(runCtx); err != nil {
		a.reset()
		return err
	}
	if err := a.stream.Subscribe(runCtx); err != nil {
		a.reset()
		_ = a.stream.Close()
		return err
	}

	orders, gold, errs := a.stream.Read(runCtx)
	go a.consume(runCtx, orders, gold, errs)
	a.log.Info("ingest adapter started")
	return nil
}

func (a *Adapter) reset() {
	a.stopCancel()
	a.state.CompareAndSwap(stateRunning, stateIdle)
}

func (a *Adapter) stopCancel() {
	a.mu.Lock()
	cancel := a.cancel
	a.cancel = nil
	a.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// consume drains the stream channels until they close. Recovery from feed
// faults lives inside the stream's read loop; errors surfacing here are
// recorded and the same channels keep delivering post-reconnect events. A
// closed channel means the stream is done for good.
func (a *Adapter) consume(ctx context.Context, orders <-chan *models.MarketOrderEvent, gold <-chan *models.GoldPriceEvent, errs <-chan error) {
	for {
		select {
		case <-ctx.Done():
			return
		case err, ok := <-errs:
			if !ok {
				return
			}
			a.metrics.RecordError("stream")
			a.log.Warn("feed error, stream recovering", logger.Error(err))
		case ev, ok := <-orders:
			if !ok {
				return
			}
			a.handleOrder(ctx, ev)
		case ev, ok := <-gold:
			if !ok {
				return
			}
			a.handleGold(ctx, ev)
		}
	}
}

func (a *Adapter) handleOrder(ctx context.Context, ev *models.MarketOrderEvent) {
	q, err := a.norm.MarketOrder(ev)
	if err != nil {
		a.metrics.RecordError("normalize")
		a.log.Warn("market order dropped", logger.Error(err))
		return
	}
	if err := a.sink.ProcessQuote(ctx, q); err != nil {
		// Logged skip; subsequent events keep flowing.
		a.metrics.RecordError("persist")
		a.log.Warn("quote persist failed, skipping event",
			logger.String("item", q.ItemID),
			logger.String("city", q.City),
			logger.Error(err),
		)
		return
	}
	if q.SellPriceMin > 0 {
		a.metrics.RecordLastSellPrice(q.ItemID, q.City, float64(q.SellPriceMin))
	}
}

func (a *Adapter) handleGold(ctx context.Context, ev *models.GoldPriceEvent) {
	g, err := a.norm.GoldPrice(ev)
	if err != nil {
		a.metrics.RecordError("normalize")
		a.log.Warn("gold event dropped", logger.Error(err))
		return
	}
	if err := a.sink.ProcessGold(ctx, g); err != nil {
		a.metrics.RecordError("persist")
		a.log.Warn("gold persist failed, skipping event", logger.Error(err))
		return
	}
	a.metrics.RecordGoldPrice(float64(g.Price))
}

// Stop tears down the subscription and clears running state. Stopping an
// already-stopped adapter is a no-op.
func (a *Adapter) Stop() error {
	if !a.state.CompareAndSwap(stateRunning, stateStopped) {
		return nil
	}
	a.stopCancel()
	err := a.stream.Close()
	a.state.Store(stateIdle)
	a.log.Info("ingest adapter stopped")
	return err
}

// IsRunning reports whether the adapter is consuming.
func (a *Adapter) IsRunning() bool { return a.state.Load() == stateRunning }

package aggregate

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"AlbionPulse/internal/domain/models"
	drepo "AlbionPulse/internal/domain/repository"
	"AlbionPulse/pkg/logger"
)

// Updater state values. Transitions are atomic so two overlapping triggers
// can never both enter the running branch.
const (
	stateIdle int32 = iota
	stateRunning
	stateStopped
)

// NameResolver maps a build signature to its display name.
type NameResolver interface {
	ResolveBuildName(ctx context.Context, signature string) string
}

// Updater is the single-writer batch job that rebuilds the build-aggregate
// table from a bounded window of kill events. Not safe to overlap with
// itself; an overlapping trigger is a no-op, not a queue.
type Updater struct {
	store    drepo.MarketStore
	names    NameResolver
	metrics  drepo.Metrics
	log      *logger.Logger
	lookback time.Duration
	interval time.Duration
	maxRows  int

	state atomic.Int32
	now   func() time.Time
}

// New creates an Updater.
func New(store drepo.MarketStore, names NameResolver, metrics drepo.Metrics, log *logger.Logger, lookback, interval time.Duration) *Updater {
	return &Updater{
		store:    store,
		names:    names,
		metrics:  metrics,
		log:      log,
		lookback: lookback,
		interval: interval,
		maxRows:  200000,
		now:      time.Now,
	}
}

// RunOnce performs one aggregation cycle. A concurrent call while a cycle is
// in flight returns immediately without running.
func (u *Updater) RunOnce(ctx context.Context) error {
	if !u.state.CompareAndSwap(stateIdle, stateRunning) {
		u.log.Debug("aggregation already running, trigger dropped")
		return nil
	}
	defer u.state.CompareAndSwap(stateRunning, stateIdle)

	start := u.now()
	aggs, err := u.collect(ctx)
	if err != nil {
		// Previous snapshot stays untouched on any collection failure.
		u.metrics.RecordError("aggregation")
		u.log.Error("aggregation failed, keeping previous snapshot", logger.Error(err))
		return err
	}

	if err := u.store.ReplaceAggregates(ctx, aggs); err != nil {
		u.metrics.RecordError("aggregation")
		u.log.Error("aggregate replace failed", logger.Error(err))
		return fmt.Errorf("replace aggregates: %w", err)
	}

	u.metrics.RecordLatency("aggregation", time.Since(start).Seconds())
	u.log.Info("aggregation cycle complete",
		logger.Int("builds", len(aggs)),
		logger.Duration("took", time.Since(start)),
	)
	return nil
}

// collect folds the event window into signature-keyed aggregates. Derived
// ratios are computed only after every event is folded in.
func (u *Updater) collect(ctx context.Context) ([]*models.BuildAggregate, error) {
	to := u.now()
	from := to.Add(-u.lookback)

	events, err := u.store.QueryKillEvents(ctx, from, to, u.maxRows)
	if err != nil {
		return nil, fmt.Errorf("query kill events: %w", err)
	}

	byBuild := make(map[string]*models.BuildAggregate)
	order := make([]string, 0)
	get := func(sig string) *models.BuildAggregate {
		if agg, ok := byBuild[sig]; ok {
			return agg
		}
		agg := &models.BuildAggregate{BuildSignature: sig}
		byBuild[sig] = agg
		order = append(order, sig)
		return agg
	}

	var totalAppearances int64
	for _, ev := range events {
		if ev.KillerBuild != "" {
			k := get(ev.KillerBuild)
			k.KillCount++
			k.TotalFame += ev.TotalVictimFame
			totalAppearances++
		}
		if ev.VictimBuild != "" {
			v := get(ev.VictimBuild)
			v.DeathCount++
			totalAppearances++
		}
	}

	aggs := make([]*models.BuildAggregate, 0, len(order))
	for _, sig := range order {
		agg := byBuild[sig]
		fights := agg.KillCount + agg.DeathCount
		if fights > 0 {
			agg.WinRate = float64(agg.KillCount) / float64(fights)
		}
		if totalAppearances > 0 {
			agg.Popularity = float64(fights) / float64(totalAppearances)
		}
		if agg.KillCount > 0 {
			agg.AvgFame = float64(agg.TotalFame) / float64(agg.KillCount)
		}
		agg.DisplayName = u.names.ResolveBuildName(ctx, sig)
		agg.UpdatedAt = to
		aggs = append(aggs, agg)
	}

	return aggs, nil
}

// Start runs the updater on its configured interval until the context is
// canceled or Stop is called.
func (u *Updater) Start(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(u.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if u.state.Load() == stateStopped {
					return
				}
				_ = u.RunOnce(ctx)
			}
		}
	}()
}

// Stop prevents further cycles. An in-flight cycle runs to completion.
func (u *Updater) Stop() {
	u.state.Store(stateStopped)
}

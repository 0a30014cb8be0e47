package usecase

import (
	"context"
	"fmt"
	"time"

	"AlbionPulse/internal/domain/models"
	drepo "AlbionPulse/internal/domain/repository"
	"AlbionPulse/internal/scanner"
	"AlbionPulse/pkg/logger"
)

// FlipFinder produces ranked arbitrage opportunities from live market data.
type FlipFinder struct {
	market  *MarketService
	engine  scanner.Engine
	base    models.ScanParams
	metrics drepo.Metrics
	log     *logger.Logger
}

// NewFlipFinder creates a FlipFinder.
func NewFlipFinder(market *MarketService, engine scanner.Engine, base models.ScanParams, metrics drepo.Metrics, log *logger.Logger) *FlipFinder {
	return &FlipFinder{market: market, engine: engine, base: base, metrics: metrics, log: log}
}

// FindFlips fetches prices for the filter set and scans them. minROI and
// maxResults override the configured baseline when positive.
func (f *FlipFinder) FindFlips(ctx context.Context, items, cities []string, qualities []int, minROI float64, maxResults int) ([]models.ArbitrageOpportunity, error) {
	quotes, err := f.market.GetPrices(ctx, items, cities, qualities)
	if err != nil {
		return nil, fmt.Errorf("find flips: %w", err)
	}

	params := f.base
	if minROI > 0 {
		params.MinROI = minROI
	}
	if maxResults > 0 {
		params.MaxResults = maxResults
	}

	start := time.Now()
	entries := f.market.Entries(ctx, quotes)
	opps := f.engine.Scan(entries, params)

	f.metrics.RecordScanResults(len(opps))
	f.metrics.RecordLatency("scan", time.Since(start).Seconds())
	f.log.Debug("scan complete",
		logger.String("engine", f.engine.Name()),
		logger.Int("entries", len(entries)),
		logger.Int("opportunities", len(opps)),
		logger.Duration("took", time.Since(start)),
	)
	return opps, nil
}

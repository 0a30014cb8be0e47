package usecase

import (
	"context"
	"errors"
	"fmt"

	"AlbionPulse/internal/domain/models"
	drepo "AlbionPulse/internal/domain/repository"
	"AlbionPulse/internal/normalize"
	"AlbionPulse/internal/outlier"
	"AlbionPulse/pkg/cache"
	"AlbionPulse/pkg/logger"
)

// PriceAPI is the upstream request/response price source.
type PriceAPI interface {
	FetchPrices(ctx context.Context, items, cities []string, qualities []int) ([]*models.RawPriceRecord, error)
	FetchGold(ctx context.Context, count int) ([]*models.RawGoldRecord, error)
}

// MarketService is the read path: fetch, normalize, filter, cache.
type MarketService struct {
	api     PriceAPI
	norm    *normalize.Normalizer
	cache   cache.Service
	ttl     cache.TTLPolicy
	names   *NamesService
	metrics drepo.Metrics
	log     *logger.Logger

	region           string
	outlierThreshold float64
}

// NewMarketService creates a MarketService.
func NewMarketService(api PriceAPI, norm *normalize.Normalizer, c cache.Service, ttl cache.TTLPolicy, names *NamesService, metrics drepo.Metrics, log *logger.Logger, region string, outlierThreshold float64) *MarketService {
	if outlierThreshold <= 0 {
		outlierThreshold = outlier.DefaultThreshold
	}
	return &MarketService{
		api:              api,
		norm:             norm,
		cache:            c,
		ttl:              ttl,
		names:            names,
		metrics:          metrics,
		log:              log,
		region:           region,
		outlierThreshold: outlierThreshold,
	}
}

// GetPrices returns normalized, outlier-filtered quotes for the filter set.
// Results are cached in the volatile tier; a miss recomputes and writes
// through.
func (s *MarketService) GetPrices(ctx context.Context, items, cities []string, qualities []int) ([]*models.PriceQuote, error) {
	key := cache.NewKey("prices").
		Str("region", s.region).
		StrSet("items", items).
		StrSet("cities", cities).
		IntSet("qualities", qualities).
		String()

	var cached []*models.PriceQuote
	if err := s.cache.Get(ctx, key, &cached); err == nil {
		s.metrics.RecordCacheLookup(string(cache.TierVolatile), true)
		return cached, nil
	} else if !errors.Is(err, cache.ErrCacheMiss) {
		// Degraded cache is not fatal; fall through to recompute.
		s.log.Warn("cache read failed", logger.Error(err))
	}
	s.metrics.RecordCacheLookup(string(cache.TierVolatile), false)

	raws, err := s.api.FetchPrices(ctx, items, cities, qualities)
	if err != nil {
		return nil, fmt.Errorf("fetch prices: %w", err)
	}

	res := s.norm.PriceQuoteBatch(raws)
	quotes := s.filterOutliers(res.Quotes)

	if err := s.cache.Set(ctx, key, quotes, s.ttl.For(cache.TierVolatile)); err != nil {
		s.log.Warn("cache write failed", logger.Error(err))
	}
	return quotes, nil
}

// filterOutliers drops quotes whose sell price diverges wildly from the
// other quotes of the same (item, quality) group. Zero prices carry no
// signal and are passed through untouched.
func (s *MarketService) filterOutliers(quotes []*models.PriceQuote) []*models.PriceQuote {
	type gk struct {
		item    string
		quality int
	}
	groups := make(map[gk][]outlier.Observation)
	for i, q := range quotes {
		if q.SellPriceMin <= 0 {
			continue
		}
		k := gk{item: q.ItemID, quality: q.Quality}
		groups[k] = append(groups[k], outlier.Observation{Value: float64(q.SellPriceMin), Meta: i})
	}

	rejected := make(map[int]bool)
	for _, obs := range groups {
		res := outlier.Filter(obs, s.outlierThreshold)
		for _, v := range res.Rejected {
			idx := v.Observation.Meta.(int)
			rejected[idx] = true
			s.log.Debug("quote rejected as outlier",
				logger.String("item", quotes[idx].ItemID),
				logger.String("city", quotes[idx].City),
				logger.Int64("sell_price_min", quotes[idx].SellPriceMin),
				logger.Float64("z", v.ZScore),
			)
		}
	}
	if len(rejected) == 0 {
		return quotes
	}

	kept := make([]*models.PriceQuote, 0, len(quotes)-len(rejected))
	for i, q := range quotes {
		if !rejected[i] {
			kept = append(kept, q)
		}
	}
	return kept
}

// GoldHistory returns the recent normalized gold series, cached in the
// standard tier.
func (s *MarketService) GoldHistory(ctx context.Context, hours int) ([]*models.GoldQuote, error) {
	if hours <= 0 {
		hours = 24
	}
	key := cache.NewKey("gold").Str("region", s.region).Int("hours", hours).String()

	var cached []*models.GoldQuote
	if err := s.cache.Get(ctx, key, &cached); err == nil {
		s.metrics.RecordCacheLookup(string(cache.TierStandard), true)
		return cached, nil
	}
	s.metrics.RecordCacheLookup(string(cache.TierStandard), false)

	raws, err := s.api.FetchGold(ctx, hours)
	if err != nil {
		return nil, fmt.Errorf("fetch gold: %w", err)
	}

	golds := make([]*models.GoldQuote, 0, len(raws))
	for _, raw := range raws {
		g, err := s.norm.GoldQuote(raw)
		if err != nil {
			continue
		}
		golds = append(golds, g)
	}

	if len(golds) > 0 {
		s.metrics.RecordGoldPrice(float64(golds[len(golds)-1].Price))
	}
	if err := s.cache.Set(ctx, key, golds, s.ttl.For(cache.TierStandard)); err != nil {
		s.log.Warn("cache write failed", logger.Error(err))
	}
	return golds, nil
}

// Entries converts quotes into the scanner's input snapshot. Order volume
// carries through when the source reported it; the request API carries
// none, so those entries represent a single unit.
func (s *MarketService) Entries(ctx context.Context, quotes []*models.PriceQuote) []*models.MarketEntry {
	entries := make([]*models.MarketEntry, 0, len(quotes))
	for _, q := range quotes {
		qty := q.Amount
		if qty <= 0 {
			qty = 1
		}
		entries = append(entries, &models.MarketEntry{
			ItemID:    q.ItemID,
			ItemName:  s.names.ResolveItemName(ctx, q.ItemID),
			City:      q.City,
			Quality:   q.Quality,
			BuyPrice:  q.SellPriceMin,
			SellPrice: q.BuyPriceMax,
			Quantity:  qty,
		})
	}
	return entries
}

// InvalidatePrices drops every cached price snapshot for the region.
func (s *MarketService) InvalidatePrices(ctx context.Context) error {
	return s.cache.DeleteByPattern(ctx, "prices:region="+s.region+"*")
}

package usecase

import (
	"context"
	"errors"
	"testing"

	"AlbionPulse/internal/domain/models"
	"AlbionPulse/internal/normalize"
	"AlbionPulse/internal/scanner"
	"AlbionPulse/pkg/cache"
	"AlbionPulse/pkg/logger"
)

type fakeAPI struct {
	prices   []*models.RawPriceRecord
	golds    []*models.RawGoldRecord
	err      error
	fetchCnt int
	goldCnt  int
}

func (f *fakeAPI) FetchPrices(ctx context.Context, items, cities []string, qualities []int) ([]*models.RawPriceRecord, error) {
	f.fetchCnt++
	if f.err != nil {
		return nil, f.err
	}
	return f.prices, nil
}

func (f *fakeAPI) FetchGold(ctx context.Context, count int) ([]*models.RawGoldRecord, error) {
	f.goldCnt++
	if f.err != nil {
		return nil, f.err
	}
	return f.golds, nil
}

type nopMetrics struct{}

func (nopMetrics) RecordQuoteIngested(backend, city string)             {}
func (nopMetrics) RecordError(kind string)                              {}
func (nopMetrics) RecordLastSellPrice(item, city string, price float64) {}
func (nopMetrics) RecordGoldPrice(price float64)                        {}
func (nopMetrics) RecordLatency(op string, seconds float64)             {}
func (nopMetrics) RecordCacheLookup(tier string, hit bool)              {}
func (nopMetrics) RecordScanResults(n int)                              {}

func fp(v float64) *float64 { return &v }

func newTestMarketService(t *testing.T, api *fakeAPI) *MarketService {
	t.Helper()
	log, err := logger.New(&logger.Config{Level: "error", Format: "json", Output: "stderr"})
	if err != nil {
		t.Fatalf("logger.New: %v", err)
	}
	mem := cache.NewMemoryCache()
	t.Cleanup(func() { _ = mem.Close() })
	ttl := cache.DefaultTTLPolicy()
	names := NewNamesService(mem, ttl)
	return NewMarketService(api, normalize.New(log), mem, ttl, names, nopMetrics{}, log, "west", 3)
}

func rawQuote(item, city string, sellMin float64) *models.RawPriceRecord {
	return &models.RawPriceRecord{
		ItemID:       item,
		City:         city,
		SellPriceMin: fp(sellMin),
		SellPriceMax: fp(sellMin),
		BuyPriceMax:  fp(sellMin * 0.9),
		Timestamp:    int64(1700000000),
	}
}

func TestGetPricesCachesResult(t *testing.T) {
	api := &fakeAPI{prices: []*models.RawPriceRecord{
		rawQuote("T4_BAG", "Caerleon", 1000),
		rawQuote("T4_BAG", "Lymhurst", 1100),
	}}
	s := newTestMarketService(t, api)

	first, err := s.GetPrices(context.Background(), []string{"T4_BAG"}, nil, []int{1})
	if err != nil {
		t.Fatalf("GetPrices: %v", err)
	}
	if len(first) != 2 {
		t.Fatalf("expected 2 quotes, got %d", len(first))
	}

	second, err := s.GetPrices(context.Background(), []string{"T4_BAG"}, nil, []int{1})
	if err != nil {
		t.Fatalf("GetPrices (cached): %v", err)
	}
	if api.fetchCnt != 1 {
		t.Fatalf("expected 1 upstream fetch, got %d", api.fetchCnt)
	}
	if len(second) != 2 {
		t.Fatalf("cached read returned %d quotes", len(second))
	}
}

func TestGetPricesKeyIsOrderInsensitive(t *testing.T) {
	api := &fakeAPI{prices: []*models.RawPriceRecord{rawQuote("T4_BAG", "Caerleon", 1000)}}
	s := newTestMarketService(t, api)

	if _, err := s.GetPrices(context.Background(), []string{"T4_BAG", "T5_BAG"}, []string{"Caerleon", "Lymhurst"}, []int{1, 2}); err != nil {
		t.Fatalf("GetPrices: %v", err)
	}
	if _, err := s.GetPrices(context.Background(), []string{"T5_BAG", "T4_BAG"}, []string{"Lymhurst", "Caerleon"}, []int{2, 1}); err != nil {
		t.Fatalf("GetPrices reordered: %v", err)
	}
	if api.fetchCnt != 1 {
		t.Fatalf("reordered filters must hit the same key, got %d fetches", api.fetchCnt)
	}
}

func TestGetPricesDistinctFiltersDistinctKeys(t *testing.T) {
	api := &fakeAPI{prices: []*models.RawPriceRecord{rawQuote("T4_BAG", "Caerleon", 1000)}}
	s := newTestMarketService(t, api)

	if _, err := s.GetPrices(context.Background(), []string{"T4_BAG"}, nil, []int{1}); err != nil {
		t.Fatalf("GetPrices: %v", err)
	}
	if _, err := s.GetPrices(context.Background(), []string{"T4_BAG"}, nil, []int{2}); err != nil {
		t.Fatalf("GetPrices quality 2: %v", err)
	}
	if api.fetchCnt != 2 {
		t.Fatalf("distinct filters must not collide, got %d fetches", api.fetchCnt)
	}
}

func TestGetPricesDropsOutliers(t *testing.T) {
	prices := []*models.RawPriceRecord{
		rawQuote("T4_BAG", "Caerleon", 1000),
		rawQuote("T4_BAG", "Lymhurst", 1010),
		rawQuote("T4_BAG", "Martlock", 990),
		rawQuote("T4_BAG", "Thetford", 1005),
		rawQuote("T4_BAG", "Bridgewatch", 995),
		rawQuote("T4_BAG", "Fort Sterling", 1000000), // misplaced decimal
	}
	api := &fakeAPI{prices: prices}
	s := newTestMarketService(t, api)
	s.outlierThreshold = 2

	quotes, err := s.GetPrices(context.Background(), []string{"T4_BAG"}, nil, []int{1})
	if err != nil {
		t.Fatalf("GetPrices: %v", err)
	}
	if len(quotes) != 5 {
		t.Fatalf("expected outlier dropped, got %d quotes", len(quotes))
	}
	for _, q := range quotes {
		if q.City == "Fort Sterling" {
			t.Fatalf("outlier survived: %+v", q)
		}
	}
}

func TestGetPricesUpstreamFailure(t *testing.T) {
	api := &fakeAPI{err: errors.New("upstream down")}
	s := newTestMarketService(t, api)

	if _, err := s.GetPrices(context.Background(), []string{"T4_BAG"}, nil, nil); err == nil {
		t.Fatalf("expected error")
	}
}

func TestGoldHistoryNormalizesAndCaches(t *testing.T) {
	api := &fakeAPI{golds: []*models.RawGoldRecord{
		{Price: fp(3500), Timestamp: "2025-06-01T12:00:00"},
		{Price: fp(-10), Timestamp: "2025-06-01T13:00:00"},
	}}
	s := newTestMarketService(t, api)

	golds, err := s.GoldHistory(context.Background(), 24)
	if err != nil {
		t.Fatalf("GoldHistory: %v", err)
	}
	if len(golds) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(golds))
	}
	if golds[1].Price != 0 {
		t.Fatalf("negative gold price must normalize to 0, got %d", golds[1].Price)
	}

	if _, err := s.GoldHistory(context.Background(), 24); err != nil {
		t.Fatalf("GoldHistory cached: %v", err)
	}
	if api.goldCnt != 1 {
		t.Fatalf("expected 1 upstream fetch, got %d", api.goldCnt)
	}
}

func TestEntriesCarryOrderVolume(t *testing.T) {
	api := &fakeAPI{}
	s := newTestMarketService(t, api)

	quotes := []*models.PriceQuote{
		{ItemID: "T4_BAG", City: "Martlock", Quality: 1, SellPriceMin: 1000, BuyPriceMax: 900, Amount: 12},
		{ItemID: "T4_BAG", City: "Lymhurst", Quality: 1, SellPriceMin: 1500, BuyPriceMax: 1400},
	}
	entries := s.Entries(context.Background(), quotes)
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Quantity != 12 {
		t.Fatalf("reported volume must carry into the entry, got %d", entries[0].Quantity)
	}
	// Sources without volume still represent a single unit.
	if entries[1].Quantity != 1 {
		t.Fatalf("missing volume must default to 1, got %d", entries[1].Quantity)
	}
}

func TestFindFlipsEndToEnd(t *testing.T) {
	api := &fakeAPI{prices: []*models.RawPriceRecord{
		rawQuote("T4_BAG", "Martlock", 1000),
		rawQuote("T4_BAG", "Lymhurst", 1500),
	}}
	s := newTestMarketService(t, api)
	log, err := logger.New(&logger.Config{Level: "error", Format: "json", Output: "stderr"})
	if err != nil {
		t.Fatalf("logger.New: %v", err)
	}

	base := models.ScanParams{
		SalesTaxRate:    0.045,
		SetupFeeRate:    0.015,
		TransportRate:   0,
		DefaultDistance: 15,
		MaxResults:      50,
	}
	finder := NewFlipFinder(s, scanner.Select("", log), base, nopMetrics{}, log)

	opps, err := finder.FindFlips(context.Background(), []string{"T4_BAG"}, nil, []int{1}, 0, 0)
	if err != nil {
		t.Fatalf("FindFlips: %v", err)
	}
	if len(opps) != 1 {
		t.Fatalf("expected 1 opportunity, got %d", len(opps))
	}
	opp := opps[0]
	if opp.BuyCity != "Martlock" || opp.SellCity != "Lymhurst" {
		t.Fatalf("wrong direction: %+v", opp)
	}
	if opp.ItemName == "" {
		t.Fatalf("display name not resolved")
	}
}

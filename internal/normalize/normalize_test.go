package normalize

import (
	"testing"
	"time"

	"AlbionPulse/internal/domain/models"
	"AlbionPulse/pkg/logger"
)

func newTestNormalizer(t *testing.T) *Normalizer {
	t.Helper()
	log, err := logger.New(&logger.Config{Level: "error", Format: "json", Output: "stderr"})
	if err != nil {
		t.Fatalf("logger.New: %v", err)
	}
	return New(log)
}

func fptr(v float64) *float64 { return &v }
func iptr(v int) *int         { return &v }

func TestPriceQuoteNegativeAndMissingPrices(t *testing.T) {
	n := newTestNormalizer(t)

	q, err := n.PriceQuote(&models.RawPriceRecord{
		ItemID:       "T4_BAG",
		City:         "Caerleon",
		SellPriceMin: fptr(-100),
		SellPriceMax: nil,
		BuyPriceMin:  fptr(0),
		BuyPriceMax:  fptr(-1),
		Timestamp:    int64(1700000000),
	})
	if err != nil {
		t.Fatalf("PriceQuote: %v", err)
	}
	if q.SellPriceMin != 0 || q.SellPriceMax != 0 || q.BuyPriceMin != 0 || q.BuyPriceMax != 0 {
		t.Fatalf("expected all prices 0, got %+v", q)
	}
}

func TestPriceQuoteFractionalRounds(t *testing.T) {
	n := newTestNormalizer(t)

	q, err := n.PriceQuote(&models.RawPriceRecord{
		ItemID:       "T4_BAG",
		City:         "Caerleon",
		SellPriceMin: fptr(99.5),
		SellPriceMax: fptr(100.4),
		Timestamp:    int64(1700000000),
	})
	if err != nil {
		t.Fatalf("PriceQuote: %v", err)
	}
	if q.SellPriceMin != 100 {
		t.Fatalf("expected 99.5 to round to 100, got %d", q.SellPriceMin)
	}
	if q.SellPriceMax != 100 {
		t.Fatalf("expected 100.4 to round to 100, got %d", q.SellPriceMax)
	}
}

func TestPriceQuoteSwapsInvertedRange(t *testing.T) {
	n := newTestNormalizer(t)

	q, err := n.PriceQuote(&models.RawPriceRecord{
		ItemID:       "T4_BAG",
		City:         "Lymhurst",
		SellPriceMin: fptr(500),
		SellPriceMax: fptr(300),
		BuyPriceMin:  fptr(200),
		BuyPriceMax:  fptr(100),
		Timestamp:    int64(1700000000),
	})
	if err != nil {
		t.Fatalf("PriceQuote: %v", err)
	}
	if q.SellPriceMin > q.SellPriceMax {
		t.Fatalf("sell range not swapped: min=%d max=%d", q.SellPriceMin, q.SellPriceMax)
	}
	if q.SellPriceMin != 300 || q.SellPriceMax != 500 {
		t.Fatalf("unexpected sell range: min=%d max=%d", q.SellPriceMin, q.SellPriceMax)
	}
	if q.BuyPriceMin != 100 || q.BuyPriceMax != 200 {
		t.Fatalf("unexpected buy range: min=%d max=%d", q.BuyPriceMin, q.BuyPriceMax)
	}
}

func TestQualityClamp(t *testing.T) {
	n := newTestNormalizer(t)

	cases := []struct {
		in   *int
		want int
	}{
		{nil, 1},
		{iptr(0), 1},
		{iptr(-3), 1},
		{iptr(3), 3},
		{iptr(5), 5},
		{iptr(9), 5},
	}
	for _, c := range cases {
		q, err := n.PriceQuote(&models.RawPriceRecord{
			ItemID:    "T4_BAG",
			City:      "Caerleon",
			Quality:   c.in,
			Timestamp: int64(1700000000),
		})
		if err != nil {
			t.Fatalf("PriceQuote: %v", err)
		}
		if q.Quality != c.want {
			t.Fatalf("quality %v: got %d, want %d", c.in, q.Quality, c.want)
		}
	}
}

func TestCityAliases(t *testing.T) {
	cases := map[string]string{
		"caerleon":      "Caerleon",
		"CAERLEON":      "Caerleon",
		"FortSterling":  "Fort Sterling",
		"fort sterling": "Fort Sterling",
		"3005":          "Caerleon",
		"4002":          "Fort Sterling",
		"Black Market":  "Black Market", // unknown passes through
	}
	for in, want := range cases {
		if got := CanonicalCity(in); got != want {
			t.Fatalf("CanonicalCity(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestRegionAliases(t *testing.T) {
	if got := CanonicalRegion("Americas"); got != models.RegionWest {
		t.Fatalf("Americas: got %q", got)
	}
	if got := CanonicalRegion("asia"); got != models.RegionEast {
		t.Fatalf("asia: got %q", got)
	}
	if got := CanonicalRegion("mars"); got != models.PrimaryRegion {
		t.Fatalf("unknown region should default to primary, got %q", got)
	}
}

func TestTimestampEncodings(t *testing.T) {
	n := newTestNormalizer(t)
	want := time.Unix(1700000000, 0).UTC()

	for _, raw := range []interface{}{
		int64(1700000000),          // seconds
		int64(1700000000000),       // milliseconds
		float64(1700000000),        // JSON number
		"2023-11-14T22:13:20Z",     // ISO-8601
		time.Unix(1700000000, 0),   // already absolute
	} {
		q, err := n.PriceQuote(&models.RawPriceRecord{
			ItemID:    "T4_BAG",
			City:      "Caerleon",
			Timestamp: raw,
		})
		if err != nil {
			t.Fatalf("PriceQuote(%v): %v", raw, err)
		}
		if !q.Timestamp.Equal(want) {
			t.Fatalf("timestamp %v: got %v, want %v", raw, q.Timestamp, want)
		}
	}
}

func TestTimestampFallbackToNow(t *testing.T) {
	n := newTestNormalizer(t)
	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	n.now = func() time.Time { return fixed }

	q, err := n.PriceQuote(&models.RawPriceRecord{
		ItemID:    "T4_BAG",
		City:      "Caerleon",
		Timestamp: "not a timestamp",
	})
	if err != nil {
		t.Fatalf("PriceQuote: %v", err)
	}
	if !q.Timestamp.Equal(fixed) {
		t.Fatalf("expected fallback to now, got %v", q.Timestamp)
	}
}

func TestGoldQuoteNegativePrice(t *testing.T) {
	n := newTestNormalizer(t)

	g, err := n.GoldQuote(&models.RawGoldRecord{
		Price:     fptr(-50),
		Timestamp: int64(1700000000),
	})
	if err != nil {
		t.Fatalf("GoldQuote: %v", err)
	}
	if g.Price != 0 {
		t.Fatalf("expected -50 to normalize to 0, got %d", g.Price)
	}
}

func TestMarketOrderSides(t *testing.T) {
	n := newTestNormalizer(t)

	offer, err := n.MarketOrder(&models.MarketOrderEvent{
		ItemCode:     "T4_BAG",
		LocationCode: "3005",
		UnitPrice:    1234.6,
		Amount:       7,
		Side:         models.SideOffer,
		Expires:      int64(1700000000),
	})
	if err != nil {
		t.Fatalf("MarketOrder offer: %v", err)
	}
	if offer.City != "Caerleon" {
		t.Fatalf("location code not resolved: %q", offer.City)
	}
	if offer.SellPriceMin != 1235 || offer.BuyPriceMax != 0 {
		t.Fatalf("offer routed to wrong side: %+v", offer)
	}
	if offer.Amount != 7 {
		t.Fatalf("order volume not carried: %+v", offer)
	}

	req, err := n.MarketOrder(&models.MarketOrderEvent{
		ItemCode:     "T4_BAG",
		LocationCode: "1002",
		UnitPrice:    900,
		Side:         models.SideRequest,
		Expires:      int64(1700000000),
	})
	if err != nil {
		t.Fatalf("MarketOrder request: %v", err)
	}
	if req.BuyPriceMax != 900 || req.SellPriceMin != 0 {
		t.Fatalf("request routed to wrong side: %+v", req)
	}
}

func TestMarketOrderNegativeAmountClamps(t *testing.T) {
	n := newTestNormalizer(t)

	q, err := n.MarketOrder(&models.MarketOrderEvent{
		ItemCode:     "T4_BAG",
		LocationCode: "3005",
		UnitPrice:    100,
		Amount:       -5,
		Side:         models.SideOffer,
		Expires:      int64(1700000000),
	})
	if err != nil {
		t.Fatalf("MarketOrder: %v", err)
	}
	if q.Amount != 0 {
		t.Fatalf("negative amount must clamp to 0, got %d", q.Amount)
	}
}

func TestBatchPartialFailure(t *testing.T) {
	n := newTestNormalizer(t)

	raws := []*models.RawPriceRecord{
		{ItemID: "T4_BAG", City: "Caerleon", Timestamp: int64(1700000000)},
		{ItemID: "", City: "Lymhurst", Timestamp: int64(1700000000)}, // invalid
		{ItemID: "T5_BAG", City: "Martlock", Timestamp: int64(1700000000)},
		nil, // invalid
	}

	res := n.PriceQuoteBatch(raws)
	if len(res.Quotes) != 2 {
		t.Fatalf("expected 2 normalized quotes, got %d", len(res.Quotes))
	}
	if len(res.Errors) != 2 {
		t.Fatalf("expected 2 errors, got %d", len(res.Errors))
	}
	if res.Quotes[0].ItemID != "T4_BAG" || res.Quotes[1].ItemID != "T5_BAG" {
		t.Fatalf("batch order not preserved: %+v", res.Quotes)
	}
}

func TestDistance(t *testing.T) {
	if d := Distance("Caerleon", "Lymhurst", 20); d != 11 {
		t.Fatalf("hub pair: got %v", d)
	}
	if d := Distance("Lymhurst", "Caerleon", 20); d != 11 {
		t.Fatalf("hub pair reversed: got %v", d)
	}
	if d := Distance("Lymhurst", "Martlock", 20); d != 20 {
		t.Fatalf("non-hub pair should use default: got %v", d)
	}
	if d := Distance("Caerleon", "Caerleon", 20); d != 0 {
		t.Fatalf("same city: got %v", d)
	}
}

package scanner

import (
	"sort"

	"AlbionPulse/internal/domain/models"
	"AlbionPulse/pkg/logger"
)

// Engine computes ranked arbitrage opportunities from a market snapshot.
// Implementations are pure: no I/O, no shared state, safe for concurrent use.
type Engine interface {
	Name() string
	Scan(entries []*models.MarketEntry, params models.ScanParams) []models.ArbitrageOpportunity
}

// rank sorts opportunities by ROI descending and truncates. The sort is
// stable so equal-ROI pairs keep their generation order, which both engines
// share.
func rank(opps []models.ArbitrageOpportunity, maxResults int) []models.ArbitrageOpportunity {
	sort.SliceStable(opps, func(i, j int) bool {
		return opps[i].ROI > opps[j].ROI
	})
	if maxResults > 0 && len(opps) > maxResults {
		opps = opps[:maxResults]
	}
	return opps
}

// probeEntries is a fixed synthetic snapshot used to verify the vector
// engine at startup.
var probeEntries = []*models.MarketEntry{
	{ItemID: "T4_BAG", ItemName: "Bag", City: "Caerleon", Quality: 1, BuyPrice: 1000, SellPrice: 950, Quantity: 40},
	{ItemID: "T4_BAG", ItemName: "Bag", City: "Lymhurst", Quality: 1, BuyPrice: 1400, SellPrice: 1350, Quantity: 25},
	{ItemID: "T4_BAG", ItemName: "Bag", City: "Martlock", Quality: 1, BuyPrice: 1100, SellPrice: 1300, Quantity: 60},
	{ItemID: "T4_BAG", ItemName: "Bag", City: "Bridgewatch", Quality: 2, BuyPrice: 900, SellPrice: 1250, Quantity: 10},
	{ItemID: "T5_OFF_SHIELD", ItemName: "Shield", City: "Thetford", Quality: 1, BuyPrice: 5000, SellPrice: 6200, Quantity: 8},
	{ItemID: "T5_OFF_SHIELD", ItemName: "Shield", City: "Fort Sterling", Quality: 1, BuyPrice: 5500, SellPrice: 6800, Quantity: 12},
	{ItemID: "T5_OFF_SHIELD", ItemName: "Shield", City: "Caerleon", Quality: 1, BuyPrice: 0, SellPrice: 7000, Quantity: 5},
}

var probeParams = models.ScanParams{
	SalesTaxRate:    0.04,
	SetupFeeRate:    0.025,
	TransportRate:   0.5,
	DefaultDistance: 15,
	MinROI:          1,
	MaxResults:      50,
}

// Select picks the engine to use at runtime. The vector engine is preferred;
// it is probed against the portable engine on a fixed snapshot and any
// panic or disagreement falls back to the portable engine.
func Select(preference string, log *logger.Logger) Engine {
	portable := NewPortableEngine()
	if preference == "portable" {
		return portable
	}

	vector := NewVectorEngine()
	if probe(vector, portable) {
		log.Debug("scan engine selected", logger.String("engine", vector.Name()))
		return vector
	}
	log.Debug("vector engine probe failed, using portable fallback")
	return portable
}

func probe(candidate, reference Engine) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			ok = false
		}
	}()

	got := candidate.Scan(probeEntries, probeParams)
	want := reference.Scan(probeEntries, probeParams)
	return equalResults(got, want)
}

func equalResults(a, b []models.ArbitrageOpportunity) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

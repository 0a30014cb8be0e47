package scanner

import (
	"AlbionPulse/internal/domain/models"
	"AlbionPulse/internal/normalize"
)

// portableEngine is the straightforward fallback implementation: a map of
// (item, quality) groups and a nested pair loop.
type portableEngine struct{}

// NewPortableEngine creates the fallback scan engine.
func NewPortableEngine() Engine { return &portableEngine{} }

func (e *portableEngine) Name() string { return "portable" }

type groupKey struct {
	itemID  string
	quality int
}

func (e *portableEngine) Scan(entries []*models.MarketEntry, params models.ScanParams) []models.ArbitrageOpportunity {
	groups := make(map[groupKey][]*models.MarketEntry)
	order := make([]groupKey, 0)

	for _, entry := range entries {
		if entry == nil {
			continue
		}
		k := groupKey{itemID: entry.ItemID, quality: entry.Quality}
		if _, seen := groups[k]; !seen {
			order = append(order, k)
		}
		groups[k] = append(groups[k], entry)
	}

	var opps []models.ArbitrageOpportunity
	for _, k := range order {
		group := groups[k]
		for _, buy := range group {
			for _, sell := range group {
				if buy == sell {
					continue
				}
				d := normalize.Distance(buy.City, sell.City, params.DefaultDistance)
				if opp, ok := evaluate(buy, sell, d, params); ok {
					opps = append(opps, opp)
				}
			}
		}
	}

	return rank(opps, params.MaxResults)
}

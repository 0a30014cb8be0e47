package scanner

import (
	"AlbionPulse/internal/domain/models"
	"AlbionPulse/internal/normalize"
)

// vectorEngine is the accelerated implementation. Entries are decomposed
// into flat parallel arrays and grouped by a counting pass, so the scan
// walks contiguous index segments instead of chasing a map of slices.
// Group order and within-group order match the portable engine exactly.
type vectorEngine struct{}

// NewVectorEngine creates the accelerated scan engine.
func NewVectorEngine() Engine { return &vectorEngine{} }

func (e *vectorEngine) Name() string { return "vector" }

func (e *vectorEngine) Scan(entries []*models.MarketEntry, params models.ScanParams) []models.ArbitrageOpportunity {
	n := len(entries)
	if n == 0 {
		return nil
	}

	// Pass 1: assign a dense group id per entry in first-appearance order.
	groupIDs := make([]int32, 0, n)
	groupOf := make(map[groupKey]int32, n)
	live := make([]*models.MarketEntry, 0, n)
	for _, entry := range entries {
		if entry == nil {
			continue
		}
		k := groupKey{itemID: entry.ItemID, quality: entry.Quality}
		gid, seen := groupOf[k]
		if !seen {
			gid = int32(len(groupOf))
			groupOf[k] = gid
		}
		groupIDs = append(groupIDs, gid)
		live = append(live, entry)
	}
	numGroups := len(groupOf)
	n = len(live)

	// Pass 2: counting sort of entry indices by group id. offsets[g] marks
	// where group g's segment starts in members.
	counts := make([]int32, numGroups+1)
	for _, gid := range groupIDs {
		counts[gid+1]++
	}
	for g := 1; g <= numGroups; g++ {
		counts[g] += counts[g-1]
	}
	members := make([]int32, n)
	cursor := make([]int32, numGroups)
	copy(cursor, counts[:numGroups])
	for i, gid := range groupIDs {
		members[cursor[gid]] = int32(i)
		cursor[gid]++
	}

	// Pass 3: scan each contiguous group segment.
	opps := make([]models.ArbitrageOpportunity, 0, 16)
	for g := 0; g < numGroups; g++ {
		seg := members[counts[g]:counts[g+1]]
		for _, bi := range seg {
			buy := live[bi]
			for _, si := range seg {
				if bi == si {
					continue
				}
				sell := live[si]
				d := normalize.Distance(buy.City, sell.City, params.DefaultDistance)
				if opp, ok := evaluate(buy, sell, d, params); ok {
					opps = append(opps, opp)
				}
			}
		}
	}

	return rank(opps, params.MaxResults)
}

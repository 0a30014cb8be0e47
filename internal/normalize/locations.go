package normalize

import (
	"strings"

	"AlbionPulse/internal/domain/models"
)

// Canonical royal city names. Unknown names pass through unchanged so new
// locations keep working before this table learns about them.
const (
	CityCaerleon     = "Caerleon"
	CityBridgewatch  = "Bridgewatch"
	CityLymhurst     = "Lymhurst"
	CityMartlock     = "Martlock"
	CityFortSterling = "Fort Sterling"
	CityThetford     = "Thetford"
	CityBrecilien    = "Brecilien"
)

// Cities lists every canonical city.
var Cities = []string{
	CityCaerleon,
	CityBridgewatch,
	CityLymhurst,
	CityMartlock,
	CityFortSterling,
	CityThetford,
	CityBrecilien,
}

// cityAliases maps lowercased spellings and numeric feed location codes to
// canonical names. The push feed identifies markets by numeric code.
var cityAliases = map[string]string{
	"caerleon":      CityCaerleon,
	"caerleon 2":    CityCaerleon,
	"bridgewatch":   CityBridgewatch,
	"lymhurst":      CityLymhurst,
	"martlock":      CityMartlock,
	"fort sterling": CityFortSterling,
	"fortsterling":  CityFortSterling,
	"fort-sterling": CityFortSterling,
	"thetford":      CityThetford,
	"brecilien":     CityBrecilien,

	// AODP numeric location codes
	"0007": CityThetford,
	"1002": CityLymhurst,
	"2004": CityBridgewatch,
	"3005": CityCaerleon,
	"3008": CityMartlock,
	"4002": CityFortSterling,
	"5003": CityBrecilien,
}

// CanonicalCity resolves a raw city spelling or location code to its
// canonical name. Unknown values are returned trimmed but otherwise as-is.
func CanonicalCity(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if c, ok := cityAliases[strings.ToLower(trimmed)]; ok {
		return c
	}
	return trimmed
}

// regionAliases maps upstream server tags to the Region enum.
var regionAliases = map[string]models.Region{
	"west":      models.RegionWest,
	"americas":  models.RegionWest,
	"us":        models.RegionWest,
	"east":      models.RegionEast,
	"asia":      models.RegionEast,
	"sgp":       models.RegionEast,
	"europe":    models.RegionEU,
	"eu":        models.RegionEU,
	"amsterdam": models.RegionEU,
}

// CanonicalRegion maps a raw server tag to a Region. Unknown tags fall back
// to the primary region; region is a partition hint, not correctness-critical.
func CanonicalRegion(raw string) models.Region {
	if r, ok := regionAliases[strings.ToLower(strings.TrimSpace(raw))]; ok {
		return r
	}
	return models.PrimaryRegion
}

// hubDistances lists travel distances from Caerleon to each royal city.
// Pairs not involving the hub are not listed; callers fall back to a
// configured default distance.
var hubDistances = map[string]float64{
	CityBridgewatch:  12,
	CityLymhurst:     11,
	CityMartlock:     13,
	CityFortSterling: 14,
	CityThetford:     12,
	CityBrecilien:    18,
}

// Distance returns the travel distance between two cities, or def when the
// pair is not covered by the hub table.
func Distance(a, b string, def float64) float64 {
	if a == b {
		return 0
	}
	if a == CityCaerleon {
		if d, ok := hubDistances[b]; ok {
			return d
		}
	}
	if b == CityCaerleon {
		if d, ok := hubDistances[a]; ok {
			return d
		}
	}
	return def
}

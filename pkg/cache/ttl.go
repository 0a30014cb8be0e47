package cache

import "time"

// Tier classifies cached data by how quickly it goes stale.
type Tier string

const (
	// TierVolatile covers live market quotes: useful for at most a few minutes.
	TierVolatile Tier = "volatile"
	// TierStandard covers computed aggregates refreshed on a schedule.
	TierStandard Tier = "standard"
	// TierStable covers display names and other near-static lookups.
	TierStable Tier = "stable"
)

// TTLPolicy maps tiers to expirations. Zero-value durations fall back to the
// defaults below.
type TTLPolicy struct {
	Volatile time.Duration
	Standard time.Duration
	Stable   time.Duration
}

// DefaultTTLPolicy returns the stock tier durations.
func DefaultTTLPolicy() TTLPolicy {
	return TTLPolicy{
		Volatile: 2 * time.Minute,
		Standard: 15 * time.Minute,
		Stable:   12 * time.Hour,
	}
}

// For returns the expiration for a tier.
func (p TTLPolicy) For(tier Tier) time.Duration {
	d := DefaultTTLPolicy()
	switch tier {
	case TierVolatile:
		if p.Volatile > 0 {
			return p.Volatile
		}
		return d.Volatile
	case TierStandard:
		if p.Standard > 0 {
			return p.Standard
		}
		return d.Standard
	case TierStable:
		if p.Stable > 0 {
			return p.Stable
		}
		return d.Stable
	default:
		return d.Standard
	}
}

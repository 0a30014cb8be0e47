package models

import "time"

// BuildAggregate is one equipment-loadout signature with counters folded
// from a bounded window of kill events. The whole table is replaced on each
// aggregation cycle.
type BuildAggregate struct {
	BuildSignature string    `json:"build_signature"`
	DisplayName    string    `json:"display_name"`
	KillCount      int64     `json:"kill_count"`
	DeathCount     int64     `json:"death_count"`
	TotalFame      int64     `json:"total_fame"`
	WinRate        float64   `json:"win_rate"`
	Popularity     float64   `json:"popularity"`
	AvgFame        float64   `json:"avg_fame"`
	UpdatedAt      time.Time `json:"updated_at"`
}

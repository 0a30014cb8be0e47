package models

import "time"

// Region identifies the originating game server cluster.
type Region string

const (
	RegionWest Region = "west"
	RegionEast Region = "east"
	RegionEU   Region = "europe"
)

// PrimaryRegion is the default when an upstream tag cannot be mapped.
const PrimaryRegion = RegionWest

// PriceQuote is one observed price for an (item, city, quality) tuple.
// All price fields are whole silver, independently non-negative. Amount is
// the order volume behind the price; 0 when the source reports none.
type PriceQuote struct {
	ItemID       string    `json:"item_id"`
	City         string    `json:"city"`
	Quality      int       `json:"quality"`
	SellPriceMin int64     `json:"sell_price_min"`
	SellPriceMax int64     `json:"sell_price_max"`
	BuyPriceMin  int64     `json:"buy_price_min"`
	BuyPriceMax  int64     `json:"buy_price_max"`
	Amount       int64     `json:"amount"`
	Timestamp    time.Time `json:"timestamp"`
	Region       Region    `json:"region"`
}

// GoldQuote is a single-price time series entry for the gold/silver rate.
type GoldQuote struct {
	Price     int64     `json:"price"`
	Timestamp time.Time `json:"timestamp"`
	Region    Region    `json:"region"`
}

// KillEvent is one raw PvP event consumed by the aggregation job.
type KillEvent struct {
	EventID         int64     `json:"event_id"`
	Timestamp       time.Time `json:"timestamp"`
	KillerBuild     string    `json:"killer_build"`
	VictimBuild     string    `json:"victim_build"`
	TotalVictimFame int64     `json:"total_victim_fame"`
	Region          Region    `json:"region"`
}

// AuctionSide distinguishes sell offers from buy requests on the order feed.
type AuctionSide string

const (
	SideOffer   AuctionSide = "offer"
	SideRequest AuctionSide = "request"
)

// RawPriceRecord is a loosely typed upstream price row before normalization.
// Pointer fields distinguish "absent" from zero.
type RawPriceRecord struct {
	ItemID       string      `json:"item_id"`
	City         string      `json:"city"`
	Quality      *int        `json:"quality"`
	SellPriceMin *float64    `json:"sell_price_min"`
	SellPriceMax *float64    `json:"sell_price_max"`
	BuyPriceMin  *float64    `json:"buy_price_min"`
	BuyPriceMax  *float64    `json:"buy_price_max"`
	Timestamp    interface{} `json:"timestamp"`
	Region       string      `json:"region"`
}

// RawGoldRecord is a loosely typed upstream gold row before normalization.
type RawGoldRecord struct {
	Price     *float64    `json:"price"`
	Timestamp interface{} `json:"timestamp"`
	Region    string      `json:"region"`
}

// MarketOrderEvent is one market-order message from the push feed.
type MarketOrderEvent struct {
	ItemCode     string      `json:"item_code"`
	LocationCode string      `json:"location_code"`
	Quality      *int        `json:"quality"`
	UnitPrice    float64     `json:"unit_price"`
	Amount       int64       `json:"amount"`
	Side         AuctionSide `json:"side"`
	Expires      interface{} `json:"expires"`
}

// GoldPriceEvent is one gold-price message from the push feed.
type GoldPriceEvent struct {
	Price     float64     `json:"price"`
	Timestamp interface{} `json:"timestamp"`
}

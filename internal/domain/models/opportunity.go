package models

// MarketEntry is one row of the scanner's input snapshot: the best prices
// and available volume for an item in a single city.
type MarketEntry struct {
	ItemID    string `json:"item_id"`
	ItemName  string `json:"item_name"`
	City      string `json:"city"`
	Quality   int    `json:"quality"`
	BuyPrice  int64  `json:"buy_price"`  // cheapest sell order, what a buyer pays here
	SellPrice int64  `json:"sell_price"` // highest buy order, what a seller receives here
	Quantity  int64  `json:"quantity"`
}

// ArbitrageOpportunity is a derived buy-here/sell-there pairing, recomputed
// from scratch on every scan.
type ArbitrageOpportunity struct {
	ItemID    string  `json:"item_id"`
	ItemName  string  `json:"item_name"`
	Quality   int     `json:"quality"`
	BuyCity   string  `json:"buy_city"`
	SellCity  string  `json:"sell_city"`
	BuyPrice  int64   `json:"buy_price"`
	SellPrice int64   `json:"sell_price"`
	Quantity  int64   `json:"quantity"`
	Profit    int64   `json:"profit"`
	ROI       float64 `json:"roi"`
}

// ScanParams controls a single arbitrage scan.
type ScanParams struct {
	SalesTaxRate    float64
	SetupFeeRate    float64
	TransportRate   float64
	DefaultDistance float64
	MinProfit       float64
	MinROI          float64
	MaxResults      int
}

package scanner

import (
	"math"

	"AlbionPulse/internal/domain/models"
)

// baselineQuantity is the load at which transport cost stops growing
// sub-linearly: small hauls share fixed caravan overhead, large hauls
// scale with volume.
const baselineQuantity = 100.0

// buyUnitCost is the effective per-unit cost of acquiring at the buy city,
// marketplace tax and setup fee included. Whole silver.
func buyUnitCost(price int64, p models.ScanParams) float64 {
	return math.Round(float64(price) * (1 + p.SalesTaxRate + p.SetupFeeRate))
}

// sellUnitRevenue is the effective per-unit revenue at the sell city after
// tax and setup fee. Whole silver.
func sellUnitRevenue(price int64, p models.ScanParams) float64 {
	return math.Round(float64(price) * (1 - p.SalesTaxRate - p.SetupFeeRate))
}

// effectiveLoad scales quantity into a transport weight factor.
func effectiveLoad(qty float64) float64 {
	if qty <= 0 {
		return 0
	}
	if qty < baselineQuantity {
		return baselineQuantity * math.Sqrt(qty/baselineQuantity)
	}
	return qty
}

// transportCost estimates the silver cost of hauling qty units over the
// given distance. Whole silver.
func transportCost(distance float64, qty int64, p models.ScanParams) float64 {
	return math.Round(distance * p.TransportRate * effectiveLoad(float64(qty)))
}

// evaluate computes one candidate buy/sell pairing. Both engines route every
// pair through this function so their formulas and rounding are identical by
// construction. Returns ok=false when the pair is infeasible or below the
// configured thresholds.
func evaluate(buy, sell *models.MarketEntry, distance float64, p models.ScanParams) (models.ArbitrageOpportunity, bool) {
	if buy.City == sell.City {
		return models.ArbitrageOpportunity{}, false
	}
	// A zero buy price means nothing is listed; it also guards the ROI
	// denominator.
	if buy.BuyPrice <= 0 || sell.SellPrice <= 0 {
		return models.ArbitrageOpportunity{}, false
	}

	qty := buy.Quantity
	if sell.Quantity < qty {
		qty = sell.Quantity
	}
	if qty <= 0 {
		return models.ArbitrageOpportunity{}, false
	}

	cost := buyUnitCost(buy.BuyPrice, p) * float64(qty)
	revenue := sellUnitRevenue(sell.SellPrice, p) * float64(qty)
	transport := transportCost(distance, qty, p)

	totalCost := cost + transport
	if totalCost <= 0 {
		return models.ArbitrageOpportunity{}, false
	}

	net := revenue - totalCost
	roi := net / totalCost * 100

	if net < p.MinProfit || roi < p.MinROI {
		return models.ArbitrageOpportunity{}, false
	}

	return models.ArbitrageOpportunity{
		ItemID:    buy.ItemID,
		ItemName:  buy.ItemName,
		Quality:   buy.Quality,
		BuyCity:   buy.City,
		SellCity:  sell.City,
		BuyPrice:  buy.BuyPrice,
		SellPrice: sell.SellPrice,
		Quantity:  qty,
		Profit:    int64(net),
		ROI:       roi,
	}, true
}

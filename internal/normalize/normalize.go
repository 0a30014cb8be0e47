package normalize

import (
	"fmt"
	"math"
	"time"

	"AlbionPulse/internal/domain/models"
	"AlbionPulse/pkg/logger"
	"AlbionPulse/pkg/util"
)

// FieldError names the field that made a record unusable.
type FieldError struct {
	Field  string
	Reason string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("field %s: %s", e.Field, e.Reason)
}

const (
	qualityMin     = 1
	qualityMax     = 5
	maxLoggedFails = 3
)

// Normalizer coerces loosely typed upstream records into canonical form.
type Normalizer struct {
	log *logger.Logger
	now func() time.Time
}

// New creates a Normalizer.
func New(log *logger.Logger) *Normalizer {
	return &Normalizer{log: log, now: time.Now}
}

// price normalizes a raw price value. Negative or missing becomes 0,
// fractional values round to whole silver.
func price(v *float64) int64 {
	if v == nil || *v < 0 || math.IsNaN(*v) {
		return 0
	}
	return int64(math.Round(*v))
}

// quality clamps into [1,5]; missing defaults to the baseline tier.
func quality(q *int) int {
	if q == nil {
		return qualityMin
	}
	if *q < qualityMin {
		return qualityMin
	}
	if *q > qualityMax {
		return qualityMax
	}
	return *q
}

// timestamp resolves the upstream timestamp encodings: integer seconds,
// integer milliseconds, ISO-8601 text, or an absolute instant. Unparseable
// input falls back to now and is logged rather than failing the record.
func (n *Normalizer) timestamp(raw interface{}) time.Time {
	switch v := raw.(type) {
	case nil:
	case time.Time:
		if !v.IsZero() {
			return v.UTC()
		}
	case string:
		if t, ok := util.ParseTime(v); ok {
			return t.UTC()
		}
	case int64:
		return util.FromUnixAny(v).UTC()
	case int:
		return util.FromUnixAny(int64(v)).UTC()
	case float64:
		// JSON numbers decode as float64
		return util.FromUnixAny(int64(v)).UTC()
	}
	n.log.Warn("unparseable timestamp, falling back to now", logger.Any("raw", raw))
	return n.now().UTC()
}

// PriceQuote normalizes one raw price row into canonical form.
func (n *Normalizer) PriceQuote(raw *models.RawPriceRecord) (*models.PriceQuote, error) {
	if raw == nil {
		return nil, &FieldError{Field: "record", Reason: "nil"}
	}
	if raw.ItemID == "" {
		return nil, &FieldError{Field: "item_id", Reason: "empty"}
	}

	q := &models.PriceQuote{
		ItemID:       raw.ItemID,
		City:         CanonicalCity(raw.City),
		Quality:      quality(raw.Quality),
		SellPriceMin: price(raw.SellPriceMin),
		SellPriceMax: price(raw.SellPriceMax),
		BuyPriceMin:  price(raw.BuyPriceMin),
		BuyPriceMax:  price(raw.BuyPriceMax),
		Timestamp:    n.timestamp(raw.Timestamp),
		Region:       CanonicalRegion(raw.Region),
	}

	// Upstream ordering bugs are common and recoverable: swap, never reject.
	if q.SellPriceMin > q.SellPriceMax {
		q.SellPriceMin, q.SellPriceMax = q.SellPriceMax, q.SellPriceMin
	}
	if q.BuyPriceMin > q.BuyPriceMax {
		q.BuyPriceMin, q.BuyPriceMax = q.BuyPriceMax, q.BuyPriceMin
	}

	return q, nil
}

// GoldQuote normalizes one raw gold row.
func (n *Normalizer) GoldQuote(raw *models.RawGoldRecord) (*models.GoldQuote, error) {
	if raw == nil {
		return nil, &FieldError{Field: "record", Reason: "nil"}
	}
	return &models.GoldQuote{
		Price:     price(raw.Price),
		Timestamp: n.timestamp(raw.Timestamp),
		Region:    CanonicalRegion(raw.Region),
	}, nil
}

// MarketOrder maps one push-feed market order into a canonical PriceQuote.
// The order's expiry instant is used as the effective timestamp.
func (n *Normalizer) MarketOrder(ev *models.MarketOrderEvent) (*models.PriceQuote, error) {
	if ev == nil {
		return nil, &FieldError{Field: "event", Reason: "nil"}
	}
	if ev.ItemCode == "" {
		return nil, &FieldError{Field: "item_code", Reason: "empty"}
	}

	up := ev.UnitPrice
	p := price(&up)
	amount := ev.Amount
	if amount < 0 {
		amount = 0
	}
	q := &models.PriceQuote{
		ItemID:    ev.ItemCode,
		City:      CanonicalCity(ev.LocationCode),
		Quality:   quality(ev.Quality),
		Amount:    amount,
		Timestamp: n.timestamp(ev.Expires),
		Region:    models.PrimaryRegion,
	}
	switch ev.Side {
	case models.SideRequest:
		q.BuyPriceMin = p
		q.BuyPriceMax = p
	default:
		q.SellPriceMin = p
		q.SellPriceMax = p
	}
	return q, nil
}

// GoldPrice maps one push-feed gold message into a canonical GoldQuote.
func (n *Normalizer) GoldPrice(ev *models.GoldPriceEvent) (*models.GoldQuote, error) {
	if ev == nil {
		return nil, &FieldError{Field: "event", Reason: "nil"}
	}
	p := ev.Price
	return &models.GoldQuote{
		Price:     price(&p),
		Timestamp: n.timestamp(ev.Timestamp),
		Region:    models.PrimaryRegion,
	}, nil
}

// BatchResult carries the outcome of a batch normalization pass.
type BatchResult struct {
	Quotes []*models.PriceQuote
	Errors []error
}

// PriceQuoteBatch normalizes an ordered sequence of raw price rows. One
// corrupt row never discards the batch; per-record errors are collected and
// a summary is logged.
func (n *Normalizer) PriceQuoteBatch(raws []*models.RawPriceRecord) BatchResult {
	res := BatchResult{Quotes: make([]*models.PriceQuote, 0, len(raws))}
	for _, raw := range raws {
		q, err := n.PriceQuote(raw)
		if err != nil {
			res.Errors = append(res.Errors, err)
			continue
		}
		res.Quotes = append(res.Quotes, q)
	}

	if len(res.Errors) > 0 {
		reasons := make([]string, 0, maxLoggedFails)
		for i, err := range res.Errors {
			if i == maxLoggedFails {
				break
			}
			reasons = append(reasons, err.Error())
		}
		n.log.Warn("batch normalized with failures",
			logger.Int("succeeded", len(res.Quotes)),
			logger.Int("failed", len(res.Errors)),
			logger.Strings("first_reasons", reasons),
		)
	} else {
		n.log.Debug("batch normalized", logger.Int("succeeded", len(res.Quotes)))
	}

	return res
}

package albion

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"AlbionPulse/internal/domain/models"
	"AlbionPulse/internal/service/ratelimit"
	pkghttp "AlbionPulse/pkg/http"
	"AlbionPulse/pkg/logger"
)

// Client fetches price data from the request/response market data API.
type Client struct {
	http      *pkghttp.Client
	limiter   *ratelimit.Limiter
	priceURL  string
	goldURL   string
	region    string
	rateLimit float64
	rateBurst int
	log       *logger.Logger
}

// New creates an API client.
func New(http *pkghttp.Client, limiter *ratelimit.Limiter, priceURL, goldURL, region string, rateLimit float64, rateBurst int, log *logger.Logger) *Client {
	if rateLimit <= 0 {
		rateLimit = 2
	}
	if rateBurst <= 0 {
		rateBurst = 5
	}
	return &Client{
		http:      http,
		limiter:   limiter,
		priceURL:  strings.TrimRight(priceURL, "/"),
		goldURL:   strings.TrimRight(goldURL, "/"),
		region:    region,
		rateLimit: rateLimit,
		rateBurst: rateBurst,
		log:       log,
	}
}

// apiPriceRow is the upstream price row shape.
type apiPriceRow struct {
	ItemID           string  `json:"item_id"`
	City             string  `json:"city"`
	Quality          int     `json:"quality"`
	SellPriceMin     float64 `json:"sell_price_min"`
	SellPriceMinDate string  `json:"sell_price_min_date"`
	SellPriceMax     float64 `json:"sell_price_max"`
	SellPriceMaxDate string  `json:"sell_price_max_date"`
	BuyPriceMin      float64 `json:"buy_price_min"`
	BuyPriceMinDate  string  `json:"buy_price_min_date"`
	BuyPriceMax      float64 `json:"buy_price_max"`
	BuyPriceMaxDate  string  `json:"buy_price_max_date"`
}

// apiGoldRow is the upstream gold row shape.
type apiGoldRow struct {
	Price     float64 `json:"price"`
	Timestamp string  `json:"timestamp"`
}

// FetchPrices fetches current prices filtered by items, cities and
// qualities. The result is raw; callers run it through the normalizer.
func (c *Client) FetchPrices(ctx context.Context, items, cities []string, qualities []int) ([]*models.RawPriceRecord, error) {
	if len(items) == 0 {
		return nil, fmt.Errorf("items filter is empty")
	}
	if err := c.limiter.Wait(ctx, "prices", float64(c.rateBurst), c.rateLimit); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	url := fmt.Sprintf("%s/api/v2/stats/prices/%s.json", c.priceURL, strings.Join(items, ","))
	params := map[string][]string{}
	if len(cities) > 0 {
		params["locations"] = []string{strings.Join(cities, ",")}
	}
	if len(qualities) > 0 {
		qs := make([]string, len(qualities))
		for i, q := range qualities {
			qs[i] = strconv.Itoa(q)
		}
		params["qualities"] = []string{strings.Join(qs, ",")}
	}

	var rows []apiPriceRow
	err := c.http.SendAndParse(ctx, &pkghttp.RequestOptions{
		Method:      pkghttp.MethodGet,
		URL:         url,
		QueryParams: params,
	}, &rows)
	if err != nil {
		return nil, fmt.Errorf("fetch prices: %w", err)
	}

	c.log.Debug("prices fetched",
		logger.Int("items", len(items)),
		logger.Int("rows", len(rows)),
	)

	raws := make([]*models.RawPriceRecord, 0, len(rows))
	for _, row := range rows {
		r := row
		quality := r.Quality
		raws = append(raws, &models.RawPriceRecord{
			ItemID:       r.ItemID,
			City:         r.City,
			Quality:      &quality,
			SellPriceMin: &r.SellPriceMin,
			SellPriceMax: &r.SellPriceMax,
			BuyPriceMin:  &r.BuyPriceMin,
			BuyPriceMax:  &r.BuyPriceMax,
			Timestamp:    freshestDate(r.SellPriceMinDate, r.BuyPriceMaxDate),
			Region:       c.region,
		})
	}
	return raws, nil
}

// freshestDate picks the later of the two upstream observation dates so the
// quote timestamp reflects the most recent side.
func freshestDate(a, b string) interface{} {
	if a == "" {
		if b == "" {
			return nil
		}
		return b
	}
	if b == "" || a >= b {
		return a
	}
	return b
}

// FetchGold fetches the recent gold price series.
func (c *Client) FetchGold(ctx context.Context, count int) ([]*models.RawGoldRecord, error) {
	if count <= 0 {
		count = 24
	}
	if err := c.limiter.Wait(ctx, "gold", float64(c.rateBurst), c.rateLimit); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	var rows []apiGoldRow
	err := c.http.SendAndParse(ctx, &pkghttp.RequestOptions{
		Method:      pkghttp.MethodGet,
		URL:         c.goldURL,
		QueryParams: map[string][]string{"count": {strconv.Itoa(count)}},
	}, &rows)
	if err != nil {
		return nil, fmt.Errorf("fetch gold: %w", err)
	}

	raws := make([]*models.RawGoldRecord, 0, len(rows))
	for _, row := range rows {
		r := row
		raws = append(raws, &models.RawGoldRecord{
			Price:     &r.Price,
			Timestamp: r.Timestamp,
			Region:    c.region,
		})
	}
	return raws, nil
}

package albion

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"AlbionPulse/internal/service/ratelimit"
	pkghttp "AlbionPulse/pkg/http"
	"AlbionPulse/pkg/logger"
)

func newTestClient(t *testing.T, srv *httptest.Server) *Client {
	t.Helper()
	log, err := logger.New(&logger.Config{Level: "error", Format: "json", Output: "stderr"})
	if err != nil {
		t.Fatalf("logger.New: %v", err)
	}
	hc := pkghttp.NewClient(pkghttp.WithTimeout(2 * time.Second))
	return New(hc, ratelimit.New(), srv.URL, srv.URL+"/gold", "west", 100, 10, log)
}

func TestFetchPrices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.URL.Path, "/api/v2/stats/prices/") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if !strings.Contains(r.URL.Path, "T4_BAG") {
			t.Errorf("items missing from path: %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("locations"); got != "Caerleon,Lymhurst" {
			t.Errorf("locations: %q", got)
		}
		if got := r.URL.Query().Get("qualities"); got != "1,2" {
			t.Errorf("qualities: %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"item_id":"T4_BAG","city":"Caerleon","quality":1,
			 "sell_price_min":1200,"sell_price_min_date":"2025-06-01T12:00:00",
			 "sell_price_max":1500,"buy_price_max":1100,
			 "buy_price_max_date":"2025-06-01T13:00:00"},
			{"item_id":"T4_BAG","city":"Lymhurst","quality":1,
			 "sell_price_min":1400,"sell_price_max":1400}
		]`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv)
	raws, err := c.FetchPrices(context.Background(), []string{"T4_BAG"}, []string{"Caerleon", "Lymhurst"}, []int{1, 2})
	if err != nil {
		t.Fatalf("FetchPrices: %v", err)
	}
	if len(raws) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(raws))
	}
	if raws[0].City != "Caerleon" || *raws[0].SellPriceMin != 1200 {
		t.Fatalf("unexpected first row: %+v", raws[0])
	}
	// The fresher buy-side date wins.
	if ts, ok := raws[0].Timestamp.(string); !ok || ts != "2025-06-01T13:00:00" {
		t.Fatalf("timestamp: %v", raws[0].Timestamp)
	}
}

func TestFetchPricesRequiresItems(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("no request expected")
	}))
	defer srv.Close()

	c := newTestClient(t, srv)
	if _, err := c.FetchPrices(context.Background(), nil, nil, nil); err == nil {
		t.Fatalf("expected error for empty items")
	}
}

func TestFetchPricesUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "too many requests", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := newTestClient(t, srv)
	if _, err := c.FetchPrices(context.Background(), []string{"T4_BAG"}, nil, nil); err == nil {
		t.Fatalf("expected error on non-2xx status")
	}
}

func TestFetchGold(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/gold" {
			http.NotFound(w, r)
			return
		}
		if got := r.URL.Query().Get("count"); got != "48" {
			t.Errorf("count: %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"price":3500,"timestamp":"2025-06-01T12:00:00"},{"price":3550,"timestamp":"2025-06-01T13:00:00"}]`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv)
	raws, err := c.FetchGold(context.Background(), 48)
	if err != nil {
		t.Fatalf("FetchGold: %v", err)
	}
	if len(raws) != 2 || *raws[0].Price != 3500 {
		t.Fatalf("unexpected rows: %+v", raws)
	}
}

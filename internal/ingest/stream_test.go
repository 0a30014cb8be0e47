package ingest

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"AlbionPulse/pkg/logger"

	"github.com/gorilla/websocket"
)

// feedTestServer drops the first connection after one event and keeps
// streaming on the second.
func feedTestServer(t *testing.T) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	upgrader := websocket.Upgrader{}
	conns := &atomic.Int32{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		n := conns.Add(1)
		// drain subscribe frames and control messages
		go func() {
			for {
				if _, _, err := c.ReadMessage(); err != nil {
					return
				}
			}
		}()
		order := func(item, loc string, price float64, amount int64) map[string]interface{} {
			return map[string]interface{}{
				"type": "market_order",
				"data": map[string]interface{}{
					"item_code":     item,
					"location_code": loc,
					"unit_price":    price,
					"amount":        amount,
					"side":          "offer",
					"expires":       1700000000,
				},
			}
		}
		if n == 1 {
			_ = c.WriteJSON(order("T4_BAG", "3005", 100, 3))
			time.Sleep(50 * time.Millisecond)
			_ = c.Close()
			return
		}
		_ = c.WriteJSON(order("T5_BAG", "1002", 200, 1))
	}))
	return srv, conns
}

func TestReadDeliversAcrossReconnect(t *testing.T) {
	srv, conns := feedTestServer(t)
	defer srv.Close()

	log, err := logger.New(&logger.Config{Level: "error", Format: "json", Output: "stderr"})
	if err != nil {
		t.Fatalf("logger.New: %v", err)
	}
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	s := NewStream(url, []string{"market_order"}, 10*time.Millisecond, time.Minute, log)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.Connect(ctx); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	if err := s.Subscribe(ctx); err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	defer s.Close()
	orders, _, _ := s.Read(ctx)

	var got []string
	for len(got) < 2 {
		select {
		case ev, ok := <-orders:
			if !ok {
				t.Fatalf("order channel closed early, got %v", got)
			}
			got = append(got, ev.ItemCode)
		case <-ctx.Done():
			t.Fatalf("timed out, events from the reconnected feed were lost: got %v", got)
		}
	}
	if got[0] != "T4_BAG" || got[1] != "T5_BAG" {
		t.Fatalf("unexpected event order: %v", got)
	}
	if n := conns.Load(); n != 2 {
		t.Fatalf("expected 2 server connections, got %d", n)
	}
}

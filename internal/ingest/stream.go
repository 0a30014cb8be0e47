package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"AlbionPulse/internal/domain/models"
	drepo "AlbionPulse/internal/domain/repository"
	"AlbionPulse/pkg/logger"

	"github.com/gorilla/websocket"
)

// Stream implements an EventStream backed by the market push feed.
type Stream struct {
	websocketURL   string
	topics         []string
	reconnectDelay time.Duration
	pingInterval   time.Duration
	log            *logger.Logger

	mu        sync.Mutex
	conn      *websocket.Conn
	connected bool
}

// NewStream creates an EventStream for the push feed.
func NewStream(websocketURL string, topics []string, reconnectDelay, pingInterval time.Duration, log *logger.Logger) drepo.EventStream {
	return &Stream{
		websocketURL:   websocketURL,
		topics:         topics,
		reconnectDelay: reconnectDelay,
		pingInterval:   pingInterval,
		log:            log,
	}
}

// Connect establishes the WebSocket connection.
func (s *Stream) Connect(ctx context.Context) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, s.websocketURL, nil)
	if err != nil {
		return fmt.Errorf("feed connect: %w", err)
	}
	s.mu.Lock()
	s.conn = conn
	s.connected = true
	s.mu.Unlock()
	s.log.Info("feed connected", logger.String("url", s.websocketURL))
	return nil
}

// Subscribe subscribes to the configured feed topics.
func (s *Stream) Subscribe(ctx context.Context) error {
	conn := s.current()
	if conn == nil {
		return fmt.Errorf("feed not connected")
	}
	for _, t := range s.topics {
		msg := map[string]string{"type": "subscribe", "topic": t}
		if err := conn.WriteJSON(msg); err != nil {
			return fmt.Errorf("subscribe %s: %w", t, err)
		}
		s.log.Debug("feed subscribed", logger.String("topic", t))
	}
	return nil
}

func (s *Stream) current() *websocket.Conn {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.connected {
		return nil
	}
	return s.conn
}

type feedEnvelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// Read streams market-order and gold-price events plus errors. The read
// loop owns recovery: a broken connection is re-dialed and re-subscribed
// after reconnectDelay while the event channels stay open, so one upstream
// fault never ends the subscription. The channels close only when ctx ends.
func (s *Stream) Read(ctx context.Context) (<-chan *models.MarketOrderEvent, <-chan *models.GoldPriceEvent, <-chan error) {
	orders := make(chan *models.MarketOrderEvent, 1024)
	gold := make(chan *models.GoldPriceEvent, 64)
	errs := make(chan error, 1)

	// ping loop
	go func() {
		ticker := time.NewTicker(s.pingInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if conn := s.current(); conn != nil {
					_ = conn.WriteMessage(websocket.PingMessage, nil)
				}
			}
		}
	}()

	// read loop
	go func() {
		defer close(orders)
		defer close(gold)
		defer close(errs)
		for {
			if ctx.Err() != nil {
				return
			}
			conn := s.current()
			if conn == nil {
				if !s.redial(ctx, errs) {
					return
				}
				continue
			}
			_, b, err := conn.ReadMessage()
			if err != nil {
				select {
				case errs <- fmt.Errorf("feed read: %w", err):
				default:
				}
				if !s.redial(ctx, errs) {
					return
				}
				continue
			}
			var env feedEnvelope
			if err := json.Unmarshal(b, &env); err != nil {
				// ignore non-event frames
				continue
			}
			switch env.Type {
			case "market_order":
				var ev models.MarketOrderEvent
				if err := json.Unmarshal(env.Data, &ev); err != nil {
					continue
				}
				select {
				case orders <- &ev:
				default:
					// drop on backpressure
				}
			case "gold_price":
				var ev models.GoldPriceEvent
				if err := json.Unmarshal(env.Data, &ev); err != nil {
					continue
				}
				select {
				case gold <- &ev:
				default:
					// drop on backpressure
				}
			}
		}
	}()

	return orders, gold, errs
}

// redial re-establishes the connection and subscriptions, retrying until it
// succeeds. Returns false when ctx ends first.
func (s *Stream) redial(ctx context.Context, errs chan<- error) bool {
	_ = s.Close()
	for {
		select {
		case <-ctx.Done():
			return false
		case <-time.After(s.reconnectDelay):
		}
		if err := s.Connect(ctx); err != nil {
			select {
			case errs <- err:
			default:
			}
			continue
		}
		if err := s.Subscribe(ctx); err != nil {
			select {
			case errs <- err:
			default:
			}
			_ = s.Close()
			continue
		}
		s.log.Info("feed reconnected", logger.String("url", s.websocketURL))
		return true
	}
}

// Reconnect forces one close/re-dial cycle. Read's loop recovers on its
// own; this exists for callers that manage the connection directly.
func (s *Stream) Reconnect(ctx context.Context) error {
	_ = s.Close()
	time.Sleep(s.reconnectDelay)
	if err := s.Connect(ctx); err != nil {
		return err
	}
	return s.Subscribe(ctx)
}

// Close closes the WS connection.
func (s *Stream) Close() error {
	s.mu.Lock()
	conn := s.conn
	s.conn = nil
	s.connected = false
	s.mu.Unlock()
	if conn != nil {
		return conn.Close()
	}
	return nil
}

// IsConnected indicates status.
func (s *Stream) IsConnected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.connected
}

package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"AlbionPulse/internal/domain/models"
	drepo "AlbionPulse/internal/domain/repository"
)

// Table names.
const (
	TableQuotes     = "market_quotes"
	TableGold       = "gold_prices"
	TableKillEvents = "kill_events"
	TableAggregates = "build_aggregates"
)

// SchemaStatements returns the idempotent DDL for all pipeline tables.
func SchemaStatements(database string) []string {
	return []string{
		fmt.Sprintf(`CREATE DATABASE IF NOT EXISTS %s`, database),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			ts DateTime,
			item_id String,
			city String,
			quality UInt8,
			sell_price_min Int64,
			sell_price_max Int64,
			buy_price_min Int64,
			buy_price_max Int64,
			amount Int64,
			region String
		) ENGINE = MergeTree() ORDER BY (item_id, city, quality, ts)`, TableQuotes),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			ts DateTime,
			price Int64,
			region String
		) ENGINE = MergeTree() ORDER BY ts`, TableGold),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			event_id Int64,
			ts DateTime,
			killer_build String,
			victim_build String,
			total_victim_fame Int64,
			region String
		) ENGINE = MergeTree() ORDER BY (ts, event_id)`, TableKillEvents),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			build_signature String,
			display_name String,
			kill_count Int64,
			death_count Int64,
			total_fame Int64,
			win_rate Float64,
			popularity Float64,
			avg_fame Float64,
			updated_at DateTime
		) ENGINE = ReplacingMergeTree(updated_at) ORDER BY build_signature`, TableAggregates),
	}
}

// ClickHouseMarketStore implements MarketStore for ClickHouse.
type ClickHouseMarketStore struct {
	db *sql.DB
}

// NewClickHouseMarketStore creates the ClickHouse market store.
func NewClickHouseMarketStore(db *sql.DB) drepo.MarketStore {
	return &ClickHouseMarketStore{db: db}
}

func (s *ClickHouseMarketStore) Init(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *ClickHouseMarketStore) StoreQuote(ctx context.Context, q *models.PriceQuote) error {
	return s.StoreQuoteBatch(ctx, []*models.PriceQuote{q})
}

func (s *ClickHouseMarketStore) StoreQuoteBatch(ctx context.Context, quotes []*models.PriceQuote) error {
	if len(quotes) == 0 {
		return nil
	}
	// Batch insert using VALUES multi-row to reduce round-trips.
	const chunkSize = 2000
	for start := 0; start < len(quotes); start += chunkSize {
		end := start + chunkSize
		if end > len(quotes) {
			end = len(quotes)
		}

		values := make([]string, 0, end-start)
		args := make([]interface{}, 0, (end-start)*10)
		for _, q := range quotes[start:end] {
			if q == nil || q.ItemID == "" {
				continue
			}
			values = append(values, "(?, ?, ?, ?, ?, ?, ?, ?, ?, ?)")
			args = append(args,
				q.Timestamp,
				q.ItemID,
				q.City,
				q.Quality,
				q.SellPriceMin,
				q.SellPriceMax,
				q.BuyPriceMin,
				q.BuyPriceMax,
				q.Amount,
				string(q.Region),
			)
		}
		if len(values) == 0 {
			continue
		}
		stmt := fmt.Sprintf(
			"INSERT INTO %s (ts, item_id, city, quality, sell_price_min, sell_price_max, buy_price_min, buy_price_max, amount, region) VALUES %s",
			TableQuotes, strings.Join(values, ","),
		)
		if _, err := s.db.ExecContext(ctx, stmt, args...); err != nil {
			return fmt.Errorf("store quote batch: %w", err)
		}
	}
	return nil
}

func (s *ClickHouseMarketStore) StoreGold(ctx context.Context, g *models.GoldQuote) error {
	stmt := fmt.Sprintf("INSERT INTO %s (ts, price, region) VALUES (?, ?, ?)", TableGold)
	if _, err := s.db.ExecContext(ctx, stmt, g.Timestamp, g.Price, string(g.Region)); err != nil {
		return fmt.Errorf("store gold: %w", err)
	}
	return nil
}

// QueryQuotes returns the latest quote per (item, city, quality) among the
// given filters.
func (s *ClickHouseMarketStore) QueryQuotes(ctx context.Context, items, cities []string, qualities []int, limit int) ([]*models.PriceQuote, error) {
	if limit <= 0 {
		limit = 1000
	}

	var conds []string
	var args []interface{}
	if len(items) > 0 {
		conds = append(conds, "item_id IN ("+placeholders(len(items))+")")
		for _, v := range items {
			args = append(args, v)
		}
	}
	if len(cities) > 0 {
		conds = append(conds, "city IN ("+placeholders(len(cities))+")")
		for _, v := range cities {
			args = append(args, v)
		}
	}
	if len(qualities) > 0 {
		conds = append(conds, "quality IN ("+placeholders(len(qualities))+")")
		for _, v := range qualities {
			args = append(args, v)
		}
	}
	where := ""
	if len(conds) > 0 {
		where = "WHERE " + strings.Join(conds, " AND ")
	}

	stmt := fmt.Sprintf(`SELECT ts, item_id, city, quality,
			sell_price_min, sell_price_max, buy_price_min, buy_price_max, amount, region
		FROM %s %s
		ORDER BY ts DESC LIMIT 1 BY item_id, city, quality
		LIMIT ?`, TableQuotes, where)
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("query quotes: %w", err)
	}
	defer rows.Close()

	var quotes []*models.PriceQuote
	for rows.Next() {
		var q models.PriceQuote
		var region string
		if err := rows.Scan(&q.Timestamp, &q.ItemID, &q.City, &q.Quality,
			&q.SellPriceMin, &q.SellPriceMax, &q.BuyPriceMin, &q.BuyPriceMax, &q.Amount, &region); err != nil {
			return nil, fmt.Errorf("scan quote: %w", err)
		}
		q.Region = models.Region(region)
		quotes = append(quotes, &q)
	}
	return quotes, rows.Err()
}

func (s *ClickHouseMarketStore) QueryGold(ctx context.Context, from, to time.Time, limit int) ([]*models.GoldQuote, error) {
	if limit <= 0 {
		limit = 1000
	}
	stmt := fmt.Sprintf("SELECT ts, price, region FROM %s WHERE ts >= ? AND ts <= ? ORDER BY ts DESC LIMIT ?", TableGold)
	rows, err := s.db.QueryContext(ctx, stmt, from, to, limit)
	if err != nil {
		return nil, fmt.Errorf("query gold: %w", err)
	}
	defer rows.Close()

	var golds []*models.GoldQuote
	for rows.Next() {
		var g models.GoldQuote
		var region string
		if err := rows.Scan(&g.Timestamp, &g.Price, &region); err != nil {
			return nil, fmt.Errorf("scan gold: %w", err)
		}
		g.Region = models.Region(region)
		golds = append(golds, &g)
	}
	return golds, rows.Err()
}

func (s *ClickHouseMarketStore) QueryKillEvents(ctx context.Context, from, to time.Time, limit int) ([]*models.KillEvent, error) {
	if limit <= 0 {
		limit = 100000
	}
	stmt := fmt.Sprintf("SELECT event_id, ts, killer_build, victim_build, total_victim_fame, region FROM %s WHERE ts >= ? AND ts <= ? ORDER BY ts LIMIT ?", TableKillEvents)
	rows, err := s.db.QueryContext(ctx, stmt, from, to, limit)
	if err != nil {
		return nil, fmt.Errorf("query kill events: %w", err)
	}
	defer rows.Close()

	var events []*models.KillEvent
	for rows.Next() {
		var ev models.KillEvent
		var region string
		if err := rows.Scan(&ev.EventID, &ev.Timestamp, &ev.KillerBuild, &ev.VictimBuild, &ev.TotalVictimFame, &region); err != nil {
			return nil, fmt.Errorf("scan kill event: %w", err)
		}
		ev.Region = models.Region(region)
		events = append(events, &ev)
	}
	return events, rows.Err()
}

// ReplaceAggregates swaps the aggregate table wholesale: delete-all then
// bulk insert. Callers only invoke this after a successful collection pass.
func (s *ClickHouseMarketStore) ReplaceAggregates(ctx context.Context, aggs []*models.BuildAggregate) error {
	if _, err := s.db.ExecContext(ctx, fmt.Sprintf("TRUNCATE TABLE %s", TableAggregates)); err != nil {
		return fmt.Errorf("truncate aggregates: %w", err)
	}
	if len(aggs) == 0 {
		return nil
	}

	values := make([]string, 0, len(aggs))
	args := make([]interface{}, 0, len(aggs)*9)
	for _, a := range aggs {
		if a == nil || a.BuildSignature == "" {
			continue
		}
		values = append(values, "(?, ?, ?, ?, ?, ?, ?, ?, ?)")
		args = append(args,
			a.BuildSignature,
			a.DisplayName,
			a.KillCount,
			a.DeathCount,
			a.TotalFame,
			a.WinRate,
			a.Popularity,
			a.AvgFame,
			a.UpdatedAt,
		)
	}
	if len(values) == 0 {
		return nil
	}

	stmt := fmt.Sprintf(
		"INSERT INTO %s (build_signature, display_name, kill_count, death_count, total_fame, win_rate, popularity, avg_fame, updated_at) VALUES %s",
		TableAggregates, strings.Join(values, ","),
	)
	if _, err := s.db.ExecContext(ctx, stmt, args...); err != nil {
		return fmt.Errorf("insert aggregates: %w", err)
	}
	return nil
}

func (s *ClickHouseMarketStore) QueryAggregates(ctx context.Context, limit int) ([]*models.BuildAggregate, error) {
	if limit <= 0 {
		limit = 100
	}
	stmt := fmt.Sprintf("SELECT build_signature, display_name, kill_count, death_count, total_fame, win_rate, popularity, avg_fame, updated_at FROM %s ORDER BY popularity DESC LIMIT ?", TableAggregates)
	rows, err := s.db.QueryContext(ctx, stmt, limit)
	if err != nil {
		return nil, fmt.Errorf("query aggregates: %w", err)
	}
	defer rows.Close()

	var aggs []*models.BuildAggregate
	for rows.Next() {
		var a models.BuildAggregate
		if err := rows.Scan(&a.BuildSignature, &a.DisplayName, &a.KillCount, &a.DeathCount, &a.TotalFame, &a.WinRate, &a.Popularity, &a.AvgFame, &a.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan aggregate: %w", err)
		}
		aggs = append(aggs, &a)
	}
	return aggs, rows.Err()
}

func (s *ClickHouseMarketStore) Health(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *ClickHouseMarketStore) Close() error {
	return nil // Managed by pkg
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

package cache

import (
	"database/sql"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"

	"CryptoPulse/internal/model"
)

// SQLiteCache persists fetched series to a SQLite database.
type SQLiteCache struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteCache opens (or creates) the database and runs migrations.
func NewSQLiteCache(dbPath string) (*SQLiteCache, error) {
	if dir := filepath.Dir(dbPath); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create cache dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	c := &SQLiteCache{db: db}
	if err := c.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.WithField("path", dbPath).Info("sqlite price cache opened")
	return c, nil
}

func (c *SQLiteCache) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS price_series (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			ticker     TEXT    NOT NULL,
			bar_interval TEXT  NOT NULL,
			start_ts   INTEGER NOT NULL,
			end_ts     INTEGER NOT NULL,
			fetched_at INTEGER NOT NULL,
			UNIQUE (ticker, bar_interval, start_ts, end_ts)
		)`,
		`CREATE TABLE IF NOT EXISTS price_bars (
			series_id INTEGER NOT NULL REFERENCES price_series(id) ON DELETE CASCADE,
			ts        INTEGER NOT NULL,
			open      REAL,
			high      REAL,
			low       REAL,
			close     REAL,
			volume    REAL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_bars_series_ts ON price_bars(series_id, ts)`,
	}

	for _, s := range stmts {
		if _, err := c.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func (c *SQLiteCache) Get(key Key) (model.PriceSeries, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var id, fetchedAt int64
	err := c.db.QueryRow(`SELECT id, fetched_at FROM price_series
		WHERE ticker = ? AND bar_interval = ? AND start_ts = ? AND end_ts = ?`,
		key.Ticker, string(key.Interval), key.Start.Unix(), key.End.Unix(),
	).Scan(&id, &fetchedAt)
	if err == sql.ErrNoRows {
		return model.PriceSeries{}, false, nil
	}
	if err != nil {
		return model.PriceSeries{}, false, fmt.Errorf("lookup %s: %w", key, err)
	}

	rows, err := c.db.Query(`SELECT ts, open, high, low, close, volume
		FROM price_bars WHERE series_id = ? ORDER BY ts`, id)
	if err != nil {
		return model.PriceSeries{}, false, fmt.Errorf("load bars %s: %w", key, err)
	}
	defer rows.Close()

	series := model.PriceSeries{
		Ticker:    key.Ticker,
		Interval:  key.Interval,
		FetchedAt: time.Unix(fetchedAt, 0).UTC(),
	}
	for rows.Next() {
		var ts int64
		var o, h, l, cl, v sql.NullFloat64
		if err := rows.Scan(&ts, &o, &h, &l, &cl, &v); err != nil {
			return model.PriceSeries{}, false, fmt.Errorf("scan bar: %w", err)
		}
		series.Bars = append(series.Bars, model.OHLCV{
			Time:   time.Unix(ts, 0).UTC(),
			Open:   fromNull(o),
			High:   fromNull(h),
			Low:    fromNull(l),
			Close:  fromNull(cl),
			Volume: fromNull(v),
		})
	}
	if err := rows.Err(); err != nil {
		return model.PriceSeries{}, false, err
	}
	return series, true, nil
}

func (c *SQLiteCache) Put(key Key, series model.PriceSeries) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	tx, err := c.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM price_bars WHERE series_id IN (
		SELECT id FROM price_series WHERE ticker = ? AND bar_interval = ? AND start_ts = ? AND end_ts = ?)`,
		key.Ticker, string(key.Interval), key.Start.Unix(), key.End.Unix()); err != nil {
		return fmt.Errorf("purge bars: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM price_series
		WHERE ticker = ? AND bar_interval = ? AND start_ts = ? AND end_ts = ?`,
		key.Ticker, string(key.Interval), key.Start.Unix(), key.End.Unix()); err != nil {
		return fmt.Errorf("purge series: %w", err)
	}

	fetchedAt := series.FetchedAt
	if fetchedAt.IsZero() {
		fetchedAt = time.Now()
	}
	res, err := tx.Exec(`INSERT INTO price_series (ticker, bar_interval, start_ts, end_ts, fetched_at)
		VALUES (?,?,?,?,?)`,
		key.Ticker, string(key.Interval), key.Start.Unix(), key.End.Unix(), fetchedAt.Unix())
	if err != nil {
		return fmt.Errorf("insert series: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}

	stmt, err := tx.Prepare(`INSERT INTO price_bars (series_id, ts, open, high, low, close, volume)
		VALUES (?,?,?,?,?,?,?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for _, b := range series.Bars {
		if _, err := stmt.Exec(id, b.Time.Unix(),
			toNull(b.Open), toNull(b.High), toNull(b.Low), toNull(b.Close), toNull(b.Volume)); err != nil {
			return fmt.Errorf("insert bar: %w", err)
		}
	}
	return tx.Commit()
}

func (c *SQLiteCache) Close() error {
	log.Info("closing sqlite price cache")
	return c.db.Close()
}

func toNull(v float64) sql.NullFloat64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: v, Valid: true}
}

func fromNull(v sql.NullFloat64) float64 {
	if !v.Valid {
		return math.NaN()
	}
	return v.Float64
}

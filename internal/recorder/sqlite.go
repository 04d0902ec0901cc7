package recorder

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"

	"MASentinel/internal/model"
	"MASentinel/internal/strategy"
)

// SQLiteRecorder persists runs and crossover events to a SQLite database.
type SQLiteRecorder struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	if dir := filepath.Dir(dbPath); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL lets dashboards read while the scanner writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Info().Str("path", dbPath).Msg("sqlite recorder opened")
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS signal_runs (
			id           TEXT PRIMARY KEY,
			timestamp    INTEGER NOT NULL,
			symbol       TEXT NOT NULL,
			range_start  INTEGER,
			range_end    INTEGER,
			short_window INTEGER,
			long_window  INTEGER,
			points       INTEGER,
			buys         INTEGER,
			sells        INTEGER,
			last_close   REAL,
			last_short   REAL,
			last_long    REAL,
			last_signal  REAL,
			source       TEXT,
			trigger      TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_symbol_ts ON signal_runs(symbol, timestamp)`,

		`CREATE TABLE IF NOT EXISTS crossover_events (
			id        INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id    TEXT NOT NULL,
			symbol    TEXT NOT NULL,
			bar_time  INTEGER NOT NULL,
			side      TEXT NOT NULL,
			close     REAL,
			short_avg REAL,
			notified  INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE INDEX IF NOT EXISTS idx_events_symbol_bar ON crossover_events(symbol, bar_time)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func nullable(v model.NullFloat) sql.NullFloat64 {
	return sql.NullFloat64{Float64: v.Value, Valid: v.Valid}
}

func (r *SQLiteRecorder) RecordRun(run *RunRecord) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	a := run.Series
	buys, sells := strategy.Markers(a)
	last, _ := a.Latest()
	id := uuid.NewString()

	_, err := r.db.Exec(`INSERT INTO signal_runs
		(id, timestamp, symbol, range_start, range_end, short_window, long_window,
		 points, buys, sells, last_close, last_short, last_long, last_signal, source, trigger)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		id, time.Now().Unix(), a.Symbol, run.Start.Unix(), run.End.Unix(),
		a.ShortWindow, a.LongWindow, len(a.Points), len(buys), len(sells),
		last.Close, nullable(last.ShortAvg), nullable(last.LongAvg), last.Signal,
		run.Source, run.Trigger,
	)
	if err != nil {
		return "", fmt.Errorf("insert run: %w", err)
	}
	return id, nil
}

func (r *SQLiteRecorder) RecordEvents(runID, symbol string, markers []model.Marker, notified bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	for _, m := range markers {
		if _, err := tx.Exec(`INSERT INTO crossover_events
			(run_id, symbol, bar_time, side, close, short_avg, notified)
			VALUES (?,?,?,?,?,?,?)`,
			runID, symbol, m.Time.Unix(), string(m.Side), m.Close, m.Level, notified,
		); err != nil {
			tx.Rollback()
			return fmt.Errorf("insert event: %w", err)
		}
	}
	return tx.Commit()
}

// RecentEvents returns the latest events of symbol, newest first.
func (r *SQLiteRecorder) RecentEvents(symbol string, limit int) ([]EventRow, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rows, err := r.db.Query(`SELECT run_id, symbol, bar_time, side, close, short_avg, notified
		FROM crossover_events WHERE symbol = ? ORDER BY bar_time DESC, id DESC LIMIT ?`, symbol, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []EventRow
	for rows.Next() {
		var (
			e    EventRow
			ts   int64
			side string
		)
		if err := rows.Scan(&e.RunID, &e.Symbol, &ts, &side, &e.Close, &e.ShortAvg, &e.Notified); err != nil {
			return nil, err
		}
		e.BarTime = time.Unix(ts, 0).UTC()
		e.Side = model.Side(side)
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *SQLiteRecorder) Close() error {
	log.Info().Msg("closing sqlite recorder")
	return r.db.Close()
}

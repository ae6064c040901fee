package analytics

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Store persists page views in SQLite, kept separate from the content data
// files so high-volume analytics writes never contend with content reads.
type Store struct {
	db *sql.DB
}

// NewStore opens (or creates) the analytics database at path.
func NewStore(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open analytics db: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	if _, err := db.Exec(`
		PRAGMA journal_mode=WAL;
		PRAGMA busy_timeout=5000;
		PRAGMA synchronous=NORMAL;
	`); err != nil {
		return nil, fmt.Errorf("set pragmas: %w", err)
	}

	s := &Store{db: db}
	if err := s.ensureSchema(); err != nil {
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) ensureSchema() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS page_views (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			visitor_id TEXT NOT NULL,
			ip_hash TEXT NOT NULL,
			device TEXT NOT NULL,
			path TEXT NOT NULL,
			referrer TEXT,
			timestamp DATETIME NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_page_views_timestamp ON page_views(timestamp);
		CREATE INDEX IF NOT EXISTS idx_page_views_visitor_id ON page_views(visitor_id);
		CREATE INDEX IF NOT EXISTS idx_page_views_path ON page_views(path);

		CREATE TABLE IF NOT EXISTS settings (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);
	`)
	return err
}

// GetSetting returns a settings value, or "" if the key is absent.
func (s *Store) GetSetting(key string) (string, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return value, nil
}

// SetSetting upserts a settings value.
func (s *Store) SetSetting(key, value string) error {
	_, err := s.db.Exec(`INSERT OR REPLACE INTO settings (key, value) VALUES (?, ?)`, key, value)
	return err
}

// SaveView records one page view.
func (s *Store) SaveView(v *PageView) error {
	_, err := s.db.Exec(
		`INSERT INTO page_views (visitor_id, ip_hash, device, path, referrer, timestamp) VALUES (?, ?, ?, ?, ?, ?)`,
		v.VisitorID, v.IPHash, v.Device, v.Path, v.Referrer, v.Timestamp,
	)
	return err
}

// GetStats aggregates the last `days` days of views.
func (s *Store) GetStats(days int) (*Stats, error) {
	since := time.Now().UTC().AddDate(0, 0, -days)
	stats := &Stats{PeriodDays: days}

	err := s.db.QueryRow(
		`SELECT COUNT(*), COUNT(DISTINCT visitor_id) FROM page_views WHERE timestamp >= ?`, since,
	).Scan(&stats.TotalViews, &stats.UniqueVisitors)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.Query(
		`SELECT path, COUNT(*) AS views FROM page_views WHERE timestamp >= ?
		 GROUP BY path ORDER BY views DESC LIMIT 10`, since,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var p PageStat
		if err := rows.Scan(&p.Path, &p.Views); err != nil {
			return nil, err
		}
		stats.TopPages = append(stats.TopPages, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	daily, err := s.db.Query(
		`SELECT date(timestamp), COUNT(*) FROM page_views WHERE timestamp >= ?
		 GROUP BY date(timestamp) ORDER BY date(timestamp)`, since,
	)
	if err != nil {
		return nil, err
	}
	defer daily.Close()
	for daily.Next() {
		var d DailyView
		if err := daily.Scan(&d.Date, &d.Views); err != nil {
			return nil, err
		}
		stats.DailyViews = append(stats.DailyViews, d)
	}
	return stats, daily.Err()
}

// DeleteOlderThan removes views past the retention window and returns the
// number of rows removed.
func (s *Store) DeleteOlderThan(days int) (int64, error) {
	cutoff := time.Now().UTC().AddDate(0, 0, -days)
	res, err := s.db.Exec(`DELETE FROM page_views WHERE timestamp < ?`, cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// StartCleanupScheduler deletes views older than retentionDays on the given
// interval. The returned function stops the scheduler.
func (s *Store) StartCleanupScheduler(retentionDays int, interval time.Duration) func() {
	ticker := time.NewTicker(interval)
	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-ticker.C:
				if _, err := s.DeleteOlderThan(retentionDays); err != nil {
					fmt.Fprintf(os.Stderr, "analytics cleanup failed: %v\n", err)
				}
			case <-done:
				ticker.Stop()
				return
			}
		}
	}()
	return func() { close(done) }
}

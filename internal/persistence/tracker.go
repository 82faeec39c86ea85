package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// Tracker records when each subdomain of a target was first and last seen.
type Tracker struct {
	db  *sql.DB
	now func() time.Time
}

type HostHistory struct {
	Target    string    `json:"target"`
	Host      string    `json:"host"`
	FirstSeen time.Time `json:"first_seen"`
	LastSeen  time.Time `json:"last_seen"`
	SeenCount int       `json:"seen_count"`
}

func Open(dbPath string) (*Tracker, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create history directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}

	t := &Tracker{db: db, now: time.Now}
	if err := t.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate history database: %w", err)
	}
	return t, nil
}

func (t *Tracker) migrate() error {
	_, err := t.db.Exec(`
	CREATE TABLE IF NOT EXISTS hosts (
		target     TEXT NOT NULL,
		host       TEXT NOT NULL,
		first_seen INTEGER NOT NULL,
		last_seen  INTEGER NOT NULL,
		seen_count INTEGER NOT NULL DEFAULT 1,
		PRIMARY KEY (target, host)
	);
	CREATE INDEX IF NOT EXISTS idx_hosts_first_seen ON hosts(target, first_seen);
	`)
	return err
}

func (t *Tracker) Close() error {
	return t.db.Close()
}

// Track upserts hosts for target and returns the ones never seen before,
// in input order. Hosts are stored lowercased; the returned names keep the
// caller's spelling.
func (t *Tracker) Track(ctx context.Context, target string, hosts []string) ([]string, error) {
	target = strings.ToLower(target)
	now := t.now().Unix()

	tx, err := t.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	known := make(map[string]bool)
	rows, err := tx.QueryContext(ctx, `SELECT host FROM hosts WHERE target = ?`, target)
	if err != nil {
		return nil, fmt.Errorf("failed to load history: %w", err)
	}
	for rows.Next() {
		var h string
		if err := rows.Scan(&h); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to read history: %w", err)
		}
		known[h] = true
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read history: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
	INSERT INTO hosts (target, host, first_seen, last_seen, seen_count)
	VALUES (?, ?, ?, ?, 1)
	ON CONFLICT(target, host) DO UPDATE SET
		last_seen = excluded.last_seen,
		seen_count = seen_count + 1`)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare upsert: %w", err)
	}
	defer stmt.Close()

	newHosts := []string{}
	for _, host := range hosts {
		key := strings.ToLower(host)
		if _, err := stmt.ExecContext(ctx, target, key, now, now); err != nil {
			return nil, fmt.Errorf("failed to record %s: %w", host, err)
		}
		if !known[key] {
			known[key] = true
			newHosts = append(newHosts, host)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit history: %w", err)
	}
	return newHosts, nil
}

// NewSince lists hosts of target first seen strictly after since.
func (t *Tracker) NewSince(ctx context.Context, target string, since time.Time) ([]HostHistory, error) {
	rows, err := t.db.QueryContext(ctx, `
	SELECT target, host, first_seen, last_seen, seen_count
	FROM hosts
	WHERE target = ? AND first_seen > ?
	ORDER BY first_seen, host`, strings.ToLower(target), since.Unix())
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	var out []HostHistory
	for rows.Next() {
		var h HostHistory
		var first, last int64
		if err := rows.Scan(&h.Target, &h.Host, &first, &last, &h.SeenCount); err != nil {
			return nil, fmt.Errorf("failed to read history row: %w", err)
		}
		h.FirstSeen = time.Unix(first, 0)
		h.LastSeen = time.Unix(last, 0)
		out = append(out, h)
	}
	return out, rows.Err()
}

// Cleanup removes hosts of target not seen within the last daysToKeep days.
func (t *Tracker) Cleanup(ctx context.Context, target string, daysToKeep int) (int64, error) {
	cutoff := t.now().AddDate(0, 0, -daysToKeep).Unix()
	res, err := t.db.ExecContext(ctx, `DELETE FROM hosts WHERE target = ? AND last_seen < ?`, strings.ToLower(target), cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to clean up history: %w", err)
	}
	return res.RowsAffected()
}

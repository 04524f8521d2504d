// Package sqlite persists tracked-field samples for offline analysis. One
// recorder session maps to one row in sessions and a batch of rows in
// samples keyed by canonical source id, so a recorded signal can be joined
// back to its (topic, field) pair across sessions.
package sqlite

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/banshee-data/fieldscope/internal/sample"
	"github.com/banshee-data/fieldscope/internal/track"
)

// Recorder writes samples for one session into a sqlite database.
type Recorder struct {
	db        *sql.DB
	sessionID string
}

// Open creates or opens the database at path and starts a new session.
func Open(path string) (*Recorder, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening %s: %w", path, err)
	}
	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS sessions (
			session_id   TEXT PRIMARY KEY,
			started_at   TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		);
		CREATE TABLE IF NOT EXISTS samples (
			session_id   TEXT,
			source_id    TEXT,
			t            DOUBLE,
			value        DOUBLE,
			FOREIGN KEY(session_id) REFERENCES sessions(session_id)
		);
		CREATE INDEX IF NOT EXISTS idx_samples_source
			ON samples(session_id, source_id, t);
		CREATE TABLE IF NOT EXISTS source_stats (
			session_id   TEXT,
			source_id    TEXT,
			avg_period   DOUBLE,
			min_period   DOUBLE,
			max_period   DOUBLE,
			stddev       DOUBLE,
			count        BIGINT,
			recorded_at  TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		);
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: creating schema: %w", err)
	}
	r := &Recorder{db: db, sessionID: uuid.New().String()}
	err = retryOnBusy(func() error {
		_, err := db.Exec(`INSERT INTO sessions (session_id) VALUES (?)`, r.sessionID)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: starting session: %w", err)
	}
	return r, nil
}

// SessionID returns the id of the running session.
func (r *Recorder) SessionID() string { return r.sessionID }

// RecordSamples appends a batch of samples for one source id in a single
// transaction.
func (r *Recorder) RecordSamples(sourceID string, samples []sample.Sample) error {
	if len(samples) == 0 {
		return nil
	}
	err := retryOnBusy(func() error {
		tx, err := r.db.Begin()
		if err != nil {
			return err
		}
		stmt, err := tx.Prepare(`INSERT INTO samples (session_id, source_id, t, value) VALUES (?, ?, ?, ?)`)
		if err != nil {
			tx.Rollback()
			return err
		}
		defer stmt.Close()
		for _, s := range samples {
			if _, err := stmt.Exec(r.sessionID, sourceID, s.Time, s.Value); err != nil {
				tx.Rollback()
				return err
			}
		}
		return tx.Commit()
	})
	if err != nil {
		return fmt.Errorf("sqlite: recording %d samples for %s: %w", len(samples), sourceID, err)
	}
	return nil
}

// RecordSource snapshots every tracked field of a source plus its
// inter-arrival statistics and persists them.
func (r *Recorder) RecordSource(src *track.Source) error {
	for _, f := range src.Fields() {
		if err := r.RecordSamples(f.ID, f.Data.Snapshot()); err != nil {
			return err
		}
	}
	return r.recordStats(src.Topic(), src.PeriodStats())
}

func (r *Recorder) recordStats(sourceID string, st sample.Stats) error {
	if st.Count == 0 {
		return nil
	}
	err := retryOnBusy(func() error {
		_, err := r.db.Exec(`
			INSERT INTO source_stats (session_id, source_id, avg_period, min_period, max_period, stddev, count)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			r.sessionID, sourceID, st.Average, st.Min, st.Max, st.StdDev, st.Count)
		return err
	})
	if err != nil {
		return fmt.Errorf("sqlite: recording stats for %s: %w", sourceID, err)
	}
	return nil
}

// SampleCount returns how many samples the running session has recorded
// for a source id.
func (r *Recorder) SampleCount(sourceID string) (int, error) {
	var n int
	err := r.db.QueryRow(
		`SELECT COUNT(*) FROM samples WHERE session_id = ? AND source_id = ?`,
		r.sessionID, sourceID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("sqlite: counting samples for %s: %w", sourceID, err)
	}
	return n, nil
}

// Close closes the underlying database.
func (r *Recorder) Close() error {
	return r.db.Close()
}

// retryOnBusy retries a write a few times when sqlite reports the database
// locked by a concurrent writer.
func retryOnBusy(fn func() error) error {
	var err error
	for attempt := 0; attempt < 5; attempt++ {
		err = fn()
		if err == nil || !isBusy(err) {
			return err
		}
		time.Sleep(time.Duration(attempt+1) * 10 * time.Millisecond)
	}
	return err
}

func isBusy(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "database is locked") || strings.Contains(msg, "SQLITE_BUSY")
}

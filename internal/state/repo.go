package state

import (
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	"github.com/starford/ansuz/internal/models"
)

const fingerprintKey = "last_fingerprint"

// RecordCycle appends one cycle to the journal.
func (db *DB) RecordCycle(c models.CycleRecord) error {
	_, err := db.conn.Exec(`
		INSERT INTO cycles (started_at, finished_at, fingerprint, docs_written, docs_failed, status, error)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, c.StartedAt, c.FinishedAt, int64(c.Fingerprint), c.DocsWritten, c.DocsFailed, c.Status, c.Error)
	if err != nil {
		return fmt.Errorf("state: record cycle: %w", err)
	}
	return nil
}

// RecentCycles returns the most recent cycles, newest first.
func (db *DB) RecentCycles(limit int) ([]models.CycleRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := db.conn.Query(`
		SELECT id, started_at, finished_at, fingerprint, docs_written, docs_failed, status, error
		FROM cycles ORDER BY id DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("state: recent cycles: %w", err)
	}
	defer rows.Close()

	var out []models.CycleRecord
	for rows.Next() {
		var c models.CycleRecord
		var fp int64
		if err := rows.Scan(&c.ID, &c.StartedAt, &c.FinishedAt, &fp, &c.DocsWritten, &c.DocsFailed, &c.Status, &c.Error); err != nil {
			return nil, err
		}
		c.Fingerprint = int32(fp)
		out = append(out, c)
	}
	return out, rows.Err()
}

// SetFingerprint persists the schema fingerprint of the last applied cycle.
func (db *DB) SetFingerprint(fp int32) error {
	_, err := db.conn.Exec(`
		INSERT INTO meta (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, fingerprintKey, strconv.FormatInt(int64(fp), 10))
	if err != nil {
		return fmt.Errorf("state: set fingerprint: %w", err)
	}
	return nil
}

// Fingerprint returns the persisted schema fingerprint. ok is false when no
// cycle has ever been applied.
func (db *DB) Fingerprint() (fp int32, ok bool, err error) {
	var raw string
	err = db.conn.QueryRow(`SELECT value FROM meta WHERE key = ?`, fingerprintKey).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("state: get fingerprint: %w", err)
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, false, fmt.Errorf("state: parse fingerprint: %w", err)
	}
	return int32(n), true, nil
}

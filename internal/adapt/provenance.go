package adapt

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// #region provenance

// ProvenanceRecord is one row of the adaptation log: what was attempted,
// what triggered it, and how it ended.
type ProvenanceRecord struct {
	At      time.Time
	Type    Type // empty for tag-delta applications
	Source  Source
	Outcome string // applied | rejected | failed
	Detail  string
}

// ProvenanceLog persists adaptation outcomes to sqlite so a session's
// decisions can be audited after the fact.
type ProvenanceLog struct {
	db *sql.DB
}

const provenanceSchema = `
CREATE TABLE IF NOT EXISTS adaptation_log (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	at TEXT NOT NULL,
	adaptation_type TEXT NOT NULL,
	source TEXT NOT NULL,
	outcome TEXT NOT NULL,
	detail TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_adaptation_log_at ON adaptation_log(at);
`

// OpenProvenanceLog opens (or creates) the adaptation log at path.
func OpenProvenanceLog(path string) (*ProvenanceLog, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open provenance log: %w", err)
	}
	if _, err := db.Exec(provenanceSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init provenance schema: %w", err)
	}
	return &ProvenanceLog{db: db}, nil
}

// Close releases the underlying database.
func (l *ProvenanceLog) Close() error { return l.db.Close() }

// Record appends one outcome row.
func (l *ProvenanceLog) Record(rec ProvenanceRecord) error {
	_, err := l.db.Exec(
		`INSERT INTO adaptation_log (at, adaptation_type, source, outcome, detail) VALUES (?, ?, ?, ?, ?)`,
		rec.At.UTC().Format(time.RFC3339Nano), string(rec.Type), string(rec.Source), rec.Outcome, rec.Detail,
	)
	if err != nil {
		return fmt.Errorf("insert provenance record: %w", err)
	}
	return nil
}

// Recent returns the newest n records, newest first.
func (l *ProvenanceLog) Recent(n int) ([]ProvenanceRecord, error) {
	rows, err := l.db.Query(
		`SELECT at, adaptation_type, source, outcome, detail FROM adaptation_log ORDER BY id DESC LIMIT ?`, n,
	)
	if err != nil {
		return nil, fmt.Errorf("query provenance records: %w", err)
	}
	defer rows.Close()

	var out []ProvenanceRecord
	for rows.Next() {
		var rec ProvenanceRecord
		var at string
		if err := rows.Scan(&at, &rec.Type, &rec.Source, &rec.Outcome, &rec.Detail); err != nil {
			return nil, fmt.Errorf("scan provenance record: %w", err)
		}
		ts, perr := time.Parse(time.RFC3339Nano, at)
		if perr != nil {
			return nil, fmt.Errorf("parse provenance timestamp: %w", perr)
		}
		rec.At = ts
		out = append(out, rec)
	}
	return out, rows.Err()
}

// #endregion provenance

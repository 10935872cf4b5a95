// Package vault is the local, bounded, time-ordered store for biometric
// insight records. Records are pruned by a retention sweep that runs on a
// timer and again on shutdown. Writes are fire-and-forget from the caller's
// point of view: a failed write is logged, never fatal.
package vault

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/elitecommand/aura-session/internal/cipher"
	"github.com/elitecommand/aura-session/internal/privacy"
)

// #region schema
const schema = `
CREATE TABLE IF NOT EXISTS insight_records (
	record_key    TEXT PRIMARY KEY,
	created_at    TEXT NOT NULL,
	privacy_level TEXT NOT NULL,
	encrypted     INTEGER NOT NULL DEFAULT 0,
	raw           BLOB NOT NULL,
	anonymized    BLOB NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_insight_created ON insight_records(created_at);
`

// #endregion schema

// #region config

// Config holds retention knobs for the vault.
type Config struct {
	RetentionHours int
	SweepInterval  time.Duration
}

// DefaultConfig returns the standard retention policy.
func DefaultConfig() Config {
	return Config{
		RetentionHours: 24,
		SweepInterval:  60 * time.Second,
	}
}

func (c *Config) defaults() {
	if c.RetentionHours <= 0 {
		c.RetentionHours = 24
	}
	if c.SweepInterval <= 0 {
		c.SweepInterval = 60 * time.Second
	}
}

// #endregion config

// #region record

// Record is one stored insight entry.
type Record struct {
	Key          string
	CreatedAt    time.Time
	PrivacyLevel string
	Raw          []byte
	Anonymized   []byte
}

// #endregion record

// #region store

// Store manages insight records in SQLite. An optional cipher encrypts both
// the raw and anonymized blobs at rest.
type Store struct {
	db     *sql.DB
	cfg    Config
	cipher cipher.Cipher
	log    *zap.Logger

	sweepStop chan struct{}
	sweepDone chan struct{}
	closeOnce sync.Once
}

// Open opens (creating if needed) the vault database and starts the
// background retention sweep. enc may be nil for plaintext storage.
func Open(dbPath string, cfg Config, enc cipher.Cipher, log *zap.Logger) (*Store, error) {
	cfg.defaults()
	if log == nil {
		log = zap.NewNop()
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open vault db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("migrate vault: %w", err)
	}

	s := &Store{
		db:        db,
		cfg:       cfg,
		cipher:    enc,
		log:       log.Named("vault"),
		sweepStop: make(chan struct{}),
		sweepDone: make(chan struct{}),
	}
	go s.sweepLoop()
	return s, nil
}

// DB exposes the underlying handle so settings and provenance tables can
// share the same database file.
func (s *Store) DB() *sql.DB { return s.db }

// Close runs a final best-effort sweep, stops the sweep loop, and closes the
// database.
func (s *Store) Close() error {
	var err error
	s.closeOnce.Do(func() {
		close(s.sweepStop)
		<-s.sweepDone
		if n, serr := s.Sweep(); serr != nil {
			s.log.Warn("final sweep failed", zap.Error(serr))
		} else if n > 0 {
			s.log.Info("final sweep", zap.Int64("pruned", n))
		}
		err = s.db.Close()
	})
	return err
}

// #endregion store

// #region put

// Put stores a raw reading alongside its anonymized insight under a fresh
// time-and-random composite key, and returns the key.
func (s *Store) Put(raw any, insight privacy.LocalInsight) (string, error) {
	rawJSON, err := json.Marshal(raw)
	if err != nil {
		return "", fmt.Errorf("marshal raw: %w", err)
	}
	anonJSON, err := json.Marshal(insight)
	if err != nil {
		return "", fmt.Errorf("marshal insight: %w", err)
	}

	encrypted := 0
	if s.cipher != nil {
		if rawJSON, err = s.cipher.Seal(rawJSON); err != nil {
			return "", fmt.Errorf("seal raw: %w", err)
		}
		if anonJSON, err = s.cipher.Seal(anonJSON); err != nil {
			return "", fmt.Errorf("seal insight: %w", err)
		}
		encrypted = 1
	}

	now := time.Now().UTC()
	key := fmt.Sprintf("aura_%d_%s", now.UnixMilli(), uuid.NewString()[:8])

	_, err = s.db.Exec(
		`INSERT INTO insight_records (record_key, created_at, privacy_level, encrypted, raw, anonymized)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		key, now.Format(time.RFC3339Nano), string(insight.PrivacyLevel), encrypted, rawJSON, anonJSON,
	)
	if err != nil {
		return "", fmt.Errorf("insert record: %w", err)
	}
	return key, nil
}

// #endregion put

// #region get

// Get fetches and (if needed) decrypts one record by key.
func (s *Store) Get(key string) (Record, error) {
	var rec Record
	var createdStr string
	var encrypted int

	err := s.db.QueryRow(
		`SELECT record_key, created_at, privacy_level, encrypted, raw, anonymized
		 FROM insight_records WHERE record_key = ?`, key,
	).Scan(&rec.Key, &createdStr, &rec.PrivacyLevel, &encrypted, &rec.Raw, &rec.Anonymized)
	if err != nil {
		return Record{}, fmt.Errorf("get record %s: %w", key, err)
	}
	rec.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdStr)

	if encrypted == 1 {
		if s.cipher == nil {
			return Record{}, fmt.Errorf("record %s is encrypted but store has no cipher", key)
		}
		if rec.Raw, err = s.cipher.Open(rec.Raw); err != nil {
			return Record{}, fmt.Errorf("open raw: %w", err)
		}
		if rec.Anonymized, err = s.cipher.Open(rec.Anonymized); err != nil {
			return Record{}, fmt.Errorf("open insight: %w", err)
		}
	}
	return rec, nil
}

// Keys returns record keys, newest first, up to limit.
func (s *Store) Keys(limit int) ([]string, error) {
	rows, err := s.db.Query(
		`SELECT record_key FROM insight_records ORDER BY created_at DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list keys: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, fmt.Errorf("scan key: %w", err)
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

// Count returns the number of stored records.
func (s *Store) Count() (int, error) {
	var n int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM insight_records`).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count records: %w", err)
	}
	return n, nil
}

// #endregion get

// #region sweep

// Sweep deletes records older than the retention window and returns the
// number pruned.
func (s *Store) Sweep() (int64, error) {
	cutoff := time.Now().UTC().Add(-time.Duration(s.cfg.RetentionHours) * time.Hour)
	res, err := s.db.Exec(
		`DELETE FROM insight_records WHERE created_at < ?`,
		cutoff.Format(time.RFC3339Nano),
	)
	if err != nil {
		return 0, fmt.Errorf("sweep: %w", err)
	}
	return res.RowsAffected()
}

func (s *Store) sweepLoop() {
	defer close(s.sweepDone)
	ticker := time.NewTicker(s.cfg.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.sweepStop:
			return
		case <-ticker.C:
			if n, err := s.Sweep(); err != nil {
				s.log.Warn("retention sweep failed", zap.Error(err))
			} else if n > 0 {
				s.log.Debug("retention sweep", zap.Int64("pruned", n))
			}
		}
	}
}

// #endregion sweep

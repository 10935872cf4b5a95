package settings

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// #region settings

// Settings are one user's knobs for the adaptive pipeline. Tiers gate which
// entry modes may act: passive is biometric reaction, semi-active is mirror
// feedback, active is direct element edits.
type Settings struct {
	UserID string

	// The passive tier defaults off: biometric-driven change is opt-in.
	PassiveTierEnabled    bool
	SemiActiveTierEnabled bool
	ActiveTierEnabled     bool

	SystemMetricsEnabled    bool
	WellnessInsightsEnabled bool

	BiometricLocalOnly   bool
	DataRetentionDays    int
	AutoSummarizeChanges bool

	AdaptationSensitivity float64 // scales biometric tag deltas
	PropagationFactor     float64
	AggressiveConflicts   bool

	PrivacyLevel          string // minimal | standard | comprehensive
	AnonymizationStrength string // low | medium | high

	UpdatedAt time.Time
}

// DefaultSettings returns the settings a new user starts with.
func DefaultSettings(userID string) Settings {
	return Settings{
		UserID:                userID,
		PassiveTierEnabled:    false,
		SemiActiveTierEnabled: true,
		ActiveTierEnabled:     true,
		SystemMetricsEnabled:  true,
		BiometricLocalOnly:    true,
		DataRetentionDays:     7,
		AutoSummarizeChanges:  true,
		AdaptationSensitivity: 0.5,
		PropagationFactor:     0.3,
		PrivacyLevel:          "standard",
		AnonymizationStrength: "medium",
	}
}

// #endregion settings

// #region store

// Store persists per-user settings in SQLite.
type Store struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS user_settings (
	user_id TEXT PRIMARY KEY,
	passive_tier INTEGER NOT NULL,
	semi_active_tier INTEGER NOT NULL,
	active_tier INTEGER NOT NULL,
	system_metrics INTEGER NOT NULL,
	wellness_insights INTEGER NOT NULL,
	local_only INTEGER NOT NULL,
	retention_days INTEGER NOT NULL,
	auto_summarize INTEGER NOT NULL,
	sensitivity REAL NOT NULL,
	propagation_factor REAL NOT NULL,
	aggressive_conflicts INTEGER NOT NULL,
	privacy_level TEXT NOT NULL,
	anonymization_strength TEXT NOT NULL,
	updated_at TEXT NOT NULL
);
`

// Open opens (or creates) a settings store at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open settings store: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init settings schema: %w", err)
	}
	return &Store{db: db}, nil
}

// NewStore wraps an existing database handle, creating the table if needed.
func NewStore(db *sql.DB) (*Store, error) {
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("init settings schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database.
func (s *Store) Close() error { return s.db.Close() }

// Load returns the user's settings, falling back to defaults when the user
// has never saved any.
func (s *Store) Load(userID string) (Settings, error) {
	row := s.db.QueryRow(`SELECT
		passive_tier, semi_active_tier, active_tier,
		system_metrics, wellness_insights,
		local_only, retention_days, auto_summarize,
		sensitivity, propagation_factor, aggressive_conflicts,
		privacy_level, anonymization_strength, updated_at
		FROM user_settings WHERE user_id = ?`, userID)

	var st Settings
	st.UserID = userID
	var updated string
	err := row.Scan(
		&st.PassiveTierEnabled, &st.SemiActiveTierEnabled, &st.ActiveTierEnabled,
		&st.SystemMetricsEnabled, &st.WellnessInsightsEnabled,
		&st.BiometricLocalOnly, &st.DataRetentionDays, &st.AutoSummarizeChanges,
		&st.AdaptationSensitivity, &st.PropagationFactor, &st.AggressiveConflicts,
		&st.PrivacyLevel, &st.AnonymizationStrength, &updated,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return DefaultSettings(userID), nil
	}
	if err != nil {
		return Settings{}, fmt.Errorf("load settings for %q: %w", userID, err)
	}
	if st.UpdatedAt, err = time.Parse(time.RFC3339Nano, updated); err != nil {
		return Settings{}, fmt.Errorf("parse settings timestamp: %w", err)
	}
	return st, nil
}

// Save upserts the user's settings.
func (s *Store) Save(st Settings) error {
	if st.UserID == "" {
		return fmt.Errorf("save settings: empty user id")
	}
	_, err := s.db.Exec(`INSERT INTO user_settings (
		user_id, passive_tier, semi_active_tier, active_tier,
		system_metrics, wellness_insights,
		local_only, retention_days, auto_summarize,
		sensitivity, propagation_factor, aggressive_conflicts,
		privacy_level, anonymization_strength, updated_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(user_id) DO UPDATE SET
		passive_tier = excluded.passive_tier,
		semi_active_tier = excluded.semi_active_tier,
		active_tier = excluded.active_tier,
		system_metrics = excluded.system_metrics,
		wellness_insights = excluded.wellness_insights,
		local_only = excluded.local_only,
		retention_days = excluded.retention_days,
		auto_summarize = excluded.auto_summarize,
		sensitivity = excluded.sensitivity,
		propagation_factor = excluded.propagation_factor,
		aggressive_conflicts = excluded.aggressive_conflicts,
		privacy_level = excluded.privacy_level,
		anonymization_strength = excluded.anonymization_strength,
		updated_at = excluded.updated_at`,
		st.UserID, st.PassiveTierEnabled, st.SemiActiveTierEnabled, st.ActiveTierEnabled,
		st.SystemMetricsEnabled, st.WellnessInsightsEnabled,
		st.BiometricLocalOnly, st.DataRetentionDays, st.AutoSummarizeChanges,
		st.AdaptationSensitivity, st.PropagationFactor, st.AggressiveConflicts,
		st.PrivacyLevel, st.AnonymizationStrength, time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("save settings for %q: %w", st.UserID, err)
	}
	return nil
}

// #endregion store

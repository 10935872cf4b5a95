package settings

import (
	"path/filepath"
	"testing"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "settings.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestLoadUnknownUserReturnsDefaults(t *testing.T) {
	s := openTestStore(t)

	st, err := s.Load("nobody")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if st.PassiveTierEnabled {
		t.Fatalf("passive tier enabled by default")
	}
	if !st.SemiActiveTierEnabled || !st.ActiveTierEnabled {
		t.Fatalf("interactive tiers disabled by default: %+v", st)
	}
	if st.AdaptationSensitivity != 0.5 || st.PropagationFactor != 0.3 {
		t.Fatalf("default tuning off: %+v", st)
	}
	if !st.BiometricLocalOnly {
		t.Fatalf("biometric processing not local-only by default")
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	s := openTestStore(t)

	st := DefaultSettings("nika")
	st.PassiveTierEnabled = true
	st.AdaptationSensitivity = 0.8
	st.PrivacyLevel = "comprehensive"
	st.AnonymizationStrength = "high"
	if err := s.Save(st); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := s.Load("nika")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !got.PassiveTierEnabled {
		t.Fatalf("passive tier not persisted")
	}
	if got.AdaptationSensitivity != 0.8 {
		t.Fatalf("sensitivity = %f", got.AdaptationSensitivity)
	}
	if got.PrivacyLevel != "comprehensive" || got.AnonymizationStrength != "high" {
		t.Fatalf("privacy settings = %q/%q", got.PrivacyLevel, got.AnonymizationStrength)
	}
	if got.UpdatedAt.IsZero() {
		t.Fatalf("updated_at not set")
	}
}

func TestSaveUpsertsExistingUser(t *testing.T) {
	s := openTestStore(t)

	st := DefaultSettings("nika")
	if err := s.Save(st); err != nil {
		t.Fatalf("first save: %v", err)
	}
	st.DataRetentionDays = 30
	if err := s.Save(st); err != nil {
		t.Fatalf("second save: %v", err)
	}

	got, err := s.Load("nika")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.DataRetentionDays != 30 {
		t.Fatalf("retention = %d, want 30", got.DataRetentionDays)
	}
}

func TestSaveRejectsEmptyUserID(t *testing.T) {
	s := openTestStore(t)
	if err := s.Save(Settings{}); err == nil {
		t.Fatalf("save with empty user id succeeded")
	}
}

package backend

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/elitecommand/aura-session/internal/adapt"
	"github.com/elitecommand/aura-session/internal/privacy"
)

func devPayload() privacy.BackendPayload {
	return privacy.BackendPayload{
		SessionID:             "anonymous",
		HashedTimestamp:       "a1b2c3d4e5f60718",
		PrivacyLevel:          privacy.LevelStandard,
		AttentionLevel:        0.8,
		DataQuality:           0.9,
		StressCategory:        privacy.BucketHigh,
		CognitiveLoadCategory: privacy.BucketModerate,
	}
}

func TestSessionLifecycleAgainstDevServer(t *testing.T) {
	srv := httptest.NewServer(NewDevServer(zap.NewNop()).Router())
	t.Cleanup(srv.Close)
	client := NewClient(srv.URL)
	ctx := context.Background()

	started, err := client.StartSession(ctx, StartSessionRequest{UserID: "nika"})
	require.NoError(t, err)
	assert.Equal(t, "started", started.Status)
	assert.NotEmpty(t, started.SessionID)
	assert.Equal(t, 0.5, started.UserProfile.AdaptationSensitivity)

	resp, err := client.Ingest(ctx, devPayload())
	require.NoError(t, err)
	assert.Equal(t, "processed", resp.Status)
	require.Len(t, resp.Adaptations, 1)
	assert.Equal(t, "stress_elevation", resp.Adaptations[0].Trigger)
	assert.Equal(t, "color_scheme", resp.Adaptations[0].Type)

	summary, err := client.EndSession(ctx, started.SessionID)
	require.NoError(t, err)
	assert.Equal(t, "ended", summary.Status)
	assert.Equal(t, 1, summary.DataPointsCollected)
	assert.InDelta(t, 0.9, summary.SessionQuality, 1e-9)
}

func TestStartSessionRequiresUserID(t *testing.T) {
	srv := httptest.NewServer(NewDevServer(zap.NewNop()).Router())
	t.Cleanup(srv.Close)
	client := NewClient(srv.URL)

	_, err := client.StartSession(context.Background(), StartSessionRequest{})
	var serr *StatusError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, http.StatusBadRequest, serr.Code)
}

func TestEndUnknownSessionIsNotFound(t *testing.T) {
	srv := httptest.NewServer(NewDevServer(zap.NewNop()).Router())
	t.Cleanup(srv.Close)
	client := NewClient(srv.URL)

	_, err := client.EndSession(context.Background(), "no-such-session")
	var serr *StatusError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, http.StatusNotFound, serr.Code)
}

func TestTransportFailureIsBackendUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close() // connection refused from here on

	client := NewClient(url)
	_, err := client.Ingest(context.Background(), devPayload())
	assert.True(t, errors.Is(err, ErrBackendUnavailable), "err = %v", err)
}

func TestIngestRequiresAnonymizedFields(t *testing.T) {
	srv := httptest.NewServer(NewDevServer(zap.NewNop()).Router())
	t.Cleanup(srv.Close)
	client := NewClient(srv.URL)

	p := devPayload()
	p.HashedTimestamp = ""
	_, err := client.Ingest(context.Background(), p)
	var serr *StatusError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, http.StatusBadRequest, serr.Code)
}

func TestDirectiveDecodeCoversAllTypes(t *testing.T) {
	cases := []struct {
		directive Directive
		want      adapt.Params
	}{
		{
			Directive{Type: "color_scheme", Parameters: map[string]any{"scheme": "calming"}},
			adapt.ColorSchemeParams{Scheme: adapt.PaletteCalming},
		},
		{
			Directive{Type: "typography", Parameters: map[string]any{"size_increase": 1.2, "spacing_increase": 1.3}},
			adapt.TypographyParams{SizeScale: 1.2, SpacingScale: 1.3},
		},
		{
			Directive{Type: "layout_density", Parameters: map[string]any{"density": "minimal"}},
			adapt.LayoutDensityParams{Density: adapt.DensityMinimal},
		},
		{
			Directive{Type: "information_filtering", Parameters: map[string]any{"filter_level": "essential_only"}},
			adapt.InformationFilteringParams{FilterLevel: adapt.FilterEssentialOnly},
		},
		{
			Directive{Type: "interaction_speed", Parameters: map[string]any{"speed": "relaxed"}},
			adapt.InteractionSpeedParams{Speed: adapt.SpeedRelaxed},
		},
		{
			Directive{Type: "content_prioritization", Parameters: map[string]any{"focus_mode": true}},
			adapt.ContentPrioritizationParams{FocusMode: true},
		},
		{
			Directive{Type: "automation_level", Parameters: map[string]any{"level": "increased"}},
			adapt.AutomationLevelParams{Level: adapt.AutomationIncreased},
		},
		{
			Directive{Type: "feedback_intensity", Parameters: map[string]any{"intensity": "enhanced", "explanations": true}},
			adapt.FeedbackIntensityParams{Intensity: "enhanced", Explanations: true},
		},
	}
	for _, c := range cases {
		a, err := c.directive.Decode()
		require.NoError(t, err, "type %s", c.directive.Type)
		assert.Equal(t, c.want, a.Params)
	}

	_, err := Directive{Type: "hologram"}.Decode()
	assert.Error(t, err)
}

func TestDecodeDefaultsMissingParameters(t *testing.T) {
	a, err := Directive{Type: "typography", Parameters: map[string]any{}}.Decode()
	require.NoError(t, err)
	assert.Equal(t, adapt.TypographyParams{SizeScale: 1.0, SpacingScale: 1.0}, a.Params)
}

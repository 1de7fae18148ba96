package domain

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- mocks ---

type stubResolver struct {
	snapshot WeatherSnapshot
	err      error
	calls    int
}

func (s *stubResolver) Resolve(_ context.Context, _, _ float64) (WeatherSnapshot, error) {
	s.calls++
	return s.snapshot, s.err
}

// --- tests ---

func mustRules(t *testing.T) RuleSet {
	t.Helper()
	rules, err := LoadDefaultRules()
	require.NoError(t, err)
	return rules
}

func droughtSnapshot() WeatherSnapshot {
	return WeatherSnapshot{
		TemperatureC: 35,
		HumidityPct:  20,
		Condition:    "Clear",
		Description:  "clear sky",
		ObservedAt:   time.Date(2026, 7, 20, 9, 0, 0, 0, time.UTC),
	}
}

func TestCorrelateWeather(t *testing.T) {
	rules := mustRules(t)
	claimedAt := time.Date(2026, 7, 20, 8, 0, 0, 0, time.UTC)

	t.Run("hot dry clear day matches drought", func(t *testing.T) {
		result := CorrelateWeather(droughtSnapshot(), rules.Rule(DamageDrought), DamageDrought, claimedAt)

		assert.Equal(t, StatusMatch, result.Status)
		assert.Equal(t, weatherScoreCeiling, result.Score)
		assert.Len(t, result.Details, 3)
		require.NotNil(t, result.WeatherContext)
		assert.Equal(t, "Clear", result.WeatherContext.Condition)
	})

	t.Run("rain and saturated air mismatch drought", func(t *testing.T) {
		snapshot := WeatherSnapshot{TemperatureC: 24, HumidityPct: 90, Condition: "Rain"}

		result := CorrelateWeather(snapshot, rules.Rule(DamageDrought), DamageDrought, claimedAt)

		assert.Equal(t, StatusMismatch, result.Status)
		assert.Equal(t, weatherScoreFloor, result.Score)
	})

	t.Run("forced mismatch survives a decent score", func(t *testing.T) {
		// Clear and hot supports drought, but saturated humidity forces the
		// mismatch even though the score lands in the neutral band.
		snapshot := WeatherSnapshot{TemperatureC: 35, HumidityPct: 90, Condition: "Clear"}

		result := CorrelateWeather(snapshot, rules.Rule(DamageDrought), DamageDrought, claimedAt)

		assert.Equal(t, StatusMismatch, result.Status)
		assert.InDelta(t, 0.7, result.Score, 1e-9)
	})

	t.Run("cold day undercuts drought", func(t *testing.T) {
		snapshot := WeatherSnapshot{TemperatureC: 15, HumidityPct: 50, Condition: "Clear"}

		result := CorrelateWeather(snapshot, rules.Rule(DamageDrought), DamageDrought, claimedAt)

		assert.Equal(t, StatusNeutral, result.Status)
		assert.InDelta(t, 0.6, result.Score, 1e-9)
		assert.Contains(t, result.Details[1], "low temperature")
	})

	t.Run("neutral rule stays neutral", func(t *testing.T) {
		result := CorrelateWeather(droughtSnapshot(), rules.Rule("unmapped"), "unmapped", claimedAt)

		assert.Equal(t, StatusNeutral, result.Status)
		assert.Equal(t, weatherBaseScore, result.Score)
		assert.Empty(t, result.Details)
	})

	t.Run("missing condition is unknown", func(t *testing.T) {
		result := CorrelateWeather(WeatherSnapshot{}, rules.Rule(DamageDrought), DamageDrought, claimedAt)

		assert.Equal(t, StatusUnknown, result.Status)
		assert.Equal(t, weatherBaseScore, result.Score)
		assert.Equal(t, []string{"no usable weather observation"}, result.Details)
	})

	t.Run("score stays inside the clamp", func(t *testing.T) {
		conditions := []string{"Clear", "Rain", "Thunderstorm", "Snow", "Clouds"}
		for _, cond := range conditions {
			for _, temp := range []float64{-5, 15, 25, 40} {
				for _, humidity := range []float64{10, 50, 95} {
					snapshot := WeatherSnapshot{TemperatureC: temp, HumidityPct: humidity, Condition: cond}
					result := CorrelateWeather(snapshot, rules.Rule(DamageDrought), DamageDrought, claimedAt)

					assert.GreaterOrEqual(t, result.Score, weatherScoreFloor)
					assert.LessOrEqual(t, result.Score, weatherScoreCeiling)
				}
			}
		}
	})

	t.Run("stale observation noted as proxy", func(t *testing.T) {
		snapshot := droughtSnapshot()
		oldClaim := snapshot.ObservedAt.Add(-80 * time.Hour)

		result := CorrelateWeather(snapshot, rules.Rule(DamageDrought), DamageDrought, oldClaim)

		require.NotEmpty(t, result.Details)
		assert.Contains(t, result.Details[len(result.Details)-1], "proxy")
	})

	t.Run("zero claim time skips the proxy note", func(t *testing.T) {
		result := CorrelateWeather(droughtSnapshot(), rules.Rule(DamageDrought), DamageDrought, time.Time{})

		for _, d := range result.Details {
			assert.NotContains(t, d, "proxy")
		}
	})

	t.Run("metrics carry the observation", func(t *testing.T) {
		result := CorrelateWeather(droughtSnapshot(), rules.Rule(DamageDrought), DamageDrought, claimedAt)

		assert.Equal(t, 35.0, result.Metrics["temperature_c"])
		assert.Equal(t, 20.0, result.Metrics["humidity_pct"])
	})
}

func TestWeatherScorerVerify(t *testing.T) {
	rules := mustRules(t)
	claimedAt := time.Date(2026, 7, 20, 8, 0, 0, 0, time.UTC)

	t.Run("scores the resolved snapshot", func(t *testing.T) {
		resolver := &stubResolver{snapshot: droughtSnapshot()}
		scorer := NewWeatherScorer(resolver, rules)

		result, err := scorer.Verify(context.Background(), testFieldLat, testFieldLon, DamageDrought, claimedAt)

		require.NoError(t, err)
		assert.Equal(t, StatusMatch, result.Status)
		assert.Equal(t, 1, resolver.calls)
	})

	t.Run("rejects out-of-range coordinates", func(t *testing.T) {
		resolver := &stubResolver{snapshot: droughtSnapshot()}
		scorer := NewWeatherScorer(resolver, rules)

		_, err := scorer.Verify(context.Background(), 91, testFieldLon, DamageDrought, claimedAt)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid coordinates")
		assert.Equal(t, 0, resolver.calls)
	})

	t.Run("rejects non-finite coordinates", func(t *testing.T) {
		scorer := NewWeatherScorer(&stubResolver{}, rules)

		_, err := scorer.Verify(context.Background(), math.NaN(), testFieldLon, DamageDrought, claimedAt)

		require.Error(t, err)
	})

	t.Run("wraps resolver errors", func(t *testing.T) {
		resolver := &stubResolver{err: assert.AnError}
		scorer := NewWeatherScorer(resolver, rules)

		_, err := scorer.Verify(context.Background(), testFieldLat, testFieldLon, DamageDrought, claimedAt)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "resolve weather snapshot")
	})
}

package domain

import (
	"context"
	"fmt"
	"time"
)

// SnapshotResolver supplies current weather for a coordinate.
// Implementations must always produce a usable snapshot, degrading to
// deterministic mock data on provider trouble; the error return is reserved
// for malformed coordinates.
type SnapshotResolver interface {
	Resolve(ctx context.Context, lat, lon float64) (WeatherSnapshot, error)
}

// Correlation score adjustments, applied to a neutral 0.5 base.
const (
	weatherBaseScore     = 0.5
	supportingBonus      = 0.3
	contradictingPenalty = 0.4
	auxTempBonus         = 0.2
	auxTempPenalty       = 0.2
	auxHumidityBonus     = 0.1
	auxHumidityPenalty   = 0.3

	coldTempC            = 20.0
	saturatedHumidityPct = 80.0
)

// The clamp keeps correlation scores away from 0 and 1: one weather
// observation is never absolute proof or disproof of a damage claim.
const (
	weatherScoreFloor   = 0.1
	weatherScoreCeiling = 0.99
)

// Status bands applied after clamping.
const (
	matchThreshold    = 0.7
	mismatchThreshold = 0.3
)

// Beyond this gap between claim time and observation time the result notes
// that current conditions stand in for historical data.
const observationLagLimit = 48 * time.Hour

// WeatherScorer correlates observed weather with claimed damage types.
type WeatherScorer struct {
	resolver SnapshotResolver
	rules    RuleSet
}

// NewWeatherScorer builds a scorer over a snapshot resolver and a validated
// rule set.
func NewWeatherScorer(resolver SnapshotResolver, rules RuleSet) *WeatherScorer {
	return &WeatherScorer{resolver: resolver, rules: rules}
}

// Verify resolves current conditions at (lat, lon) and scores them against
// the rule for code. Provider trouble degrades to mock data inside the
// resolver, so the error return fires only for malformed coordinates.
func (s *WeatherScorer) Verify(ctx context.Context, lat, lon float64, code DamageCode, claimedAt time.Time) (VerificationResult, error) {
	if !validCoordinates(lat, lon) {
		return VerificationResult{}, fmt.Errorf("weather verify: invalid coordinates (%v, %v)", lat, lon)
	}
	snapshot, err := s.resolver.Resolve(ctx, lat, lon)
	if err != nil {
		return VerificationResult{}, fmt.Errorf("resolve weather snapshot: %w", err)
	}
	return CorrelateWeather(snapshot, s.rules.Rule(code), code, claimedAt), nil
}

// CorrelateWeather scores a single observation against the correlation rule
// for the claimed damage type. Pure: all state arrives as arguments.
//
// The score starts neutral at 0.5. A supporting condition adds 0.3; a
// contradicting one subtracts 0.4 and forces MISMATCH. Auxiliary thresholds
// adjust further for temperature and humidity, with saturated humidity also
// forcing MISMATCH. A forced MISMATCH is sticky: no later adjustment can
// upgrade it, only the clamped score is reported alongside.
func CorrelateWeather(snapshot WeatherSnapshot, rule DamageWeatherRule, code DamageCode, claimedAt time.Time) VerificationResult {
	if snapshot.Condition == "" {
		return VerificationResult{
			Status:         StatusUnknown,
			Score:          weatherBaseScore,
			Details:        []string{"no usable weather observation"},
			WeatherContext: &snapshot,
		}
	}

	score := weatherBaseScore
	status := StatusNeutral
	forcedMismatch := false
	var details []string

	switch {
	case rule.supports(snapshot.Condition):
		score += supportingBonus
		details = append(details, fmt.Sprintf("weather %q supports damage type %s", snapshot.Condition, code))
	case rule.contradicts(snapshot.Condition):
		score -= contradictingPenalty
		status = worseOf(status, StatusMismatch)
		forcedMismatch = true
		details = append(details, fmt.Sprintf("weather %q contradicts damage type %s", snapshot.Condition, code))
	}

	if rule.Aux != nil {
		switch {
		case snapshot.TemperatureC > rule.Aux.MinTempC:
			score += auxTempBonus
			details = append(details, fmt.Sprintf("high temperature (%.1f°C) supports %s", snapshot.TemperatureC, code.Name()))
		case snapshot.TemperatureC < coldTempC:
			score -= auxTempPenalty
			details = append(details, fmt.Sprintf("low temperature (%.1f°C) contradicts %s", snapshot.TemperatureC, code.Name()))
		}
		switch {
		case snapshot.HumidityPct < rule.Aux.MaxHumidityPct:
			score += auxHumidityBonus
			details = append(details, fmt.Sprintf("low humidity (%.0f%%) supports %s", snapshot.HumidityPct, code.Name()))
		case snapshot.HumidityPct > saturatedHumidityPct:
			score -= auxHumidityPenalty
			status = worseOf(status, StatusMismatch)
			forcedMismatch = true
			details = append(details, fmt.Sprintf("high humidity (%.0f%%) contradicts %s", snapshot.HumidityPct, code.Name()))
		}
	}

	score = clampRange(score, weatherScoreFloor, weatherScoreCeiling)

	if !forcedMismatch {
		switch {
		case score > matchThreshold:
			status = StatusMatch
		case score < mismatchThreshold:
			status = StatusMismatch
		default:
			status = StatusNeutral
		}
	}

	if !claimedAt.IsZero() && snapshot.ObservedAt.Sub(claimedAt) > observationLagLimit {
		details = append(details, fmt.Sprintf("current conditions used as proxy for claim filed %s", claimedAt.Format("2006-01-02")))
	}

	return VerificationResult{
		Status:  status,
		Score:   score,
		Details: details,
		Metrics: map[string]float64{
			"temperature_c": snapshot.TemperatureC,
			"humidity_pct":  snapshot.HumidityPct,
		},
		WeatherContext: &snapshot,
	}
}

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cropshield/claim-assessment-service/internal/adapter/store"
	"github.com/cropshield/claim-assessment-service/internal/assessor"
	"github.com/cropshield/claim-assessment-service/internal/domain"
	"github.com/cropshield/claim-assessment-service/internal/observability"
)

// execute runs the root command with args and returns the combined output.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return buf.String(), err
}

func writeFixtures(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	_, err := execute(t, "fixtures", "--dir", dir)
	require.NoError(t, err)
	return dir
}

func TestRulesPrintsEveryCode(t *testing.T) {
	t.Setenv("RULES_FILE", "")

	out, err := execute(t, "rules")
	require.NoError(t, err)

	for _, code := range domain.DamageCodes {
		assert.Contains(t, out, "("+string(code)+")")
	}
	assert.Contains(t, out, "supporting:")
	assert.Contains(t, out, "min temp 30")
}

func TestRulesRejectsIncompleteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	require.NoError(t, os.WriteFile(path, []byte("rules:\n  DR:\n    supporting: [Clear]\n"), 0o644))

	_, err := execute(t, "rules", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing entry")
}

func TestWeatherPrintsSnapshot(t *testing.T) {
	t.Setenv("OPENWEATHER_API_KEY", "")

	out, err := execute(t, "weather", "12.9716", "77.5946")
	require.NoError(t, err)

	assert.Contains(t, out, "Source:      mock")
	assert.Contains(t, out, "Condition:   Rain")
	assert.Contains(t, out, "Humidity:")
}

func TestWeatherScoresDamageCode(t *testing.T) {
	t.Setenv("OPENWEATHER_API_KEY", "")
	t.Setenv("RULES_FILE", "")

	out, err := execute(t, "weather", "21.7458", "79.4882", "DR")
	require.NoError(t, err)

	assert.Contains(t, out, "Condition:   Clear")
	assert.Contains(t, out, "Drought (DR)")
	assert.Contains(t, out, "MATCH")
}

func TestWeatherRejectsBadCoordinates(t *testing.T) {
	_, err := execute(t, "weather", "up", "79.0")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse latitude")
}

func TestFixturesWritesBundles(t *testing.T) {
	dir := t.TempDir()
	out, err := execute(t, "fixtures", "--dir", dir)
	require.NoError(t, err)

	for _, name := range []string{"bundle-clean.json", "bundle-tampered.json", "bundle-sparse.json"} {
		assert.Contains(t, out, name)

		data, err := os.ReadFile(filepath.Join(dir, name))
		require.NoError(t, err)
		var bundle assessor.ClaimBundle
		require.NoError(t, json.Unmarshal(data, &bundle))
		assert.NotEmpty(t, bundle.ClaimID)
		assert.False(t, bundle.ClaimedAt.IsZero())
	}
}

func TestAssessCleanFixture(t *testing.T) {
	t.Setenv("OPENWEATHER_API_KEY", "")
	t.Setenv("RULES_FILE", "")
	dir := writeFixtures(t)

	out, err := execute(t, "assess", filepath.Join(dir, "bundle-clean.json"))
	require.NoError(t, err)

	var result assessor.Result
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Equal(t, domain.DecisionApprove, result.Assessment.Decision)
	require.NotNil(t, result.Assessment.PayoutAmount)
	assert.Equal(t, 90000.0, *result.Assessment.PayoutAmount)
	assert.Equal(t, domain.StatusMatch, result.Weather.Status)
	assert.Equal(t, domain.AreaMethodEstimated, result.Area.Method)
}

func TestAssessTamperedFixtureAutoRejects(t *testing.T) {
	t.Setenv("OPENWEATHER_API_KEY", "")
	t.Setenv("RULES_FILE", "")
	dir := writeFixtures(t)

	out, err := execute(t, "assess", filepath.Join(dir, "bundle-tampered.json"))
	require.NoError(t, err)

	var result assessor.Result
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Equal(t, domain.DecisionReject, result.Assessment.Decision)
	assert.True(t, result.Fraud.AutoReject)
	require.NotNil(t, result.Assessment.PayoutAmount)
	assert.Zero(t, *result.Assessment.PayoutAmount)
}

func TestAssessSparseFixtureGoesToReview(t *testing.T) {
	t.Setenv("OPENWEATHER_API_KEY", "")
	t.Setenv("RULES_FILE", "")
	dir := writeFixtures(t)

	out, err := execute(t, "assess", filepath.Join(dir, "bundle-sparse.json"))
	require.NoError(t, err)

	var result assessor.Result
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Equal(t, domain.DecisionManualReview, result.Assessment.Decision)
	assert.Nil(t, result.Assessment.PayoutAmount)
	assert.Equal(t, domain.AreaMethodManual, result.Area.Method)
}

func TestAssessMissingFile(t *testing.T) {
	_, err := execute(t, "assess", filepath.Join(t.TempDir(), "nope.json"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read bundle")
}

func TestAuditListsRecords(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "audit.db")

	st, err := store.Open(dbPath, observability.NewMetricsForTesting(), cliLogger())
	require.NoError(t, err)
	payout := 90000.0
	result := assessor.Result{
		AssessmentID: "claim-0011223344556677",
		ClaimID:      "CLM-2026-000101",
		Assessment: domain.ClaimAssessment{
			Decision:        domain.DecisionApprove,
			ConfidenceScore: 0.96,
			PayoutAmount:    &payout,
			Currency:        domain.PayoutCurrency,
		},
		ProcessedAt: time.Date(2026, time.March, 15, 12, 30, 0, 0, time.UTC),
	}
	require.NoError(t, st.Save(context.Background(), result))
	require.NoError(t, st.Close())

	out, err := execute(t, "audit", "--db", dbPath)
	require.NoError(t, err)
	assert.Contains(t, out, "CLM-2026-000101")
	assert.Contains(t, out, "APPROVE")
	assert.Contains(t, out, "90000.00 INR")
}

func TestAuditEmptyStore(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "empty.db")

	out, err := execute(t, "audit", "--db", dbPath)
	require.NoError(t, err)
	assert.Contains(t, out, "no assessments recorded")
}

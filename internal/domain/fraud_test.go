package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerifyCaptureTimestamps(t *testing.T) {
	claimedAt := time.Date(2026, 7, 20, 12, 0, 0, 0, time.UTC)

	t.Run("fresh captures score full", func(t *testing.T) {
		images := []ImageEvidence{
			{Filename: "img1.jpg", CapturedAt: "2026:07:18 10:00:00"},
			{Filename: "img2.jpg", CapturedAt: "2026:07:19 17:30:00"},
		}

		check := VerifyCaptureTimestamps(images, claimedAt)

		assert.Equal(t, 1.0, check.Score)
		assert.Equal(t, 2, check.ValidCount)
		assert.Empty(t, check.Issues)
	})

	t.Run("stale capture penalized", func(t *testing.T) {
		images := []ImageEvidence{
			{Filename: "old.jpg", CapturedAt: "2026:06:05 12:00:00"},
		}

		check := VerifyCaptureTimestamps(images, claimedAt)

		assert.InDelta(t, 0.8, check.Score, 1e-9)
		require.Len(t, check.Issues, 1)
		assert.Contains(t, check.Issues[0], "45 days old")
	})

	t.Run("future capture penalized", func(t *testing.T) {
		images := []ImageEvidence{
			{Filename: "future.jpg", CapturedAt: "2026:07:25 12:00:00"},
		}

		check := VerifyCaptureTimestamps(images, claimedAt)

		assert.InDelta(t, 0.8, check.Score, 1e-9)
		require.Len(t, check.Issues, 1)
		assert.Contains(t, check.Issues[0], "future capture timestamp")
	})

	t.Run("clock skew grace for near-future captures", func(t *testing.T) {
		images := []ImageEvidence{
			{Filename: "skew.jpg", CapturedAt: "2026:07:21 00:00:00"},
		}

		check := VerifyCaptureTimestamps(images, claimedAt)

		assert.Equal(t, 1.0, check.Score)
		assert.Empty(t, check.Issues)
	})

	t.Run("nul padded tag still parses", func(t *testing.T) {
		images := []ImageEvidence{
			{Filename: "padded.jpg", CapturedAt: "2026:07:18 10:00:00\x00\x00"},
		}

		check := VerifyCaptureTimestamps(images, claimedAt)

		assert.Equal(t, 1, check.ValidCount)
		assert.Equal(t, 1.0, check.Score)
	})

	t.Run("unparsable tag skipped", func(t *testing.T) {
		images := []ImageEvidence{
			{Filename: "junk.jpg", CapturedAt: "not a timestamp"},
			{Filename: "good.jpg", CapturedAt: "2026:07:19 08:00:00"},
		}

		check := VerifyCaptureTimestamps(images, claimedAt)

		assert.Equal(t, 1, check.ValidCount)
		assert.Equal(t, 1.0, check.Score)
	})

	t.Run("no usable timestamps", func(t *testing.T) {
		images := []ImageEvidence{
			{Filename: "a.jpg"},
			{Filename: "b.jpg", CapturedAt: "corrupt"},
			{Filename: "c.jpg", CapturedAt: "\x00\x00"},
		}

		check := VerifyCaptureTimestamps(images, claimedAt)

		assert.Equal(t, noTimestampsScore, check.Score)
		assert.Equal(t, 0, check.ValidCount)
		require.Len(t, check.Issues, 1)
		assert.Contains(t, check.Issues[0], "no valid capture timestamps")
	})

	t.Run("score floors at zero", func(t *testing.T) {
		var images []ImageEvidence
		for i := 0; i < 6; i++ {
			images = append(images, ImageEvidence{Filename: "old.jpg", CapturedAt: "2026:01:01 12:00:00"})
		}

		check := VerifyCaptureTimestamps(images, claimedAt)

		assert.Equal(t, 0.0, check.Score)
		assert.Len(t, check.Issues, 6)
	})
}

func TestDetectMetadataTampering(t *testing.T) {
	t.Run("camera software is clean", func(t *testing.T) {
		images := []ImageEvidence{
			{Filename: "a.jpg", Software: "Samsung Camera 12.0"},
			{Filename: "b.jpg"},
		}

		check := DetectMetadataTampering(images)

		assert.Equal(t, 1.0, check.Score)
		assert.Empty(t, check.Traces)
	})

	t.Run("editing software flagged", func(t *testing.T) {
		images := []ImageEvidence{
			{Filename: "edited.jpg", Software: "Adobe Photoshop 25.1"},
		}

		check := DetectMetadataTampering(images)

		assert.InDelta(t, 0.7, check.Score, 1e-9)
		require.Len(t, check.Traces, 1)
		assert.Contains(t, check.Traces[0], "edited.jpg")
		assert.Contains(t, check.Traces[0], "Adobe Photoshop 25.1")
	})

	t.Run("matching is case insensitive", func(t *testing.T) {
		images := []ImageEvidence{
			{Filename: "g.jpg", Software: "GIMP 2.10"},
		}

		check := DetectMetadataTampering(images)

		assert.Len(t, check.Traces, 1)
	})

	t.Run("traces stack per image", func(t *testing.T) {
		images := []ImageEvidence{
			{Filename: "a.jpg", Software: "photoshop express"},
			{Filename: "b.jpg", Software: "MS Paint"},
		}

		check := DetectMetadataTampering(images)

		assert.InDelta(t, 0.4, check.Score, 1e-9)
		assert.Len(t, check.Traces, 2)
	})

	t.Run("score floors at zero", func(t *testing.T) {
		var images []ImageEvidence
		for i := 0; i < 4; i++ {
			images = append(images, ImageEvidence{Filename: "e.jpg", Software: "gimp"})
		}

		check := DetectMetadataTampering(images)

		assert.Equal(t, 0.0, check.Score)
	})
}

func TestCalculateFraudRisk(t *testing.T) {
	t.Run("clean claim is low risk", func(t *testing.T) {
		risk := CalculateFraudRisk(1, 1, 1, 1)

		assert.Equal(t, 0.0, risk.Score)
		assert.Equal(t, RiskLow, risk.Level)
		assert.False(t, risk.AutoReject)
	})

	t.Run("weights applied per factor", func(t *testing.T) {
		risk := CalculateFraudRisk(0.5, 0.5, 1, 1)

		// 0.5 weather risk * 0.25 + 0.5 geo risk * 0.35
		assert.InDelta(t, 0.3, risk.Score, 1e-9)
		assert.Equal(t, RiskLow, risk.Level)
	})

	t.Run("medium band", func(t *testing.T) {
		risk := CalculateFraudRisk(0.35, 0.35, 0.35, 0.35)

		assert.InDelta(t, 0.65, risk.Score, 1e-9)
		assert.Equal(t, RiskMedium, risk.Level)
		assert.False(t, risk.AutoReject)
	})

	t.Run("untrustworthy evidence auto rejects", func(t *testing.T) {
		risk := CalculateFraudRisk(0, 0, 0, 0)

		assert.Equal(t, 1.0, risk.Score)
		assert.Equal(t, RiskHigh, risk.Level)
		assert.True(t, risk.AutoReject)
	})

	t.Run("inputs clamped before inversion", func(t *testing.T) {
		risk := CalculateFraudRisk(-5, 7, 1, 1)

		// weather clamps to 0 (full risk), geo clamps to 1 (no risk)
		assert.InDelta(t, 0.25, risk.Score, 1e-9)
		assert.Equal(t, RiskLow, risk.Level)
	})

	t.Run("factors reported per signal", func(t *testing.T) {
		risk := CalculateFraudRisk(0.8, 0.6, 0.9, 1)

		assert.InDelta(t, 0.4, risk.Factors["geolocation_risk"], 1e-9)
		assert.InDelta(t, 0.2, risk.Factors["weather_risk"], 1e-9)
		assert.InDelta(t, 0.1, risk.Factors["exif_risk"], 1e-9)
		assert.InDelta(t, 0.0, risk.Factors["tampering_risk"], 1e-9)
	})
}

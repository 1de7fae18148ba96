package domain

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// exifTimestampLayout matches EXIF DateTimeOriginal. Tags sometimes arrive
// NUL-padded from buggy firmware; NULs are stripped before parsing.
const exifTimestampLayout = "2006:01:02 15:04:05"

// Capture-timestamp scoring.
const (
	staleCaptureDays      = 30
	timestampIssuePenalty = 0.2
	noTimestampsScore     = 0.8
)

// tamperingPenalty is charged per image carrying an editing-software trace.
const tamperingPenalty = 0.3

// editingTools are software-tag fragments that indicate post-processing.
var editingTools = []string{"photoshop", "gimp", "editor", "paint"}

// Composite fraud-risk weights. Location inconsistency is the strongest
// single indicator.
const (
	geoRiskWeight       = 0.35
	tamperingRiskWeight = 0.25
	weatherRiskWeight   = 0.25
	exifRiskWeight      = 0.15
)

// Fraud risk levels and thresholds over the composite score.
const (
	RiskLow    = "LOW"
	RiskMedium = "MEDIUM"
	RiskHigh   = "HIGH"

	mediumRiskThreshold = 0.6
	highRiskThreshold   = 0.8

	// autoRejectRisk short-circuits the decision bands entirely.
	autoRejectRisk = 0.9
)

// TimestampCheck reports how well EXIF capture times line up with the claim
// submission time.
type TimestampCheck struct {
	Score      float64  `json:"score"`
	Issues     []string `json:"issues,omitempty"`
	ValidCount int      `json:"valid_count"`
}

// VerifyCaptureTimestamps checks each image's EXIF capture time against the
// claim submission time. Captures older than 30 days and captures from the
// future (beyond a one-day clock-skew grace) each cost 0.2. Images with no
// parseable timestamp are skipped; a claim with none at all scores 0.8,
// since stripped metadata is suspicious but not proof of fraud.
func VerifyCaptureTimestamps(images []ImageEvidence, claimedAt time.Time) TimestampCheck {
	var issues []string
	valid := 0

	for _, img := range images {
		raw := strings.ReplaceAll(img.CapturedAt, "\x00", "")
		if raw == "" {
			continue
		}
		capturedAt, err := time.Parse(exifTimestampLayout, raw)
		if err != nil {
			continue
		}
		valid++

		ageDays := int(math.Floor(claimedAt.Sub(capturedAt).Hours() / 24))
		switch {
		case ageDays > staleCaptureDays:
			issues = append(issues, fmt.Sprintf("image %s is %d days old", img.Filename, ageDays))
		case ageDays < -1:
			issues = append(issues, fmt.Sprintf("image %s has a future capture timestamp", img.Filename))
		}
	}

	score := 1.0
	if valid == 0 {
		score = noTimestampsScore
		issues = append(issues, "no valid capture timestamps found")
	} else {
		score -= float64(len(issues)) * timestampIssuePenalty
	}
	if score < 0 {
		score = 0
	}

	return TimestampCheck{Score: score, Issues: issues, ValidCount: valid}
}

// TamperingCheck reports editing-software traces found in image metadata.
type TamperingCheck struct {
	Score  float64  `json:"score"`
	Traces []string `json:"traces,omitempty"`
}

// DetectMetadataTampering scans EXIF software tags for known editing tools.
// Matching is case-insensitive substring, so "Adobe Photoshop 25.1" and
// "photoshop express" both count.
func DetectMetadataTampering(images []ImageEvidence) TamperingCheck {
	var traces []string
	for _, img := range images {
		software := strings.ToLower(img.Software)
		if software == "" {
			continue
		}
		for _, tool := range editingTools {
			if strings.Contains(software, tool) {
				traces = append(traces, fmt.Sprintf("image %s edited with %s", img.Filename, img.Software))
				break
			}
		}
	}

	score := 1.0 - float64(len(traces))*tamperingPenalty
	if score < 0 {
		score = 0
	}
	return TamperingCheck{Score: score, Traces: traces}
}

// FraudRisk is the composite fraud estimate for one claim. Score runs 0 to
// 1 with high meaning likely fraud, the inverse orientation of every other
// score in this package.
type FraudRisk struct {
	Score      float64            `json:"score"`
	Level      string             `json:"level"`
	AutoReject bool               `json:"auto_reject"`
	Factors    map[string]float64 `json:"factors"`
}

// CalculateFraudRisk inverts the four confidence signals into risk and
// combines them under fixed weights. Inputs outside [0,1] are clamped
// first. Level and the auto-reject flag are derived from the raw composite;
// the reported score and factors are rounded for presentation.
func CalculateFraudRisk(weatherScore, geoScore, exifScore, tamperingScore float64) FraudRisk {
	weatherRisk := 1 - clamp01(weatherScore)
	geoRisk := 1 - clamp01(geoScore)
	exifRisk := 1 - clamp01(exifScore)
	tamperingRisk := 1 - clamp01(tamperingScore)

	score := geoRisk*geoRiskWeight +
		tamperingRisk*tamperingRiskWeight +
		weatherRisk*weatherRiskWeight +
		exifRisk*exifRiskWeight

	level := RiskLow
	switch {
	case score >= highRiskThreshold:
		level = RiskHigh
	case score >= mediumRiskThreshold:
		level = RiskMedium
	}

	return FraudRisk{
		Score:      round2(score),
		Level:      level,
		AutoReject: score >= autoRejectRisk,
		Factors: map[string]float64{
			"geolocation_risk": round2(geoRisk),
			"tampering_risk":   round2(tamperingRisk),
			"weather_risk":     round2(weatherRisk),
			"exif_risk":        round2(exifRisk),
		},
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

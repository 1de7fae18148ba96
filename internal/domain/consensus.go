package domain

import "math"

// Coverage quality labels.
const (
	CoverageHigh   = "HIGH"
	CoverageMedium = "MEDIUM"
	CoverageLow    = "LOW"
)

// minOverlapFactor floors the discount applied for overlapping photo
// coverage: even heavily overlapping shots keep half their weight.
const minOverlapFactor = 0.5

// Coverage quality scoring inputs.
const (
	fullCoverageImages = 8
	goodCoverageImages = 5
	tightOverlapScore  = 0.3
	looseOverlapScore  = 0.5
	strongConsistency  = 0.8
	weakConsistency    = 0.5
)

// Review triggers and confidence shaping.
const (
	wideBandPct           = 30.0
	stdDevConfidenceScale = 50.0
)

// DamageConsensus aggregates per-image detections into one field-level
// verdict: the dominant damage type, a damage-percentage band, and how much
// the evidence set can be trusted to cover the field.
type DamageConsensus struct {
	PrimaryCode     DamageCode `json:"primary_code"`
	PrimaryName     string     `json:"primary_name"`
	TypeConsistency float64    `json:"type_consistency"`

	MeanPct   float64 `json:"mean_pct"`
	MinPct    float64 `json:"min_pct"`
	MaxPct    float64 `json:"max_pct"`
	StdDevPct float64 `json:"std_dev_pct"`

	TotalImages     int     `json:"total_images"`
	EffectiveImages int     `json:"effective_images"`
	OverlapScore    float64 `json:"overlap_score"`

	CoverageQuality string  `json:"coverage_quality"`
	RequiresReview  bool    `json:"requires_review"`
	Confidence      float64 `json:"confidence"`
}

// BuildDamageConsensus reduces the per-image detections to a single field
// verdict. overlapScore is the upstream estimate of how much the photos
// overlap, 0 meaning fully distinct coverage and 1 meaning the same spot
// shot repeatedly; it discounts the effective image count and feeds the
// confidence.
//
// The damage band is mean plus/minus two population standard deviations,
// clipped to [0,100]. The primary damage type is the most voted detection
// code, ties broken by first appearance so the result is deterministic.
func BuildDamageConsensus(images []ImageEvidence, overlapScore float64) DamageConsensus {
	overlap := clamp01(overlapScore)
	total := len(images)

	var pcts []float64
	var votes []DamageCode
	for _, img := range images {
		if img.Detection == nil {
			continue
		}
		pcts = append(pcts, clampRange(img.Detection.DamagePct, 0, 100))
		if img.Detection.Confidence > 0 {
			votes = append(votes, img.Detection.Code)
		}
	}

	if len(pcts) == 0 {
		return DamageConsensus{
			PrimaryName:     "Unknown",
			TotalImages:     total,
			OverlapScore:    overlap,
			CoverageQuality: CoverageLow,
			RequiresReview:  true,
		}
	}

	effective := int(float64(total) * math.Max(minOverlapFactor, 1-overlap))
	if effective < 1 {
		effective = 1
	}

	mean, stdDev := meanStdDev(pcts)
	minPct := math.Max(0, mean-2*stdDev)
	maxPct := math.Min(100, mean+2*stdDev)

	primary, consistency := majorityVote(votes)

	quality := coverageQuality(total, overlap, consistency)

	requiresReview := quality == CoverageLow ||
		consistency < weakConsistency ||
		maxPct-minPct > wideBandPct

	spreadFactor := 0.0
	if stdDev < stdDevConfidenceScale {
		spreadFactor = 1 - stdDev/stdDevConfidenceScale
	}
	countFactor := math.Min(float64(total)/fullCoverageImages, 1)
	confidence := (consistency + (1 - overlap) + countFactor + spreadFactor) / 4

	return DamageConsensus{
		PrimaryCode:     primary,
		PrimaryName:     primary.Name(),
		TypeConsistency: consistency,
		MeanPct:         mean,
		MinPct:          minPct,
		MaxPct:          maxPct,
		StdDevPct:       stdDev,
		TotalImages:     total,
		EffectiveImages: effective,
		OverlapScore:    overlap,
		CoverageQuality: quality,
		RequiresReview:  requiresReview,
		Confidence:      confidence,
	}
}

// majorityVote returns the most voted code and the share of votes it won.
// Ties go to the code seen first.
func majorityVote(votes []DamageCode) (DamageCode, float64) {
	if len(votes) == 0 {
		return "", 0
	}
	counts := make(map[DamageCode]int, len(votes))
	var primary DamageCode
	best := 0
	for _, v := range votes {
		counts[v]++
		if counts[v] > best {
			best = counts[v]
			primary = v
		}
	}
	return primary, float64(best) / float64(len(votes))
}

// coverageQuality scores three independent signals (image count, overlap,
// type consistency) one to three points each and buckets the sum.
func coverageQuality(totalImages int, overlap, consistency float64) string {
	points := 0

	switch {
	case totalImages >= fullCoverageImages:
		points += 3
	case totalImages >= goodCoverageImages:
		points += 2
	default:
		points++
	}

	switch {
	case overlap < tightOverlapScore:
		points += 3
	case overlap < looseOverlapScore:
		points += 2
	default:
		points++
	}

	switch {
	case consistency > strongConsistency:
		points += 3
	case consistency > weakConsistency:
		points += 2
	default:
		points++
	}

	switch {
	case points >= 7:
		return CoverageHigh
	case points >= 5:
		return CoverageMedium
	default:
		return CoverageLow
	}
}

func meanStdDev(values []float64) (mean, stdDev float64) {
	for _, v := range values {
		mean += v
	}
	mean /= float64(len(values))

	var sumSq float64
	for _, v := range values {
		d := v - mean
		sumSq += d * d
	}
	return mean, math.Sqrt(sumSq / float64(len(values)))
}

package domain

// Status classifies the outcome of a single verification pass.
// PASS/WARNING/FAIL belong to location consistency checks,
// MATCH/NEUTRAL/MISMATCH to weather correlation, and UNKNOWN to checks that
// had nothing usable to work with.
type Status string

const (
	StatusPass     Status = "PASS"
	StatusWarning  Status = "WARNING"
	StatusFail     Status = "FAIL"
	StatusMatch    Status = "MATCH"
	StatusNeutral  Status = "NEUTRAL"
	StatusMismatch Status = "MISMATCH"
	StatusUnknown  Status = "UNKNOWN"
)

// statusRank orders statuses from best to worst so a verification can only
// be downgraded once a penalty has been applied, never silently upgraded.
var statusRank = map[Status]int{
	StatusPass:     0,
	StatusMatch:    0,
	StatusNeutral:  1,
	StatusUnknown:  2,
	StatusWarning:  3,
	StatusMismatch: 4,
	StatusFail:     5,
}

// worseOf returns whichever status ranks worse.
func worseOf(a, b Status) Status {
	if statusRank[b] > statusRank[a] {
		return b
	}
	return a
}

// Decision is the final claim verdict.
type Decision string

const (
	DecisionApprove      Decision = "APPROVE"
	DecisionManualReview Decision = "MANUAL_REVIEW"
	DecisionReject       Decision = "REJECT"
)

// Severity buckets the damage percentage for prioritization and display.
type Severity string

const (
	SeverityMinimal  Severity = "minimal"
	SeverityModerate Severity = "moderate"
	SeveritySevere   Severity = "severe"
	SeverityCritical Severity = "critical"
)

// PayoutCurrency denominates every payout figure.
const PayoutCurrency = "INR"

// DamageCode identifies a claimed damage category. The set is closed and
// versioned together with the upstream image classifier.
type DamageCode string

const (
	DamageDrought  DamageCode = "DR"
	DamageHealthy  DamageCode = "G"
	DamageNutrient DamageCode = "ND"
	DamageWeed     DamageCode = "WD"
	DamageOther    DamageCode = "other"
)

// DamageCodes lists every code the upstream classifier can emit.
var DamageCodes = []DamageCode{DamageDrought, DamageHealthy, DamageNutrient, DamageWeed, DamageOther}

var damageNames = map[DamageCode]string{
	DamageDrought:  "Drought",
	DamageHealthy:  "Good/Healthy",
	DamageNutrient: "Nutrient Deficiency",
	DamageWeed:     "Weed Damage",
	DamageOther:    "Other Damage",
}

// Name returns the display label for the code, or "Unknown" for anything
// outside the closed set.
func (c DamageCode) Name() string {
	if n, ok := damageNames[c]; ok {
		return n
	}
	return "Unknown"
}

// VerificationResult is the outcome of one scorer pass. Score is always
// clamped into [0,1] before the result is returned; downstream consumers
// rely on that unconditionally.
type VerificationResult struct {
	Status  Status             `json:"status"`
	Score   float64            `json:"score"`
	Details []string           `json:"details"`
	Metrics map[string]float64 `json:"metrics,omitempty"`

	// Center is the evidence centroid, set by the location scorer.
	Center *LatLon `json:"center,omitempty"`

	// WeatherContext is the observation that drove a weather verdict, kept
	// so callers can audit what the score was based on.
	WeatherContext *WeatherSnapshot `json:"weather_context,omitempty"`
}

// ClaimAssessment is the decision engine's verdict for one claim.
// PayoutAmount is nil while a manual review is pending; a rejection carries
// an explicit zero.
type ClaimAssessment struct {
	Decision        Decision `json:"decision"`
	Severity        Severity `json:"severity"`
	ConfidenceScore float64  `json:"confidence_score"`
	PayoutAmount    *float64 `json:"payout_amount,omitempty"`
	Currency        string   `json:"currency"`
	Reason          string   `json:"reason"`
	UserMessage     string   `json:"user_message"`
}

func clamp01(v float64) float64 {
	return clampRange(v, 0, 1)
}

func clampRange(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

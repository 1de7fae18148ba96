package domain

import "fmt"

// Decision confidence bands. Lower bounds are inclusive: a score of exactly
// 0.70 approves, exactly 0.30 goes to manual review.
const (
	approveThreshold      = 0.70
	manualReviewThreshold = 0.30
)

// Severity thresholds over the damage percentage.
const (
	criticalDamagePct = 60.0
	severeDamagePct   = 35.0
	moderateDamagePct = 15.0
)

// decisionBand couples a confidence band with its verdict and the policy
// wording that explains it. Keeping the wording in data means copy changes
// and localization never touch the banding logic.
type decisionBand struct {
	min         float64
	decision    Decision
	reason      string
	userMessage string
}

var decisionBands = []decisionBand{
	{
		min:         approveThreshold,
		decision:    DecisionApprove,
		reason:      "high confidence (%.0f%%): approved for payout",
		userMessage: "Your claim has been approved. The payout will be processed shortly.",
	},
	{
		min:         manualReviewThreshold,
		decision:    DecisionManualReview,
		reason:      "moderate confidence (%.0f%%): routed to manual review",
		userMessage: "Your claim needs a manual review by our claims team. We will contact you within 3 working days.",
	},
	{
		min:         0,
		decision:    DecisionReject,
		reason:      "low confidence (%.0f%%): rejected",
		userMessage: "Your claim could not be verified against the supporting evidence. Please contact support if you believe this is an error.",
	},
}

// Decide maps a fused confidence score, an assessed damage percentage, and
// the sum insured to a final claim assessment. Pure and idempotent:
// identical inputs always produce identical assessments, so retries are
// safe. Out-of-range inputs are clamped rather than rejected.
//
// The payout is sum insured times damage percent, set only on approval.
// Rejections carry an explicit zero payout; manual review leaves the amount
// unset for the human adjudicator.
func Decide(confidenceScore, damagePercent, sumInsured float64) ClaimAssessment {
	confidence := clamp01(confidenceScore)
	pct := clampRange(damagePercent, 0, 100)
	if sumInsured < 0 {
		sumInsured = 0
	}

	band := bandFor(confidence)

	assessment := ClaimAssessment{
		Decision:        band.decision,
		Severity:        severityFor(pct),
		ConfidenceScore: confidence,
		Currency:        PayoutCurrency,
		Reason:          fmt.Sprintf(band.reason, confidence*100),
		UserMessage:     band.userMessage,
	}

	switch band.decision {
	case DecisionApprove:
		payout := sumInsured * pct / 100
		assessment.PayoutAmount = &payout
	case DecisionReject:
		zero := 0.0
		assessment.PayoutAmount = &zero
	}

	return assessment
}

func bandFor(confidence float64) decisionBand {
	for _, b := range decisionBands {
		if confidence >= b.min {
			return b
		}
	}
	return decisionBands[len(decisionBands)-1]
}

// severityFor buckets the damage percentage independently of the decision:
// a rejected claim still reports how bad the claimed damage was.
func severityFor(damagePercent float64) Severity {
	switch {
	case damagePercent > criticalDamagePct:
		return SeverityCritical
	case damagePercent > severeDamagePct:
		return SeveritySevere
	case damagePercent > moderateDamagePct:
		return SeverityModerate
	default:
		return SeverityMinimal
	}
}

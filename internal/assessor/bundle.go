package assessor

import (
	"errors"
	"fmt"
	"time"

	"github.com/cropshield/claim-assessment-service/internal/domain"
)

// ErrInvalidBundle marks bundles rejected before any check ran, so callers
// can separate bad input from assessment failures.
var ErrInvalidBundle = errors.New("invalid claim bundle")

// ClaimBundle is the evidence package submitted for one claim: the policy
// facts plus everything the upstream photo pipeline extracted from the
// field images.
type ClaimBundle struct {
	ClaimID      string                 `json:"claim_id"`
	DamageCode   domain.DamageCode      `json:"damage_code,omitempty"`
	SumInsured   float64                `json:"sum_insured"`
	FieldAreaM2  *float64               `json:"field_area_m2,omitempty"`
	UserLocation *domain.LatLon         `json:"user_location,omitempty"`
	ClaimedAt    time.Time              `json:"claimed_at"`
	OverlapScore float64                `json:"overlap_score"`
	Images       []domain.ImageEvidence `json:"images"`
}

func (b ClaimBundle) validate() error {
	if b.ClaimID == "" {
		return fmt.Errorf("%w: claim_id is required", ErrInvalidBundle)
	}
	if b.ClaimedAt.IsZero() {
		return fmt.Errorf("%w: claimed_at is required", ErrInvalidBundle)
	}
	return nil
}

// Result is the full assessment for one claim: the verdict plus every
// evidence check that fed it, kept whole for auditability.
type Result struct {
	AssessmentID string `json:"assessment_id"`
	ClaimID      string `json:"claim_id"`

	Assessment domain.ClaimAssessment `json:"assessment"`

	Geo       domain.VerificationResult `json:"geo"`
	Weather   domain.VerificationResult `json:"weather"`
	Fraud     domain.FraudRisk          `json:"fraud"`
	Consensus domain.DamageConsensus    `json:"consensus"`
	Area      domain.AreaEstimate       `json:"area"`

	Breakdown     map[string]float64 `json:"breakdown"`
	FusionVersion string             `json:"fusion_version"`

	ImagesProcessed int       `json:"images_processed"`
	ProcessedAt     time.Time `json:"processed_at"`
}

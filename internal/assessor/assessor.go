package assessor

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/cropshield/claim-assessment-service/internal/domain"
	"github.com/cropshield/claim-assessment-service/internal/observability"
)

// WeatherVerifier scores claim-weather agreement at a coordinate.
type WeatherVerifier interface {
	Verify(ctx context.Context, lat, lon float64, code domain.DamageCode, claimedAt time.Time) (domain.VerificationResult, error)
}

// ResultPublisher emits completed assessments to downstream consumers.
type ResultPublisher interface {
	Publish(ctx context.Context, result Result) error
}

// AuditStore records completed assessments for later review.
type AuditStore interface {
	Save(ctx context.Context, result Result) error
}

// Assessor runs every evidence check for a claim and fuses them into a
// decision.
type Assessor struct {
	weather   WeatherVerifier
	publisher ResultPublisher
	audit     AuditStore
	logger    *slog.Logger
	metrics   *observability.Metrics
}

// New creates an Assessor. Pass a nil publisher or audit store to disable
// that sink.
func New(weather WeatherVerifier, publisher ResultPublisher, audit AuditStore, logger *slog.Logger, metrics *observability.Metrics) *Assessor {
	if weather != nil {
		metrics.AssessorReady.Set(1)
	}
	return &Assessor{
		weather:   weather,
		publisher: publisher,
		audit:     audit,
		logger:    logger,
		metrics:   metrics,
	}
}

// CheckReadiness reports whether the assessor can take claims. The rule
// table is validated before the weather verifier is built, so a wired
// assessor is ready from construction.
func (a *Assessor) CheckReadiness(_ context.Context) error {
	if a.weather == nil {
		return errors.New("assessor has no weather verifier")
	}
	return nil
}

// Assess scores one claim bundle. The location and integrity checks run
// concurrently with the weather correlation chained behind the location
// result, since weather is verified at the evidence centroid.
func (a *Assessor) Assess(ctx context.Context, bundle ClaimBundle) (Result, error) {
	if err := bundle.validate(); err != nil {
		a.metrics.AssessmentErrors.Inc()
		return Result{}, err
	}

	start := time.Now()
	a.logger.Info("assessing claim", "claim_id", bundle.ClaimID, "images", len(bundle.Images))

	consensus := domain.BuildDamageConsensus(bundle.Images, bundle.OverlapScore)

	// The detected damage type drives the weather rules; the declared code
	// only fills in when no image carried a detection.
	code := consensus.PrimaryCode
	if code == "" {
		code = bundle.DamageCode
	}

	var (
		geo     domain.VerificationResult
		weather domain.VerificationResult
		stamps  domain.TimestampCheck
		tamper  domain.TamperingCheck
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		geo = domain.VerifyLocationConsistency(evidencePoints(bundle.Images), bundle.UserLocation)
		var err error
		weather, err = a.verifyWeather(gctx, bundle, geo.Center, code)
		return err
	})
	g.Go(func() error {
		stamps = domain.VerifyCaptureTimestamps(bundle.Images, bundle.ClaimedAt)
		tamper = domain.DetectMetadataTampering(bundle.Images)
		return nil
	})
	if err := g.Wait(); err != nil {
		a.metrics.AssessmentErrors.Inc()
		return Result{}, fmt.Errorf("assess claim %s: %w", bundle.ClaimID, err)
	}

	risk := domain.CalculateFraudRisk(weather.Score, geo.Score, stamps.Score, tamper.Score)
	area := domain.AssessArea(bundle.Images, bundle.FieldAreaM2, geo.Metrics["spread_km"], consensus)

	weights := domain.FusionV1()
	fused, breakdown := weights.Combine(geo.Score, weather.Score, consensus.Confidence, 1-risk.Score)

	assessment := domain.Decide(fused, consensus.MeanPct, bundle.SumInsured)
	if risk.AutoReject {
		rejectForFraud(&assessment, risk)
	}

	result := Result{
		AssessmentID:    assessmentID(bundle),
		ClaimID:         bundle.ClaimID,
		Assessment:      assessment,
		Geo:             geo,
		Weather:         weather,
		Fraud:           risk,
		Consensus:       consensus,
		Area:            area,
		Breakdown:       breakdown,
		FusionVersion:   weights.Version,
		ImagesProcessed: len(bundle.Images),
		ProcessedAt:     clock.Now().UTC(),
	}

	a.metrics.AssessmentsTotal.WithLabelValues(string(assessment.Decision)).Inc()
	a.metrics.AssessmentDuration.Observe(time.Since(start).Seconds())

	a.emit(ctx, result)

	a.logger.Info("claim assessed",
		"claim_id", bundle.ClaimID,
		"assessment_id", result.AssessmentID,
		"decision", assessment.Decision,
		"confidence", assessment.ConfidenceScore,
		"fraud_level", risk.Level,
	)
	return result, nil
}

// emit hands the finished result to the optional sinks. Sink trouble is
// logged, not returned: the decision already stands and the caller holds
// the result.
func (a *Assessor) emit(ctx context.Context, result Result) {
	if a.publisher != nil {
		if err := a.publisher.Publish(ctx, result); err != nil {
			a.logger.Warn("publish assessment failed", "assessment_id", result.AssessmentID, "error", err)
		}
	}
	if a.audit != nil {
		if err := a.audit.Save(ctx, result); err != nil {
			a.logger.Warn("audit save failed", "assessment_id", result.AssessmentID, "error", err)
		}
	}
}

// verifyWeather scores the claim against conditions at the evidence
// centroid, falling back to the claimant's position. Without either the
// check is skipped at a neutral score rather than failing the claim.
func (a *Assessor) verifyWeather(ctx context.Context, bundle ClaimBundle, center *domain.LatLon, code domain.DamageCode) (domain.VerificationResult, error) {
	loc := center
	if loc == nil || !loc.Valid() {
		loc = bundle.UserLocation
	}
	if loc == nil || !loc.Valid() {
		return domain.VerificationResult{
			Status:  domain.StatusUnknown,
			Score:   0.5,
			Details: []string{"no coordinates available, weather check skipped"},
		}, nil
	}
	return a.weather.Verify(ctx, loc.Lat, loc.Lon, code, bundle.ClaimedAt)
}

// rejectForFraud overrides the banded decision once the composite risk
// crosses the auto-reject line. The payout is an explicit zero so the
// record reads as settled, not pending.
func rejectForFraud(assessment *domain.ClaimAssessment, risk domain.FraudRisk) {
	zero := 0.0
	assessment.Decision = domain.DecisionReject
	assessment.PayoutAmount = &zero
	assessment.Reason = fmt.Sprintf("fraud risk %.2f exceeds the auto-reject limit", risk.Score)
	assessment.UserMessage = "Your claim could not be approved. Please contact support for details."
}

func evidencePoints(images []domain.ImageEvidence) []domain.EvidencePoint {
	points := make([]domain.EvidencePoint, 0, len(images))
	for _, img := range images {
		if img.Point != nil {
			points = append(points, *img.Point)
		}
	}
	return points
}

// assessmentID produces a deterministic ID from the bundle's key fields.
// Re-running the same claim yields the same assessment identity, so
// downstream consumers can dedupe.
func assessmentID(bundle ClaimBundle) string {
	input := fmt.Sprintf("%s|%s|%d|%g",
		bundle.ClaimID, bundle.ClaimedAt.UTC().Format(time.RFC3339), len(bundle.Images), bundle.SumInsured)
	hash := sha256.Sum256([]byte(input))
	return "claim-" + hex.EncodeToString(hash[:8])
}

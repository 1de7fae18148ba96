package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/cropshield/claim-assessment-service/internal/assessor"
	"github.com/cropshield/claim-assessment-service/internal/observability"
)

const defaultRecentLimit = 20

// AssessmentRecord is one audited assessment row. ResultJSON carries the
// complete result so the audit trail survives schema drift in the
// structured columns.
type AssessmentRecord struct {
	ID              string    `gorm:"primaryKey;size:36" json:"id"`
	ClaimID         string    `gorm:"index;size:64" json:"claim_id"`
	AssessmentID    string    `gorm:"index;size:64" json:"assessment_id"`
	Decision        string    `gorm:"size:16" json:"decision"`
	ConfidenceScore float64   `json:"confidence_score"`
	PayoutAmount    *float64  `json:"payout_amount,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	ResultJSON      string    `json:"result_json"`
}

// Store persists assessment records to SQLite.
// It implements assessor.AuditStore.
type Store struct {
	db      *gorm.DB
	metrics *observability.Metrics
	logger  *slog.Logger
}

// Open opens the audit database at path, creating and migrating it as
// needed. The driver is pure Go, so no cgo toolchain is required.
func Open(path string, metrics *observability.Metrics, logger *slog.Logger) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("open audit db %s: %w", path, err)
	}
	if err := db.AutoMigrate(&AssessmentRecord{}); err != nil {
		return nil, fmt.Errorf("migrate audit db: %w", err)
	}
	return &Store{db: db, metrics: metrics, logger: logger}, nil
}

// Save writes one assessment to the audit trail.
func (s *Store) Save(ctx context.Context, result assessor.Result) error {
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("serialize audit record: %w", err)
	}

	record := AssessmentRecord{
		ID:              uuid.NewString(),
		ClaimID:         result.ClaimID,
		AssessmentID:    result.AssessmentID,
		Decision:        string(result.Assessment.Decision),
		ConfidenceScore: result.Assessment.ConfidenceScore,
		PayoutAmount:    result.Assessment.PayoutAmount,
		CreatedAt:       result.ProcessedAt,
		ResultJSON:      string(data),
	}
	if err := s.db.WithContext(ctx).Create(&record).Error; err != nil {
		return fmt.Errorf("save audit record for %s: %w", result.AssessmentID, err)
	}
	s.metrics.AuditRecordsWritten.Inc()
	return nil
}

// Recent returns the latest records, newest first. A non-positive limit
// falls back to a small default.
func (s *Store) Recent(ctx context.Context, limit int) ([]AssessmentRecord, error) {
	if limit <= 0 {
		limit = defaultRecentLimit
	}
	var records []AssessmentRecord
	err := s.db.WithContext(ctx).Order("created_at DESC").Limit(limit).Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("load audit records: %w", err)
	}
	return records, nil
}

// ByClaim returns every assessment recorded for one claim, newest first.
func (s *Store) ByClaim(ctx context.Context, claimID string) ([]AssessmentRecord, error) {
	var records []AssessmentRecord
	err := s.db.WithContext(ctx).
		Where("claim_id = ?", claimID).
		Order("created_at DESC").
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("load audit records for claim %s: %w", claimID, err)
	}
	return records, nil
}

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

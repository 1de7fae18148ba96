package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/cropshield/claim-assessment-service/internal/assessor"
	"github.com/cropshield/claim-assessment-service/internal/config"
	"github.com/cropshield/claim-assessment-service/internal/observability"
)

// Publisher produces assessment results to a Kafka topic.
// It implements assessor.ResultPublisher.
type Publisher struct {
	writer  *kafkago.Writer
	metrics *observability.Metrics
	logger  *slog.Logger
}

// NewPublisher creates a Kafka producer for the configured assessments topic.
func NewPublisher(cfg *config.Config, metrics *observability.Metrics, logger *slog.Logger) *Publisher {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaAssessmentTopic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Publisher{writer: w, metrics: metrics, logger: logger}
}

// Publish serializes and produces one assessment result.
func (p *Publisher) Publish(ctx context.Context, result assessor.Result) error {
	msg, err := serializeToMessage(result)
	if err != nil {
		return err
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish assessment %s: %w", result.AssessmentID, err)
	}
	p.metrics.AssessmentsPublished.Inc()
	p.logger.Debug("assessment published",
		"assessment_id", result.AssessmentID, "decision", result.Assessment.Decision)
	return nil
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}

// serializeToMessage marshals a Result into a Kafka message keyed by the
// assessment ID, so retries of the same claim land in the same partition.
func serializeToMessage(result assessor.Result) (kafkago.Message, error) {
	data, err := json.Marshal(result)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize assessment result: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(result.AssessmentID),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "decision", Value: []byte(result.Assessment.Decision)},
			{Key: "processed_at", Value: []byte(result.ProcessedAt.Format(time.RFC3339))},
		},
	}, nil
}

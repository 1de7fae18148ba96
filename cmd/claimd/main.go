package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/cropshield/claim-assessment-service/internal/adapter/httpapi"
	kafkaadapter "github.com/cropshield/claim-assessment-service/internal/adapter/kafka"
	"github.com/cropshield/claim-assessment-service/internal/adapter/openweather"
	"github.com/cropshield/claim-assessment-service/internal/adapter/store"
	"github.com/cropshield/claim-assessment-service/internal/assessor"
	"github.com/cropshield/claim-assessment-service/internal/config"
	"github.com/cropshield/claim-assessment-service/internal/domain"
	"github.com/cropshield/claim-assessment-service/internal/observability"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	rules, err := loadRules(cfg)
	if err != nil {
		logger.Error("failed to load weather rules", "error", err)
		os.Exit(1)
	}

	// Live weather is feature-flagged via OPENWEATHER_ENABLED / OPENWEATHER_API_KEY.
	// Without it every lookup is served by the deterministic mock.
	var provider openweather.Provider
	if cfg.OpenWeatherEnabled {
		provider = openweather.NewClient(cfg.OpenWeatherAPIKey, cfg.OpenWeatherTimeout, metrics, logger)
		logger.Info("openweathermap provider enabled",
			"timeout", cfg.OpenWeatherTimeout, "cache_ttl", cfg.WeatherCacheTTL)
	} else {
		logger.Info("openweathermap provider disabled, serving mock weather")
	}
	resolver := openweather.NewCachedResolver(provider, cfg.WeatherCacheTTL, nil, metrics, logger)
	scorer := domain.NewWeatherScorer(resolver, rules)

	var kafkaPublisher *kafkaadapter.Publisher
	var publisher assessor.ResultPublisher
	if cfg.KafkaEnabled {
		kafkaPublisher = kafkaadapter.NewPublisher(cfg, metrics, logger)
		publisher = kafkaPublisher
		logger.Info("kafka publishing enabled", "topic", cfg.KafkaAssessmentTopic)
	}

	var auditStore *store.Store
	var audit assessor.AuditStore
	if cfg.AuditEnabled {
		auditStore, err = store.Open(cfg.AuditDBPath, metrics, logger)
		if err != nil {
			logger.Error("failed to open audit store", "error", err)
			os.Exit(1)
		}
		audit = auditStore
		logger.Info("audit trail enabled", "path", cfg.AuditDBPath)
	}

	a := assessor.New(scorer, publisher, audit, logger, metrics)

	srv := httpapi.NewServer(cfg.HTTPAddr, a, a, cfg.AssessTimeout, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if kafkaPublisher != nil {
		if err := kafkaPublisher.Close(); err != nil {
			logger.Error("kafka publisher close error", "error", err)
		}
	}
	if auditStore != nil {
		if err := auditStore.Close(); err != nil {
			logger.Error("audit store close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}

func loadRules(cfg *config.Config) (domain.RuleSet, error) {
	if cfg.RulesFile != "" {
		return domain.LoadRulesFile(cfg.RulesFile)
	}
	return domain.LoadDefaultRules()
}

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/cropshield/claim-assessment-service/internal/adapter/openweather"
	"github.com/cropshield/claim-assessment-service/internal/assessor"
	"github.com/cropshield/claim-assessment-service/internal/config"
	"github.com/cropshield/claim-assessment-service/internal/domain"
	"github.com/cropshield/claim-assessment-service/internal/observability"
)

// cliMetrics is shared by every subcommand; the default Prometheus registry
// tolerates one registration per process.
var cliMetrics = observability.NewMetrics()

// cliLogger keeps command output clean: warnings and errors go to stderr,
// everything quieter is dropped.
func cliLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
}

// loadRules resolves the correlation rule table. An explicit path wins over
// the RULES_FILE variable, and the embedded defaults back both.
func loadRules(cfg *config.Config, override string) (domain.RuleSet, error) {
	path := override
	if path == "" {
		path = cfg.RulesFile
	}
	if path != "" {
		return domain.LoadRulesFile(path)
	}
	return domain.LoadDefaultRules()
}

// buildResolver wires the weather source from the environment: the live
// OpenWeatherMap client when an API key is configured, the deterministic
// mock otherwise.
func buildResolver(cfg *config.Config, logger *slog.Logger) *openweather.CachedResolver {
	var provider openweather.Provider
	if cfg.OpenWeatherEnabled {
		provider = openweather.NewClient(cfg.OpenWeatherAPIKey, cfg.OpenWeatherTimeout, cliMetrics, logger)
	}
	return openweather.NewCachedResolver(provider, cfg.WeatherCacheTTL, nil, cliMetrics, logger)
}

// buildAssessor wires a standalone assessor with no publish or audit sinks;
// the command prints the result itself.
func buildAssessor(cfg *config.Config, rulesPath string) (*assessor.Assessor, error) {
	rules, err := loadRules(cfg, rulesPath)
	if err != nil {
		return nil, err
	}
	logger := cliLogger()
	scorer := domain.NewWeatherScorer(buildResolver(cfg, logger), rules)
	return assessor.New(scorer, nil, nil, logger, cliMetrics), nil
}

// printJSON renders v indented to out.
func printJSON(out io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	_, err = fmt.Fprintln(out, string(data))
	return err
}

package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/cropshield/claim-assessment-service/internal/config"
	"github.com/cropshield/claim-assessment-service/internal/domain"
)

var weatherCmd = &cobra.Command{
	Use:   "weather <lat> <lon> [damage-code]",
	Short: "Resolve weather for a coordinate, optionally scoring a damage type against it",
	Args:  cobra.RangeArgs(2, 3),
	RunE:  runWeather,
}

func runWeather(cmd *cobra.Command, args []string) error {
	lat, err := strconv.ParseFloat(args[0], 64)
	if err != nil {
		return fmt.Errorf("parse latitude %q: %w", args[0], err)
	}
	lon, err := strconv.ParseFloat(args[1], 64)
	if err != nil {
		return fmt.Errorf("parse longitude %q: %w", args[1], err)
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	resolver := buildResolver(cfg, cliLogger())
	snapshot, err := resolver.Resolve(cmd.Context(), lat, lon)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Source:      %s\n", snapshot.Source)
	fmt.Fprintf(out, "Condition:   %s", snapshot.Condition)
	if snapshot.Description != "" {
		fmt.Fprintf(out, " (%s)", snapshot.Description)
	}
	fmt.Fprintln(out)
	fmt.Fprintf(out, "Temperature: %.1f°C\n", snapshot.TemperatureC)
	fmt.Fprintf(out, "Humidity:    %.0f%%\n", snapshot.HumidityPct)
	fmt.Fprintf(out, "Wind:        %.1f m/s\n", snapshot.WindSpeedMS)
	fmt.Fprintf(out, "Observed:    %s\n", snapshot.ObservedAt.Format(time.RFC3339))

	if len(args) < 3 {
		return nil
	}

	code := domain.DamageCode(args[2])
	rules, err := loadRules(cfg, "")
	if err != nil {
		return err
	}
	verdict := domain.CorrelateWeather(snapshot, rules.Rule(code), code, time.Now().UTC())
	fmt.Fprintln(out)
	fmt.Fprintf(out, "Damage type: %s (%s)\n", code.Name(), code)
	fmt.Fprintf(out, "Correlation: %s (score %.2f)\n", verdict.Status, verdict.Score)
	for _, detail := range verdict.Details {
		fmt.Fprintf(out, "  - %s\n", detail)
	}
	return nil
}

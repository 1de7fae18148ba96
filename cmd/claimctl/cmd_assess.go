package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cropshield/claim-assessment-service/internal/assessor"
	"github.com/cropshield/claim-assessment-service/internal/config"
)

var assessFlags struct {
	rulesFile string
	outPath   string
}

var assessCmd = &cobra.Command{
	Use:   "assess <bundle.json>",
	Short: "Assess one claim bundle and print the full result",
	Args:  cobra.ExactArgs(1),
	RunE:  runAssess,
}

func init() {
	f := assessCmd.Flags()
	f.StringVar(&assessFlags.rulesFile, "rules", "", "Correlation rules file (defaults to RULES_FILE, then the embedded table)")
	f.StringVarP(&assessFlags.outPath, "out", "o", "", "Write the result to a file instead of stdout")
}

func runAssess(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read bundle: %w", err)
	}
	var bundle assessor.ClaimBundle
	if err := json.Unmarshal(data, &bundle); err != nil {
		return fmt.Errorf("parse bundle %s: %w", args[0], err)
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	a, err := buildAssessor(cfg, assessFlags.rulesFile)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), cfg.AssessTimeout)
	defer cancel()
	result, err := a.Assess(ctx, bundle)
	if err != nil {
		return err
	}

	if assessFlags.outPath != "" {
		encoded, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return fmt.Errorf("encode result: %w", err)
		}
		if err := os.WriteFile(assessFlags.outPath, append(encoded, '\n'), 0o644); err != nil {
			return fmt.Errorf("write result: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", assessFlags.outPath)
		return nil
	}
	return printJSON(cmd.OutOrStdout(), result)
}

package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cropshield/claim-assessment-service/internal/config"
)

var rulesCmd = &cobra.Command{
	Use:   "rules [rules.yaml]",
	Short: "Validate a correlation rule file and print the resulting table",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runRules,
}

func runRules(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	override := ""
	if len(args) == 1 {
		override = args[0]
	}
	rules, err := loadRules(cfg, override)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, code := range rules.Codes() {
		rule := rules.Rule(code)
		fmt.Fprintf(out, "%s (%s)\n", code.Name(), code)
		fmt.Fprintf(out, "  supporting:    %s\n", joinOrNone(rule.Supporting))
		fmt.Fprintf(out, "  contradicting: %s\n", joinOrNone(rule.Contradicting))
		if rule.Aux != nil {
			fmt.Fprintf(out, "  aux:           min temp %.0f°C, max humidity %.0f%%\n",
				rule.Aux.MinTempC, rule.Aux.MaxHumidityPct)
		}
	}
	return nil
}

func joinOrNone(conditions []string) string {
	if len(conditions) == 0 {
		return "none"
	}
	return strings.Join(conditions, ", ")
}

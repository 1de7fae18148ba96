package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/cropshield/claim-assessment-service/internal/adapter/store"
	"github.com/cropshield/claim-assessment-service/internal/config"
	"github.com/cropshield/claim-assessment-service/internal/domain"
)

var auditFlags struct {
	dbPath  string
	claimID string
	limit   int
}

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "List assessments recorded in the audit store",
	RunE:  runAudit,
}

func init() {
	f := auditCmd.Flags()
	f.StringVar(&auditFlags.dbPath, "db", "", "Audit database path (defaults to AUDIT_DB_PATH)")
	f.StringVar(&auditFlags.claimID, "claim", "", "Show only assessments for this claim")
	f.IntVar(&auditFlags.limit, "limit", 20, "Maximum number of records to list")
}

func runAudit(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	path := auditFlags.dbPath
	if path == "" {
		path = cfg.AuditDBPath
	}

	st, err := store.Open(path, cliMetrics, cliLogger())
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	ctx := cmd.Context()
	var records []store.AssessmentRecord
	if auditFlags.claimID != "" {
		records, err = st.ByClaim(ctx, auditFlags.claimID)
	} else {
		records, err = st.Recent(ctx, auditFlags.limit)
	}
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "no assessments recorded")
		return nil
	}

	out := cmd.OutOrStdout()
	for _, rec := range records {
		payout := "-"
		if rec.PayoutAmount != nil {
			payout = fmt.Sprintf("%.2f %s", *rec.PayoutAmount, domain.PayoutCurrency)
		}
		fmt.Fprintf(out, "%s  %-20s %-14s conf %.2f  payout %s\n",
			rec.CreatedAt.Format(time.RFC3339), rec.ClaimID, rec.Decision, rec.ConfidenceScore, payout)
	}
	return nil
}

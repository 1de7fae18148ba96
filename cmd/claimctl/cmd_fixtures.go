package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/cropshield/claim-assessment-service/internal/assessor"
	"github.com/cropshield/claim-assessment-service/internal/domain"
)

var fixturesFlags struct {
	dir string
}

var fixturesCmd = &cobra.Command{
	Use:   "fixtures",
	Short: "Write sample claim bundles for local testing",
	Long: `fixtures writes three deterministic claim bundles: a clean drought claim
that approves under mock weather, a tampered claim that trips the fraud
auto-reject, and a sparse claim with no usable evidence that lands in
manual review. Feed them to "claimctl assess" or POST them to claimd.`,
	RunE: runFixtures,
}

func init() {
	fixturesCmd.Flags().StringVarP(&fixturesFlags.dir, "dir", "d", "fixtures", "Directory to write bundles into")
}

func runFixtures(cmd *cobra.Command, _ []string) error {
	if err := os.MkdirAll(fixturesFlags.dir, 0o755); err != nil {
		return fmt.Errorf("create fixtures dir: %w", err)
	}
	for _, fx := range sampleBundles() {
		data, err := json.MarshalIndent(fx.bundle, "", "  ")
		if err != nil {
			return fmt.Errorf("encode %s: %w", fx.name, err)
		}
		path := filepath.Join(fixturesFlags.dir, fx.name)
		if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
	}
	return nil
}

type fixture struct {
	name   string
	bundle assessor.ClaimBundle
}

func sampleBundles() []fixture {
	claimedAt := time.Date(2026, time.March, 15, 12, 0, 0, 0, time.UTC)

	fieldShot := func(n int, lat, lon, pct float64) domain.ImageEvidence {
		return domain.ImageEvidence{
			Filename:   fmt.Sprintf("field-%02d.jpg", n),
			Point:      &domain.EvidencePoint{Lat: lat, Lon: lon, Source: domain.SourceImage},
			CapturedAt: "2026:03:13 09:30:00",
			WidthPx:    4000,
			HeightPx:   3000,
			Detection:  &domain.DamageDetection{DamagePct: pct, Code: domain.DamageDrought, Confidence: 0.9},
		}
	}
	editedShot := func(n int, lat float64, pct float64) domain.ImageEvidence {
		return domain.ImageEvidence{
			Filename:   fmt.Sprintf("upload-%02d.jpg", n),
			Point:      &domain.EvidencePoint{Lat: lat, Lon: 79.0, Source: domain.SourceImage},
			CapturedAt: "2026:01:29 12:00:00",
			Software:   "Adobe Photoshop 25.1",
			WidthPx:    4000,
			HeightPx:   3000,
			Detection:  &domain.DamageDetection{DamagePct: pct, Code: domain.DamageDrought, Confidence: 0.85},
		}
	}
	manualArea := 120000.0

	return []fixture{
		{
			name: "bundle-clean.json",
			bundle: assessor.ClaimBundle{
				ClaimID:      "CLM-2026-000101",
				DamageCode:   domain.DamageDrought,
				SumInsured:   150000,
				UserLocation: &domain.LatLon{Lat: 21.7462, Lon: 79.4885},
				ClaimedAt:    claimedAt,
				OverlapScore: 0.2,
				Images: []domain.ImageEvidence{
					fieldShot(1, 21.7457, 79.4881, 60),
					fieldShot(2, 21.7459, 79.4883, 62),
					fieldShot(3, 21.7458, 79.4884, 58),
					fieldShot(4, 21.7458, 79.4880, 60),
				},
			},
		},
		{
			name: "bundle-tampered.json",
			bundle: assessor.ClaimBundle{
				ClaimID:      "CLM-2026-000102",
				DamageCode:   domain.DamageDrought,
				SumInsured:   200000,
				UserLocation: &domain.LatLon{Lat: 22.0, Lon: 79.0},
				ClaimedAt:    claimedAt,
				OverlapScore: 0.1,
				Images: []domain.ImageEvidence{
					editedShot(1, 21.0, 80),
					editedShot(2, 21.0, 82),
					editedShot(3, 21.10, 78),
					editedShot(4, 21.10, 80),
				},
			},
		},
		{
			name: "bundle-sparse.json",
			bundle: assessor.ClaimBundle{
				ClaimID:     "CLM-2026-000103",
				DamageCode:  domain.DamageWeed,
				SumInsured:  80000,
				FieldAreaM2: &manualArea,
				ClaimedAt:   claimedAt,
				Images: []domain.ImageEvidence{
					{Filename: "field-01.jpg"},
				},
			},
		},
	}
}

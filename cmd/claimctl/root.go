package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// version is set at build time via -ldflags.
var version = "dev"

var rootCmd = &cobra.Command{
	Use:   "claimctl",
	Short: "Operator tooling for the claim assessment service",
	Long: `claimctl drives the claim assessment pipeline from the command line:
score a claim bundle offline, probe weather correlation for a coordinate,
inspect the correlation rule table, and browse the audit trail.

Commands read the same environment variables claimd does. A .env file in
the working directory is loaded when present; explicit variables win.`,
	CompletionOptions: cobra.CompletionOptions{HiddenDefaultCmd: true},
}

func init() {
	rootCmd.AddCommand(assessCmd)
	rootCmd.AddCommand(weatherCmd)
	rootCmd.AddCommand(rulesCmd)
	rootCmd.AddCommand(auditCmd)
	rootCmd.AddCommand(fixturesCmd)
	rootCmd.Version = version
}

func main() {
	_ = godotenv.Load()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

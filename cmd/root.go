package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sequoia-invest/adviser-tools/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "adviser",
	Short: "Risk profiling, fund matching and growth projections",
	Long: `Scores risk-profiling and fund-match questionnaires, projects portfolio growth
under two fee and return scenarios, and serves the same calculators over HTTP.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

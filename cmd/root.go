package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sapelo-labs/fishstock/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "fishstock",
	Short: "Species–assessment reconciliation engine",
	Long:  "Fetches the species and stock-assessment registries, links each species to at most one assessment, derives a stock-health classification, and serves the merged view to the dashboard.",
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

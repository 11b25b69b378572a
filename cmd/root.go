package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/change-of-scenery/placesync/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "placesync",
	Short: "Review ingestion and place enrichment pipeline",
	Long:  "Refreshes curated place records with Google and Yelp review data pulled through the Outscraper API and stored in the place database consumed by the map app.",
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

package main

import (
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/visitor-leads/internal/config"
)

var (
	cfg          *config.Config
	rosterSource string
)

var rootCmd = &cobra.Command{
	Use:   "visitor-leads",
	Short: "Website visitor lead intelligence",
	Long:  "Turns website visitor IPs into a company identity and a reproducible list of enriched decision-maker contacts.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return eris.Wrap(err, "load config")
		}
		if rosterSource != "" {
			c.Roster.Source = rosterSource
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return eris.Wrap(err, "init logger")
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&rosterSource, "roster", "", "roster source: path, http(s):// or ftp:// URL (default from config)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

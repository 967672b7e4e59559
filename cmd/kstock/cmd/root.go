package cmd

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/kstocklab/kstock/config"
)

var rootCmd = &cobra.Command{
	Use:   "kstock",
	Short: "Korean stock-market data fetcher and toy trading simulator",
	Long: `kstock fetches Korean stock-market data and runs a toy trading simulator.

It provides tools for:
  - Fetching listings and daily quote boards from the KRX data portal
  - Fetching daily price history and financial summaries from Naver Finance
  - Simulating buy/sell/deposit against an append-only transaction ledger
  - Querying the ledger's holdings and recent transactions`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if verbose {
			logrus.SetLevel(logrus.DebugLevel)
		}
	},
	SilenceUsage: true,
}

var (
	configPath string
	verbose    bool
)

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (YAML)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

func loadConfig() (*config.Config, error) {
	return config.LoadFromFile(configPath)
}

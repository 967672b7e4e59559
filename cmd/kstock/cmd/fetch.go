package cmd

import (
	"github.com/spf13/cobra"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Fetch market data from KRX and Naver Finance",
	Long: `Fetch stock-market data from public endpoints.

Subcommands:
  listing    - listed (or delisted) issues from the KRX finder
  prices     - daily price history for one issue
  financial  - company financial summary
  market     - whole-market quote board for one trading day

Examples:
  kstock fetch listing --market STK
  kstock fetch prices 005930 --days 30
  kstock fetch financial 005930
  kstock fetch market 20260828`,
}

func init() {
	rootCmd.AddCommand(fetchCmd)
}

package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/kstocklab/kstock/krx"
)

var fetchMarketCmd = &cobra.Command{
	Use:   "market <yyyymmdd>",
	Short: "Fetch the whole-market quote board for one trading day",
	Args:  cobra.ExactArgs(1),
	RunE:  runFetchMarket,
}

var marketID string

func init() {
	fetchCmd.AddCommand(fetchMarketCmd)

	fetchMarketCmd.Flags().StringVarP(&marketID, "market", "m", krx.MarketAll, "market selector (ALL, STK, KSQ)")
}

func runFetchMarket(cmd *cobra.Command, args []string) error {
	day, err := time.Parse("20060102", args[0])
	if err != nil {
		return fmt.Errorf("bad trading day %q: %w", args[0], err)
	}

	client := krx.NewClient()
	quotes, err := client.MarketDay(cmd.Context(), day, marketID)
	if err != nil {
		return fmt.Errorf("fetch market day: %w", err)
	}

	for _, q := range quotes {
		fmt.Printf("%s  %-20s close %8d  change %7d  volume %12d\n",
			q.Code, q.Name, q.Close, q.Change, q.Volume)
	}
	fmt.Printf("%d issues on %s\n", len(quotes), day.Format("2006-01-02"))
	return nil
}

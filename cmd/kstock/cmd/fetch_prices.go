package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kstocklab/kstock/market"
	"github.com/kstocklab/kstock/naver"
)

var fetchPricesCmd = &cobra.Command{
	Use:   "prices <code>",
	Short: "Fetch daily price history for one issue",
	Args:  cobra.ExactArgs(1),
	RunE:  runFetchPrices,
}

var (
	pricesDays  int
	pricesCache bool
)

func init() {
	fetchCmd.AddCommand(fetchPricesCmd)

	fetchPricesCmd.Flags().IntVarP(&pricesDays, "days", "n", 250, "number of trading days")
	fetchPricesCmd.Flags().BoolVar(&pricesCache, "cache", false, "serve from the price cache, fetching and storing on a miss")
}

func runFetchPrices(cmd *cobra.Command, args []string) error {
	code, err := market.ParseCode(args[0])
	if err != nil {
		return err
	}

	client := naver.NewClient(nil)

	var candles []market.Candle
	if pricesCache {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		cache, err := naver.NewCache(cfg.Data.CacheDir)
		if err != nil {
			return err
		}
		candles, err = client.PriceHistoryCached(cmd.Context(), cache, code, pricesDays)
		if err != nil {
			return fmt.Errorf("fetch prices: %w", err)
		}
	} else {
		candles, err = client.PriceHistory(cmd.Context(), code, pricesDays)
		if err != nil {
			return fmt.Errorf("fetch prices: %w", err)
		}
	}

	for _, c := range candles {
		fmt.Printf("%s  open %7d  high %7d  low %7d  close %7d  volume %10d\n",
			c.Date.Format("2006-01-02"), c.Open, c.High, c.Low, c.Close, c.Volume)
	}
	return nil
}

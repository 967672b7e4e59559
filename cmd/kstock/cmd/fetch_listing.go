package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kstocklab/kstock/krx"
)

var fetchListingCmd = &cobra.Command{
	Use:   "listing",
	Short: "List issues on the exchange",
	Args:  cobra.NoArgs,
	RunE:  runFetchListing,
}

var (
	listingMarket   string
	listingSearch   string
	listingDelisted bool
)

func init() {
	fetchCmd.AddCommand(fetchListingCmd)

	fetchListingCmd.Flags().StringVarP(&listingMarket, "market", "m", krx.MarketAll, "market selector (ALL, STK, KSQ)")
	fetchListingCmd.Flags().StringVarP(&listingSearch, "search", "s", "", "narrow by name or code")
	fetchListingCmd.Flags().BoolVar(&listingDelisted, "delisted", false, "list delisted issues instead")
}

func runFetchListing(cmd *cobra.Command, args []string) error {
	client := krx.NewClient()

	fetch := client.ListedAll
	if listingDelisted {
		fetch = client.DelistedAll
	}
	issues, err := fetch(cmd.Context(), listingMarket, listingSearch)
	if err != nil {
		return fmt.Errorf("fetch listing: %w", err)
	}

	for _, is := range issues {
		fmt.Printf("%s  %-10s %s\n", is.Code, is.Market, is.Name)
	}
	fmt.Printf("%d issues\n", len(issues))
	return nil
}

package cmd

import (
	"fmt"
	"math"

	"github.com/spf13/cobra"

	"github.com/kstocklab/kstock/market"
	"github.com/kstocklab/kstock/naver"
)

var fetchFinancialCmd = &cobra.Command{
	Use:   "financial <code>",
	Short: "Fetch a company's financial summary",
	Args:  cobra.ExactArgs(1),
	RunE:  runFetchFinancial,
}

func init() {
	fetchCmd.AddCommand(fetchFinancialCmd)
}

func runFetchFinancial(cmd *cobra.Command, args []string) error {
	code, err := market.ParseCode(args[0])
	if err != nil {
		return err
	}

	client := naver.NewClient(nil)
	summary, err := client.Financials(cmd.Context(), code)
	if err != nil {
		return fmt.Errorf("fetch financials: %w", err)
	}

	fmt.Printf("%-24s", "")
	for _, p := range summary.Periods {
		fmt.Printf("  %10s", p.Label)
	}
	fmt.Println()

	for _, m := range summary.Metrics {
		fmt.Printf("%-24s", m.Name)
		for _, v := range m.Values {
			if math.IsNaN(v) {
				fmt.Printf("  %10s", "-")
			} else {
				fmt.Printf("  %10.1f", v)
			}
		}
		fmt.Println()
	}
	return nil
}

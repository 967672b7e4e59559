package cmd

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/kstocklab/kstock/ledger"
	"github.com/kstocklab/kstock/market"
)

var ledgerCmd = &cobra.Command{
	Use:   "ledger",
	Short: "Query the transaction ledger",
	Long: `Read-only queries against the strategy's transaction log.

Subcommands:
  tail      - print the most recent transactions
  holdings  - print the holdings derived from the full log

Examples:
  kstock ledger tail -n 20
  kstock ledger holdings`,
}

var ledgerTailCmd = &cobra.Command{
	Use:   "tail",
	Short: "Print the most recent transactions",
	Args:  cobra.NoArgs,
	RunE:  runLedgerTail,
}

var ledgerHoldingsCmd = &cobra.Command{
	Use:   "holdings",
	Short: "Print holdings derived from the full log",
	Args:  cobra.NoArgs,
	RunE:  runLedgerHoldings,
}

var tailCount int

func init() {
	rootCmd.AddCommand(ledgerCmd)
	ledgerCmd.AddCommand(ledgerTailCmd)
	ledgerCmd.AddCommand(ledgerHoldingsCmd)

	ledgerTailCmd.Flags().IntVarP(&tailCount, "count", "n", 10, "number of transactions")
}

func readLog() ([]ledger.Row, func(), error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	store, err := openStore(cfg)
	if err != nil {
		return nil, nil, err
	}
	rows, err := store.ReadAll()
	if err != nil {
		store.Close()
		return nil, nil, err
	}
	return rows, func() { store.Close() }, nil
}

func runLedgerTail(cmd *cobra.Command, args []string) error {
	rows, done, err := readLog()
	if err != nil {
		return err
	}
	defer done()

	start := len(rows) - tailCount
	if start < 0 {
		start = 0
	}
	for _, row := range rows[start:] {
		switch r := row.(type) {
		case ledger.TradeRow:
			verb := "buy"
			if !r.IsBuy() {
				verb = "sell"
			}
			fmt.Printf("%s  %-4s %s %-20s qty %6d  price %8d  net %6d  balance %12d\n",
				r.Time.Format("2006-01-02 15:04:05"), verb, r.Code, r.Name,
				r.Quantity, r.Price, r.Net, r.Balance)
		case ledger.DepositRow:
			fmt.Printf("%s  deposit%38s balance %12d\n",
				r.Time.Format("2006-01-02 15:04:05"), "", r.Balance)
		}
	}
	return nil
}

func runLedgerHoldings(cmd *cobra.Command, args []string) error {
	rows, done, err := readLog()
	if err != nil {
		return err
	}
	defer done()

	// Same grouping the ledger performs at open: sum signed quantity and
	// signed amount per code, drop exited positions.
	type agg struct {
		name     string
		quantity int64
		amount   int64
	}
	holdings := map[market.Code]*agg{}
	for _, row := range rows {
		trade, ok := row.(ledger.TradeRow)
		if !ok {
			continue
		}
		h, held := holdings[trade.Code]
		if !held {
			h = &agg{name: trade.Name}
			holdings[trade.Code] = h
		}
		h.quantity += trade.Quantity
		h.amount += trade.SignedAmount()
	}

	codes := make([]market.Code, 0, len(holdings))
	for code, h := range holdings {
		if h.quantity > 0 {
			codes = append(codes, code)
		}
	}
	sort.Slice(codes, func(i, j int) bool { return codes[i] < codes[j] })

	for _, code := range codes {
		h := holdings[code]
		fmt.Printf("%s  %-20s qty %6d  amount %12d\n", code, h.name, h.quantity, h.amount)
	}
	if len(codes) == 0 {
		fmt.Println("no holdings")
	}
	return nil
}

package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/kstocklab/kstock/config"
	"github.com/kstocklab/kstock/fees"
	"github.com/kstocklab/kstock/krx"
	"github.com/kstocklab/kstock/ledger"
	"github.com/kstocklab/kstock/market"
	"github.com/kstocklab/kstock/naver"
	"github.com/kstocklab/kstock/sim"
)

var tradeCmd = &cobra.Command{
	Use:   "trade",
	Short: "Run the trading simulator",
	Long: `Simulate trades against the strategy's transaction ledger.

Subcommands:
  buy      - buy shares at the current quote
  sell     - sell shares at the current quote
  deposit  - deposit cash into the account
  show     - print holdings, balance and recent trade time

Examples:
  kstock trade buy 005930 10
  kstock trade sell 005930 5
  kstock trade deposit 1000000
  kstock trade show`,
}

var tradeBuyCmd = &cobra.Command{
	Use:   "buy <code> <quantity>",
	Short: "Buy shares at the current quote",
	Args:  cobra.ExactArgs(2),
	RunE:  runTradeBuy,
}

var tradeSellCmd = &cobra.Command{
	Use:   "sell <code> <quantity>",
	Short: "Sell shares at the current quote",
	Args:  cobra.ExactArgs(2),
	RunE:  runTradeSell,
}

var tradeDepositCmd = &cobra.Command{
	Use:   "deposit <amount>",
	Short: "Deposit cash into the account",
	Args:  cobra.ExactArgs(1),
	RunE:  runTradeDeposit,
}

var tradeShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print holdings, balance and recent trade time",
	Args:  cobra.NoArgs,
	RunE:  runTradeShow,
}

func init() {
	rootCmd.AddCommand(tradeCmd)
	tradeCmd.AddCommand(tradeBuyCmd)
	tradeCmd.AddCommand(tradeSellCmd)
	tradeCmd.AddCommand(tradeDepositCmd)
	tradeCmd.AddCommand(tradeShowCmd)
}

// openStore selects the configured log backend, creating the history
// directory first so a fresh checkout works out of the box.
func openStore(cfg *config.Config) (ledger.Store, error) {
	if err := os.MkdirAll(filepath.Join(cfg.Data.Dir, "history"), 0o755); err != nil {
		return nil, fmt.Errorf("create history dir: %w", err)
	}
	if cfg.Store.Type == "sqlite" {
		return ledger.NewSQLite(cfg.Store.DBPath)
	}
	return ledger.NewCSV(cfg.HistoryFile())
}

func openSim() (*sim.SimulatedTrade, func(), error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}

	clock, err := market.NewClock(cfg.Data.Timezone)
	if err != nil {
		return nil, nil, err
	}
	table, err := fees.Load(cfg.Data.FeeDir, cfg.Fees.TaxRate)
	if err != nil {
		return nil, nil, err
	}
	store, err := openStore(cfg)
	if err != nil {
		return nil, nil, err
	}

	l, err := ledger.Open(store, naver.NewClient(clock), table, ledger.Options{
		SeedMoney: cfg.Strategy.SeedMoney,
		Clock:     clock,
		Checker:   krx.NewClient(),
	})
	if err != nil {
		store.Close()
		return nil, nil, err
	}

	return sim.New(l), func() { store.Close() }, nil
}

func parseQuantity(s string) (int64, error) {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("bad quantity %q: %w", s, err)
	}
	return n, nil
}

func runTradeBuy(cmd *cobra.Command, args []string) error {
	code, err := market.ParseCode(args[0])
	if err != nil {
		return err
	}
	qty, err := parseQuantity(args[1])
	if err != nil {
		return err
	}

	s, done, err := openSim()
	if err != nil {
		return err
	}
	defer done()

	if !market.SessionOpen(market.Now()) {
		fmt.Println("note: KRX session is closed; quoting the last traded price")
	}
	if err := s.Buy(cmd.Context(), code, qty); err != nil {
		return err
	}
	s.Show()
	return nil
}

func runTradeSell(cmd *cobra.Command, args []string) error {
	code, err := market.ParseCode(args[0])
	if err != nil {
		return err
	}
	qty, err := parseQuantity(args[1])
	if err != nil {
		return err
	}

	s, done, err := openSim()
	if err != nil {
		return err
	}
	defer done()

	if !market.SessionOpen(market.Now()) {
		fmt.Println("note: KRX session is closed; quoting the last traded price")
	}
	if err := s.Sell(cmd.Context(), code, qty); err != nil {
		return err
	}
	s.Show()
	return nil
}

func runTradeDeposit(cmd *cobra.Command, args []string) error {
	amount, err := parseQuantity(args[0])
	if err != nil {
		return err
	}

	s, done, err := openSim()
	if err != nil {
		return err
	}
	defer done()

	if err := s.Deposit(amount); err != nil {
		return err
	}
	s.Show()
	return nil
}

func runTradeShow(cmd *cobra.Command, args []string) error {
	s, done, err := openSim()
	if err != nil {
		return err
	}
	defer done()

	s.Show()
	return nil
}

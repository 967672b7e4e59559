// Package sim is the thin orchestration layer of the trading simulator:
// buy/sell/deposit calls routed through the ledger, with feasibility
// rejections printed instead of propagated.
package sim

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/kstocklab/kstock/ledger"
	"github.com/kstocklab/kstock/market"
)

// SimulatedTrade drives one strategy's ledger. It holds no state of its own.
type SimulatedTrade struct {
	ledger *ledger.Ledger
	out    io.Writer
}

// New wraps a ledger. Output goes to stdout; tests swap it with SetOutput.
func New(l *ledger.Ledger) *SimulatedTrade {
	return &SimulatedTrade{ledger: l, out: os.Stdout}
}

// SetOutput redirects the driver's printed output.
func (s *SimulatedTrade) SetOutput(w io.Writer) { s.out = w }

// Buy purchases quantity shares of code at the current quote. An infeasible
// purchase prints a rejection and is not an error; bad input and quote
// failures propagate.
func (s *SimulatedTrade) Buy(ctx context.Context, code market.Code, quantity int64) error {
	row, err := s.ledger.BuildTrade(ctx, true, code, quantity)
	if err != nil {
		return err
	}
	ok, err := s.ledger.CanBuy(row)
	if err != nil {
		return err
	}
	if !ok {
		fmt.Fprintf(s.out, "Can't buy %d x %s\n", quantity, code)
		return nil
	}
	return s.ledger.Append(row)
}

// Sell sells quantity shares of code at the current quote. An infeasible
// sale prints a rejection and is not an error.
func (s *SimulatedTrade) Sell(ctx context.Context, code market.Code, quantity int64) error {
	row, err := s.ledger.BuildTrade(ctx, false, code, quantity)
	if err != nil {
		return err
	}
	ok, err := s.ledger.CanSell(row)
	if err != nil {
		return err
	}
	if !ok {
		fmt.Fprintf(s.out, "Can't sell %d x %s\n", quantity, code)
		return nil
	}
	return s.ledger.Append(row)
}

// Deposit adds cash to the account. There is no feasibility check; only
// input validation can fail.
func (s *SimulatedTrade) Deposit(amount int64) error {
	row, err := s.ledger.BuildDeposit(amount)
	if err != nil {
		return err
	}
	return s.ledger.Append(row)
}

// Show prints the current holdings, balance and most recent trade time.
func (s *SimulatedTrade) Show() {
	fmt.Fprintln(s.out, "--------------------------------------------------------")
	fmt.Fprintf(s.out, "Recent trade: %s\n", s.ledger.RecentTime().Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintf(s.out, "Balance: %d\n", s.ledger.Balance())
	fmt.Fprintln(s.out, "Holdings:")

	holdings := s.ledger.Holdings()
	codes := make([]market.Code, 0, len(holdings))
	for code := range holdings {
		codes = append(codes, code)
	}
	sort.Slice(codes, func(i, j int) bool { return codes[i] < codes[j] })

	if len(codes) == 0 {
		fmt.Fprintln(s.out, "  (none)")
	}
	for _, code := range codes {
		h := holdings[code]
		fmt.Fprintf(s.out, "  %s  %-20s qty %6d  amount %12d\n", code, h.Name, h.Quantity, h.Amount)
	}
	fmt.Fprintln(s.out, "--------------------------------------------------------")
}

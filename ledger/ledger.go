// Package ledger maintains a toy trading account as an append-only
// transaction log plus a derived in-memory projection of holdings and
// balance.
//
// The log is the source of truth. The projection is rebuilt once when the
// ledger opens and then maintained incrementally by Append, the single
// state-transition operation; rebuilding from the log at any point must
// yield an identical projection.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/kstocklab/kstock/fees"
	"github.com/kstocklab/kstock/market"
)

// DefaultSeedMoney is the deposit synthesized into a brand-new log.
const DefaultSeedMoney = 1_000_000

// Quoter supplies the latest observed quote for an issue. naver.Client
// satisfies it.
type Quoter interface {
	CurrentQuote(ctx context.Context, code market.Code) (market.Quote, error)
}

// Checker verifies that a code is a listed issue before a trade is priced.
// krx.Client satisfies it.
type Checker interface {
	Exists(ctx context.Context, code market.Code) (bool, error)
}

// Holding is the per-issue aggregate derived from the log: net quantity held
// and net cost basis.
type Holding struct {
	Name     string
	Quantity int64
	Amount   int64
}

// Options tune Open. Zero values select the defaults.
type Options struct {
	// SeedMoney is the starting balance deposited into an empty log.
	SeedMoney int64
	// Clock stamps synthesized rows. Defaults to the exchange clock.
	Clock market.Clock
	// Checker, when set, rejects trades on codes the exchange does not
	// list before any quote is fetched.
	Checker Checker
}

// Ledger is the in-memory projection of one strategy's transaction log plus
// the operations that validate and append new transactions. Single writer,
// single process; concurrent ledgers over one store are not supported.
type Ledger struct {
	store   Store
	fees    *fees.Table
	quoter  Quoter
	clock   market.Clock
	checker Checker

	holdings map[market.Code]Holding
	recent   time.Time
	balance  int64
}

// Open reads the full log from store and builds the projection. An empty log
// is seeded with a deposit row before the ledger is returned.
func Open(store Store, quoter Quoter, table *fees.Table, opts Options) (*Ledger, error) {
	clock := opts.Clock
	if clock == nil {
		c, err := market.NewClock(market.DefaultTimezone)
		if err != nil {
			return nil, err
		}
		clock = c
	}
	seed := opts.SeedMoney
	if seed == 0 {
		seed = DefaultSeedMoney
	}

	l := &Ledger{
		store:    store,
		fees:     table,
		quoter:   quoter,
		clock:    clock,
		checker:  opts.Checker,
		holdings: make(map[market.Code]Holding),
	}

	rows, err := store.ReadAll()
	switch {
	case errors.Is(err, ErrEmptyLog):
		row := DepositRow{Time: clock.Now(), Balance: seed}
		if err := store.Append(row); err != nil {
			return nil, fmt.Errorf("seed history: %w", err)
		}
		l.apply(row)
	case err != nil:
		return nil, err
	default:
		for _, row := range rows {
			l.apply(row)
		}
	}

	logrus.WithFields(logrus.Fields{
		"rows":     len(rows),
		"holdings": len(l.holdings),
		"balance":  l.balance,
	}).Debug("ledger opened")

	return l, nil
}

// Balance returns the current account balance in won.
func (l *Ledger) Balance() int64 { return l.balance }

// RecentTime returns the timestamp of the most recent accepted transaction.
func (l *Ledger) RecentTime() time.Time { return l.recent }

// Holdings returns a copy of the holdings projection.
func (l *Ledger) Holdings() map[market.Code]Holding {
	out := make(map[market.Code]Holding, len(l.holdings))
	for code, h := range l.holdings {
		out[code] = h
	}
	return out
}

// Validate checks a row against the schema invariants. It returns false for
// shape violations (bad code, zero quantity, amount mismatch) and raises
// ErrTimeOrder when the row predates the most recent transaction, since that
// signals a caller bug rather than a rejectable row.
func (l *Ledger) Validate(row Row) (bool, error) {
	if row == nil {
		return false, nil
	}
	if row.When().Before(l.recent) {
		return false, fmt.Errorf("%w: row at %s, most recent %s",
			ErrTimeOrder, row.When(), l.recent)
	}

	switch r := row.(type) {
	case DepositRow:
		return !r.Time.IsZero(), nil
	case TradeRow:
		if r.Time.IsZero() || !r.Code.Valid() {
			return false, nil
		}
		if r.Quantity == 0 || r.Price <= 0 || r.Net < 0 {
			return false, nil
		}
		if r.Amount != r.Price*abs(r.Quantity) {
			return false, nil
		}
		return true, nil
	default:
		return false, nil
	}
}

// BuildTrade constructs (without appending) a trade row for the given
// direction, issue and quantity, priced from the current quote. quantity is
// the unsigned share count; the row stores it signed.
func (l *Ledger) BuildTrade(ctx context.Context, isBuy bool, code market.Code, quantity int64) (TradeRow, error) {
	if !code.Valid() {
		return TradeRow{}, fmt.Errorf("%w: bad code %q", ErrInvalidInput, code)
	}
	if quantity <= 0 {
		return TradeRow{}, fmt.Errorf("%w: quantity %d", ErrInvalidInput, quantity)
	}
	signed := quantity
	if !isBuy {
		signed = -quantity
	}

	if l.checker != nil {
		listed, err := l.checker.Exists(ctx, code)
		if err != nil {
			return TradeRow{}, fmt.Errorf("check code %s: %w", code, err)
		}
		if !listed {
			return TradeRow{}, fmt.Errorf("%w: %s is not listed", market.ErrUnknownCode, code)
		}
	}

	quote, err := l.quoter.CurrentQuote(ctx, code)
	if err != nil {
		return TradeRow{}, fmt.Errorf("fetch quote for %s: %w", code, err)
	}
	if quote.Time.Before(l.recent) {
		return TradeRow{}, fmt.Errorf("%w: quote at %s, most recent %s",
			ErrStaleQuote, quote.Time, l.recent)
	}

	amount := signed * quote.Price
	net, err := l.fees.Net(isBuy, abs(amount))
	if err != nil {
		return TradeRow{}, err
	}

	return TradeRow{
		Time:     quote.Time,
		Code:     code,
		Name:     quote.Name,
		Price:    quote.Price,
		Quantity: signed,
		Amount:   abs(amount),
		Net:      net,
		Balance:  l.balance - amount - net,
	}, nil
}

// BuildDeposit constructs (without appending) a deposit row stamped with the
// current time.
func (l *Ledger) BuildDeposit(amount int64) (DepositRow, error) {
	if amount <= 0 {
		return DepositRow{}, fmt.Errorf("%w: deposit %d", ErrInvalidInput, amount)
	}
	return DepositRow{
		Time:    l.clock.Now(),
		Balance: l.balance + amount,
	}, nil
}

// CanBuy reports whether row is an acceptable purchase: valid, not
// back-dated, and leaving a non-negative balance.
func (l *Ledger) CanBuy(row Row) (bool, error) {
	ok, err := l.Validate(row)
	if err != nil || !ok {
		return false, err
	}
	return row.NewBalance() >= 0, nil
}

// CanSell reports whether row is an acceptable sale: valid, not back-dated,
// against an issue currently held, and not exceeding the held quantity.
// Trade rows store sells with negative Quantity, so the position check is
// held + Quantity >= 0.
func (l *Ledger) CanSell(row Row) (bool, error) {
	ok, err := l.Validate(row)
	if err != nil || !ok {
		return false, err
	}
	trade, ok := row.(TradeRow)
	if !ok {
		return false, nil
	}
	held, ok := l.holdings[trade.Code]
	if !ok {
		return false, nil
	}
	return held.Quantity+trade.Quantity >= 0, nil
}

// Append validates row, persists it, and folds it into the projection. This
// is the only mutation path. There is no rollback: a persisted row is
// permanent and mistakes are corrected by compensating transactions.
func (l *Ledger) Append(row Row) error {
	ok, err := l.Validate(row)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: row failed validation", ErrInvalidInput)
	}
	if err := l.store.Append(row); err != nil {
		return err
	}
	l.apply(row)
	return nil
}

// apply folds one row into the projection. Exited positions (net quantity
// <= 0) are dropped so the projection matches a fresh rebuild. Balance and
// recent time track the max-timestamp row, so replaying a log whose rows are
// not in time order still lands on the newest state.
func (l *Ledger) apply(row Row) {
	if trade, ok := row.(TradeRow); ok {
		h, held := l.holdings[trade.Code]
		if !held {
			h = Holding{Name: trade.Name}
		}
		h.Quantity += trade.Quantity
		h.Amount += trade.SignedAmount()
		if h.Quantity <= 0 {
			delete(l.holdings, trade.Code)
		} else {
			l.holdings[trade.Code] = h
		}
	}
	if !row.When().Before(l.recent) {
		l.balance = row.NewBalance()
		l.recent = row.When()
	}
}

func abs(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}

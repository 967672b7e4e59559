package ledger

import (
	"time"

	"github.com/kstocklab/kstock/market"
)

// Row is one transaction in the log. Exactly two shapes exist: TradeRow and
// DepositRow. Making them distinct types replaces the null-column schema
// checks the log format would otherwise force on every read.
type Row interface {
	// When is the transaction timestamp.
	When() time.Time
	// NewBalance is the account balance after this transaction.
	NewBalance() int64

	sealed()
}

// TradeRow records a buy or a sell. Quantity is signed: positive buys,
// negative sells. Amount is the gross value, always Price * |Quantity|;
// Net is the fee-plus-tax cost, always non-negative.
type TradeRow struct {
	Time     time.Time
	Code     market.Code
	Name     string
	Price    int64
	Quantity int64
	Amount   int64
	Net      int64
	Balance  int64
}

func (r TradeRow) When() time.Time   { return r.Time }
func (r TradeRow) NewBalance() int64 { return r.Balance }
func (r TradeRow) sealed()           {}

// IsBuy reports the trade direction.
func (r TradeRow) IsBuy() bool { return r.Quantity > 0 }

// SignedAmount is the gross value with the trade's sign: positive for buys,
// negative for sells. Holdings cost basis accumulates this.
func (r TradeRow) SignedAmount() int64 {
	if r.Quantity > 0 {
		return r.Amount
	}
	return -r.Amount
}

// DepositRow records a cash deposit. Only the timestamp and the resulting
// balance are meaningful.
type DepositRow struct {
	Time    time.Time
	Balance int64
}

func (r DepositRow) When() time.Time   { return r.Time }
func (r DepositRow) NewBalance() int64 { return r.Balance }
func (r DepositRow) sealed()           {}

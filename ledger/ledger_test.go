package ledger

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kstocklab/kstock/fees"
	"github.com/kstocklab/kstock/market"
)

// memStore is an in-memory Store for ledger tests.
type memStore struct {
	rows   []Row
	closed bool
}

func (s *memStore) ReadAll() ([]Row, error) {
	if len(s.rows) == 0 {
		return nil, ErrEmptyLog
	}
	out := make([]Row, len(s.rows))
	copy(out, s.rows)
	return out, nil
}

func (s *memStore) Append(row Row) error {
	s.rows = append(s.rows, row)
	return nil
}

func (s *memStore) Close() error {
	s.closed = true
	return nil
}

// fakeQuoter returns a fixed quote stamped with the fake clock's time.
type fakeQuoter struct {
	name  string
	price int64
	clock *fakeClock
	// when set, overrides the clock for the quote timestamp
	at time.Time
}

func (q *fakeQuoter) CurrentQuote(ctx context.Context, code market.Code) (market.Quote, error) {
	t := q.at
	if t.IsZero() {
		t = q.clock.Now()
	}
	return market.Quote{Time: t, Code: code, Name: q.name, Price: q.price}, nil
}

// fakeChecker answers listing checks from a fixed code set.
type fakeChecker struct {
	listed map[market.Code]bool
}

func (c *fakeChecker) Exists(ctx context.Context, code market.Code) (bool, error) {
	return c.listed[code], nil
}

// fakeClock advances a fixed step on every read so consecutive rows get
// increasing timestamps.
type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.now = c.now.Add(time.Second)
	return c.now
}

func testClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC)}
}

// flatFees charges no fee and no tax, keeping arithmetic obvious.
func flatFees() *fees.Table {
	return fees.NewTable([]fees.Tier{{Min: 0, Max: math.MaxInt64}}, 0)
}

func newTestLedger(t *testing.T, quoter Quoter, table *fees.Table) (*Ledger, *memStore) {
	t.Helper()

	store := &memStore{}
	l, err := Open(store, quoter, table, Options{Clock: testClock()})
	require.NoError(t, err)
	return l, store
}

func TestOpenSeedsEmptyLog(t *testing.T) {
	t.Parallel()

	store := &memStore{}
	clock := testClock()
	l, err := Open(store, nil, flatFees(), Options{Clock: clock})
	require.NoError(t, err)

	assert.Equal(t, int64(DefaultSeedMoney), l.Balance())
	assert.Empty(t, l.Holdings())
	assert.False(t, l.RecentTime().IsZero())

	// Exactly one row persisted: the seed deposit.
	require.Len(t, store.rows, 1)
	seed, ok := store.rows[0].(DepositRow)
	require.True(t, ok)
	assert.Equal(t, int64(DefaultSeedMoney), seed.Balance)
}

func TestOpenCustomSeedMoney(t *testing.T) {
	t.Parallel()

	store := &memStore{}
	l, err := Open(store, nil, flatFees(), Options{SeedMoney: 5_000_000, Clock: testClock()})
	require.NoError(t, err)
	assert.Equal(t, int64(5_000_000), l.Balance())
}

func TestBuyScenario(t *testing.T) {
	t.Parallel()

	clock := testClock()
	quoter := &fakeQuoter{name: "SamsungElec", price: 80_000, clock: clock}
	store := &memStore{}
	l, err := Open(store, quoter, flatFees(), Options{Clock: clock})
	require.NoError(t, err)

	row, err := l.BuildTrade(context.Background(), true, "005930", 10)
	require.NoError(t, err)

	assert.Equal(t, int64(800_000), row.Amount)
	assert.Equal(t, int64(10), row.Quantity)
	assert.Equal(t, int64(1_000_000-800_000), row.Balance)

	ok, err := l.CanBuy(row)
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, l.Append(row))

	assert.Equal(t, row.Balance, l.Balance())
	assert.True(t, l.RecentTime().Equal(row.Time))

	holdings := l.Holdings()
	require.Contains(t, holdings, market.Code("005930"))
	h := holdings["005930"]
	assert.Equal(t, int64(10), h.Quantity)
	assert.Equal(t, int64(800_000), h.Amount)
	assert.Equal(t, "SamsungElec", h.Name)
}

func TestBuyRejectedWhenBalanceWouldGoNegative(t *testing.T) {
	t.Parallel()

	clock := testClock()
	quoter := &fakeQuoter{name: "SamsungElec", price: 80_000, clock: clock}
	store := &memStore{}
	l, err := Open(store, quoter, flatFees(), Options{Clock: clock})
	require.NoError(t, err)

	// 20 x 80,000 = 1,600,000 > seed money.
	row, err := l.BuildTrade(context.Background(), true, "005930", 20)
	require.NoError(t, err)

	ok, err := l.CanBuy(row)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSellUnknownCodeRejected(t *testing.T) {
	t.Parallel()

	clock := testClock()
	quoter := &fakeQuoter{name: "SamsungElec", price: 80_000, clock: clock}
	l, store := newTestLedger(t, quoter, flatFees())

	row, err := l.BuildTrade(context.Background(), false, "005930", 5)
	require.NoError(t, err)

	ok, err := l.CanSell(row)
	require.NoError(t, err)
	assert.False(t, ok)

	// No row appended beyond the seed deposit.
	assert.Len(t, store.rows, 1)
}

func TestCanSellRejectsOverselling(t *testing.T) {
	t.Parallel()

	clock := testClock()
	quoter := &fakeQuoter{name: "SamsungElec", price: 1_000, clock: clock}
	l, _ := newTestLedger(t, quoter, flatFees())

	buy, err := l.BuildTrade(context.Background(), true, "005930", 3)
	require.NoError(t, err)
	require.NoError(t, l.Append(buy))

	over, err := l.BuildTrade(context.Background(), false, "005930", 5)
	require.NoError(t, err)
	ok, err := l.CanSell(over)
	require.NoError(t, err)
	assert.False(t, ok)

	exact, err := l.BuildTrade(context.Background(), false, "005930", 3)
	require.NoError(t, err)
	ok, err = l.CanSell(exact)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestHoldingDroppedOnFullExit(t *testing.T) {
	t.Parallel()

	clock := testClock()
	quoter := &fakeQuoter{name: "SamsungElec", price: 1_000, clock: clock}
	l, _ := newTestLedger(t, quoter, flatFees())

	buy, err := l.BuildTrade(context.Background(), true, "005930", 3)
	require.NoError(t, err)
	require.NoError(t, l.Append(buy))

	sell, err := l.BuildTrade(context.Background(), false, "005930", 3)
	require.NoError(t, err)
	require.NoError(t, l.Append(sell))

	assert.NotContains(t, l.Holdings(), market.Code("005930"))
}

func TestHoldingsAccumulateAcrossTrades(t *testing.T) {
	t.Parallel()

	clock := testClock()
	quoter := &fakeQuoter{name: "SamsungElec", price: 1_000, clock: clock}
	l, _ := newTestLedger(t, quoter, flatFees())

	quantities := []struct {
		isBuy bool
		qty   int64
	}{
		{true, 4}, {true, 6}, {false, 3}, {true, 2}, {false, 5},
	}
	var want int64
	for _, q := range quantities {
		row, err := l.BuildTrade(context.Background(), q.isBuy, "005930", q.qty)
		require.NoError(t, err)
		require.NoError(t, l.Append(row))
		if q.isBuy {
			want += q.qty
		} else {
			want -= q.qty
		}
	}

	h := l.Holdings()["005930"]
	assert.Equal(t, want, h.Quantity)
}

func TestReconstructionIdempotent(t *testing.T) {
	t.Parallel()

	clock := testClock()
	quoter := &fakeQuoter{name: "SamsungElec", price: 1_000, clock: clock}
	store := &memStore{}
	l, err := Open(store, quoter, flatFees(), Options{Clock: clock})
	require.NoError(t, err)

	for _, qty := range []int64{4, 2} {
		row, err := l.BuildTrade(context.Background(), true, "005930", qty)
		require.NoError(t, err)
		require.NoError(t, l.Append(row))
	}
	sell, err := l.BuildTrade(context.Background(), false, "005930", 1)
	require.NoError(t, err)
	require.NoError(t, l.Append(sell))

	rebuilt, err := Open(store, quoter, flatFees(), Options{Clock: clock})
	require.NoError(t, err)

	assert.Equal(t, l.Balance(), rebuilt.Balance())
	assert.True(t, l.RecentTime().Equal(rebuilt.RecentTime()))
	assert.Equal(t, l.Holdings(), rebuilt.Holdings())
}

func TestValidateRejectsAmountMismatch(t *testing.T) {
	t.Parallel()

	l, _ := newTestLedger(t, nil, flatFees())

	row := TradeRow{
		Time:     time.Date(2026, 8, 28, 11, 0, 0, 0, time.UTC),
		Code:     "005930",
		Name:     "SamsungElec",
		Price:    1_000,
		Quantity: 5,
		Amount:   4_999, // != 1000 * 5
		Balance:  1,
	}
	ok, err := l.Validate(row)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestValidateRejectsBadCodeAndZeroQuantity(t *testing.T) {
	t.Parallel()

	l, _ := newTestLedger(t, nil, flatFees())
	at := time.Date(2026, 8, 28, 11, 0, 0, 0, time.UTC)

	bad := TradeRow{Time: at, Code: "59", Name: "x", Price: 10, Quantity: 1, Amount: 10}
	ok, err := l.Validate(bad)
	require.NoError(t, err)
	assert.False(t, ok)

	zero := TradeRow{Time: at, Code: "005930", Name: "x", Price: 10, Quantity: 0, Amount: 0}
	ok, err = l.Validate(zero)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestValidateRaisesOnBackdatedRow(t *testing.T) {
	t.Parallel()

	l, _ := newTestLedger(t, nil, flatFees())

	stale := DepositRow{
		Time:    l.RecentTime().Add(-time.Hour),
		Balance: 1,
	}
	_, err := l.Validate(stale)
	assert.ErrorIs(t, err, ErrTimeOrder)
}

func TestBuildTradeInputErrors(t *testing.T) {
	t.Parallel()

	clock := testClock()
	quoter := &fakeQuoter{name: "SamsungElec", price: 1_000, clock: clock}
	l, _ := newTestLedger(t, quoter, flatFees())

	_, err := l.BuildTrade(context.Background(), true, "59", 1)
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = l.BuildTrade(context.Background(), true, "005930", 0)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestBuildTradeChecksListing(t *testing.T) {
	t.Parallel()

	clock := testClock()
	quoter := &fakeQuoter{name: "SamsungElec", price: 1_000, clock: clock}
	checker := &fakeChecker{listed: map[market.Code]bool{"005930": true}}
	store := &memStore{}
	l, err := Open(store, quoter, flatFees(), Options{Clock: clock, Checker: checker})
	require.NoError(t, err)

	// Well-formed but unlisted code is rejected before any quote is priced.
	_, err = l.BuildTrade(context.Background(), true, "999999", 1)
	assert.ErrorIs(t, err, market.ErrUnknownCode)

	row, err := l.BuildTrade(context.Background(), true, "005930", 1)
	require.NoError(t, err)
	assert.Equal(t, market.Code("005930"), row.Code)
}

func TestOpenUsesMaxTimeRow(t *testing.T) {
	t.Parallel()

	base := time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC)
	store := &memStore{rows: []Row{
		DepositRow{Time: base, Balance: 1_000_000},
		DepositRow{Time: base.Add(2 * time.Hour), Balance: 1_500_000},
		DepositRow{Time: base.Add(time.Hour), Balance: 1_200_000},
	}}

	l, err := Open(store, nil, flatFees(), Options{Clock: testClock()})
	require.NoError(t, err)

	// Balance and recent time come from the max-timestamp row, not the
	// last row read.
	assert.Equal(t, int64(1_500_000), l.Balance())
	assert.True(t, l.RecentTime().Equal(base.Add(2*time.Hour)))
}

func TestBuildTradeStaleQuote(t *testing.T) {
	t.Parallel()

	clock := testClock()
	quoter := &fakeQuoter{name: "SamsungElec", price: 1_000, clock: clock}
	l, _ := newTestLedger(t, quoter, flatFees())

	quoter.at = l.RecentTime().Add(-time.Minute)
	_, err := l.BuildTrade(context.Background(), true, "005930", 1)
	assert.ErrorIs(t, err, ErrStaleQuote)
}

func TestBuildTradeAppliesFees(t *testing.T) {
	t.Parallel()

	clock := testClock()
	quoter := &fakeQuoter{name: "SamsungElec", price: 10_000, clock: clock}
	// 0.5% brokerage fee, 0.3% sell tax.
	table := fees.NewTable([]fees.Tier{{Min: 0, Max: math.MaxInt64, Rate: 0.005}}, 0.003)
	store := &memStore{}
	l, err := Open(store, quoter, table, Options{Clock: clock})
	require.NoError(t, err)

	buy, err := l.BuildTrade(context.Background(), true, "005930", 10)
	require.NoError(t, err)
	assert.Equal(t, int64(500), buy.Net) // 0.5% of 100,000
	assert.Equal(t, int64(1_000_000-100_000-500), buy.Balance)
	require.NoError(t, l.Append(buy))

	sell, err := l.BuildTrade(context.Background(), false, "005930", 10)
	require.NoError(t, err)
	assert.Equal(t, int64(800), sell.Net) // 0.5% fee + 0.3% tax of 100,000
	assert.Equal(t, buy.Balance+100_000-800, sell.Balance)
}

func TestBuildDeposit(t *testing.T) {
	t.Parallel()

	l, _ := newTestLedger(t, nil, flatFees())

	row, err := l.BuildDeposit(250_000)
	require.NoError(t, err)
	assert.Equal(t, l.Balance()+250_000, row.Balance)
	require.NoError(t, l.Append(row))
	assert.Equal(t, row.Balance, l.Balance())

	_, err = l.BuildDeposit(0)
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = l.BuildDeposit(-5)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestAppendRejectsInvalidRow(t *testing.T) {
	t.Parallel()

	l, store := newTestLedger(t, nil, flatFees())
	before := len(store.rows)

	bad := TradeRow{
		Time:     l.RecentTime().Add(time.Minute),
		Code:     "005930",
		Name:     "SamsungElec",
		Price:    1_000,
		Quantity: 5,
		Amount:   4_999,
		Balance:  1,
	}
	err := l.Append(bad)
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.Len(t, store.rows, before)
}

func TestStateMirrorsLastAcceptedRow(t *testing.T) {
	t.Parallel()

	clock := testClock()
	quoter := &fakeQuoter{name: "Kakao", price: 50_000, clock: clock}
	l, _ := newTestLedger(t, quoter, flatFees())

	row, err := l.BuildTrade(context.Background(), true, "035720", 2)
	require.NoError(t, err)
	require.NoError(t, l.Append(row))

	assert.Equal(t, row.Balance, l.Balance())
	assert.True(t, l.RecentTime().Equal(row.Time))
}

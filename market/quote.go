package market

import (
	"errors"
	"time"
)

// ErrUnknownCode is returned when an upstream source does not recognize a
// stock code.
var ErrUnknownCode = errors.New("unknown stock code")

// Quote is a point-in-time observation of an issue's latest traded price.
// Time is the moment the quote was requested, not an exchange timestamp.
type Quote struct {
	Time  time.Time
	Code  Code
	Name  string
	Price int64 // won
}

// Candle is one day of OHLCV history for an issue. Prices are in won.
type Candle struct {
	Date   time.Time
	Open   int64
	High   int64
	Low    int64
	Close  int64
	Volume int64
}

// Issue is one listing row from the exchange: code, display name and the
// market it trades on (KOSPI, KOSDAQ, ...).
type Issue struct {
	Code   Code
	Name   string
	Market string
}

package market

import (
	"fmt"
	"time"
)

// DefaultTimezone is the exchange's local timezone.
const DefaultTimezone = "Asia/Seoul"

// Clock returns the current localized time. The ledger takes a Clock so tests
// can pin time.
type Clock interface {
	Now() time.Time
}

type localClock struct {
	loc *time.Location
}

func (c localClock) Now() time.Time { return time.Now().In(c.loc) }

// NewClock returns a Clock localized to the given IANA timezone.
func NewClock(tz string) (Clock, error) {
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", tz, err)
	}
	return localClock{loc: loc}, nil
}

// Now returns the current time in the exchange's timezone.
func Now() time.Time {
	c, err := NewClock(DefaultTimezone)
	if err != nil {
		// Asia/Seoul is in every tzdata shipment; reaching here means the
		// environment has no timezone database at all.
		panic(err)
	}
	return c.Now()
}

// SessionOpen reports whether the KRX regular session (09:00-15:30 KST,
// weekdays) is open at t. Holidays are not modeled.
func SessionOpen(t time.Time) bool {
	loc, err := time.LoadLocation(DefaultTimezone)
	if err != nil {
		return false
	}
	t = t.In(loc)
	switch t.Weekday() {
	case time.Saturday, time.Sunday:
		return false
	}
	open := time.Date(t.Year(), t.Month(), t.Day(), 9, 0, 0, 0, loc)
	close := time.Date(t.Year(), t.Month(), t.Day(), 15, 30, 0, 0, loc)
	return t.After(open) && t.Before(close)
}

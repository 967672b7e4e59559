// Package fees computes the net cost (brokerage fee plus transaction tax) of
// a trade from a tiered fee table supplied by the brokerage.
//
// The table is a CSV file with a header row and columns min,max,expression.
// Each row covers gross amounts in [min, max) and its expression describes
// the fee as a function of the gross amount. The expression grammar is the
// one the brokerage publishes: "*rate", "*rate+flat" or "*rate-flat", e.g.
// "*0.004971" or "*0.001+500". Expressions are parsed once at load time into
// a rate/flat pair; nothing is evaluated dynamically.
package fees

import (
	"encoding/csv"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
)

// ErrFeeTableMissing is returned when the fee table directory is absent or
// empty, or when no tier covers the requested amount.
var ErrFeeTableMissing = errors.New("fee table missing")

// DefaultTaxRate is the flat securities transaction tax applied on sells.
const DefaultTaxRate = 0.003

// Tier covers gross amounts in [Min, Max). Max of math.MaxInt64 means
// unbounded.
type Tier struct {
	Min  int64
	Max  int64
	Rate float64
	Flat int64
}

// Fee returns the brokerage fee for a gross amount inside this tier.
func (t Tier) Fee(gross int64) int64 {
	return int64(t.Rate*float64(gross)) + t.Flat
}

// Table is a parsed fee schedule plus the sell-side tax rate.
type Table struct {
	tiers   []Tier
	taxRate float64
}

// NewTable builds a Table from already-parsed tiers. Used by tests and by
// callers that do not load the schedule from disk.
func NewTable(tiers []Tier, taxRate float64) *Table {
	return &Table{tiers: tiers, taxRate: taxRate}
}

// Load reads the most recent fee schedule from dir. Files are ordered by
// name; the brokerage publishes them as fee_YYYYMMDD.csv so the greatest
// name is the newest schedule.
func Load(dir string, taxRate float64) (*Table, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: fee directory %s: %v", ErrFeeTableMissing, dir, err)
	}

	var names []string
	for _, e := range entries {
		if !e.IsDir() {
			names = append(names, e.Name())
		}
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("%w: no fee data file in %s", ErrFeeTableMissing, dir)
	}
	sort.Strings(names)
	name := names[len(names)-1]

	path := filepath.Join(dir, name)
	tiers, err := loadTiers(path)
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"file":  path,
		"tiers": len(tiers),
	}).Debug("loaded fee table")

	return NewTable(tiers, taxRate), nil
}

func loadTiers(path string) ([]Tier, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFeeTableMissing, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read fee table %s: %w", path, err)
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("%w: %s has no tier rows", ErrFeeTableMissing, path)
	}

	// Header row is min,max,expression.
	var tiers []Tier
	for _, rec := range records[1:] {
		if len(rec) != 3 {
			return nil, fmt.Errorf("fee table %s: want 3 columns, got %d", path, len(rec))
		}
		min, err := strconv.ParseInt(strings.TrimSpace(rec[0]), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("fee table %s: bad min %q: %w", path, rec[0], err)
		}
		max, err := parseMax(rec[1])
		if err != nil {
			return nil, fmt.Errorf("fee table %s: bad max %q: %w", path, rec[1], err)
		}
		rate, flat, err := parseExpression(rec[2])
		if err != nil {
			return nil, fmt.Errorf("fee table %s: %w", path, err)
		}
		tiers = append(tiers, Tier{Min: min, Max: max, Rate: rate, Flat: flat})
	}
	return tiers, nil
}

func parseMax(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "inf") {
		return math.MaxInt64, nil
	}
	return strconv.ParseInt(s, 10, 64)
}

// parseExpression accepts "*rate", "*rate+flat" and "*rate-flat".
func parseExpression(s string) (rate float64, flat int64, err error) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "*") {
		return 0, 0, fmt.Errorf("bad fee expression %q: want *rate[±flat]", s)
	}
	body := s[1:]

	sign := int64(1)
	idx := strings.IndexAny(body, "+-")
	rateStr, flatStr := body, ""
	if idx >= 0 {
		if body[idx] == '-' {
			sign = -1
		}
		rateStr, flatStr = body[:idx], body[idx+1:]
	}

	rate, err = strconv.ParseFloat(rateStr, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("bad fee rate in %q: %w", s, err)
	}
	if flatStr != "" {
		flat, err = strconv.ParseInt(flatStr, 10, 64)
		if err != nil {
			return 0, 0, fmt.Errorf("bad flat fee in %q: %w", s, err)
		}
		flat *= sign
	}
	return rate, flat, nil
}

// Net returns the total fee and tax for a trade with the given gross amount.
// Tax applies on sells only.
func (t *Table) Net(isBuy bool, gross int64) (int64, error) {
	tier, ok := t.lookup(gross)
	if !ok {
		return 0, fmt.Errorf("%w: no tier covers amount %d", ErrFeeTableMissing, gross)
	}
	net := tier.Fee(gross)
	if !isBuy {
		net += int64(t.taxRate * float64(gross))
	}
	return net, nil
}

func (t *Table) lookup(gross int64) (Tier, bool) {
	for _, tier := range t.tiers {
		if tier.Min <= gross && gross < tier.Max {
			return tier, true
		}
	}
	return Tier{}, false
}

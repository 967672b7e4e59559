package naver

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"

	"github.com/kstocklab/kstock/market"
)

// PeriodKind distinguishes the two column groups of the financial summary.
type PeriodKind string

const (
	Yearly    PeriodKind = "yearly"
	Quarterly PeriodKind = "quarterly"
)

// Period is one reporting column, e.g. {Yearly "2024/12"}.
type Period struct {
	Kind  PeriodKind
	Label string
}

// Metric is one financial summary row. Values align with
// FinancialSummary.Periods; missing cells are NaN.
type Metric struct {
	Name   string
	Values []float64
}

// FinancialSummary is a company's financial summary table: revenue,
// operating profit, EPS and friends per reporting period.
type FinancialSummary struct {
	Periods []Period
	Metrics []Metric
}

// Financials fetches and parses the financial summary for code.
//
// The page embeds the table as two JS array literals, changeFin (period
// labels, yearly then quarterly) and changeFinData (metric blocks). The
// literals are cut out of the script and normalized to JSON; nothing is
// evaluated.
func (c *Client) Financials(ctx context.Context, code market.Code) (*FinancialSummary, error) {
	if !code.Valid() {
		return nil, fmt.Errorf("%w: %s", market.ErrUnknownCode, code)
	}

	params := url.Values{}
	params.Set("cmp_cd", code.String())
	params.Set("finGubun", "MAIN")

	body, err := c.get(ctx, c.wisefnURL+"?"+params.Encode())
	if err != nil {
		return nil, err
	}

	summary, err := parseFinancials(string(body))
	if err != nil {
		return nil, fmt.Errorf("parse financials for %s: %w", code, err)
	}
	return summary, nil
}

func parseFinancials(page string) (*FinancialSummary, error) {
	finLit, err := scriptLiteral(page, "var changeFin = ")
	if err != nil {
		return nil, err
	}
	dataLit, err := scriptLiteral(page, "var changeFinData = ")
	if err != nil {
		return nil, err
	}

	// changeFin: [yearlyLabels, quarterlyLabels]
	var fin [][]string
	if err := json.Unmarshal([]byte(finLit), &fin); err != nil {
		return nil, fmt.Errorf("decode changeFin: %w", err)
	}
	if len(fin) != 2 {
		return nil, fmt.Errorf("decode changeFin: want 2 label groups, got %d", len(fin))
	}

	var periods []Period
	for _, label := range fin[0] {
		periods = append(periods, Period{Kind: Yearly, Label: label})
	}
	for _, label := range fin[1] {
		periods = append(periods, Period{Kind: Quarterly, Label: label})
	}

	// changeFinData: list of chunks; a chunk is a list of blocks laid side
	// by side (same rows, consecutive period columns); a block is a 2D
	// array whose first column is the metric name.
	var data [][][][]string
	if err := json.Unmarshal([]byte(dataLit), &data); err != nil {
		return nil, fmt.Errorf("decode changeFinData: %w", err)
	}

	var metrics []Metric
	for _, chunk := range data {
		joined, err := joinBlocks(chunk)
		if err != nil {
			return nil, err
		}
		for _, row := range joined {
			if len(row) == 0 {
				continue
			}
			m := Metric{Name: row[0]}
			for _, cell := range row[1:] {
				m.Values = append(m.Values, parseCell(cell))
			}
			metrics = append(metrics, m)
		}
	}

	return &FinancialSummary{Periods: periods, Metrics: metrics}, nil
}

// joinBlocks concatenates a chunk's blocks column-wise: the metric name
// repeats in every block, so it is kept from the first and dropped from the
// rest.
func joinBlocks(chunk [][][]string) ([][]string, error) {
	if len(chunk) == 0 {
		return nil, nil
	}
	rows := len(chunk[0])
	joined := make([][]string, rows)
	for b, block := range chunk {
		if len(block) != rows {
			return nil, fmt.Errorf("ragged financial chunk: block %d has %d rows, want %d", b, len(block), rows)
		}
		for i, row := range block {
			if b == 0 {
				joined[i] = append(joined[i], row...)
			} else if len(row) > 1 {
				joined[i] = append(joined[i], row[1:]...)
			}
		}
	}
	return joined, nil
}

// scriptLiteral cuts the array literal assigned to marker out of the page
// and normalizes it to JSON.
func scriptLiteral(page, marker string) (string, error) {
	start := strings.Index(page, marker)
	if start < 0 {
		return "", fmt.Errorf("marker %q not found", marker)
	}
	rest := page[start+len(marker):]
	end := strings.Index(rest, ";")
	if end < 0 {
		return "", fmt.Errorf("unterminated literal after %q", marker)
	}

	lit := rest[:end]
	lit = strings.ReplaceAll(lit, "\n", "")
	lit = strings.ReplaceAll(lit, "<span class='multi-row'>", "")
	lit = strings.ReplaceAll(lit, "</span>", "")
	lit = strings.ReplaceAll(lit, "'", `"`)
	return lit, nil
}

func parseCell(s string) float64 {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" || s == "-" || s == "N/A" {
		return math.NaN()
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN()
	}
	return v
}

package krx

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/kstocklab/kstock/market"
)

// DayQuote is one issue's row from the whole-market daily quote board.
type DayQuote struct {
	Code   market.Code
	Name   string
	Close  int64
	Change int64
	Open   int64
	High   int64
	Low    int64
	Volume int64
}

// MarketDay returns the whole-market quote board for one trading day.
func (c *Client) MarketDay(ctx context.Context, day time.Time, mktID string) ([]DayQuote, error) {
	if mktID == "" {
		mktID = MarketAll
	}
	params := url.Values{}
	params.Set("mktId", mktID)
	params.Set("trdDd", day.Format("20060102"))
	params.Set("share", "1")
	params.Set("money", "1")
	params.Set("csvxls_isNo", "false")

	jobj, err := c.call(ctx, "dbms/MDC/STAT/standard/MDCSTAT01501", params)
	if err != nil {
		return nil, err
	}
	recs, err := rows(jobj, "$.OutBlock_1")
	if err != nil {
		return nil, err
	}

	quotes := make([]DayQuote, 0, len(recs))
	for _, rec := range recs {
		code, err := market.ParseCode(rec["ISU_SRT_CD"])
		if err != nil {
			continue
		}
		q := DayQuote{Code: code, Name: rec["ISU_ABBRV"]}
		if q.Close, err = parseWon(rec["TDD_CLSPRC"]); err != nil {
			return nil, fmt.Errorf("row %s: %w", code, err)
		}
		// Change and OHLCV columns can be "-" on halted issues; treat those
		// as zero rather than failing the whole board.
		q.Change, _ = parseWon(rec["CMPPREVDD_PRC"])
		q.Open, _ = parseWon(rec["TDD_OPNPRC"])
		q.High, _ = parseWon(rec["TDD_HGPRC"])
		q.Low, _ = parseWon(rec["TDD_LWPRC"])
		q.Volume, _ = parseWon(rec["ACC_TRDVOL"])
		quotes = append(quotes, q)
	}
	return quotes, nil
}

// parseWon parses a portal number cell ("1,234,500").
func parseWon(s string) (int64, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" || s == "-" {
		return 0, fmt.Errorf("empty number cell")
	}
	return strconv.ParseInt(s, 10, 64)
}

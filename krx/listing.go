package krx

import (
	"context"
	"fmt"
	"net/url"

	"github.com/kstocklab/kstock/market"
)

// Market selector values accepted by the finder endpoints.
const (
	MarketAll    = "ALL"
	MarketKOSPI  = "STK"
	MarketKOSDAQ = "KSQ"
)

// ListedAll returns every listed issue on the selected market. search narrows
// the result to issues whose name or code matches; empty means all.
func (c *Client) ListedAll(ctx context.Context, mktsel, search string) ([]market.Issue, error) {
	return c.finder(ctx, "dbms/comm/finder/finder_stkisu", mktsel, search)
}

// DelistedAll returns delisted issues on the selected market.
func (c *Client) DelistedAll(ctx context.Context, mktsel, search string) ([]market.Issue, error) {
	return c.finder(ctx, "dbms/comm/finder/finder_listdelisu", mktsel, search)
}

func (c *Client) finder(ctx context.Context, bld, mktsel, search string) ([]market.Issue, error) {
	if mktsel == "" {
		mktsel = MarketAll
	}
	params := url.Values{}
	params.Set("mktsel", mktsel)
	params.Set("searchText", search)
	params.Set("typeNo", "0")

	jobj, err := c.call(ctx, bld, params)
	if err != nil {
		return nil, err
	}
	recs, err := rows(jobj, "$.block1")
	if err != nil {
		return nil, err
	}

	issues := make([]market.Issue, 0, len(recs))
	for _, rec := range recs {
		code, err := market.ParseCode(rec["short_code"])
		if err != nil {
			// The finder also returns ETN/ELW style codes; skip anything
			// outside the six-digit issue space.
			continue
		}
		issues = append(issues, market.Issue{
			Code:   code,
			Name:   rec["codeName"],
			Market: rec["marketName"],
		})
	}
	return issues, nil
}

// Exists reports whether code is a currently listed issue.
func (c *Client) Exists(ctx context.Context, code market.Code) (bool, error) {
	if !code.Valid() {
		return false, fmt.Errorf("%w: %s", market.ErrUnknownCode, code)
	}
	issues, err := c.ListedAll(ctx, MarketAll, code.String())
	if err != nil {
		return false, err
	}
	for _, is := range issues {
		if is.Code == code {
			return true, nil
		}
	}
	return false, nil
}

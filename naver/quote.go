package naver

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/PaesslerAG/jsonpath"

	"github.com/kstocklab/kstock/market"
)

// CurrentQuote returns the latest traded price and display name for code,
// stamped with the request time. An unrecognized code yields
// market.ErrUnknownCode.
func (c *Client) CurrentQuote(ctx context.Context, code market.Code) (market.Quote, error) {
	if !code.Valid() {
		return market.Quote{}, fmt.Errorf("%w: %s", market.ErrUnknownCode, code)
	}

	requested := c.clock.Now()

	params := url.Values{}
	params.Set("query", "SERVICE_ITEM:"+code.String())

	body, err := c.get(ctx, c.pollingURL+"?"+params.Encode())
	if err != nil {
		return market.Quote{}, err
	}

	var jobj any
	if err := json.Unmarshal(body, &jobj); err != nil {
		return market.Quote{}, fmt.Errorf("decode quote for %s: %w", code, err)
	}

	// The realtime board nests items under result.areas[n].datas[n]; a
	// SERVICE_ITEM query has exactly one of each when the code exists.
	jval, err := jsonpath.Get("$.result.areas[0].datas[0]", jobj)
	if err != nil {
		return market.Quote{}, fmt.Errorf("%w: %s", market.ErrUnknownCode, code)
	}
	item, ok := jval.(map[string]any)
	if !ok {
		return market.Quote{}, fmt.Errorf("%w: %s", market.ErrUnknownCode, code)
	}

	name, _ := item["nm"].(string)
	price, ok := item["nv"].(float64)
	if !ok || name == "" {
		return market.Quote{}, fmt.Errorf("%w: %s", market.ErrUnknownCode, code)
	}

	return market.Quote{
		Time:  requested,
		Code:  code,
		Name:  name,
		Price: int64(price),
	}, nil
}

package naver

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/kstocklab/kstock/market"
)

// PriceHistory returns up to days daily candles for code, oldest first.
// The fchart payload is an XML fragment whose item elements carry one
// pipe-delimited day each: date|open|high|low|close|volume.
func (c *Client) PriceHistory(ctx context.Context, code market.Code, days int) ([]market.Candle, error) {
	if !code.Valid() {
		return nil, fmt.Errorf("%w: %s", market.ErrUnknownCode, code)
	}
	if days <= 0 {
		days = 250
	}

	params := url.Values{}
	params.Set("symbol", code.String())
	params.Set("timeframe", "day")
	params.Set("count", strconv.Itoa(days))
	params.Set("requestType", "0")

	body, err := c.get(ctx, c.chartURL+"?"+params.Encode())
	if err != nil {
		return nil, err
	}

	candles, err := parseChart(body)
	if err != nil {
		return nil, fmt.Errorf("parse chart for %s: %w", code, err)
	}
	if len(candles) == 0 {
		return nil, fmt.Errorf("%w: %s", market.ErrUnknownCode, code)
	}
	return candles, nil
}

// parseChart walks the XML token stream collecting item elements. The
// fragment's root element has varied over time, so only item matters.
func parseChart(body []byte) ([]market.Candle, error) {
	dec := xml.NewDecoder(bytes.NewReader(body))

	var candles []market.Candle
	for {
		tok, err := dec.Token()
		if err != nil {
			break
		}
		start, ok := tok.(xml.StartElement)
		if !ok || start.Name.Local != "item" {
			continue
		}
		for _, attr := range start.Attr {
			if attr.Name.Local != "data" {
				continue
			}
			candle, err := parseItem(attr.Value)
			if err != nil {
				return nil, err
			}
			candles = append(candles, candle)
		}
	}
	return candles, nil
}

func parseItem(data string) (market.Candle, error) {
	fields := strings.Split(data, "|")
	if len(fields) != 6 {
		return market.Candle{}, fmt.Errorf("bad item %q: want 6 fields", data)
	}
	date, err := time.Parse("20060102", fields[0])
	if err != nil {
		return market.Candle{}, fmt.Errorf("bad item date %q: %w", fields[0], err)
	}

	nums := make([]int64, 5)
	for i, f := range fields[1:] {
		n, err := strconv.ParseInt(f, 10, 64)
		if err != nil {
			return market.Candle{}, fmt.Errorf("bad item field %q: %w", f, err)
		}
		nums[i] = n
	}
	return market.Candle{
		Date:   date,
		Open:   nums[0],
		High:   nums[1],
		Low:    nums[2],
		Close:  nums[3],
		Volume: nums[4],
	}, nil
}

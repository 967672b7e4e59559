// Package naver fetches price history, current quotes and company financial
// summaries from Naver Finance's public endpoints.
package naver

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/kstocklab/kstock/market"
)

const (
	// ChartURL serves daily price history as an XML fragment of
	// pipe-delimited item rows.
	ChartURL = "https://fchart.stock.naver.com/sise.nhn"
	// PollingURL serves the realtime quote board as JSON.
	PollingURL = "https://polling.finance.naver.com/api/realtime"
	// WisefnURL serves the company financial summary page.
	WisefnURL = "http://wisefn.finance.daum.net/v1/company/cF1001.aspx"

	userAgent = "Mozilla/5.0"
)

// Client is a Naver Finance client. The zero value is not usable; call
// NewClient.
type Client struct {
	chartURL   string
	pollingURL string
	wisefnURL  string
	httpClient *http.Client
	clock      market.Clock
}

// NewClient creates a Naver Finance client with a 30 second request timeout.
// Quotes are stamped with clock's current time; a nil clock uses KST.
func NewClient(clock market.Clock) *Client {
	if clock == nil {
		c, err := market.NewClock(market.DefaultTimezone)
		if err != nil {
			panic(err)
		}
		clock = c
	}
	return &Client{
		chartURL:   ChartURL,
		pollingURL: PollingURL,
		wisefnURL:  WisefnURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		clock: clock,
	}
}

// get issues a GET with the browser User-Agent and returns the body.
func (c *Client) get(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	logrus.WithField("url", rawURL).Debug("naver request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("naver error (status %d): %s", resp.StatusCode, string(body))
	}
	return body, nil
}

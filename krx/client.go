// Package krx fetches listing and market data from the KRX data portal.
//
// The portal exposes a single JSON endpoint, getJsonData.cmd, routed by a
// "bld" form parameter. Responses are JSON objects whose row arrays live
// under payload-specific keys (block1, OutBlock_1, ...); rows are extracted
// with JSONPath so each call only names the path it needs.
package krx

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PaesslerAG/jsonpath"
	"github.com/sirupsen/logrus"
)

// DataURL is the KRX data portal's JSON endpoint.
const DataURL = "http://data.krx.co.kr/comm/bldAttendant/getJsonData.cmd"

// userAgent mirrors a desktop browser; the portal rejects the Go default.
const userAgent = "Mozilla/5.0"

// Client is a KRX data portal client.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a KRX client with a 30 second request timeout.
func NewClient() *Client {
	return &Client{
		baseURL: DataURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// call POSTs a bld-routed form request and decodes the JSON response.
func (c *Client) call(ctx context.Context, bld string, params url.Values) (any, error) {
	params.Set("bld", bld)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL,
		strings.NewReader(params.Encode()))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	logrus.WithFields(logrus.Fields{
		"bld":    bld,
		"params": params.Encode(),
	}).Debug("krx request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("krx error (status %d): %s", resp.StatusCode, string(body))
	}

	var jobj any
	if err := json.NewDecoder(resp.Body).Decode(&jobj); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return jobj, nil
}

// rows extracts the row array at path from a decoded response and returns
// each row as a string map. Non-string values are dropped; the portal
// serializes every cell as a string.
func rows(jobj any, path string) ([]map[string]string, error) {
	jval, err := jsonpath.Get(path, jobj)
	if err != nil {
		return nil, fmt.Errorf("extract %q: %w", path, err)
	}
	jlist, ok := jval.([]any)
	if !ok {
		return nil, fmt.Errorf("extract %q: not a row array", path)
	}

	out := make([]map[string]string, 0, len(jlist))
	for _, jrow := range jlist {
		jmap, ok := jrow.(map[string]any)
		if !ok {
			continue
		}
		row := make(map[string]string, len(jmap))
		for k, v := range jmap {
			if s, ok := v.(string); ok {
				row[k] = s
			}
		}
		out = append(out, row)
	}
	return out, nil
}

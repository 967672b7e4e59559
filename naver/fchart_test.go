package naver

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kstocklab/kstock/market"
)

const chartPayload = `<?xml version="1.0" encoding="EUC-KR" ?>
<protocol>
<chartdata symbol="005930" name="SamsungElec" count="3" timeframe="day" precision="0" origintime="20260826">
	<item data="20260826|79800|80600|79500|80000|12345678" />
	<item data="20260827|80100|81000|79900|80400|23456789" />
	<item data="20260828|80500|81200|80300|81000|34567890" />
</chartdata>
</protocol>`

func TestParseChart(t *testing.T) {
	t.Parallel()

	candles, err := parseChart([]byte(chartPayload))
	require.NoError(t, err)
	require.Len(t, candles, 3)

	first := candles[0]
	assert.Equal(t, time.Date(2026, 8, 26, 0, 0, 0, 0, time.UTC), first.Date)
	assert.Equal(t, int64(79_800), first.Open)
	assert.Equal(t, int64(80_600), first.High)
	assert.Equal(t, int64(79_500), first.Low)
	assert.Equal(t, int64(80_000), first.Close)
	assert.Equal(t, int64(12_345_678), first.Volume)

	assert.Equal(t, int64(81_000), candles[2].Close)
}

func TestParseChartBadItem(t *testing.T) {
	t.Parallel()

	_, err := parseChart([]byte(`<chartdata><item data="20260826|79800" /></chartdata>`))
	assert.Error(t, err)

	_, err = parseChart([]byte(`<chartdata><item data="notadate|1|2|3|4|5" /></chartdata>`))
	assert.Error(t, err)
}

func TestPriceHistory(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "005930", r.URL.Query().Get("symbol"))
		assert.Equal(t, "day", r.URL.Query().Get("timeframe"))
		assert.Equal(t, "30", r.URL.Query().Get("count"))
		w.Write([]byte(chartPayload))
	}))
	defer server.Close()

	client := NewClient(nil)
	client.chartURL = server.URL

	candles, err := client.PriceHistory(context.Background(), "005930", 30)
	require.NoError(t, err)
	assert.Len(t, candles, 3)
}

func TestPriceHistoryUnknownCode(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// fchart answers an empty chartdata for unknown symbols.
		w.Write([]byte(`<protocol><chartdata symbol="999999" count="0"></chartdata></protocol>`))
	}))
	defer server.Close()

	client := NewClient(nil)
	client.chartURL = server.URL

	_, err := client.PriceHistory(context.Background(), "999999", 30)
	assert.ErrorIs(t, err, market.ErrUnknownCode)
}

func TestPriceHistoryRejectsBadCode(t *testing.T) {
	t.Parallel()

	client := NewClient(nil)
	_, err := client.PriceHistory(context.Background(), "59", 30)
	assert.ErrorIs(t, err, market.ErrUnknownCode)
}

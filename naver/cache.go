package naver

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/ulikunitz/xz/lzma"

	"github.com/kstocklab/kstock/market"
)

// Cache stores fetched daily price history on disk, one lzma-compressed CSV
// per issue. Daily candles for old dates never change, so entries are
// overwritten wholesale rather than merged.
type Cache struct {
	dir string
}

// NewCache returns a Cache rooted at dir, creating it if needed.
func NewCache(dir string) (*Cache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}
	return &Cache{dir: dir}, nil
}

func (c *Cache) path(code market.Code) string {
	return filepath.Join(c.dir, code.String()+"_daily.csv.lzma")
}

// PriceHistoryCached serves code's daily candles from cache when an entry
// exists, fetching and caching them otherwise.
func (c *Client) PriceHistoryCached(ctx context.Context, cache *Cache, code market.Code, days int) ([]market.Candle, error) {
	candles, ok, err := cache.Get(code)
	if err != nil {
		return nil, err
	}
	if ok {
		logrus.WithField("code", code).Debug("price history cache hit")
		return candles, nil
	}

	candles, err = c.PriceHistory(ctx, code, days)
	if err != nil {
		return nil, err
	}
	if err := cache.Put(code, candles); err != nil {
		return nil, err
	}
	return candles, nil
}

// Put writes candles for code, replacing any previous entry.
func (c *Cache) Put(code market.Code, candles []market.Candle) error {
	f, err := os.Create(c.path(code))
	if err != nil {
		return fmt.Errorf("create cache entry: %w", err)
	}
	zw, err := lzma.NewWriter(f)
	if err != nil {
		f.Close()
		return fmt.Errorf("lzma writer: %w", err)
	}

	w := csv.NewWriter(zw)
	for _, cd := range candles {
		rec := []string{
			cd.Date.Format("20060102"),
			strconv.FormatInt(cd.Open, 10),
			strconv.FormatInt(cd.High, 10),
			strconv.FormatInt(cd.Low, 10),
			strconv.FormatInt(cd.Close, 10),
			strconv.FormatInt(cd.Volume, 10),
		}
		if err := w.Write(rec); err != nil {
			f.Close()
			return fmt.Errorf("write cache entry: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return fmt.Errorf("write cache entry: %w", err)
	}
	if err := zw.Close(); err != nil {
		f.Close()
		return fmt.Errorf("close lzma writer: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"code": code,
		"days": len(candles),
	}).Debug("cached price history")

	return f.Close()
}

// Get reads the cached candles for code. ok is false when there is no entry.
func (c *Cache) Get(code market.Code) (candles []market.Candle, ok bool, err error) {
	f, err := os.Open(c.path(code))
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("open cache entry: %w", err)
	}
	defer f.Close()

	zr, err := lzma.NewReader(f)
	if err != nil {
		return nil, false, fmt.Errorf("lzma reader: %w", err)
	}

	r := csv.NewReader(zr)
	records, err := r.ReadAll()
	if err != nil {
		return nil, false, fmt.Errorf("read cache entry: %w", err)
	}

	for _, rec := range records {
		if len(rec) != 6 {
			return nil, false, fmt.Errorf("bad cache record: want 6 fields, got %d", len(rec))
		}
		date, err := time.Parse("20060102", rec[0])
		if err != nil {
			return nil, false, fmt.Errorf("bad cache date %q: %w", rec[0], err)
		}
		nums := make([]int64, 5)
		for i, s := range rec[1:] {
			if nums[i], err = strconv.ParseInt(s, 10, 64); err != nil {
				return nil, false, fmt.Errorf("bad cache field %q: %w", s, err)
			}
		}
		candles = append(candles, market.Candle{
			Date:   date,
			Open:   nums[0],
			High:   nums[1],
			Low:    nums[2],
			Close:  nums[3],
			Volume: nums[4],
		})
	}
	return candles, true, nil
}

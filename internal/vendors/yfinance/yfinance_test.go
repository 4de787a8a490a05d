package yfinance

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/arhow/tradingagents/internal/httpx"
	"github.com/arhow/tradingagents/internal/vendor"
	"github.com/arhow/tradingagents/pkg/models"
	"github.com/arhow/tradingagents/pkg/utils"
)

func TestFetchServesFromCache(t *testing.T) {
	c := NewClient(httpx.NewClient(time.Second))

	q := vendor.Query{
		Symbol:    "300418.SZ",
		StartDate: time.Date(2025, 9, 15, 0, 0, 0, 0, utils.CST),
		EndDate:   time.Date(2025, 9, 19, 0, 0, 0, 0, utils.CST),
	}
	want := []models.Bar{{Date: q.StartDate, Close: 38.5}}

	// Seed the cache under the URL the fetcher will build; the fetch
	// must return the cached bars without touching the network.
	url := fmt.Sprintf(chartURL, q.Symbol, q.StartDate.Unix(), q.EndDate.AddDate(0, 0, 1).Unix())
	c.cache.Set(url, want)

	res, err := c.Fetchers()[0].Fetch(context.Background(), q)
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	bars := res.Bars()
	if len(bars) != 1 || bars[0].Close != 38.5 {
		t.Errorf("unexpected cached bars: %v", bars)
	}
}

func TestParseBarsSkipsEmptySlots(t *testing.T) {
	raw := `{
		"timestamp": [1758240000, 1758326400, 1758412800],
		"indicators": {"quote": [{
			"open":   [38.0, null, 39.1],
			"high":   [38.9, null, 39.8],
			"low":    [37.5, null, 38.7],
			"close":  [38.5, null, 39.5],
			"volume": [120000, null, 98000]
		}]}
	}`
	var result chartResult
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		t.Fatal(err)
	}

	bars := parseBars(result)
	if len(bars) != 2 {
		t.Fatalf("got %d bars, want 2 after skipping the null slot", len(bars))
	}
	if bars[0].Close != 38.5 || bars[1].Close != 39.5 {
		t.Errorf("unexpected closes: %v, %v", bars[0].Close, bars[1].Close)
	}
	if bars[1].Volume != 98000 {
		t.Errorf("volume = %v", bars[1].Volume)
	}
}

func TestParseBarsNoQuote(t *testing.T) {
	if bars := parseBars(chartResult{}); bars != nil {
		t.Fatalf("expected nil for an empty result, got %v", bars)
	}
}

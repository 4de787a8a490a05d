// Package yfinance implements the Yahoo Finance data vendor over the
// public v8 chart API. It serves daily bars only and needs no API key,
// which makes it the usual fallback when a metered vendor is throttled.
package yfinance

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/arhow/tradingagents/internal/httpx"
	"github.com/arhow/tradingagents/internal/vendor"
	"github.com/arhow/tradingagents/pkg/models"
)

const (
	vendorName = "yfinance"
	chartURL   = "https://query1.finance.yahoo.com/v8/finance/chart/%s?period1=%d&period2=%d&interval=1d"
)

// Client wraps the shared HTTP client for Yahoo Finance calls. Chart
// responses are cached briefly so repeated reports over the same window
// do not re-hit the API, and calls are paced to stay under Yahoo's
// unauthenticated request ceiling.
type Client struct {
	http    *httpx.Client
	cache   *httpx.Cache
	limiter *httpx.RateLimiter
}

func NewClient(http *httpx.Client) *Client {
	return &Client{
		http:    http,
		cache:   httpx.NewCache(5 * time.Minute),
		limiter: httpx.NewRateLimiter(5, time.Second),
	}
}

// Fetchers returns every fetcher this vendor implements.
func (c *Client) Fetchers() []vendor.Fetcher {
	return []vendor.Fetcher{&dailyPriceFetcher{c}}
}

type chartResponse struct {
	Chart struct {
		Result []chartResult `json:"result"`
		Error  *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

type chartResult struct {
	Timestamp  []int64 `json:"timestamp"`
	Indicators struct {
		Quote []struct {
			Open   []*float64 `json:"open"`
			High   []*float64 `json:"high"`
			Low    []*float64 `json:"low"`
			Close  []*float64 `json:"close"`
			Volume []*float64 `json:"volume"`
		} `json:"quote"`
	} `json:"indicators"`
}

type dailyPriceFetcher struct {
	client *Client
}

func (f *dailyPriceFetcher) Vendor() string        { return vendorName }
func (f *dailyPriceFetcher) Method() vendor.Method { return vendor.MethodDailyPrice }

func (f *dailyPriceFetcher) Fetch(ctx context.Context, q vendor.Query) (*vendor.Result, error) {
	// period2 is exclusive, so push it past the end of the last day.
	url := fmt.Sprintf(chartURL, q.Symbol, q.StartDate.Unix(), q.EndDate.AddDate(0, 0, 1).Unix())

	if cached, ok := f.client.cache.Get(url); ok {
		return &vendor.Result{Data: cached.([]models.Bar)}, nil
	}
	if err := f.client.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	var resp chartResponse
	if err := f.client.http.GetJSON(ctx, url, nil, &resp); err != nil {
		var serr *httpx.StatusError
		if errors.As(err, &serr) && serr.StatusCode == http.StatusTooManyRequests {
			return nil, &vendor.RateLimitError{Vendor: vendorName, Detail: serr.Status}
		}
		return nil, fmt.Errorf("yfinance chart %s: %w", q.Symbol, err)
	}

	if resp.Chart.Error != nil {
		return nil, fmt.Errorf("yfinance chart %s: %s", q.Symbol, resp.Chart.Error.Description)
	}
	if len(resp.Chart.Result) == 0 {
		return nil, vendor.ErrNoData
	}

	bars := parseBars(resp.Chart.Result[0])
	f.client.cache.Set(url, bars)
	return &vendor.Result{Data: bars}, nil
}

// parseBars converts the parallel chart arrays into bars, skipping
// slots with no close (halted or unpriced days).
func parseBars(result chartResult) []models.Bar {
	if len(result.Indicators.Quote) == 0 {
		return nil
	}
	q := result.Indicators.Quote[0]

	bars := make([]models.Bar, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		if i >= len(q.Close) || q.Close[i] == nil {
			continue
		}
		b := models.Bar{Date: time.Unix(ts, 0), Close: *q.Close[i]}
		if i < len(q.Open) && q.Open[i] != nil {
			b.Open = *q.Open[i]
		}
		if i < len(q.High) && q.High[i] != nil {
			b.High = *q.High[i]
		}
		if i < len(q.Low) && q.Low[i] != nil {
			b.Low = *q.Low[i]
		}
		if i < len(q.Volume) && q.Volume[i] != nil {
			b.Volume = *q.Volume[i]
		}
		bars = append(bars, b)
	}
	return bars
}

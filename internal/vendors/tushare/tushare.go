// Package tushare implements the Tushare Pro data vendor. It covers
// China A-share daily bars, company basics, market news feeds, CCTV
// news digests, and exchange announcements through the single POST API
// at api.tushare.pro.
//
// Tushare requires an API token and meters access per minute; metered
// rejections surface as *vendor.RateLimitError so the router can fall
// back to another vendor.
package tushare

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/arhow/tradingagents/internal/httpx"
	"github.com/arhow/tradingagents/internal/vendor"
)

const (
	vendorName = "tushare"
	apiURL     = "https://api.tushare.pro"
)

// ErrNoToken means the client was built without an API token.
var ErrNoToken = errors.New("tushare: api token not configured")

// Client is the shared Tushare API client used by all fetchers.
type Client struct {
	http    *httpx.Client
	token   string
	limiter *httpx.RateLimiter
}

func NewClient(http *httpx.Client, token string) *Client {
	return &Client{
		http:    http,
		token:   token,
		limiter: httpx.NewRateLimiter(2, time.Second),
	}
}

// Fetchers returns every fetcher this vendor implements, ready for
// registry registration.
func (c *Client) Fetchers() []vendor.Fetcher {
	return []vendor.Fetcher{
		&dailyPriceFetcher{c},
		&companyInfoFetcher{c},
		&newsFetcher{c},
		&globalNewsFetcher{c},
	}
}

type apiRequest struct {
	APIName string         `json:"api_name"`
	Token   string         `json:"token"`
	Params  map[string]any `json:"params"`
	Fields  string         `json:"fields,omitempty"`
}

type apiResponse struct {
	Code int     `json:"code"`
	Msg  string  `json:"msg"`
	Data apiData `json:"data"`
}

type apiData struct {
	Fields []string `json:"fields"`
	Items  [][]any  `json:"items"`
}

// rateLimitMarkers are substrings of the Chinese error messages Tushare
// returns when per-minute or per-day quotas are exhausted.
var rateLimitMarkers = []string{"每分钟", "每天", "访问频率", "限流", "权限的具体详情访问"}

// call executes one Tushare API and returns its tabular payload. Calls
// are paced locally so a burst of fetchers does not trip the per-minute
// quota before the router even sees a rate-limit response.
func (c *Client) call(ctx context.Context, apiName string, params map[string]any, fields string) (*apiData, error) {
	if c.token == "" {
		return nil, ErrNoToken
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	var resp apiResponse
	req := apiRequest{APIName: apiName, Token: c.token, Params: params, Fields: fields}
	if err := c.http.PostJSON(ctx, apiURL, nil, req, &resp); err != nil {
		return nil, fmt.Errorf("tushare %s: %w", apiName, err)
	}
	if resp.Code != 0 {
		if isRateLimitMsg(resp.Msg) {
			return nil, &vendor.RateLimitError{Vendor: vendorName, Detail: resp.Msg}
		}
		return nil, fmt.Errorf("tushare %s: code %d: %s", apiName, resp.Code, resp.Msg)
	}
	return &resp.Data, nil
}

func isRateLimitMsg(msg string) bool {
	for _, marker := range rateLimitMarkers {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}

// rows iterates the tabular payload as field-name keyed records.
func (d *apiData) rows() []row {
	idx := make(map[string]int, len(d.Fields))
	for i, f := range d.Fields {
		idx[f] = i
	}
	rows := make([]row, len(d.Items))
	for i, item := range d.Items {
		rows[i] = row{idx: idx, values: item}
	}
	return rows
}

type row struct {
	idx    map[string]int
	values []any
}

func (r row) str(field string) string {
	i, ok := r.idx[field]
	if !ok || i >= len(r.values) {
		return ""
	}
	s, _ := r.values[i].(string)
	return s
}

func (r row) num(field string) float64 {
	i, ok := r.idx[field]
	if !ok || i >= len(r.values) {
		return 0
	}
	n, _ := r.values[i].(float64)
	return n
}

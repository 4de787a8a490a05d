// Package googlenews implements a news vendor that scrapes Google News
// web search results. It needs no API key; Google throttles scrapers
// aggressively, so HTTP 429 responses surface as *vendor.RateLimitError
// and let the router fall back.
package googlenews

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/arhow/tradingagents/internal/httpx"
	"github.com/arhow/tradingagents/internal/vendor"
	"github.com/arhow/tradingagents/pkg/models"
	"github.com/arhow/tradingagents/pkg/utils"
)

const (
	vendorName = "googlenews"
	maxPages   = 3
)

// Client scrapes Google News search result pages. Page fetches are
// paced locally; bursting through result pages is the quickest way to
// earn a 429 from Google.
type Client struct {
	http    *httpx.Client
	limiter *httpx.RateLimiter
}

func NewClient(http *httpx.Client) *Client {
	return &Client{
		http:    http,
		limiter: httpx.NewRateLimiter(1, time.Second),
	}
}

// Fetchers returns every fetcher this vendor implements.
func (c *Client) Fetchers() []vendor.Fetcher {
	return []vendor.Fetcher{
		&companyNewsFetcher{c},
		&globalNewsFetcher{c},
	}
}

// search scrapes up to maxPages of news results for the query inside
// the date window.
func (c *Client) search(ctx context.Context, query string, start, end time.Time, limit int) ([]models.NewsArticle, error) {
	var articles []models.NewsArticle
	for page := 0; page < maxPages; page++ {
		pageArticles, err := c.searchPage(ctx, query, start, end, page)
		if err != nil {
			return nil, err
		}
		if len(pageArticles) == 0 {
			break
		}
		articles = append(articles, pageArticles...)
		if limit > 0 && len(articles) >= limit {
			articles = articles[:limit]
			break
		}
	}
	return articles, nil
}

func (c *Client) searchPage(ctx context.Context, query string, start, end time.Time, page int) ([]models.NewsArticle, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	// tbs=cdr bounds results to the date window; tbm=nws selects the
	// news vertical.
	u := fmt.Sprintf(
		"https://www.google.com/search?q=%s&tbs=cdr:1,cd_min:%s,cd_max:%s&tbm=nws&start=%d",
		url.QueryEscape(query),
		url.QueryEscape(start.Format("01/02/2006")),
		url.QueryEscape(end.Format("01/02/2006")),
		page*10,
	)

	body, _, err := c.http.Get(ctx, u, nil)
	if err != nil {
		var serr *httpx.StatusError
		if errors.As(err, &serr) && serr.StatusCode == http.StatusTooManyRequests {
			return nil, &vendor.RateLimitError{Vendor: vendorName, Detail: serr.Status}
		}
		return nil, fmt.Errorf("googlenews search: %w", err)
	}
	defer body.Close()

	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return nil, fmt.Errorf("googlenews parse: %w", err)
	}

	var articles []models.NewsArticle
	doc.Find("div.SoaBEf").Each(func(_ int, s *goquery.Selection) {
		link, _ := s.Find("a").First().Attr("href")
		title := strings.TrimSpace(s.Find("div.MBeuO").Text())
		if title == "" || link == "" {
			return
		}
		articles = append(articles, models.NewsArticle{
			Title:       title,
			Content:     strings.TrimSpace(s.Find(".GI74Re").Text()),
			URL:         link,
			Source:      strings.TrimSpace(s.Find(".NUnG9d span").Text()),
			Type:        "news",
			PublishedAt: parseWhen(strings.TrimSpace(s.Find(".LfVVr").Text()), end),
		})
	})
	return articles, nil
}

// --- Company news fetcher ---

type companyNewsFetcher struct {
	client *Client
}

func (f *companyNewsFetcher) Vendor() string        { return vendorName }
func (f *companyNewsFetcher) Method() vendor.Method { return vendor.MethodNews }

func (f *companyNewsFetcher) Fetch(ctx context.Context, q vendor.Query) (*vendor.Result, error) {
	query := q.Symbol
	if q.CompanyName != "" {
		query = fmt.Sprintf("%s OR %s", q.CompanyName, q.Symbol)
	}
	articles, err := f.client.search(ctx, query, q.StartDate, q.EndDate, q.Limit)
	if err != nil {
		return nil, err
	}
	for i := range articles {
		articles[i].Symbol = q.Symbol
	}
	return &vendor.Result{Data: articles}, nil
}

// --- Global news fetcher ---

type globalNewsFetcher struct {
	client *Client
}

func (f *globalNewsFetcher) Vendor() string        { return vendorName }
func (f *globalNewsFetcher) Method() vendor.Method { return vendor.MethodGlobalNews }

func (f *globalNewsFetcher) Fetch(ctx context.Context, q vendor.Query) (*vendor.Result, error) {
	articles, err := f.client.search(ctx, "global economy macroeconomics markets", q.StartDate, q.EndDate, q.Limit)
	if err != nil {
		return nil, err
	}
	for i := range articles {
		articles[i].Type = "macro"
	}
	return &vendor.Result{Data: articles}, nil
}

// --- Helpers ---

var relativeWhen = regexp.MustCompile(`(\d+)\s*(分钟|小时|天|minute|hour|day|week)s?\s*(前|ago)`)

// parseWhen handles the timestamp strings Google renders: absolute
// dates in English or Chinese, or relative offsets from now anchored to
// the window end.
func parseWhen(s string, anchor time.Time) time.Time {
	for _, layout := range []string{"Jan 2, 2006", "2006年1月2日", "2006-01-02"} {
		if t, err := time.ParseInLocation(layout, s, utils.CST); err == nil {
			return t
		}
	}
	if m := relativeWhen.FindStringSubmatch(s); m != nil {
		n, _ := strconv.Atoi(m[1])
		switch m[2] {
		case "分钟", "minute":
			return anchor.Add(-time.Duration(n) * time.Minute)
		case "小时", "hour":
			return anchor.Add(-time.Duration(n) * time.Hour)
		case "天", "day":
			return anchor.AddDate(0, 0, -n)
		case "week":
			return anchor.AddDate(0, 0, -7*n)
		}
	}
	return time.Time{}
}

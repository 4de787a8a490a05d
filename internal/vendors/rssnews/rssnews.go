// Package rssnews implements a news vendor backed by configurable RSS
// feeds. Feeds are market-wide streams, so company news is produced by
// filtering items for mentions of the symbol or company name. Failed
// feeds are skipped rather than failing the whole fetch.
package rssnews

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"
	"github.com/rs/zerolog"

	"github.com/arhow/tradingagents/internal/vendor"
	"github.com/arhow/tradingagents/pkg/models"
)

const vendorName = "rssnews"

// Feed is one RSS source.
type Feed struct {
	Name string `json:"name" mapstructure:"name"`
	URL  string `json:"url" mapstructure:"url"`
}

// DefaultFeeds lists the built-in Chinese financial news feeds.
func DefaultFeeds() []Feed {
	return []Feed{
		{Name: "新浪财经", URL: "https://finance.sina.com.cn/roll/index.d.html?rss=1"},
		{Name: "东方财富", URL: "http://rss.eastmoney.com/rss_partener.xml"},
		{Name: "华尔街见闻", URL: "https://dedicated.wallstreetcn.com/rss.xml"},
	}
}

// Client fetches and filters the configured feeds.
type Client struct {
	feeds  []Feed
	parser *gofeed.Parser
	log    zerolog.Logger
}

func NewClient(feeds []Feed, log zerolog.Logger) *Client {
	if len(feeds) == 0 {
		feeds = DefaultFeeds()
	}
	return &Client{
		feeds:  feeds,
		parser: gofeed.NewParser(),
		log:    log.With().Str("component", "rssnews").Logger(),
	}
}

// Fetchers returns every fetcher this vendor implements.
func (c *Client) Fetchers() []vendor.Fetcher {
	return []vendor.Fetcher{
		&companyNewsFetcher{c},
		&globalNewsFetcher{c},
	}
}

// fetchAll pulls every feed, drops items outside the query window, and
// sorts ascending by publication time.
func (c *Client) fetchAll(ctx context.Context, q vendor.Query) []models.NewsArticle {
	var articles []models.NewsArticle
	for _, feed := range c.feeds {
		parsed, err := c.parser.ParseURLWithContext(feed.URL, ctx)
		if err != nil {
			c.log.Warn().Str("feed", feed.Name).Err(err).Msg("feed fetch failed")
			continue
		}
		for _, item := range parsed.Items {
			if item.PublishedParsed == nil {
				continue
			}
			at := *item.PublishedParsed
			if !inWindow(at, q) {
				continue
			}
			articles = append(articles, models.NewsArticle{
				Title:       item.Title,
				Content:     stripHTML(item.Description),
				URL:         item.Link,
				Source:      feed.Name,
				Type:        "news",
				PublishedAt: at,
			})
		}
	}
	sort.Slice(articles, func(i, j int) bool {
		return articles[i].PublishedAt.Before(articles[j].PublishedAt)
	})
	return articles
}

// --- Company news fetcher ---

type companyNewsFetcher struct {
	client *Client
}

func (f *companyNewsFetcher) Vendor() string        { return vendorName }
func (f *companyNewsFetcher) Method() vendor.Method { return vendor.MethodNews }

func (f *companyNewsFetcher) Fetch(ctx context.Context, q vendor.Query) (*vendor.Result, error) {
	keys := []string{q.Symbol}
	if q.CompanyName != "" {
		keys = append(keys, q.CompanyName)
	}
	if code, _, found := strings.Cut(q.Symbol, "."); found && code != "" {
		keys = append(keys, code)
	}

	var filtered []models.NewsArticle
	for _, a := range f.client.fetchAll(ctx, q) {
		if matchesAny(a.Title+" "+a.Content, keys) {
			a.Symbol = q.Symbol
			filtered = append(filtered, a)
		}
	}
	if q.Limit > 0 && len(filtered) > q.Limit {
		filtered = filtered[:q.Limit]
	}
	return &vendor.Result{Data: filtered}, nil
}

// --- Global news fetcher ---

type globalNewsFetcher struct {
	client *Client
}

func (f *globalNewsFetcher) Vendor() string        { return vendorName }
func (f *globalNewsFetcher) Method() vendor.Method { return vendor.MethodGlobalNews }

func (f *globalNewsFetcher) Fetch(ctx context.Context, q vendor.Query) (*vendor.Result, error) {
	articles := f.client.fetchAll(ctx, q)
	if q.Limit > 0 && len(articles) > q.Limit {
		articles = articles[:q.Limit]
	}
	return &vendor.Result{Data: articles}, nil
}

// --- Helpers ---

// inWindow reports whether a publication time falls inside the
// inclusive [start, end] date window. End is a day-normalized date, so
// anything before the following midnight still belongs to the end day.
func inWindow(at time.Time, q vendor.Query) bool {
	return !at.Before(q.StartDate) && at.Before(q.EndDate.AddDate(0, 0, 1))
}

func matchesAny(text string, keys []string) bool {
	for _, key := range keys {
		if key != "" && strings.Contains(text, key) {
			return true
		}
	}
	return false
}

// stripHTML removes markup from feed descriptions.
func stripHTML(s string) string {
	if s == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader("<body>" + s + "</body>"))
	if err != nil {
		return s
	}
	return strings.TrimSpace(doc.Text())
}

package tushare

import (
	"context"
	"strings"
	"time"

	"github.com/arhow/tradingagents/internal/vendor"
	"github.com/arhow/tradingagents/pkg/models"
	"github.com/arhow/tradingagents/pkg/utils"
)

// newsSources are the Tushare flash-news feeds polled for company news,
// in priority order.
var newsSources = []string{"sina", "wallstreetcn", "10jqka", "eastmoney", "yuncaijing", "cls", "yicai"}

// maxContentRunes bounds article bodies so reports stay readable.
const maxContentRunes = 500

// --- CompanyNews fetcher ---

type newsFetcher struct {
	client *Client
}

func (f *newsFetcher) Vendor() string        { return vendorName }
func (f *newsFetcher) Method() vendor.Method { return vendor.MethodNews }

// Fetch pulls flash news from every configured source plus exchange
// announcements, keeping only items related to the company. The feeds
// are market-wide, so relatedness filtering happens client side.
func (f *newsFetcher) Fetch(ctx context.Context, q vendor.Query) (*vendor.Result, error) {
	start := q.StartDate.Format("2006-01-02 15:04:05")
	end := q.EndDate.Format("2006-01-02 15:04:05")

	var articles []models.NewsArticle
	for _, src := range newsSources {
		data, err := f.client.call(ctx, "news", map[string]any{
			"src":        src,
			"start_date": start,
			"end_date":   end,
		}, "datetime,title,content,channels")
		if err != nil {
			return nil, err
		}

		for _, r := range data.rows() {
			title, content := r.str("title"), r.str("content")
			if !related(q, title, content) {
				continue
			}
			articles = append(articles, models.NewsArticle{
				Title:       title,
				Content:     truncate(content),
				Source:      src,
				Type:        "news",
				Symbol:      q.Symbol,
				PublishedAt: parseNewsTime(r.str("datetime")),
			})
			if q.Limit > 0 && len(articles) >= q.Limit {
				return &vendor.Result{Data: articles}, nil
			}
		}
	}

	anns, err := f.announcements(ctx, q)
	if err != nil {
		return nil, err
	}
	articles = append(articles, anns...)
	if q.Limit > 0 && len(articles) > q.Limit {
		articles = articles[:q.Limit]
	}
	return &vendor.Result{Data: articles}, nil
}

// announcements pulls the company's exchange filings for the window.
func (f *newsFetcher) announcements(ctx context.Context, q vendor.Query) ([]models.NewsArticle, error) {
	data, err := f.client.call(ctx, "anns_d", map[string]any{
		"ts_code":    q.Symbol,
		"start_date": utils.CompactDate(q.StartDate),
		"end_date":   utils.CompactDate(q.EndDate),
	}, "ts_code,ann_date,name,title,url")
	if err != nil {
		return nil, err
	}

	var articles []models.NewsArticle
	for _, r := range data.rows() {
		date, perr := time.ParseInLocation("20060102", r.str("ann_date"), utils.CST)
		if perr != nil {
			continue
		}
		articles = append(articles, models.NewsArticle{
			Title:       r.str("title"),
			URL:         r.str("url"),
			Source:      "exchange",
			Type:        "announcement",
			Symbol:      q.Symbol,
			PublishedAt: date,
		})
	}
	return articles, nil
}

// --- GlobalNews fetcher ---

type globalNewsFetcher struct {
	client *Client
}

func (f *globalNewsFetcher) Vendor() string        { return vendorName }
func (f *globalNewsFetcher) Method() vendor.Method { return vendor.MethodGlobalNews }

// Fetch combines the CCTV evening news digest for each day of the
// window with the wallstreetcn macro feed.
func (f *globalNewsFetcher) Fetch(ctx context.Context, q vendor.Query) (*vendor.Result, error) {
	var articles []models.NewsArticle
	for _, day := range utils.DaysBetween(q.StartDate, q.EndDate) {
		data, err := f.client.call(ctx, "cctv_news", map[string]any{
			"date": utils.CompactDate(day),
		}, "date,title,content")
		if err != nil {
			return nil, err
		}
		for _, r := range data.rows() {
			articles = append(articles, models.NewsArticle{
				Title:       r.str("title"),
				Content:     truncate(r.str("content")),
				Source:      "cctv",
				Type:        "macro",
				PublishedAt: day,
			})
		}
	}

	data, err := f.client.call(ctx, "news", map[string]any{
		"src":        "wallstreetcn",
		"start_date": q.StartDate.Format("2006-01-02 15:04:05"),
		"end_date":   q.EndDate.Format("2006-01-02 15:04:05"),
	}, "datetime,title,content,channels")
	if err != nil {
		return nil, err
	}
	for _, r := range data.rows() {
		articles = append(articles, models.NewsArticle{
			Title:       r.str("title"),
			Content:     truncate(r.str("content")),
			Source:      "wallstreetcn",
			Type:        "macro",
			PublishedAt: parseNewsTime(r.str("datetime")),
		})
	}

	if q.Limit > 0 && len(articles) > q.Limit {
		articles = articles[:q.Limit]
	}
	return &vendor.Result{Data: articles}, nil
}

// --- Helpers ---

// related reports whether the item mentions the company by name, full
// symbol, or bare stock code.
func related(q vendor.Query, title, content string) bool {
	keys := []string{q.Symbol}
	if q.CompanyName != "" {
		keys = append(keys, q.CompanyName)
	}
	if code, _, found := strings.Cut(q.Symbol, "."); found && code != "" {
		keys = append(keys, code)
	}
	for _, key := range keys {
		if strings.Contains(title, key) || strings.Contains(content, key) {
			return true
		}
	}
	return false
}

func truncate(s string) string {
	runes := []rune(s)
	if len(runes) <= maxContentRunes {
		return s
	}
	return string(runes[:maxContentRunes]) + "..."
}

func parseNewsTime(s string) time.Time {
	for _, layout := range []string{"2006-01-02 15:04:05", "2006-01-02 15:04", "2006-01-02"} {
		if t, err := time.ParseInLocation(layout, s, utils.CST); err == nil {
			return t
		}
	}
	return time.Time{}
}

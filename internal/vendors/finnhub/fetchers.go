package finnhub

import (
	"context"
	"sort"
	"time"

	"github.com/arhow/tradingagents/internal/vendor"
	"github.com/arhow/tradingagents/pkg/models"
)

// --- News fetcher ---

type newsEntry struct {
	Headline string `json:"headline"`
	Summary  string `json:"summary"`
	Source   string `json:"source"`
	URL      string `json:"url"`
	Datetime int64  `json:"datetime"`
}

type newsFetcher struct {
	store *Store
}

func (f *newsFetcher) Vendor() string        { return vendorName }
func (f *newsFetcher) Method() vendor.Method { return vendor.MethodNews }

func (f *newsFetcher) Fetch(_ context.Context, q vendor.Query) (*vendor.Result, error) {
	byDate := map[string][]newsEntry{}
	if err := readRange(f.store, "news_data", q, &byDate); err != nil {
		return nil, err
	}

	articles := make([]models.NewsArticle, 0)
	for _, date := range sortedKeys(byDate, q) {
		for _, e := range byDate[date] {
			at := time.Unix(e.Datetime, 0)
			if e.Datetime == 0 {
				at = parseDay(date)
			}
			articles = append(articles, models.NewsArticle{
				Title:       e.Headline,
				Content:     e.Summary,
				URL:         e.URL,
				Source:      e.Source,
				Type:        "news",
				Symbol:      q.Symbol,
				PublishedAt: at,
			})
		}
	}
	if q.Limit > 0 && len(articles) > q.Limit {
		articles = articles[:q.Limit]
	}
	return &vendor.Result{Data: articles}, nil
}

// --- Insider sentiment fetcher ---

type sentimentEntry struct {
	Year   int     `json:"year"`
	Month  int     `json:"month"`
	Change float64 `json:"change"`
	MSPR   float64 `json:"mspr"`
}

type insiderSentimentFetcher struct {
	store *Store
}

func (f *insiderSentimentFetcher) Vendor() string        { return vendorName }
func (f *insiderSentimentFetcher) Method() vendor.Method { return vendor.MethodInsiderSentiment }

func (f *insiderSentimentFetcher) Fetch(_ context.Context, q vendor.Query) (*vendor.Result, error) {
	byDate := map[string][]sentimentEntry{}
	if err := readRange(f.store, "insider_senti", q, &byDate); err != nil {
		return nil, err
	}

	out := make([]models.InsiderSentiment, 0)
	for _, date := range sortedKeys(byDate, q) {
		for _, e := range byDate[date] {
			out = append(out, models.InsiderSentiment{
				Symbol: q.Symbol,
				Year:   e.Year,
				Month:  e.Month,
				Change: e.Change,
				MSPR:   e.MSPR,
			})
		}
	}
	return &vendor.Result{Data: out}, nil
}

// --- Insider transactions fetcher ---

type transactionEntry struct {
	Name             string  `json:"name"`
	Share            float64 `json:"share"`
	Change           float64 `json:"change"`
	FilingDate       string  `json:"filingDate"`
	TransactionDate  string  `json:"transactionDate"`
	TransactionCode  string  `json:"transactionCode"`
	TransactionPrice float64 `json:"transactionPrice"`
}

type insiderTransactionsFetcher struct {
	store *Store
}

func (f *insiderTransactionsFetcher) Vendor() string        { return vendorName }
func (f *insiderTransactionsFetcher) Method() vendor.Method { return vendor.MethodInsiderTransactions }

func (f *insiderTransactionsFetcher) Fetch(_ context.Context, q vendor.Query) (*vendor.Result, error) {
	byDate := map[string][]transactionEntry{}
	if err := readRange(f.store, "insider_trans", q, &byDate); err != nil {
		return nil, err
	}

	out := make([]models.InsiderTransaction, 0)
	for _, date := range sortedKeys(byDate, q) {
		for _, e := range byDate[date] {
			out = append(out, models.InsiderTransaction{
				Symbol:           q.Symbol,
				Name:             e.Name,
				FilingDate:       e.FilingDate,
				TransactionDate:  e.TransactionDate,
				Change:           e.Change,
				Share:            e.Share,
				TransactionPrice: e.TransactionPrice,
				TransactionCode:  e.TransactionCode,
			})
		}
	}
	return &vendor.Result{Data: out}, nil
}

// --- Helpers ---

// sortedKeys returns the in-window date keys in ascending order so
// results are deterministic regardless of map iteration.
func sortedKeys[T any](byDate map[string][]T, q vendor.Query) []string {
	keys := make([]string, 0, len(byDate))
	for date := range byDate {
		if inWindow(date, q) {
			keys = append(keys, date)
		}
	}
	sort.Strings(keys)
	return keys
}

func parseDay(s string) time.Time {
	t, _ := time.Parse("2006-01-02", s)
	return t
}

package models

import "time"

// NewsArticle represents one news item returned by a news vendor.
type NewsArticle struct {
	Title       string    `json:"title"`
	Content     string    `json:"content,omitempty"`
	URL         string    `json:"url,omitempty"`
	Source      string    `json:"source"`           // e.g., "sina", "cctv", "Google News"
	Type        string    `json:"type"`             // "news", "cctv_news", "announcement"
	Symbol      string    `json:"symbol,omitempty"` // ts code when the vendor reports one
	PublishedAt time.Time `json:"published_at"`
}

// InsiderSentiment is one month of aggregated insider sentiment for a
// company. Change is the net insider share change for the month; MSPR is
// the monthly share purchase ratio.
type InsiderSentiment struct {
	Symbol string  `json:"symbol"`
	Year   int     `json:"year"`
	Month  int     `json:"month"`
	Change float64 `json:"change"`
	MSPR   float64 `json:"mspr"`
}

// InsiderTransaction is a single insider trade filing.
type InsiderTransaction struct {
	Symbol           string  `json:"symbol"`
	Name             string  `json:"name"`
	FilingDate       string  `json:"filingDate"`      // YYYY-MM-DD
	TransactionDate  string  `json:"transactionDate"` // YYYY-MM-DD
	Change           float64 `json:"change"`
	Share            float64 `json:"share"`
	TransactionPrice float64 `json:"transactionPrice"`
	TransactionCode  string  `json:"transactionCode"` // e.g., "S" for sale
}

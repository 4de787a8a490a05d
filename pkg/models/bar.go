// Package models defines the core data structures shared across the
// TradingAgents data layer: price bars, company metadata, news items,
// insider data, and site-search results.
package models

import "time"

// Bar represents one daily price record for a symbol.
// Amount is the traded value (千元 for Tushare data); it is zero for
// vendors that do not report it.
type Bar struct {
	Date   time.Time `json:"date"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume float64   `json:"volume"`
	Amount float64   `json:"amount,omitempty"`
}

// CompanyInfo holds basic listing information for a company.
type CompanyInfo struct {
	Symbol   string `json:"symbol"`    // e.g., "300418.SZ"
	Code     string `json:"code"`      // exchange-local code, e.g., "300418"
	Name     string `json:"name"`      // e.g., "昆仑万维"
	Area     string `json:"area,omitempty"`
	Industry string `json:"industry,omitempty"`
	Market   string `json:"market,omitempty"`
	ListDate string `json:"list_date,omitempty"` // YYYYMMDD
}

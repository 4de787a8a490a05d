// Package dataflows exposes the consumer-facing toolkit: string reports
// and JSON payloads assembled from the vendor router, the time-series
// cache, the indicator engine, and the site-search aggregator. Empty
// upstream data yields empty reports; only transport and configuration
// problems surface as errors.
package dataflows

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/arhow/tradingagents/internal/indicator"
	"github.com/arhow/tradingagents/internal/sitesearch"
	"github.com/arhow/tradingagents/internal/timeseries"
	"github.com/arhow/tradingagents/internal/vendor"
	"github.com/arhow/tradingagents/pkg/models"
	"github.com/arhow/tradingagents/pkg/utils"
)

// Toolkit bundles the data access layers behind report-producing
// operations. All dependencies are injected; a nil aggregator or engine
// just disables the operations that need it.
type Toolkit struct {
	router *vendor.Router
	cache  *timeseries.Cache
	engine *indicator.Engine
	agg    *sitesearch.Aggregator
	log    zerolog.Logger
}

func NewToolkit(router *vendor.Router, cache *timeseries.Cache, engine *indicator.Engine, agg *sitesearch.Aggregator, log zerolog.Logger) *Toolkit {
	return &Toolkit{
		router: router,
		cache:  cache,
		engine: engine,
		agg:    agg,
		log:    log.With().Str("component", "dataflows").Logger(),
	}
}

// window converts a current date plus look-back days into an inclusive
// date range.
func window(currDate time.Time, lookBackDays int) (time.Time, time.Time) {
	end := utils.Day(currDate)
	return end.AddDate(0, 0, -lookBackDays), end
}

// CompanyNews reports news and announcements about one company.
func (t *Toolkit) CompanyNews(ctx context.Context, ticker, name string, currDate time.Time, lookBackDays int) (string, error) {
	start, end := window(currDate, lookBackDays)
	res, err := t.router.Route(ctx, vendor.MethodNews, vendor.Query{
		Symbol:      ticker,
		CompanyName: name,
		StartDate:   start,
		EndDate:     end,
	})
	if err != nil {
		return "", err
	}

	articles := res.Articles()
	if len(articles) == 0 {
		return "", nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "## %s News, from %s to %s:\n\n", ticker, utils.FormatDate(start), utils.FormatDate(end))
	writeArticles(&b, articles)
	return b.String(), nil
}

// GlobalNews reports macro and market-wide news for the window.
func (t *Toolkit) GlobalNews(ctx context.Context, currDate time.Time, lookBackDays int) (string, error) {
	start, end := window(currDate, lookBackDays)
	res, err := t.router.Route(ctx, vendor.MethodGlobalNews, vendor.Query{
		StartDate: start,
		EndDate:   end,
	})
	if err != nil {
		return "", err
	}

	articles := res.Articles()
	if len(articles) == 0 {
		return "", nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "## Global News Report, from %s to %s:\n\n", utils.FormatDate(start), utils.FormatDate(end))
	writeArticles(&b, articles)
	return b.String(), nil
}

// InsiderSentiment reports monthly insider sentiment for one company.
func (t *Toolkit) InsiderSentiment(ctx context.Context, ticker string, currDate time.Time, lookBackDays int) (string, error) {
	start, end := window(currDate, lookBackDays)
	res, err := t.router.Route(ctx, vendor.MethodInsiderSentiment, vendor.Query{
		Symbol:    ticker,
		StartDate: start,
		EndDate:   end,
	})
	if err != nil {
		return "", err
	}

	entries, _ := res.Data.([]models.InsiderSentiment)
	if len(entries) == 0 {
		return "", nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "## %s Insider Sentiment Data for %s to %s:\n\n", ticker, utils.FormatDate(start), utils.FormatDate(end))
	for _, e := range entries {
		fmt.Fprintf(&b, "### %04d-%02d:\nChange: %v\nMonthly Share Purchase Ratio: %v\n\n", e.Year, e.Month, e.Change, e.MSPR)
	}
	b.WriteString("The change field refers to the net buying/selling from all insiders' transactions. " +
		"The mspr field refers to monthly share purchase ratio.")
	return b.String(), nil
}

// InsiderTransactions reports individual insider filings for one company.
func (t *Toolkit) InsiderTransactions(ctx context.Context, ticker string, currDate time.Time, lookBackDays int) (string, error) {
	start, end := window(currDate, lookBackDays)
	res, err := t.router.Route(ctx, vendor.MethodInsiderTransactions, vendor.Query{
		Symbol:    ticker,
		StartDate: start,
		EndDate:   end,
	})
	if err != nil {
		return "", err
	}

	entries, _ := res.Data.([]models.InsiderTransaction)
	if len(entries) == 0 {
		return "", nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "## %s insider transactions from %s to %s:\n\n", ticker, utils.FormatDate(start), utils.FormatDate(end))
	for _, e := range entries {
		fmt.Fprintf(&b, "### Filing date: %s, %s:\nChange: %v\nShares: %v\nTransaction Price: %v\nTransaction Code: %s\n\n",
			e.FilingDate, e.Name, e.Change, e.Share, e.TransactionPrice, e.TransactionCode)
	}
	b.WriteString("The change field reflects the variation in share count. A negative number means the insider " +
		"sold shares, a positive number means the insider bought shares.")
	return b.String(), nil
}

// BalanceSheet reports the company's most recent balance sheet
// published on or before currDate.
func (t *Toolkit) BalanceSheet(ctx context.Context, ticker, freq string, currDate time.Time) (string, error) {
	return t.statementReport(ctx, vendor.MethodBalanceSheet, ticker, freq, currDate,
		"This includes metadata like reporting dates and currency, share details, and a breakdown of "+
			"assets, liabilities, and equity. Assets are grouped as current (liquid items like cash and "+
			"receivables) and noncurrent (long-term investments and property). Liabilities are split between "+
			"short-term obligations and long-term debts, while equity reflects shareholder funds such as "+
			"paid-in capital and retained earnings. Together, these components ensure that total assets "+
			"equal the sum of liabilities and equity.")
}

// CashFlow reports the company's most recent cash flow statement
// published on or before currDate.
func (t *Toolkit) CashFlow(ctx context.Context, ticker, freq string, currDate time.Time) (string, error) {
	return t.statementReport(ctx, vendor.MethodCashFlow, ticker, freq, currDate,
		"This includes metadata like reporting dates and currency, share details, and a breakdown of cash "+
			"movements. Operating activities show cash generated from core business operations, including "+
			"net income adjustments for non-cash items and working capital changes. Investing activities "+
			"cover asset acquisitions/disposals and investments. Financing activities include debt "+
			"transactions, equity issuances/repurchases, and dividend payments. The net change in cash "+
			"represents the overall increase or decrease in the company's cash position during the "+
			"reporting period.")
}

// IncomeStatement reports the company's most recent income statement
// published on or before currDate.
func (t *Toolkit) IncomeStatement(ctx context.Context, ticker, freq string, currDate time.Time) (string, error) {
	return t.statementReport(ctx, vendor.MethodIncomeStatement, ticker, freq, currDate,
		"This includes metadata like reporting dates and currency, share details, and a comprehensive "+
			"breakdown of the company's financial performance. Starting with Revenue, it shows Cost of "+
			"Revenue and resulting Gross Profit. Operating Expenses are detailed, including SG&A, R&D, and "+
			"Depreciation. The statement then shows Operating Income, followed by non-operating items and "+
			"Interest Expense, leading to Pretax Income. After accounting for Income Tax and any "+
			"Extraordinary items, it concludes with Net Income, representing the company's bottom-line "+
			"profit or loss for the period.")
}

func (t *Toolkit) statementReport(ctx context.Context, method vendor.Method, ticker, freq string, currDate time.Time, trailer string) (string, error) {
	res, err := t.router.Route(ctx, method, vendor.Query{
		Symbol:  ticker,
		EndDate: utils.Day(currDate),
		Freq:    freq,
	})
	if err != nil {
		return "", err
	}

	st := res.Statement()
	if st == nil {
		return "", nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "## %s %s for %s released on %s:\n\n", st.Freq, st.Statement, ticker, st.PublishDate)
	fmt.Fprintf(&b, "Report Date: %s\n", st.ReportDate)
	fmt.Fprintf(&b, "Currency: %s\n", st.Currency)
	fmt.Fprintf(&b, "Fiscal Year: %s\n", st.FiscalYear)
	fmt.Fprintf(&b, "Fiscal Period: %s\n", st.FiscalPeriod)
	for _, line := range st.Lines {
		fmt.Fprintf(&b, "%s: %s\n", line.Name, line.Value)
	}
	b.WriteString("\n" + trailer)
	return b.String(), nil
}

// IndicatorReport renders one indicator over a trailing window.
func (t *Toolkit) IndicatorReport(ctx context.Context, symbol, indicatorName string, currDate time.Time, lookBackDays int, online bool) (string, error) {
	if t.engine == nil {
		return "", errors.New("dataflows: indicator engine not configured")
	}
	return t.engine.WindowReport(ctx, symbol, indicatorName, currDate, lookBackDays, online)
}

// PriceData returns the daily price series as annotated CSV text. A
// window with no data yields an empty string.
func (t *Toolkit) PriceData(ctx context.Context, symbol string, start, end time.Time) (string, error) {
	series, err := t.cache.GetOrFetch(ctx, symbol, utils.Day(start), utils.Day(end))
	if err != nil {
		if errors.Is(err, timeseries.ErrEmptySeries) {
			return "", nil
		}
		return "", err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# Stock data for %s from %s to %s\n", symbol, utils.FormatDate(start), utils.FormatDate(end))
	fmt.Fprintf(&b, "# Total records: %d\n", len(series))
	fmt.Fprintf(&b, "# Data retrieved on: %s\n\n", utils.NowCST().Format("2006-01-02 15:04:05"))
	if err := series.WriteCSV(&b); err != nil {
		return "", err
	}
	return b.String(), nil
}

// StockSocialSentiment aggregates discussion and coverage of one stock
// across the configured sites and returns the result as indented JSON.
func (t *Toolkit) StockSocialSentiment(ctx context.Context, symbol, name string, asOf time.Time) (string, error) {
	if t.agg == nil {
		return "", errors.New("dataflows: site-search aggregator not configured")
	}

	resp, err := t.agg.Search(ctx, symbol, name, asOf)
	if err != nil {
		return "", err
	}

	raw, err := json.MarshalIndent(resp, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode search response: %w", err)
	}
	return string(raw), nil
}

func writeArticles(b *strings.Builder, articles []models.NewsArticle) {
	for _, a := range articles {
		day := ""
		if !a.PublishedAt.IsZero() {
			day = " (" + utils.FormatDate(a.PublishedAt) + ")"
		}
		fmt.Fprintf(b, "### %s%s\n\n", a.Title, day)
		if a.Content != "" {
			fmt.Fprintf(b, "%s\n\n", a.Content)
		}
		if a.URL != "" {
			fmt.Fprintf(b, "%s\n\n", a.URL)
		}
	}
}

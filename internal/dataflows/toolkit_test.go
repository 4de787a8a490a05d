package dataflows

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/arhow/tradingagents/internal/sitesearch"
	"github.com/arhow/tradingagents/internal/timeseries"
	"github.com/arhow/tradingagents/internal/vendor"
	"github.com/arhow/tradingagents/pkg/models"
)

type stubFetcher struct {
	vendorName string
	method     vendor.Method
	data       any
	err        error
}

func (f *stubFetcher) Vendor() string        { return f.vendorName }
func (f *stubFetcher) Method() vendor.Method { return f.method }
func (f *stubFetcher) Fetch(context.Context, vendor.Query) (*vendor.Result, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &vendor.Result{Data: f.data}, nil
}

func newRouter(fetchers ...vendor.Fetcher) *vendor.Router {
	reg := vendor.NewRegistry()
	for _, f := range fetchers {
		reg.Register(f)
	}
	return vendor.NewRouter(reg, vendor.Preferences{}, zerolog.Nop())
}

func curr() time.Time {
	return time.Date(2025, 9, 21, 0, 0, 0, 0, time.UTC)
}

func TestCompanyNewsReport(t *testing.T) {
	router := newRouter(&stubFetcher{
		vendorName: "stub", method: vendor.MethodNews,
		data: []models.NewsArticle{
			{Title: "昆仑万维发布公告", Content: "公告内容", PublishedAt: time.Date(2025, 9, 19, 10, 0, 0, 0, time.UTC)},
			{Title: "三季报点评", Content: "业绩超预期", PublishedAt: time.Date(2025, 9, 20, 9, 0, 0, 0, time.UTC)},
		},
	})
	tk := NewToolkit(router, nil, nil, nil, zerolog.Nop())

	report, err := tk.CompanyNews(context.Background(), "300418.SZ", "昆仑万维", curr(), 7)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(report, "## 300418.SZ News, from 2025-09-14 to 2025-09-21:") {
		t.Fatalf("unexpected header: %q", report)
	}
	if !strings.Contains(report, "### 昆仑万维发布公告 (2025-09-19)") {
		t.Errorf("missing article heading:\n%s", report)
	}
}

func TestCompanyNewsEmptyData(t *testing.T) {
	router := newRouter(&stubFetcher{
		vendorName: "stub", method: vendor.MethodNews,
		data: []models.NewsArticle{},
	})
	tk := NewToolkit(router, nil, nil, nil, zerolog.Nop())

	report, err := tk.CompanyNews(context.Background(), "300418.SZ", "昆仑万维", curr(), 7)
	if err != nil {
		t.Fatal(err)
	}
	if report != "" {
		t.Fatalf("empty data must yield an empty report, got %q", report)
	}
}

func TestInsiderSentimentReport(t *testing.T) {
	router := newRouter(&stubFetcher{
		vendorName: "stub", method: vendor.MethodInsiderSentiment,
		data: []models.InsiderSentiment{
			{Symbol: "AAPL", Year: 2025, Month: 9, Change: -1200, MSPR: -0.42},
		},
	})
	tk := NewToolkit(router, nil, nil, nil, zerolog.Nop())

	report, err := tk.InsiderSentiment(context.Background(), "AAPL", curr(), 30)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(report, "### 2025-09:") {
		t.Errorf("missing month heading:\n%s", report)
	}
	if !strings.Contains(report, "monthly share purchase ratio") {
		t.Error("missing field legend trailer")
	}
}

func TestInsiderTransactionsReport(t *testing.T) {
	router := newRouter(&stubFetcher{
		vendorName: "stub", method: vendor.MethodInsiderTransactions,
		data: []models.InsiderTransaction{
			{Symbol: "AAPL", Name: "DOE JANE", FilingDate: "2025-09-16", Change: -500, Share: 1000, TransactionPrice: 182.4, TransactionCode: "S"},
		},
	})
	tk := NewToolkit(router, nil, nil, nil, zerolog.Nop())

	report, err := tk.InsiderTransactions(context.Background(), "AAPL", curr(), 30)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(report, "### Filing date: 2025-09-16, DOE JANE:") {
		t.Errorf("missing filing heading:\n%s", report)
	}
	if !strings.Contains(report, "Transaction Code: S") {
		t.Error("missing transaction code line")
	}
}

func TestBalanceSheetReport(t *testing.T) {
	router := newRouter(&stubFetcher{
		vendorName: "stub", method: vendor.MethodBalanceSheet,
		data: &models.FinancialStatement{
			Symbol: "KLWW", Statement: "balance sheet", Freq: "annual",
			Currency: "CNY", FiscalYear: "2025", FiscalPeriod: "Q2",
			ReportDate: "2025-06-30", PublishDate: "2025-08-20",
			Lines: []models.StatementLine{
				{Name: "Cash & Equivalents", Value: "1350000"},
				{Name: "Total Assets", Value: "10100000"},
			},
		},
	})
	tk := NewToolkit(router, nil, nil, nil, zerolog.Nop())

	report, err := tk.BalanceSheet(context.Background(), "KLWW", "annual", curr())
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(report, "## annual balance sheet for KLWW released on 2025-08-20:") {
		t.Fatalf("unexpected header:\n%s", report)
	}
	if !strings.Contains(report, "Total Assets: 10100000") {
		t.Error("missing line item")
	}
	if !strings.Contains(report, "total assets equal the sum of liabilities and equity") {
		t.Error("missing explanation trailer")
	}
}

func TestBalanceSheetNoReport(t *testing.T) {
	router := newRouter(&stubFetcher{
		vendorName: "stub", method: vendor.MethodBalanceSheet,
		data: (*models.FinancialStatement)(nil),
	})
	tk := NewToolkit(router, nil, nil, nil, zerolog.Nop())

	report, err := tk.BalanceSheet(context.Background(), "KLWW", "annual", curr())
	if err != nil {
		t.Fatal(err)
	}
	if report != "" {
		t.Fatalf("no published report must yield an empty string, got %q", report)
	}
}

func TestPriceDataCSV(t *testing.T) {
	fetch := func(_ context.Context, _ string, start, _ time.Time) (timeseries.Series, error) {
		return timeseries.Series{
			{Date: start, Open: 38, High: 39, Low: 37.5, Close: 38.5, Volume: 120000, Amount: 4.6e6},
		}, nil
	}
	cache, err := timeseries.NewCache(t.TempDir(), fetch, zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}
	tk := NewToolkit(nil, cache, nil, nil, zerolog.Nop())

	out, err := tk.PriceData(context.Background(), "300418.SZ",
		time.Date(2025, 9, 15, 0, 0, 0, 0, time.UTC), curr())
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(out, "# Stock data for 300418.SZ from 2025-09-15 to 2025-09-21\n# Total records: 1\n") {
		t.Fatalf("unexpected header:\n%s", out)
	}
	if !strings.Contains(out, "date,open,high,low,close,volume,amount") {
		t.Error("missing CSV header row")
	}
}

func TestStockSocialSentimentJSON(t *testing.T) {
	searcher := sitesearch.SearchFunc(func(_ context.Context, req sitesearch.Request) ([]models.SearchItem, error) {
		if req.Site.Name != "雪球" {
			return nil, nil
		}
		return []models.SearchItem{{
			Author:         "user",
			DatetimeLocal:  "2025-09-20 10:00",
			TitleOrSnippet: "昆仑万维 讨论",
			URL:            "https://xueqiu.com/post/1",
		}}, nil
	})
	agg := sitesearch.NewAggregator(sitesearch.DefaultSites(), searcher, time.Minute, zerolog.Nop())
	tk := NewToolkit(nil, nil, nil, agg, zerolog.Nop())

	out, err := tk.StockSocialSentiment(context.Background(), "300418.SZ", "昆仑万维", curr())
	if err != nil {
		t.Fatal(err)
	}

	var resp models.SearchResponse
	if err := json.Unmarshal([]byte(out), &resp); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if resp.Summary.SitesSearched != 10 || resp.Summary.UniqueItems != 1 {
		t.Errorf("unexpected summary: %+v", resp.Summary)
	}
	if resp.Items[0].Platform != "雪球" || resp.Items[0].Category != "social" {
		t.Errorf("item not tagged: %+v", resp.Items[0])
	}
}

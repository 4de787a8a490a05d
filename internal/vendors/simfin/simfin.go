// Package simfin serves fundamental statements from the pre-downloaded
// SimFin bulk dataset in the local data directory. Each statement type
// and reporting frequency is one semicolon-separated CSV covering every
// US company; fetchers pick the latest report for a symbol that was
// published on or before the query date. A missing dataset file yields
// empty data rather than an error, matching the other offline vendors.
package simfin

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/arhow/tradingagents/internal/vendor"
	"github.com/arhow/tradingagents/pkg/models"
	"github.com/arhow/tradingagents/pkg/utils"
)

const vendorName = "simfin"

// Store reads the offline SimFin datasets for one data directory.
type Store struct {
	dataDir string
}

func NewStore(dataDir string) *Store {
	return &Store{dataDir: dataDir}
}

// Fetchers returns every fetcher this vendor implements.
func (s *Store) Fetchers() []vendor.Fetcher {
	return []vendor.Fetcher{
		&statementFetcher{s, vendor.MethodBalanceSheet, "balance sheet", "balance_sheet", "balance"},
		&statementFetcher{s, vendor.MethodCashFlow, "cash flow statement", "cash_flow", "cashflow"},
		&statementFetcher{s, vendor.MethodIncomeStatement, "income statement", "income_statements", "income"},
	}
}

// statementFetcher handles one statement type; the three types share
// the dataset layout and differ only in directory and file naming.
type statementFetcher struct {
	store     *Store
	method    vendor.Method
	statement string
	dir       string
	file      string
}

func (f *statementFetcher) Vendor() string        { return vendorName }
func (f *statementFetcher) Method() vendor.Method { return f.method }

func (f *statementFetcher) Fetch(_ context.Context, q vendor.Query) (*vendor.Result, error) {
	freq := q.Freq
	if freq == "" {
		freq = "annual"
	}
	if freq != "annual" && freq != "quarterly" {
		return nil, fmt.Errorf("simfin: unknown reporting frequency %q", q.Freq)
	}

	path := filepath.Join(f.store.dataDir, "fundamental_data", "simfin_data_all",
		f.dir, "companies", "us", fmt.Sprintf("us-%s-%s.csv", f.file, freq))

	st, err := latestStatement(path, q.Symbol, utils.FormatDate(q.EndDate))
	if err != nil {
		return nil, err
	}
	if st != nil {
		st.Statement = f.statement
		st.Freq = freq
	}
	return &vendor.Result{Data: st}, nil
}

// Dataset metadata columns. Everything else is a statement line item.
const (
	colTicker       = "Ticker"
	colSimFinID     = "SimFinId"
	colCurrency     = "Currency"
	colFiscalYear   = "Fiscal Year"
	colFiscalPeriod = "Fiscal Period"
	colReportDate   = "Report Date"
	colPublishDate  = "Publish Date"
)

// latestStatement scans one dataset CSV for the symbol's report with
// the newest publish date not after currDate. Returns nil when the
// file is absent or no report qualifies.
func latestStatement(path, symbol, currDate string) (*models.FinancialStatement, error) {
	file, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("simfin: %w", err)
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.Comma = ';'
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("simfin: read header %s: %w", path, err)
	}
	idx := make(map[string]int, len(header))
	for i, name := range header {
		idx[name] = i
	}

	ticker := strings.ToUpper(symbol)
	var best []string
	var bestPublish string
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("simfin: read %s: %w", path, err)
		}
		if field(rec, idx, colTicker) != ticker {
			continue
		}
		publish := day(field(rec, idx, colPublishDate))
		if publish == "" || publish > currDate {
			continue
		}
		if publish > bestPublish {
			best, bestPublish = rec, publish
		}
	}
	if best == nil {
		return nil, nil
	}

	st := &models.FinancialStatement{
		Symbol:       ticker,
		Currency:     field(best, idx, colCurrency),
		FiscalYear:   field(best, idx, colFiscalYear),
		FiscalPeriod: field(best, idx, colFiscalPeriod),
		ReportDate:   day(field(best, idx, colReportDate)),
		PublishDate:  bestPublish,
	}
	for i, name := range header {
		switch name {
		case colTicker, colSimFinID, colCurrency, colFiscalYear,
			colFiscalPeriod, colReportDate, colPublishDate:
			continue
		}
		if i < len(best) {
			st.Lines = append(st.Lines, models.StatementLine{Name: name, Value: best[i]})
		}
	}
	return st, nil
}

func field(rec []string, idx map[string]int, name string) string {
	i, ok := idx[name]
	if !ok || i >= len(rec) {
		return ""
	}
	return rec[i]
}

// day truncates a date cell to its YYYY-MM-DD prefix; some dataset
// exports carry a time component.
func day(s string) string {
	if len(s) > 10 {
		return s[:10]
	}
	return s
}

package finnhub

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/arhow/tradingagents/internal/vendor"
	"github.com/arhow/tradingagents/pkg/models"
)

func writeDataset(t *testing.T, dir, dataset, ticker, content string) {
	t.Helper()
	path := filepath.Join(dir, "finnhub_data", dataset)
	if err := os.MkdirAll(path, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(path, ticker+"_data.json"), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func query(symbol string) vendor.Query {
	return vendor.Query{
		Symbol:    symbol,
		StartDate: time.Date(2025, 9, 14, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2025, 9, 21, 0, 0, 0, 0, time.UTC),
	}
}

func TestNewsFilteredToWindow(t *testing.T) {
	dir := t.TempDir()
	writeDataset(t, dir, "news_data", "AAPL", `{
		"2025-09-10": [{"headline": "too early", "summary": "s", "source": "x", "url": "u1"}],
		"2025-09-15": [{"headline": "in window", "summary": "s", "source": "x", "url": "u2"}],
		"2025-09-21": [{"headline": "last day", "summary": "s", "source": "x", "url": "u3"}],
		"2025-09-22": [{"headline": "too late", "summary": "s", "source": "x", "url": "u4"}]
	}`)

	res, err := (&newsFetcher{NewStore(dir)}).Fetch(context.Background(), query("AAPL"))
	if err != nil {
		t.Fatal(err)
	}
	articles := res.Articles()
	if len(articles) != 2 {
		t.Fatalf("got %d articles, want 2", len(articles))
	}
	if articles[0].Title != "in window" || articles[1].Title != "last day" {
		t.Errorf("unexpected titles: %q, %q", articles[0].Title, articles[1].Title)
	}
}

func TestMissingFileYieldsEmpty(t *testing.T) {
	store := NewStore(t.TempDir())

	res, err := (&newsFetcher{store}).Fetch(context.Background(), query("MSFT"))
	if err != nil {
		t.Fatal(err)
	}
	if got := res.Articles(); len(got) != 0 {
		t.Fatalf("got %d articles, want 0 for a missing file", len(got))
	}
}

func TestInsiderSentimentRange(t *testing.T) {
	dir := t.TempDir()
	writeDataset(t, dir, "insider_senti", "AAPL", `{
		"2025-09-15": [{"year": 2025, "month": 9, "change": -1200, "mspr": -0.42}]
	}`)

	res, err := (&insiderSentimentFetcher{NewStore(dir)}).Fetch(context.Background(), query("AAPL"))
	if err != nil {
		t.Fatal(err)
	}
	out, ok := res.Data.([]models.InsiderSentiment)
	if !ok {
		t.Fatalf("unexpected payload type %T", res.Data)
	}
	if len(out) != 1 {
		t.Fatalf("got %d entries, want 1", len(out))
	}
	if out[0].Year != 2025 || out[0].Month != 9 || out[0].MSPR != -0.42 {
		t.Errorf("unexpected entry: %+v", out[0])
	}
	if out[0].Symbol != "AAPL" {
		t.Errorf("symbol = %q, want AAPL", out[0].Symbol)
	}
}

func TestInsiderTransactionsRange(t *testing.T) {
	dir := t.TempDir()
	writeDataset(t, dir, "insider_trans", "AAPL", `{
		"2025-09-16": [{"name": "DOE JANE", "share": 1000, "change": -500,
			"filingDate": "2025-09-16", "transactionDate": "2025-09-14",
			"transactionCode": "S", "transactionPrice": 182.4}]
	}`)

	res, err := (&insiderTransactionsFetcher{NewStore(dir)}).Fetch(context.Background(), query("AAPL"))
	if err != nil {
		t.Fatal(err)
	}
	out, ok := res.Data.([]models.InsiderTransaction)
	if !ok {
		t.Fatalf("unexpected payload type %T", res.Data)
	}
	if len(out) != 1 || out[0].Name != "DOE JANE" || out[0].TransactionCode != "S" {
		t.Fatalf("unexpected entries: %+v", out)
	}
}

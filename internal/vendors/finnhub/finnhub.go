// Package finnhub serves pre-downloaded Finnhub datasets from the local
// data directory. Each dataset is a JSON object keyed by date with a
// list of entries per day; fetchers slice out the requested window. A
// missing file means the symbol simply was not downloaded and yields
// empty data rather than an error.
package finnhub

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/arhow/tradingagents/internal/vendor"
	"github.com/arhow/tradingagents/pkg/utils"
)

const vendorName = "finnhub"

// Store reads the offline Finnhub datasets for one data directory.
type Store struct {
	dataDir string
}

func NewStore(dataDir string) *Store {
	return &Store{dataDir: dataDir}
}

// Fetchers returns every fetcher this vendor implements.
func (s *Store) Fetchers() []vendor.Fetcher {
	return []vendor.Fetcher{
		&newsFetcher{s},
		&insiderSentimentFetcher{s},
		&insiderTransactionsFetcher{s},
	}
}

// readRange loads {dataDir}/finnhub_data/{dataset}/{ticker}_data.json
// and decodes the per-date entry lists for dates inside [start, end]
// into out, which must be a map[string][]T pointer.
func readRange(s *Store, dataset string, q vendor.Query, out any) error {
	ticker := strings.ToUpper(q.Symbol)
	path := filepath.Join(s.dataDir, "finnhub_data", dataset, ticker+"_data.json")

	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("finnhub %s: %w", dataset, err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("finnhub %s: parse %s: %w", dataset, path, err)
	}
	return nil
}

// inWindow reports whether the YYYY-MM-DD key falls inside the query
// window. Comparison is lexicographic, which is safe for this layout.
func inWindow(dateKey string, q vendor.Query) bool {
	return dateKey >= utils.FormatDate(q.StartDate) && dateKey <= utils.FormatDate(q.EndDate)
}

package sitesearch

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/arhow/tradingagents/pkg/models"
)

func asOf() time.Time {
	return time.Date(2025, 9, 21, 0, 0, 0, 0, time.UTC)
}

func item(dt, url string) models.SearchItem {
	return models.SearchItem{
		Author:         "user",
		DatetimeLocal:  dt,
		TitleOrSnippet: "昆仑万维 讨论",
		URL:            url,
	}
}

func TestSearchMergesAcrossSites(t *testing.T) {
	sites := DefaultSites()
	if len(sites) != 10 {
		t.Fatalf("expected 10 default sites, got %d", len(sites))
	}

	// Three sites return two items each; one URL is shared between two
	// sites, so six found collapse to five unique.
	shared := "https://xueqiu.com/post/1"
	perSite := map[string][]models.SearchItem{
		"雪球": {
			item("2025-09-20 10:00", shared),
			item("2025-09-19 09:00", "https://xueqiu.com/post/2"),
		},
		"东方财富股吧": {
			item("2025-09-18 08:00", "https://guba.eastmoney.com/post/3"),
			item("2025-09-20 11:00", shared),
		},
		"财联社": {
			item("2025-09-21 07:30", "https://cls.cn/article/4"),
			item("2025-09-15 23:59", "https://cls.cn/article/5"),
		},
	}

	searcher := SearchFunc(func(_ context.Context, req Request) ([]models.SearchItem, error) {
		return perSite[req.Site.Name], nil
	})
	agg := NewAggregator(sites, searcher, time.Minute, zerolog.Nop())

	resp, err := agg.Search(context.Background(), "300418.SZ", "昆仑万维", asOf())
	if err != nil {
		t.Fatal(err)
	}

	s := resp.Summary
	if s.TotalItemsFound != 6 {
		t.Errorf("total_items_found = %d, want 6", s.TotalItemsFound)
	}
	if s.UniqueItems != 5 {
		t.Errorf("unique_items = %d, want 5", s.UniqueItems)
	}
	if s.SitesSearched != 10 {
		t.Errorf("sites_searched = %d, want 10", s.SitesSearched)
	}
	if s.DateRange != "2025-09-14 to 2025-09-21" {
		t.Errorf("date_range = %q", s.DateRange)
	}
	if len(s.SearchDetails) != 10 {
		t.Fatalf("search_details has %d entries, want 10", len(s.SearchDetails))
	}
	for _, d := range s.SearchDetails {
		want := len(perSite[d.Site])
		if d.FoundCount != want {
			t.Errorf("site %s found_count = %d, want %d", d.Site, d.FoundCount, want)
		}
	}

	if len(resp.Items) != 5 {
		t.Fatalf("got %d items, want 5", len(resp.Items))
	}
	for i := 1; i < len(resp.Items); i++ {
		if resp.Items[i].DatetimeLocal < resp.Items[i-1].DatetimeLocal {
			t.Fatalf("items not in ascending time order: %q after %q",
				resp.Items[i].DatetimeLocal, resp.Items[i-1].DatetimeLocal)
		}
	}
}

func TestSearchDedupFirstOccurrenceWins(t *testing.T) {
	sites := []Site{
		{Name: "first", Category: CategorySocial},
		{Name: "second", Category: CategoryNews},
	}
	searcher := SearchFunc(func(_ context.Context, req Request) ([]models.SearchItem, error) {
		it := item("2025-09-20 10:00", "https://example.com/dup")
		it.Author = req.Site.Name
		return []models.SearchItem{it}, nil
	})
	agg := NewAggregator(sites, searcher, time.Minute, zerolog.Nop())

	resp, err := agg.Search(context.Background(), "300418.SZ", "昆仑万维", asOf())
	if err != nil {
		t.Fatal(err)
	}
	if len(resp.Items) != 1 {
		t.Fatalf("got %d items, want 1", len(resp.Items))
	}
	if resp.Items[0].Author != "first" || resp.Items[0].Platform != "first" {
		t.Errorf("dedup must keep the first occurrence, kept %+v", resp.Items[0])
	}
}

func TestSearchSiteFailureIsContained(t *testing.T) {
	sites := []Site{
		{Name: "broken", Category: CategoryNews},
		{Name: "healthy", Category: CategorySocial},
	}
	searcher := SearchFunc(func(_ context.Context, req Request) ([]models.SearchItem, error) {
		if req.Site.Name == "broken" {
			return nil, errors.New("upstream timeout")
		}
		return []models.SearchItem{item("2025-09-20 10:00", "https://ok/1")}, nil
	})
	agg := NewAggregator(sites, searcher, time.Minute, zerolog.Nop())

	resp, err := agg.Search(context.Background(), "300418.SZ", "昆仑万维", asOf())
	if err != nil {
		t.Fatal(err)
	}
	if len(resp.Items) != 1 {
		t.Fatalf("got %d items, want 1 from the healthy site", len(resp.Items))
	}

	var broken *models.SiteSearchDetail
	for i := range resp.Summary.SearchDetails {
		if resp.Summary.SearchDetails[i].Site == "broken" {
			broken = &resp.Summary.SearchDetails[i]
		}
	}
	if broken == nil {
		t.Fatal("missing detail entry for the failed site")
	}
	if broken.FoundCount != 0 || broken.Error == "" {
		t.Errorf("failed site detail = %+v, want zero count with error marker", *broken)
	}
}

func TestSearchDiscardsOutOfWindowAndUnparsable(t *testing.T) {
	sites := []Site{{Name: "one", Category: CategoryNews}}
	searcher := SearchFunc(func(_ context.Context, _ Request) ([]models.SearchItem, error) {
		return []models.SearchItem{
			item("2025-09-20 10:00", "https://ok/in"),
			item("2025-08-01 10:00", "https://ok/old"),
			item("someday", "https://ok/bad"),
			item("2025年09月19日", "https://ok/cn"),
		}, nil
	})
	agg := NewAggregator(sites, searcher, time.Minute, zerolog.Nop())

	resp, err := agg.Search(context.Background(), "300418.SZ", "昆仑万维", asOf())
	if err != nil {
		t.Fatal(err)
	}
	if len(resp.Items) != 2 {
		t.Fatalf("got %d items, want 2", len(resp.Items))
	}
	if resp.Items[0].DatetimeLocal != "2025-09-19 00:00" {
		t.Errorf("date-only timestamp not normalized to midnight: %q", resp.Items[0].DatetimeLocal)
	}
	if resp.Summary.TotalItemsFound != 2 {
		t.Errorf("total_items_found = %d, want 2 after filtering", resp.Summary.TotalItemsFound)
	}
}

func TestSearchNoSites(t *testing.T) {
	agg := NewAggregator(nil, SearchFunc(func(context.Context, Request) ([]models.SearchItem, error) {
		return nil, nil
	}), time.Minute, zerolog.Nop())

	_, err := agg.Search(context.Background(), "300418.SZ", "昆仑万维", asOf())
	if !errors.Is(err, ErrNoSites) {
		t.Fatalf("expected ErrNoSites, got %v", err)
	}
}

func TestSearchRunsSitesConcurrently(t *testing.T) {
	const n = 10
	sites := make([]Site, n)
	for i := range sites {
		sites[i] = Site{Name: fmt.Sprintf("site-%d", i), Category: CategoryNews}
	}

	// Every call blocks until all n have started. A sequential
	// aggregator would stall on the first site and hit the timeout.
	started := make(chan struct{}, n)
	release := make(chan struct{})
	searcher := SearchFunc(func(ctx context.Context, _ Request) ([]models.SearchItem, error) {
		started <- struct{}{}
		select {
		case <-release:
			return nil, nil
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	})
	agg := NewAggregator(sites, searcher, 2*time.Second, zerolog.Nop())

	go func() {
		for i := 0; i < n; i++ {
			<-started
		}
		close(release)
	}()

	resp, err := agg.Search(context.Background(), "300418.SZ", "昆仑万维", asOf())
	if err != nil {
		t.Fatal(err)
	}
	if resp.Summary.SitesSearched != n {
		t.Fatalf("sites_searched = %d, want %d", resp.Summary.SitesSearched, n)
	}
}

func TestParseItemsCodeFence(t *testing.T) {
	text := "```json\n[{\"author\":\"a\",\"datetime_local\":\"2025-09-20 10:00\",\"title_or_snippet\":\"x\",\"url\":\"https://u/1\"}]\n```"
	items, err := parseItems(text)
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 1 || items[0].URL != "https://u/1" {
		t.Fatalf("unexpected items: %+v", items)
	}
}

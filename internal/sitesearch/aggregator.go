package sitesearch

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/arhow/tradingagents/pkg/models"
	"github.com/arhow/tradingagents/pkg/utils"
)

// windowDays is how far back a search looks from the as-of date.
const windowDays = 7

// ErrNoSites means the aggregator was built without any sites.
var ErrNoSites = errors.New("sitesearch: no sites configured")

// Aggregator fans one query out to every configured site concurrently
// and merges the results. Per-site failures degrade to an empty result
// for that site; only setup problems fail the whole call.
type Aggregator struct {
	sites       []Site
	searcher    SiteSearcher
	siteTimeout time.Duration
	log         zerolog.Logger
}

func NewAggregator(sites []Site, searcher SiteSearcher, siteTimeout time.Duration, log zerolog.Logger) *Aggregator {
	if siteTimeout <= 0 {
		siteTimeout = 60 * time.Second
	}
	return &Aggregator{
		sites:       sites,
		searcher:    searcher,
		siteTimeout: siteTimeout,
		log:         log.With().Str("component", "sitesearch").Logger(),
	}
}

// siteOutcome is the raw result of one site's search before merging.
type siteOutcome struct {
	items []models.SearchItem
	err   error
}

// Search queries every site for discussion of the company over the
// seven days ending at asOf and returns the merged response.
func (a *Aggregator) Search(ctx context.Context, symbol, name string, asOf time.Time) (*models.SearchResponse, error) {
	if len(a.sites) == 0 {
		return nil, ErrNoSites
	}
	if a.searcher == nil {
		return nil, errors.New("sitesearch: no searcher configured")
	}

	end := utils.Day(asOf)
	start := end.AddDate(0, 0, -windowDays)
	keywords := []string{name, symbol, "股票", "讨论", "帖子", "快讯", "公告"}

	var variants []string
	for _, day := range utils.DaysBetween(start, end) {
		variants = append(variants, utils.DateStringVariants(day)...)
	}

	outcomes := make([]siteOutcome, len(a.sites))
	g, gctx := errgroup.WithContext(ctx)
	for i, site := range a.sites {
		g.Go(func() error {
			sctx, cancel := context.WithTimeout(gctx, a.siteTimeout)
			defer cancel()

			items, err := a.searcher.Search(sctx, Request{
				Site:         site,
				Symbol:       symbol,
				CompanyName:  name,
				Start:        start,
				End:          end,
				Keywords:     keywords,
				DateVariants: variants,
			})
			if err != nil {
				a.log.Warn().Str("site", site.Name).Err(err).Msg("site search failed")
				outcomes[i] = siteOutcome{err: err}
				return nil
			}
			outcomes[i] = siteOutcome{items: a.normalize(site, items, start, end)}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return a.merge(outcomes, start, end), nil
}

// normalize tags items with their site, normalizes timestamps, and
// drops items outside the window or with unusable timestamps.
func (a *Aggregator) normalize(site Site, items []models.SearchItem, start, end time.Time) []models.SearchItem {
	startKey := utils.FormatDate(start)
	endKey := utils.FormatDate(end)

	kept := items[:0]
	for _, item := range items {
		ts, ok := normalizeDatetime(item.DatetimeLocal)
		if !ok {
			a.log.Debug().Str("site", site.Name).Str("datetime", item.DatetimeLocal).
				Msg("dropping item with unusable timestamp")
			continue
		}
		if day := ts[:10]; day < startKey || day > endKey {
			continue
		}
		item.DatetimeLocal = ts
		item.Platform = site.Name
		item.Category = site.Category
		kept = append(kept, item)
	}
	return kept
}

// merge dedups by URL with the first occurrence winning, sorts by
// normalized timestamp, and builds the summary.
func (a *Aggregator) merge(outcomes []siteOutcome, start, end time.Time) *models.SearchResponse {
	total := 0
	seen := make(map[string]bool)
	items := make([]models.SearchItem, 0)
	details := make([]models.SiteSearchDetail, len(a.sites))

	for i, out := range outcomes {
		details[i] = models.SiteSearchDetail{
			Site:       a.sites[i].Name,
			FoundCount: len(out.items),
		}
		if out.err != nil {
			details[i].Error = out.err.Error()
		}
		total += len(out.items)

		for _, item := range out.items {
			if item.URL != "" && seen[item.URL] {
				continue
			}
			if item.URL != "" {
				seen[item.URL] = true
			}
			items = append(items, item)
		}
	}

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].DatetimeLocal < items[j].DatetimeLocal
	})

	return &models.SearchResponse{
		Items: items,
		Summary: models.SearchSummary{
			TotalItemsFound: total,
			UniqueItems:     len(items),
			SitesSearched:   len(a.sites),
			DateRange:       utils.FormatDate(start) + " to " + utils.FormatDate(end),
			SearchDetails:   details,
		},
	}
}

// datetimeLayouts are the timestamp shapes sites commonly return, tried
// in order.
var datetimeLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02T15:04:05",
	"2006/01/02 15:04",
	"2006年01月02日 15:04",
	"2006年1月2日 15:04",
	"2006-01-02",
	"2006/01/02",
	"2006年01月02日",
	"2006年1月2日",
}

// normalizeDatetime rewrites a loose timestamp as "YYYY-MM-DD HH:MM".
// Date-only values get a midnight time. Unparsable values are rejected.
func normalizeDatetime(s string) (string, bool) {
	for _, layout := range datetimeLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t.Format("2006-01-02 15:04"), true
		}
	}
	return "", false
}

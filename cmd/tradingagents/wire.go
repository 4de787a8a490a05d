package main

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/arhow/tradingagents/internal/config"
	"github.com/arhow/tradingagents/internal/dataflows"
	"github.com/arhow/tradingagents/internal/httpx"
	"github.com/arhow/tradingagents/internal/indicator"
	"github.com/arhow/tradingagents/internal/sitesearch"
	"github.com/arhow/tradingagents/internal/timeseries"
	"github.com/arhow/tradingagents/internal/vendor"
	"github.com/arhow/tradingagents/internal/vendors/finnhub"
	"github.com/arhow/tradingagents/internal/vendors/googlenews"
	"github.com/arhow/tradingagents/internal/vendors/reddit"
	"github.com/arhow/tradingagents/internal/vendors/rssnews"
	"github.com/arhow/tradingagents/internal/vendors/simfin"
	"github.com/arhow/tradingagents/internal/vendors/tushare"
	"github.com/arhow/tradingagents/internal/vendors/yfinance"
)

// buildToolkit assembles the full data stack from configuration: vendor
// registry and router, time-series cache, indicator engine, site-search
// aggregator, and the toolkit facade over all of them.
func buildToolkit(cfg *config.Config, log zerolog.Logger) (*dataflows.Toolkit, *vendor.Router, error) {
	client := httpx.NewClient(time.Duration(cfg.Vendors.TimeoutSec) * time.Second)

	reg := vendor.NewRegistry()
	register := func(fetchers []vendor.Fetcher) {
		for _, f := range fetchers {
			reg.Register(f)
		}
	}
	register(tushare.NewClient(client, cfg.Vendors.TushareToken).Fetchers())
	register(yfinance.NewClient(client).Fetchers())
	register(finnhub.NewStore(cfg.Data.Dir).Fetchers())
	register(simfin.NewStore(cfg.Data.Dir).Fetchers())
	register(googlenews.NewClient(client).Fetchers())
	register(rssnews.NewClient(cfg.News.Feeds, log).Fetchers())
	register(reddit.NewStore(cfg.Data.Dir).Fetchers())

	router := vendor.NewRouter(reg, vendor.Preferences{
		Default:    cfg.Vendors.Default,
		Categories: cfg.Vendors.Categories,
		Tools:      cfg.Vendors.Methods,
	}, log)

	fetch := func(ctx context.Context, symbol string, start, end time.Time) (timeseries.Series, error) {
		res, err := router.Route(ctx, vendor.MethodDailyPrice, vendor.Query{
			Symbol:    symbol,
			StartDate: start,
			EndDate:   end,
		})
		if err != nil {
			return nil, err
		}
		return timeseries.Series(res.Bars()), nil
	}
	cache, err := timeseries.NewCache(cfg.Data.CacheDir, fetch, log)
	if err != nil {
		return nil, nil, err
	}

	engine := indicator.NewEngine(indicator.Options{
		Cache:          cache,
		DataDir:        cfg.Data.Dir,
		OfflinePattern: cfg.Data.OfflinePattern,
		LookbackYears:  cfg.Indicator.LookbackYears,
	}, log)

	sites := cfg.Search.Sites
	if len(sites) == 0 {
		sites = sitesearch.DefaultSites()
	}
	searcher := sitesearch.NewBackendSearcher(client, cfg.Search.BackendURL, cfg.Search.APIKey, cfg.Search.Model)
	agg := sitesearch.NewAggregator(sites, searcher,
		time.Duration(cfg.Search.SiteTimeoutSec)*time.Second, log)

	return dataflows.NewToolkit(router, cache, engine, agg, log), router, nil
}

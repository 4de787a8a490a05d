package indicator

import (
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/arhow/tradingagents/internal/timeseries"
	"github.com/arhow/tradingagents/pkg/models"
	"github.com/arhow/tradingagents/pkg/utils"
)

// NotATradingDay is the value rendered for a date with no bar in the
// series, weekends and exchange holidays alike.
const NotATradingDay = "N/A: Not a trading day (weekend or holiday)"

// UnsupportedIndicatorError reports a lookup for an indicator outside
// the supported set.
type UnsupportedIndicatorError struct {
	Name string
}

func (e *UnsupportedIndicatorError) Error() string {
	return fmt.Sprintf("indicator %s is not supported, choose from: %s",
		e.Name, strings.Join(Supported(), ", "))
}

// Point is one point-in-time indicator value. TradingDay is false when
// the requested date has no bar, in which case Value is undefined.
type Point struct {
	Symbol     string
	Indicator  string
	Date       time.Time
	Value      float64
	TradingDay bool
}

// String renders the point the way reports print it.
func (p Point) String() string {
	if !p.TradingDay {
		return NotATradingDay
	}
	if math.IsNaN(p.Value) {
		return "N/A"
	}
	return fmt.Sprintf("%.2f", p.Value)
}

// Options configures an Engine.
type Options struct {
	// Cache serves online series requests.
	Cache *timeseries.Cache
	// DataDir holds pre-fetched offline series files.
	DataDir string
	// OfflinePattern is the offline file name with a {symbol}
	// placeholder. Defaults to "{symbol}.csv".
	OfflinePattern string
	// LookbackYears bounds the online series window. Defaults to 15.
	LookbackYears int
	// Now overrides the clock, for tests.
	Now func() time.Time
}

// Engine answers indicator lookups against cached or offline series.
type Engine struct {
	cache         *timeseries.Cache
	dataDir       string
	pattern       string
	lookbackYears int
	now           func() time.Time
	log           zerolog.Logger
}

func NewEngine(opts Options, log zerolog.Logger) *Engine {
	if opts.OfflinePattern == "" {
		opts.OfflinePattern = "{symbol}.csv"
	}
	if opts.LookbackYears <= 0 {
		opts.LookbackYears = 15
	}
	if opts.Now == nil {
		opts.Now = utils.NowCST
	}
	return &Engine{
		cache:         opts.Cache,
		dataDir:       opts.DataDir,
		pattern:       opts.OfflinePattern,
		lookbackYears: opts.LookbackYears,
		now:           opts.Now,
		log:           log.With().Str("component", "indicator").Logger(),
	}
}

// Value computes one indicator for symbol on the given calendar day.
// Online lookups pull the series through the cache over a lookback
// window ending today; offline lookups read the pre-fetched series
// file. A date with no bar yields a non-trading-day point, not an
// error.
func (e *Engine) Value(ctx context.Context, symbol, name string, date time.Time, online bool) (Point, error) {
	compute, ok := columns[name]
	if !ok {
		return Point{}, &UnsupportedIndicatorError{Name: name}
	}

	series, err := e.loadSeries(ctx, symbol, online)
	if err != nil {
		return Point{}, err
	}

	p := Point{Symbol: symbol, Indicator: name, Date: utils.Day(date)}
	idx := indexForDay(series, date)
	if idx < 0 {
		return p, nil
	}

	col := compute(series)
	p.Value = col[idx]
	p.TradingDay = true
	return p, nil
}

// WindowReport renders the indicator over the lookBackDays days ending
// at curr, newest first, trading days only, followed by the usage
// description.
func (e *Engine) WindowReport(ctx context.Context, symbol, name string, curr time.Time, lookBackDays int, online bool) (string, error) {
	compute, ok := columns[name]
	if !ok {
		return "", &UnsupportedIndicatorError{Name: name}
	}

	series, err := e.loadSeries(ctx, symbol, online)
	if err != nil {
		return "", err
	}
	col := compute(series)

	start := utils.Day(curr).AddDate(0, 0, -lookBackDays)
	var b strings.Builder
	fmt.Fprintf(&b, "## %s values from %s to %s:\n\n",
		name, utils.FormatDate(start), utils.FormatDate(curr))

	for day := utils.Day(curr); !day.Before(start); day = day.AddDate(0, 0, -1) {
		idx := indexForDay(series, day)
		if idx < 0 {
			continue
		}
		v := "N/A"
		if !math.IsNaN(col[idx]) {
			v = fmt.Sprintf("%.2f", col[idx])
		}
		fmt.Fprintf(&b, "%s: %s\n", utils.FormatDate(day), v)
	}

	b.WriteString("\n")
	b.WriteString(Describe(name))
	return b.String(), nil
}

func (e *Engine) loadSeries(ctx context.Context, symbol string, online bool) (timeseries.Series, error) {
	if online {
		if e.cache == nil {
			return nil, fmt.Errorf("indicator: no cache configured for online lookups")
		}
		end := utils.Day(e.now())
		start := end.AddDate(-e.lookbackYears, 0, 0)
		return e.cache.GetOrFetch(ctx, symbol, start, end)
	}

	name := strings.ReplaceAll(e.pattern, "{symbol}", symbol)
	f, err := os.Open(filepath.Join(e.dataDir, name))
	if err != nil {
		return nil, fmt.Errorf("indicator: offline series for %s: %w", symbol, err)
	}
	defer f.Close()

	series, err := timeseries.ReadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("indicator: offline series for %s: %w", symbol, err)
	}
	return series, nil
}

// indexForDay finds the bar on the same calendar day, ignoring
// time-of-day and zone. Series dates are ascending, so the formatted
// dates sort lexicographically.
func indexForDay(series []models.Bar, date time.Time) int {
	key := utils.FormatDate(date)
	i := sort.Search(len(series), func(i int) bool {
		return utils.FormatDate(series[i].Date) >= key
	})
	if i < len(series) && utils.FormatDate(series[i].Date) == key {
		return i
	}
	return -1
}

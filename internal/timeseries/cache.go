package timeseries

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/arhow/tradingagents/pkg/utils"
)

// ErrEmptySeries means the vendor returned no bars for the window.
// Nothing is cached in that case.
var ErrEmptySeries = errors.New("empty series")

// FetchFunc retrieves a daily price series for the window from a remote
// vendor. The cache calls it only on a miss.
type FetchFunc func(ctx context.Context, symbol string, start, end time.Time) (Series, error)

// Cache is the on-disk time-series cache. Entries are flat CSV files
// named {symbol}-data-{start}-{end}.csv so they are directly
// inspectable and shareable across runs.
type Cache struct {
	dir   string
	fetch FetchFunc
	log   zerolog.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewCache creates a cache rooted at dir, creating it if needed.
func NewCache(dir string, fetch FetchFunc, log zerolog.Logger) (*Cache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}
	return &Cache{
		dir:   dir,
		fetch: fetch,
		log:   log.With().Str("component", "timeseries-cache").Logger(),
		locks: make(map[string]*sync.Mutex),
	}, nil
}

// Key returns the cache filename for a (symbol, window) triple. This is
// the persisted-state contract other components rely on.
func Key(symbol string, start, end time.Time) string {
	return fmt.Sprintf("%s-data-%s-%s.csv", symbol, utils.FormatDate(start), utils.FormatDate(end))
}

// Path returns the absolute path of the cache entry for the key.
func (c *Cache) Path(symbol string, start, end time.Time) string {
	return filepath.Join(c.dir, Key(symbol, start, end))
}

// GetOrFetch returns the series for the window. A present cache file is
// trusted without any staleness check; otherwise the window is fetched,
// persisted atomically, and returned. Repeated calls with identical
// arguments return byte-identical series until the cache directory is
// externally cleared.
func (c *Cache) GetOrFetch(ctx context.Context, symbol string, start, end time.Time) (Series, error) {
	key := Key(symbol, start, end)

	// Serialize concurrent first-time requests for the same key so the
	// window is fetched and written exactly once.
	lock := c.keyLock(key)
	lock.Lock()
	defer lock.Unlock()

	path := filepath.Join(c.dir, key)
	if series, err := c.load(path); err == nil {
		c.log.Debug().Str("key", key).Int("rows", len(series)).Msg("cache hit")
		return series, nil
	} else if !os.IsNotExist(err) {
		return nil, err
	}

	series, err := c.fetch(ctx, symbol, start, end)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", key, err)
	}
	if len(series) == 0 {
		// Nothing to persist; an empty file would later read as a valid
		// empty window and hide the absence from retries.
		return nil, fmt.Errorf("fetch %s: %w", key, ErrEmptySeries)
	}

	if err := c.persist(path, series); err != nil {
		return nil, err
	}
	c.log.Info().Str("key", key).Int("rows", len(series)).Msg("cached remote fetch")
	return series, nil
}

func (c *Cache) load(path string) (Series, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	series, err := ReadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("corrupt cache file %s: %w", filepath.Base(path), err)
	}
	return series, nil
}

// persist writes to a temporary file in the same directory and renames
// it into place, so a crash mid-write never leaves a truncated file
// that later reads would treat as cached-and-valid.
func (c *Cache) persist(path string, series Series) error {
	tmp, err := os.CreateTemp(c.dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := series.WriteCSV(tmp); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync %s: %w", filepath.Base(path), err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", filepath.Base(path), err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("publish %s: %w", filepath.Base(path), err)
	}
	return nil
}

func (c *Cache) keyLock(key string) *sync.Mutex {
	c.mu.Lock()
	defer c.mu.Unlock()
	lock, ok := c.locks[key]
	if !ok {
		lock = &sync.Mutex{}
		c.locks[key] = lock
	}
	return lock
}

// Package reddit serves pre-downloaded Reddit posts from the local data
// directory. Posts are grouped by category (company_news, global_news)
// into one JSONL file per subreddit; fetchers walk the query window day
// by day, keep the top-voted posts of each day, and for company news
// filter posts to mentions of the symbol or company name. A missing
// category directory yields empty data rather than an error.
package reddit

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/arhow/tradingagents/internal/vendor"
	"github.com/arhow/tradingagents/pkg/models"
	"github.com/arhow/tradingagents/pkg/utils"
)

const vendorName = "reddit"

// Store reads the offline Reddit archives for one data directory.
type Store struct {
	dataDir string
}

func NewStore(dataDir string) *Store {
	return &Store{dataDir: dataDir}
}

// Fetchers returns every fetcher this vendor implements.
func (s *Store) Fetchers() []vendor.Fetcher {
	return []vendor.Fetcher{
		&companyNewsFetcher{s},
		&globalNewsFetcher{s},
	}
}

// post mirrors one JSONL line as written by the downloader.
type post struct {
	CreatedUTC  int64  `json:"created_utc"`
	ID          string `json:"id"`
	Title       string `json:"title"`
	Selftext    string `json:"selftext"`
	Ups         int    `json:"ups"`
	NumComments int    `json:"num_comments"`
	URL         string `json:"url"`
	Subreddit   string `json:"subreddit"`
	Author      string `json:"author"`
}

// readCategory loads every subreddit archive under
// {dataDir}/reddit_data/{category}. Unreadable lines are skipped; the
// archives are append-only downloads and a torn last line is common.
func (s *Store) readCategory(category string) ([]post, error) {
	dir := filepath.Join(s.dataDir, "reddit_data", category)
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reddit %s: %w", category, err)
	}

	var posts []post
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".jsonl") {
			continue
		}
		file, err := os.Open(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("reddit %s: %w", category, err)
		}
		subreddit := strings.TrimSuffix(entry.Name(), ".jsonl")
		scanner := bufio.NewScanner(file)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for scanner.Scan() {
			var p post
			if err := json.Unmarshal(scanner.Bytes(), &p); err != nil {
				continue
			}
			if p.Subreddit == "" {
				p.Subreddit = subreddit
			}
			posts = append(posts, p)
		}
		file.Close()
	}
	return posts, nil
}

// topPerDay walks the window day by day and keeps the limit top-voted
// matching posts of each day, in ascending day order. Days are taken in
// UTC, the timezone the archives were downloaded in.
func topPerDay(posts []post, q vendor.Query, match func(post) bool) []models.NewsArticle {
	byDay := map[string][]post{}
	for _, p := range posts {
		if p.CreatedUTC == 0 || !match(p) {
			continue
		}
		day := time.Unix(p.CreatedUTC, 0).UTC().Format(utils.DateLayout)
		byDay[day] = append(byDay[day], p)
	}

	var articles []models.NewsArticle
	for _, day := range utils.DaysBetween(q.StartDate, q.EndDate) {
		dayPosts := byDay[utils.FormatDate(day)]
		sort.SliceStable(dayPosts, func(i, j int) bool {
			return dayPosts[i].Ups > dayPosts[j].Ups
		})
		if q.Limit > 0 && len(dayPosts) > q.Limit {
			dayPosts = dayPosts[:q.Limit]
		}
		for _, p := range dayPosts {
			articles = append(articles, models.NewsArticle{
				Title:       p.Title,
				Content:     p.Selftext,
				URL:         p.URL,
				Source:      "r/" + p.Subreddit,
				Type:        "reddit",
				Symbol:      q.Symbol,
				PublishedAt: time.Unix(p.CreatedUTC, 0).UTC(),
			})
		}
	}
	return articles
}

// --- Company news fetcher ---

type companyNewsFetcher struct {
	store *Store
}

func (f *companyNewsFetcher) Vendor() string        { return vendorName }
func (f *companyNewsFetcher) Method() vendor.Method { return vendor.MethodNews }

func (f *companyNewsFetcher) Fetch(_ context.Context, q vendor.Query) (*vendor.Result, error) {
	posts, err := f.store.readCategory("company_news")
	if err != nil {
		return nil, err
	}

	keys := []string{strings.ToLower(q.Symbol)}
	if q.CompanyName != "" {
		keys = append(keys, strings.ToLower(q.CompanyName))
	}
	if code, _, found := strings.Cut(q.Symbol, "."); found && code != "" {
		keys = append(keys, strings.ToLower(code))
	}

	articles := topPerDay(posts, q, func(p post) bool {
		text := strings.ToLower(p.Title + " " + p.Selftext)
		for _, key := range keys {
			if key != "" && strings.Contains(text, key) {
				return true
			}
		}
		return false
	})
	return &vendor.Result{Data: articles}, nil
}

// --- Global news fetcher ---

type globalNewsFetcher struct {
	store *Store
}

func (f *globalNewsFetcher) Vendor() string        { return vendorName }
func (f *globalNewsFetcher) Method() vendor.Method { return vendor.MethodGlobalNews }

func (f *globalNewsFetcher) Fetch(_ context.Context, q vendor.Query) (*vendor.Result, error) {
	posts, err := f.store.readCategory("global_news")
	if err != nil {
		return nil, err
	}
	articles := topPerDay(posts, q, func(post) bool { return true })
	return &vendor.Result{Data: articles}, nil
}

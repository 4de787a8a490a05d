package models

// SearchItem is one normalized sentiment/news hit from a site-scoped
// search. DatetimeLocal is always normalized to "YYYY-MM-DD HH:MM" in
// exchange-local time before items are merged, so a lexicographic sort
// is also a chronological sort. The URL is the identity key used for
// cross-site deduplication.
type SearchItem struct {
	Author         string `json:"author"`
	DatetimeLocal  string `json:"datetime_local"`
	TitleOrSnippet string `json:"title_or_snippet"`
	URL            string `json:"url"`
	Platform       string `json:"platform"`
	Category       string `json:"category"` // "social" or "news"
}

// SiteSearchDetail is the per-site breakdown inside a SearchSummary.
type SiteSearchDetail struct {
	Site       string `json:"site"`
	FoundCount int    `json:"found_count"`
	Error      string `json:"error,omitempty"`
}

// SearchSummary describes a completed aggregation run. It is built only
// after every per-site sub-query has finished.
type SearchSummary struct {
	TotalItemsFound int                `json:"total_items_found"`
	UniqueItems     int                `json:"unique_items"`
	SitesSearched   int                `json:"sites_searched"`
	DateRange       string             `json:"date_range"` // "YYYY-MM-DD to YYYY-MM-DD"
	SearchDetails   []SiteSearchDetail `json:"search_details"`
}

// SearchResponse is the aggregation output consumed by the agent layer.
type SearchResponse struct {
	Items   []SearchItem  `json:"items"`
	Summary SearchSummary `json:"summary"`
}

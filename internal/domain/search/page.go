package search

import "github.com/mediacloud/news-search-api/internal/domain"

// Page is one window of formatted results plus the token that resumes after
// it. Resume is empty when the page came back short of the requested size.
type Page struct {
	Articles []domain.Article
	Resume   string
}

// Overview summarizes a query: best-estimate total, facet counts, and a small
// sample of top matches.
type Overview struct {
	Query       string           `json:"query"`
	Total       int64            `json:"total"`
	DailyCounts map[string]int64 `json:"dailycounts"`
	TopLangs    map[string]int64 `json:"toplangs"`
	TopDomains  map[string]int64 `json:"topdomains"`
	TopTLDs     map[string]int64 `json:"toptlds"`
	Matches     []domain.Article `json:"matches"`
}

// TermCounts maps a term to its document count.
type TermCounts map[string]int64

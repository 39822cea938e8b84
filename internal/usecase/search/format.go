package search

import (
	"github.com/mediacloud/news-search-api/internal/domain"
	"github.com/mediacloud/news-search-api/internal/es"
)

// dateOnlyLen truncates datetime strings to their date part.
const dateOnlyLen = 10

func formatHits(hits []es.Hit, expanded bool) []domain.Article {
	out := make([]domain.Article, len(hits))
	for i, h := range hits {
		out[i] = formatHit(h, expanded)
	}
	return out
}

// formatHit maps a raw backend hit to the public article shape. The ID is
// derived from the URL, not the backend's own identifier.
func formatHit(h es.Hit, expanded bool) domain.Article {
	src := h.Source
	a := domain.Article{
		ID:              domain.ArticleID(src.URL),
		Title:           src.ArticleTitle,
		NormalizedTitle: src.NormalizedArticleTitle,
		PublicationDate: truncateDay(src.PublicationDate),
		IndexedDate:     src.IndexedDate,
		Language:        src.Language,
		FullLanguage:    src.FullLanguage,
		CanonicalDomain: src.CanonicalDomain,
		URL:             src.URL,
		NormalizedURL:   src.NormalizedURL,
		OriginalURL:     src.OriginalURL,
	}
	if expanded {
		a.TextContent = src.TextContent
		a.TextExtraction = src.TextExtraction
	}
	return a
}

func truncateDay(s string) string {
	if len(s) > dateOnlyLen {
		return s[:dateOnlyLen]
	}
	return s
}

func bucketCounts(agg *es.BucketAgg) map[string]int64 {
	out := make(map[string]int64, len(agg.Buckets))
	for _, b := range agg.Buckets {
		out[b.Label()] = b.DocCount
	}
	return out
}

// dayCounts flattens a day-histogram aggregation, keyed by calendar day.
func dayCounts(agg *es.BucketAgg) map[string]int64 {
	out := make(map[string]int64, len(agg.Buckets))
	for _, b := range agg.Buckets {
		out[truncateDay(b.Label())] = b.DocCount
	}
	return out
}

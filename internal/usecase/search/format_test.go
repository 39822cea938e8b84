package search

import (
	"testing"

	"github.com/mediacloud/news-search-api/internal/es"
)

func TestFormatHit(t *testing.T) {
	hit := es.Hit{
		ID: "backend-id",
		Source: es.Source{
			ArticleTitle:           "A Title",
			NormalizedArticleTitle: "a title",
			PublicationDate:        "2023-11-01T12:34:56Z",
			IndexedDate:            "2023-11-02T00:00:00Z",
			Language:               "en",
			FullLanguage:           "English",
			CanonicalDomain:        "example.com",
			URL:                    "http://example.com/a-title",
			NormalizedURL:          "http://example.com/a-title",
			OriginalURL:            "http://example.com/a-title?utm=x",
			TextContent:            "body text",
			TextExtraction:         "trafilatura",
		},
	}

	a := formatHit(hit, false)

	if a.PublicationDate != "2023-11-01" {
		t.Errorf("PublicationDate = %q, want date only", a.PublicationDate)
	}
	if a.ID == "" || a.ID == "backend-id" {
		t.Errorf("ID = %q, want URL-derived hash", a.ID)
	}
	if a.TextContent != "" || a.TextExtraction != "" {
		t.Error("unexpanded hit must not expose text fields")
	}
	if a.Title != "A Title" || a.CanonicalDomain != "example.com" {
		t.Errorf("unexpected article: %+v", a)
	}

	exp := formatHit(hit, true)
	if exp.TextContent != "body text" || exp.TextExtraction != "trafilatura" {
		t.Errorf("expanded hit must expose text fields, got %+v", exp)
	}
}

func TestFormatHit_ShortDateUntouched(t *testing.T) {
	a := formatHit(es.Hit{Source: es.Source{PublicationDate: "2023-11-01"}}, false)
	if a.PublicationDate != "2023-11-01" {
		t.Errorf("PublicationDate = %q", a.PublicationDate)
	}
}

func TestDayCounts(t *testing.T) {
	agg := bucketAgg(t,
		`{"key_as_string":"2023-11-01T00:00:00.000Z","key":1698796800000,"doc_count":42}`,
		`{"key_as_string":"2023-11-02T00:00:00.000Z","key":1698883200000,"doc_count":7}`)

	counts := dayCounts(agg)
	if counts["2023-11-01"] != 42 || counts["2023-11-02"] != 7 {
		t.Errorf("unexpected day counts: %v", counts)
	}
}

func TestBucketCounts(t *testing.T) {
	agg := bucketAgg(t,
		`{"key":"en","doc_count":100}`,
		`{"key":"es","doc_count":20}`)

	counts := bucketCounts(agg)
	if counts["en"] != 100 || counts["es"] != 20 {
		t.Errorf("unexpected counts: %v", counts)
	}
}

package es

import "encoding/json"

// Response is the decoded subset of an Elasticsearch search response the
// proxy consumes.
type Response struct {
	Hits         Hits          `json:"hits"`
	Aggregations *Aggregations `json:"aggregations"`
}

// Hits holds the matching documents and the (possibly capped) total.
type Hits struct {
	Total Total `json:"total"`
	Hits  []Hit `json:"hits"`
}

// Total is the backend-reported hit count. The backend caps the exact count
// past a threshold, reflected in Relation ("eq" vs "gte").
type Total struct {
	Value    int64  `json:"value"`
	Relation string `json:"relation"`
}

// Hit is a single matching document with its backend identifier, source
// projection, and sort key values when the query was sorted.
type Hit struct {
	ID     string            `json:"_id"`
	Source Source            `json:"_source"`
	Sort   []json.RawMessage `json:"sort"`
}

// SortKey returns the backend's native representation of the first sort
// value as a string, reporting false when the hit carries none.
func (h Hit) SortKey() (string, bool) {
	if len(h.Sort) == 0 {
		return "", false
	}
	var s string
	if err := json.Unmarshal(h.Sort[0], &s); err == nil {
		return s, true
	}
	// Numeric sort keys (epoch millis) keep their decimal spelling.
	return string(h.Sort[0]), true
}

// Source is the fixed attribute set of an indexed news document.
type Source struct {
	ArticleTitle           string `json:"article_title"`
	NormalizedArticleTitle string `json:"normalized_article_title"`
	PublicationDate        string `json:"publication_date"`
	IndexedDate            string `json:"indexed_date"`
	Language               string `json:"language"`
	FullLanguage           string `json:"full_language"`
	CanonicalDomain        string `json:"canonical_domain"`
	URL                    string `json:"url"`
	NormalizedURL          string `json:"normalized_url"`
	OriginalURL            string `json:"original_url"`
	TextContent            string `json:"text_content"`
	TextExtraction         string `json:"text_extraction"`
}

// Aggregations names the aggregation results this proxy ever requests.
type Aggregations struct {
	DailyCounts *BucketAgg `json:"dailycounts"`
	TopLangs    *BucketAgg `json:"toplangs"`
	TopDomains  *BucketAgg `json:"topdomains"`
	TopTLDs     *BucketAgg `json:"toptlds"`
	Sample      *SampleAgg `json:"sample"`
}

// SampleAgg is a sampler aggregation wrapping the term aggregation.
type SampleAgg struct {
	DocCount int64      `json:"doc_count"`
	TopTerms *BucketAgg `json:"topterms"`
}

// BucketAgg is a bucketed aggregation result.
type BucketAgg struct {
	Buckets []Bucket `json:"buckets"`
}

// Bucket is a single (key, count) aggregation record.
type Bucket struct {
	Key         json.RawMessage `json:"key"`
	KeyAsString string          `json:"key_as_string"`
	DocCount    int64           `json:"doc_count"`
}

// Label returns the bucket key as a string, preferring the backend's
// formatted representation when present.
func (b Bucket) Label() string {
	if b.KeyAsString != "" {
		return b.KeyAsString
	}
	var s string
	if err := json.Unmarshal(b.Key, &s); err == nil {
		return s
	}
	return string(b.Key)
}

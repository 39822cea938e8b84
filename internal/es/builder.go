package es

import (
	domsearch "github.com/mediacloud/news-search-api/internal/domain/search"
)

// Aggregation sizing. Term aggregations run inside a sampler so per-shard
// cost stays bounded regardless of how broad the query is.
const (
	facetSize             = 100
	termsSize             = 200
	termsMinDocCount      = 10
	termsShardMinDocCount = 5
	samplerShardSize      = 500
	rareSamplerShardSize  = 10

	// rareTermsExclude suppresses numeric noise in rare-term buckets.
	rareTermsExclude = "[0-9].*"

	// sortValueFormat makes date sort keys come back as strings that can be
	// fed straight back through search_after.
	sortValueFormat = "basic_date_time_no_millis"
)

var sourceFields = []string{
	"article_title",
	"normalized_article_title",
	"publication_date",
	"indexed_date",
	"language",
	"full_language",
	"canonical_domain",
	"url",
	"normalized_url",
	"original_url",
}

var expandedSourceFields = append(append([]string{}, sourceFields...),
	"text_content", "text_extraction")

// Builder constructs Elasticsearch request bodies for a single query string.
type Builder struct {
	query string
}

// NewBuilder creates a query builder for the given full-text query.
func NewBuilder(query string) *Builder {
	return &Builder{query: query}
}

// basic is the full-text query every request shape starts from: query_string
// over the article text with AND as the default operator.
func (b *Builder) basic(expanded bool) map[string]any {
	source := sourceFields
	if expanded {
		source = expandedSourceFields
	}
	return map[string]any{
		"_source": source,
		"query": map[string]any{
			"query_string": map[string]any{
				"default_field":    "text_content",
				"default_operator": "AND",
				"query":            b.query,
			},
		},
	}
}

// Overview builds the faceted summary request: a daily histogram plus
// top languages, domains, and TLDs, with exact total-hit tracking.
func (b *Builder) Overview() map[string]any {
	body := b.basic(false)
	body["track_total_hits"] = true
	body["aggregations"] = map[string]any{
		"dailycounts": map[string]any{
			"date_histogram": map[string]any{
				"field":             "publication_date",
				"calendar_interval": "day",
				"min_doc_count":     1,
			},
		},
		"toplangs": map[string]any{
			"terms": map[string]any{"field": "language.keyword", "size": facetSize},
		},
		"topdomains": map[string]any{
			"terms": map[string]any{"field": "canonical_domain.keyword", "size": facetSize},
		},
		"toptlds": map[string]any{
			"terms": map[string]any{"field": "tld", "size": facetSize},
		},
	}
	return body
}

// Terms builds a sampled term aggregation over one field, with no document
// source in the response.
func (b *Builder) Terms(field string, kind domsearch.AggregatorKind) map[string]any {
	var agg map[string]any
	shardSize := samplerShardSize

	switch kind {
	case domsearch.AggregatorSignificant:
		agg = map[string]any{
			"significant_terms": map[string]any{
				"field":               field,
				"size":                termsSize,
				"min_doc_count":       termsMinDocCount,
				"shard_min_doc_count": termsShardMinDocCount,
			},
		}
	case domsearch.AggregatorRare:
		agg = map[string]any{
			"rare_terms": map[string]any{
				"field":   field,
				"exclude": rareTermsExclude,
			},
		}
		shardSize = rareSamplerShardSize
	default:
		agg = map[string]any{
			"terms": map[string]any{
				"field":               field,
				"size":                termsSize,
				"min_doc_count":       termsMinDocCount,
				"shard_min_doc_count": termsShardMinDocCount,
			},
		}
	}

	body := b.basic(false)
	body["_source"] = false
	body["track_total_hits"] = false
	body["aggregations"] = map[string]any{
		"sample": map[string]any{
			"sampler":      map[string]any{"shard_size": shardSize},
			"aggregations": map[string]any{"topterms": agg},
		},
	}
	return body
}

// Paged builds the result-listing request. Resuming uses search_after with
// the decoded cursor boundary rather than an offset: offset paging is
// disallowed by the backend past large result counts.
func (b *Builder) Paged(req domsearch.Request, size int) map[string]any {
	body := b.basic(req.Expanded())
	body["size"] = size
	body["track_total_hits"] = false
	body["sort"] = map[string]any{
		string(req.SortField()): map[string]any{
			"order":  string(req.SortOrder()),
			"format": sortValueFormat,
		},
	}
	if boundary, ok := req.Resume(); ok {
		body["search_after"] = []any{boundary}
	}
	return body
}

// Article builds an exact lookup on the backend document identifier with the
// expanded field projection.
func (b *Builder) Article() map[string]any {
	return map[string]any{
		"_source": expandedSourceFields,
		"query": map[string]any{
			"match": map[string]any{"_id": b.query},
		},
	}
}

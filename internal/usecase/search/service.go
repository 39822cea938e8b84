package search

import (
	"context"
	"fmt"

	"github.com/mediacloud/news-search-api/internal/domain"
	domsearch "github.com/mediacloud/news-search-api/internal/domain/search"
	"github.com/mediacloud/news-search-api/internal/es"
)

// Service runs collection-scoped queries against the search backend: faceted
// overviews, paged result listings, sampled term aggregations, and article
// lookups. It holds no per-request state; every call builds a fresh request.
type Service struct {
	backend         Backend
	colls           CollectionChecker
	termFields      map[string]struct{}
	termAggregators map[domsearch.AggregatorKind]struct{}
	defaultPageSize int
}

// New creates a search service with default term options and page size.
func New(backend Backend, colls CollectionChecker) *Service {
	return &Service{
		backend: backend,
		colls:   colls,
		termFields: map[string]struct{}{
			"article_title": {},
			"text_content":  {},
		},
		termAggregators: map[domsearch.AggregatorKind]struct{}{
			domsearch.AggregatorTop: {},
		},
		defaultPageSize: domsearch.DefaultPageSize,
	}
}

// WithTermOptions replaces the term field and aggregator allow-lists.
func (s *Service) WithTermOptions(fields, aggregators []string) *Service {
	s.termFields = make(map[string]struct{}, len(fields))
	for _, f := range fields {
		s.termFields[f] = struct{}{}
	}
	s.termAggregators = make(map[domsearch.AggregatorKind]struct{}, len(aggregators))
	for _, a := range aggregators {
		s.termAggregators[domsearch.AggregatorKind(a)] = struct{}{}
	}
	return s
}

// WithDefaultPageSize sets the page size used when requests leave it unset.
func (s *Service) WithDefaultPageSize(n int) *Service {
	if n > 0 {
		s.defaultPageSize = n
	}
	return s
}

// Overview reports summary statistics for a query: a best-estimate total,
// daily counts, and top languages/domains/TLDs, plus a small sample of
// matches.
func (s *Service) Overview(ctx context.Context, collection, q string) (domsearch.Overview, error) {
	if err := s.checkCollection(collection); err != nil {
		return domsearch.Overview{}, err
	}

	resp, err := s.backend.Search(ctx, collection, es.NewBuilder(q).Overview())
	if err != nil {
		return domsearch.Overview{}, err
	}
	if len(resp.Hits.Hits) == 0 {
		return domsearch.Overview{}, domain.ErrNotFound
	}

	aggs := resp.Aggregations
	if aggs == nil || aggs.DailyCounts == nil || aggs.TopLangs == nil ||
		aggs.TopDomains == nil || aggs.TopTLDs == nil {
		return domsearch.Overview{}, fmt.Errorf("%w: overview aggregations missing", domain.ErrBackend)
	}

	// The backend's total-hit counter is capped, while aggregation bucket
	// sums are not; the larger of the two is the better estimate.
	total := resp.Hits.Total.Value
	var tldSum int64
	for _, b := range aggs.TopTLDs.Buckets {
		tldSum += b.DocCount
	}
	if tldSum > total {
		total = tldSum
	}

	return domsearch.Overview{
		Query:       q,
		Total:       total,
		DailyCounts: dayCounts(aggs.DailyCounts),
		TopLangs:    bucketCounts(aggs.TopLangs),
		TopDomains:  bucketCounts(aggs.TopDomains),
		TopTLDs:     bucketCounts(aggs.TopTLDs),
		Matches:     formatHits(resp.Hits.Hits, false),
	}, nil
}

// Result returns one page of formatted results. A resume cursor is attached
// iff the page came back full: the requested (or default) size. That is a
// heuristic, not a backend-confirmed has-more signal, so the final page of a
// result set whose size is an exact multiple of the page size yields one
// extra empty-page round trip.
func (s *Service) Result(
	ctx context.Context, collection string, req domsearch.Request,
) (domsearch.Page, error) {
	if err := s.checkCollection(collection); err != nil {
		return domsearch.Page{}, err
	}

	size := req.PageSize()
	if size == 0 {
		size = s.defaultPageSize
	}

	resp, err := s.backend.Search(ctx, collection, es.NewBuilder(req.Query()).Paged(req, size))
	if err != nil {
		return domsearch.Page{}, err
	}
	if len(resp.Hits.Hits) == 0 {
		return domsearch.Page{}, domain.ErrNotFound
	}

	page := domsearch.Page{Articles: formatHits(resp.Hits.Hits, req.Expanded())}

	if len(resp.Hits.Hits) == size {
		last := resp.Hits.Hits[len(resp.Hits.Hits)-1]
		key, ok := last.SortKey()
		if !ok {
			return domsearch.Page{}, fmt.Errorf("%w: hit missing sort key", domain.ErrBackend)
		}
		page.Resume = domsearch.EncodeCursor(key)
	}

	return page, nil
}

// Terms returns term frequencies over one field of the matching documents.
func (s *Service) Terms(
	ctx context.Context, collection, q, field string, kind domsearch.AggregatorKind,
) (domsearch.TermCounts, error) {
	if err := s.checkCollection(collection); err != nil {
		return nil, err
	}
	if _, ok := s.termFields[field]; !ok {
		return nil, fmt.Errorf("%w: unknown term field %q", domain.ErrInvalidRequest, field)
	}
	if _, ok := s.termAggregators[kind]; !ok || !kind.IsValid() {
		return nil, fmt.Errorf("%w: unknown term aggregator %q", domain.ErrInvalidRequest, kind)
	}

	resp, err := s.backend.Search(ctx, collection, es.NewBuilder(q).Terms(field, kind))
	if err != nil {
		return nil, err
	}

	if resp.Aggregations == nil || resp.Aggregations.Sample == nil ||
		resp.Aggregations.Sample.TopTerms == nil {
		return nil, fmt.Errorf("%w: term aggregation missing", domain.ErrBackend)
	}

	buckets := resp.Aggregations.Sample.TopTerms.Buckets
	if len(resp.Hits.Hits) == 0 || len(buckets) == 0 {
		return nil, domain.ErrNotFound
	}

	return domsearch.TermCounts(bucketCounts(resp.Aggregations.Sample.TopTerms)), nil
}

// Article fetches one article by its backend identifier, always expanded.
func (s *Service) Article(ctx context.Context, collection, id string) (domain.Article, error) {
	if err := s.checkCollection(collection); err != nil {
		return domain.Article{}, err
	}

	resp, err := s.backend.Search(ctx, collection, es.NewBuilder(id).Article())
	if err != nil {
		return domain.Article{}, err
	}
	if len(resp.Hits.Hits) == 0 {
		return domain.Article{}, fmt.Errorf("%w: article %s", domain.ErrNotFound, id)
	}

	return formatHit(resp.Hits.Hits[0], true), nil
}

func (s *Service) checkCollection(collection string) error {
	if !s.colls.IsAllowed(collection) {
		return fmt.Errorf("%w: unknown collection %q", domain.ErrNotFound, collection)
	}
	return nil
}

package chi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/mediacloud/news-search-api/internal/es"
	collectionuc "github.com/mediacloud/news-search-api/internal/usecase/collection"
	healthuc "github.com/mediacloud/news-search-api/internal/usecase/health"
	searchuc "github.com/mediacloud/news-search-api/internal/usecase/search"
)

type fakeBackend struct {
	resp es.Response
	err  error
}

func (f *fakeBackend) Search(_ context.Context, _ string, _ map[string]any) (es.Response, error) {
	return f.resp, f.err
}

func (f *fakeBackend) Ping(_ context.Context) error { return f.err }

type fakeLister struct {
	names []string
}

func (f *fakeLister) ListIndices(_ context.Context, _ string) ([]string, error) {
	return f.names, nil
}

func newTestRouter(t *testing.T, backend *fakeBackend) chi.Router {
	t.Helper()

	colls := collectionuc.New(&fakeLister{names: []string{"mc_search", "mc_search-*"}}, "mc_search", zap.NewNop())
	if err := colls.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh: %v", err)
	}

	srv := NewServer(
		colls,
		searchuc.New(backend, colls).WithDefaultPageSize(2),
		healthuc.New(backend),
		zap.NewNop(),
	)

	r := chi.NewRouter()
	srv.Register(r)
	return r
}

func searchResponse(n int, withSort bool) es.Response {
	hits := make([]es.Hit, n)
	for i := range hits {
		hits[i] = es.Hit{
			ID: fmt.Sprintf("doc-%d", i),
			Source: es.Source{
				ArticleTitle:    fmt.Sprintf("Title %d", i),
				PublicationDate: "2023-11-01T00:00:00Z",
				URL:             fmt.Sprintf("http://example.com/%d", i),
			},
		}
		if withSort {
			hits[i].Sort = []json.RawMessage{json.RawMessage(`"20231101T000000Z"`)}
		}
	}
	return es.Response{Hits: es.Hits{Hits: hits}}
}

func TestListCollections(t *testing.T) {
	r := newTestRouter(t, &fakeBackend{})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/collections", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var names []string
	if err := json.Unmarshal(rec.Body.Bytes(), &names); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(names) != 2 || names[0] != "mc_search" {
		t.Errorf("unexpected collections: %v", names)
	}
}

func TestSearchResult_FullPageSetsResumeHeader(t *testing.T) {
	r := newTestRouter(t, &fakeBackend{resp: searchResponse(2, true)})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/mc_search/search/result?q=test", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if rec.Header().Get("x-resume-token") == "" {
		t.Error("full page must set x-resume-token")
	}

	var articles []map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &articles); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(articles) != 2 {
		t.Fatalf("expected 2 articles, got %d", len(articles))
	}
	if articles[0]["publication_date"] != "2023-11-01" {
		t.Errorf("publication_date = %v", articles[0]["publication_date"])
	}
	if _, ok := articles[0]["text_content"]; ok {
		t.Error("unexpanded result must omit text_content")
	}
}

func TestSearchResult_ShortPageNoHeader(t *testing.T) {
	r := newTestRouter(t, &fakeBackend{resp: searchResponse(1, true)})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/mc_search/search/result?q=test", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if rec.Header().Get("x-resume-token") != "" {
		t.Error("short page must not set x-resume-token")
	}
}

func TestSearchResult_Post(t *testing.T) {
	r := newTestRouter(t, &fakeBackend{resp: searchResponse(1, true)})

	body := strings.NewReader(`{"q":"test","expanded":false,"page_size":5}`)
	req := httptest.NewRequest(http.MethodPost, "/v1/mc_search/search/result", body)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
}

func TestSearchResult_UnknownCollection(t *testing.T) {
	r := newTestRouter(t, &fakeBackend{resp: searchResponse(1, true)})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/hidden-index/search/result?q=test", nil))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	var er errorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &er); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if er.Code != "not_found" {
		t.Errorf("code = %q", er.Code)
	}
}

func TestSearchResult_BadPageSize(t *testing.T) {
	r := newTestRouter(t, &fakeBackend{})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/mc_search/search/result?q=test&page_size=lots", nil))

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestSearchResult_BadResumeToken(t *testing.T) {
	r := newTestRouter(t, &fakeBackend{})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/mc_search/search/result?q=test&resume=%25%25bad", nil))

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestSearchOverview(t *testing.T) {
	resp := searchResponse(1, false)
	resp.Hits.Total = es.Total{Value: 100, Relation: "eq"}
	resp.Aggregations = &es.Aggregations{
		DailyCounts: &es.BucketAgg{},
		TopLangs:    &es.BucketAgg{},
		TopDomains:  &es.BucketAgg{},
		TopTLDs: &es.BucketAgg{Buckets: []es.Bucket{
			{Key: json.RawMessage(`"com"`), DocCount: 60},
		}},
	}
	r := newTestRouter(t, &fakeBackend{resp: resp})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/mc_search/search/overview?q=test", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var ov map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &ov); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if ov["total"] != float64(100) {
		t.Errorf("total = %v", ov["total"])
	}
	if ov["query"] != "test" {
		t.Errorf("query = %v", ov["query"])
	}
}

func TestSearchOverview_NoMatches(t *testing.T) {
	r := newTestRouter(t, &fakeBackend{})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/mc_search/search/overview?q=nothing", nil))

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestTerms(t *testing.T) {
	resp := searchResponse(1, false)
	resp.Aggregations = &es.Aggregations{
		Sample: &es.SampleAgg{
			TopTerms: &es.BucketAgg{Buckets: []es.Bucket{
				{Key: json.RawMessage(`"climate"`), DocCount: 12},
			}},
		},
	}
	r := newTestRouter(t, &fakeBackend{resp: resp})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/mc_search/terms/article_title/top?q=test", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var counts map[string]int64
	if err := json.Unmarshal(rec.Body.Bytes(), &counts); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if counts["climate"] != 12 {
		t.Errorf("counts = %v", counts)
	}
}

func TestTerms_UnknownAggregator(t *testing.T) {
	r := newTestRouter(t, &fakeBackend{})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/mc_search/terms/article_title/median?q=test", nil))

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestGetArticle_NotFound(t *testing.T) {
	r := newTestRouter(t, &fakeBackend{})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/mc_search/article/nope", nil))

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestGetArticle(t *testing.T) {
	resp := searchResponse(1, false)
	resp.Hits.Hits[0].Source.TextContent = "full text"
	r := newTestRouter(t, &fakeBackend{resp: resp})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/mc_search/article/doc-0", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var a map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &a); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if a["text_content"] != "full text" {
		t.Error("article lookup must include text_content")
	}
}

func TestHealth(t *testing.T) {
	r := newTestRouter(t, &fakeBackend{})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d", rec.Code)
	}
}

func TestRoot(t *testing.T) {
	r := newTestRouter(t, &fakeBackend{})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var info map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &info); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if info["name"] != "news-search-api" {
		t.Errorf("name = %q", info["name"])
	}
}

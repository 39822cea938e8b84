package chi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/mediacloud/news-search-api/internal/domain"
	domsearch "github.com/mediacloud/news-search-api/internal/domain/search"
	collectionuc "github.com/mediacloud/news-search-api/internal/usecase/collection"
	healthuc "github.com/mediacloud/news-search-api/internal/usecase/health"
	searchuc "github.com/mediacloud/news-search-api/internal/usecase/search"
	"github.com/mediacloud/news-search-api/internal/version"
)

// resumeTokenHeader carries the opaque continuation cursor on paged results.
const resumeTokenHeader = "x-resume-token"

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// errorResponse is the JSON error body.
type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Server exposes the query API over HTTP.
type Server struct {
	collections   *collectionuc.Service
	search        *searchuc.Service
	health        *healthuc.Service
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	collections *collectionuc.Service,
	search *searchuc.Service,
	health *healthuc.Service,
	logger *zap.Logger,
) *Server {
	s := &Server{
		collections: collections,
		search:      search,
		health:      health,
		logger:      logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrInvalidRequest, http.StatusBadRequest, "bad_request"),
		sentinelHandler(domain.ErrNotFound, http.StatusNotFound, "not_found"),
	}
	return s
}

// Register mounts all routes on the given router.
func (s *Server) Register(r chi.Router) {
	r.Get("/", s.Root)
	r.Get("/health", s.Health)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Get("/collections", s.ListCollections)
		r.Route("/{collection}", func(r chi.Router) {
			r.Get("/search/overview", s.SearchOverview)
			r.Post("/search/overview", s.SearchOverview)
			r.Get("/search/result", s.SearchResult)
			r.Post("/search/result", s.SearchResult)
			r.Get("/terms/{field}/{aggregator}", s.Terms)
			r.Post("/terms/{field}/{aggregator}", s.Terms)
			r.Get("/article/{id}", s.GetArticle)
		})
	})
}

// Root handles GET /.
func (s *Server) Root(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"name":    "news-search-api",
		"version": version.Version,
	})
}

// Health handles GET /health.
func (s *Server) Health(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	status := http.StatusOK
	if report.Status != healthuc.Healthy {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, map[string]any{
		"status": report.Status,
		"checks": report.Checks,
	})
}

// ListCollections handles GET /v1/collections.
func (s *Server) ListCollections(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.collections.Names())
}

// SearchOverview handles GET and POST /v1/{collection}/search/overview.
func (s *Server) SearchOverview(w http.ResponseWriter, r *http.Request) {
	params, err := queryParams(r)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	ov, err := s.search.Overview(r.Context(), chi.URLParam(r, "collection"), params.Query)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, ov)
}

// SearchResult handles GET and POST /v1/{collection}/search/result. The
// continuation cursor travels in the x-resume-token response header, not the
// body, so the body stays a plain article list.
func (s *Server) SearchResult(w http.ResponseWriter, r *http.Request) {
	params, err := queryParams(r)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	req, err := domsearch.NewRequest(
		params.Query, params.Expanded,
		params.SortField, params.SortOrder,
		params.PageSize, params.Resume,
	)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	page, err := s.search.Result(r.Context(), chi.URLParam(r, "collection"), req)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	if page.Resume != "" {
		w.Header().Set(resumeTokenHeader, page.Resume)
	}
	writeJSON(w, http.StatusOK, page.Articles)
}

// Terms handles GET and POST /v1/{collection}/terms/{field}/{aggregator}.
func (s *Server) Terms(w http.ResponseWriter, r *http.Request) {
	params, err := queryParams(r)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	counts, err := s.search.Terms(
		r.Context(),
		chi.URLParam(r, "collection"),
		params.Query,
		chi.URLParam(r, "field"),
		domsearch.AggregatorKind(chi.URLParam(r, "aggregator")),
	)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, counts)
}

// GetArticle handles GET /v1/{collection}/article/{id}.
func (s *Server) GetArticle(w http.ResponseWriter, r *http.Request) {
	article, err := s.search.Article(r.Context(), chi.URLParam(r, "collection"), chi.URLParam(r, "id"))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, article)
}

// searchParams is the common parameter set of the query endpoints, accepted
// as URL query parameters on GET and as a JSON body on POST.
type searchParams struct {
	Query     string `json:"q"`
	Resume    string `json:"resume"`
	Expanded  bool   `json:"expanded"`
	SortField string `json:"sort_field"`
	SortOrder string `json:"sort_order"`
	PageSize  int    `json:"page_size"`
}

func queryParams(r *http.Request) (searchParams, error) {
	if r.Method == http.MethodPost {
		var p searchParams
		if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
			return searchParams{}, errors.Join(domain.ErrInvalidRequest, err)
		}
		return p, nil
	}

	q := r.URL.Query()
	p := searchParams{
		Query:     q.Get("q"),
		Resume:    q.Get("resume"),
		Expanded:  q.Get("expanded") == "true" || q.Get("expanded") == "1",
		SortField: q.Get("sort_field"),
		SortOrder: q.Get("sort_order"),
	}
	if raw := q.Get("page_size"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return searchParams{}, errors.Join(domain.ErrInvalidRequest, err)
		}
		p.PageSize = n
	}
	return p, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{
		Code:    code,
		Message: message,
	})
}

func sentinelHandler(sentinel error, status int, code string) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	for _, h := range s.errorHandlers {
		if h(w, err, err.Error()) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
}

package search

import (
	"fmt"

	"github.com/mediacloud/news-search-api/internal/domain"
)

// DefaultPageSize is the page size used when a request does not specify one.
const DefaultPageSize = 1000

// SortField is a field results may be ordered by.
type SortField string

const (
	SortByPublicationDate SortField = "publication_date"
	SortByIndexedDate     SortField = "indexed_date"
)

// SortOrder is a sort direction.
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// Request is a validated paged-search specification. The resume value, when
// present, is the decoded sort-key boundary the backend resumes after.
type Request struct {
	query     string
	expanded  bool
	sortField SortField
	sortOrder SortOrder
	pageSize  int
	resume    string
	hasResume bool
}

// NewRequest validates and normalizes paged-search parameters.
// Defaults: sort by publication_date descending. A zero pageSize means
// "use the service default"; a negative one is rejected. The resume token,
// if given, must decode as a cursor.
func NewRequest(
	query string,
	expanded bool,
	sortField, sortOrder string,
	pageSize int,
	resumeToken string,
) (Request, error) {
	r := Request{
		query:     query,
		expanded:  expanded,
		sortField: SortByPublicationDate,
		sortOrder: SortDesc,
		pageSize:  pageSize,
	}

	switch SortField(sortField) {
	case "":
	case SortByPublicationDate, SortByIndexedDate:
		r.sortField = SortField(sortField)
	default:
		return Request{}, fmt.Errorf("%w: sort field must be one of %s, %s",
			domain.ErrInvalidRequest, SortByPublicationDate, SortByIndexedDate)
	}

	switch SortOrder(sortOrder) {
	case "":
	case SortAsc, SortDesc:
		r.sortOrder = SortOrder(sortOrder)
	default:
		return Request{}, fmt.Errorf("%w: sort order must be one of %s, %s",
			domain.ErrInvalidRequest, SortAsc, SortDesc)
	}

	if pageSize < 0 {
		return Request{}, fmt.Errorf("%w: page size must be greater than 0", domain.ErrInvalidRequest)
	}

	if resumeToken != "" {
		value, err := DecodeCursor(resumeToken)
		if err != nil {
			return Request{}, err
		}
		r.resume = value
		r.hasResume = true
	}

	return r, nil
}

// Query returns the full-text query string.
func (r *Request) Query() string { return r.query }

// Expanded reports whether the expanded field projection was requested.
func (r *Request) Expanded() bool { return r.expanded }

// SortField returns the validated sort field.
func (r *Request) SortField() SortField { return r.sortField }

// SortOrder returns the validated sort direction.
func (r *Request) SortOrder() SortOrder { return r.sortOrder }

// PageSize returns the requested page size, 0 when unspecified.
func (r *Request) PageSize() int { return r.pageSize }

// Resume returns the decoded sort-key boundary to resume after.
func (r *Request) Resume() (string, bool) { return r.resume, r.hasResume }

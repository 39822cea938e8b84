package domain

import "errors"

var (
	// ErrNotFound signals a query that matched nothing, or a missing
	// collection or article.
	ErrNotFound = errors.New("no results found")
	// ErrInvalidRequest signals a request rejected before any backend call.
	ErrInvalidRequest = errors.New("invalid request")
	// ErrBackend signals a transport failure or a malformed response from
	// the search backend.
	ErrBackend = errors.New("search backend error")
)

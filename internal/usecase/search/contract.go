package search

import (
	"context"

	"github.com/mediacloud/news-search-api/internal/es"
)

// Backend executes one structured search request against an index. It is the
// system's only blocking call; implementations own connection lifecycle and
// must report transport failures as domain.ErrBackend.
type Backend interface {
	Search(ctx context.Context, index string, body map[string]any) (es.Response, error)
}

// CollectionChecker validates collection names against the allow-list.
type CollectionChecker interface {
	IsAllowed(name string) bool
}

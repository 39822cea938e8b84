package collection

import "context"

// IndexLister reads the exposable index names from the search backend.
type IndexLister interface {
	ListIndices(ctx context.Context, prefix string) ([]string, error)
}

package search

// AggregatorKind selects the term aggregation strategy.
type AggregatorKind string

const (
	// AggregatorTop ranks terms by raw frequency in the matching set.
	AggregatorTop AggregatorKind = "top"
	// AggregatorSignificant ranks terms over-represented in the matching set
	// relative to the full corpus.
	AggregatorSignificant AggregatorKind = "significant"
	// AggregatorRare surfaces infrequent terms.
	AggregatorRare AggregatorKind = "rare"
)

// IsValid reports whether k names a known aggregation strategy.
func (k AggregatorKind) IsValid() bool {
	switch k {
	case AggregatorTop, AggregatorSignificant, AggregatorRare:
		return true
	}
	return false
}

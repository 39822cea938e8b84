package collection

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// Service holds the collection allow-list. The set of valid collections is
// not compiled in: it is discovered from the backend's live index listing,
// so membership is a runtime check against whatever Refresh last loaded.
type Service struct {
	lister IndexLister
	prefix string
	logger *zap.Logger

	mu      sync.RWMutex
	names   []string
	allowed map[string]struct{}
}

// New creates a collection service. Call Refresh before serving requests.
func New(lister IndexLister, prefix string, logger *zap.Logger) *Service {
	return &Service{
		lister:  lister,
		prefix:  prefix,
		logger:  logger,
		allowed: make(map[string]struct{}),
	}
}

// Refresh reloads the allow-list from the backend's index listing.
func (s *Service) Refresh(ctx context.Context) error {
	names, err := s.lister.ListIndices(ctx, s.prefix)
	if err != nil {
		return fmt.Errorf("refresh collections: %w", err)
	}

	allowed := make(map[string]struct{}, len(names))
	for _, n := range names {
		allowed[n] = struct{}{}
	}

	s.mu.Lock()
	s.names = names
	s.allowed = allowed
	s.mu.Unlock()

	s.logger.Info("exposed collections", zap.Strings("collections", names))
	return nil
}

// Names returns the exposed collection names in listing order.
func (s *Service) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, len(s.names))
	copy(out, s.names)
	return out
}

// IsAllowed reports whether name is an exposed collection.
func (s *Service) IsAllowed(name string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.allowed[name]
	return ok
}

package es

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"go.uber.org/zap"

	"github.com/mediacloud/news-search-api/internal/domain"
	"github.com/mediacloud/news-search-api/internal/metrics"
)

// Config holds Elasticsearch connection settings.
type Config struct {
	Addresses  []string
	MaxRetries int
}

// Client adapts the Elasticsearch API to the query-proxy's needs: executing
// structured search requests and listing the exposable indices. Connection
// lifecycle lives here; query construction and result shaping do not.
type Client struct {
	es     *elasticsearch.Client
	logger *zap.Logger
}

// NewClient creates an Elasticsearch client adapter.
func NewClient(cfg Config, logger *zap.Logger) (*Client, error) {
	esc, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses:  cfg.Addresses,
		MaxRetries: cfg.MaxRetries,
	})
	if err != nil {
		return nil, fmt.Errorf("create elasticsearch client: %w", err)
	}
	return &Client{es: esc, logger: logger}, nil
}

// Ping checks that the cluster answers an info request.
func (c *Client) Ping(ctx context.Context) error {
	res, err := c.es.Info(c.es.Info.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("elasticsearch info: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("elasticsearch info: %s", res.Status())
	}
	return nil
}

// WaitForReady blocks until the cluster responds, retrying on a fixed
// interval up to the given number of attempts.
func (c *Client) WaitForReady(ctx context.Context, attempts int, interval time.Duration) error {
	var lastErr error
	for i := 1; i <= attempts; i++ {
		lastErr = c.Ping(ctx)
		if lastErr == nil {
			return nil
		}
		c.logger.Info("elasticsearch not ready, retrying",
			zap.Int("attempt", i),
			zap.Int("max_attempts", attempts),
			zap.Error(lastErr),
		)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(interval):
		}
	}
	return fmt.Errorf("elasticsearch connection failed after %d attempts: %w", attempts, lastErr)
}

// Search executes one structured search request against an index.
func (c *Client) Search(ctx context.Context, index string, body map[string]any) (Response, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return Response{}, fmt.Errorf("encode search request: %w", err)
	}

	start := time.Now()
	res, err := c.es.Search(
		c.es.Search.WithContext(ctx),
		c.es.Search.WithIndex(index),
		c.es.Search.WithBody(bytes.NewReader(payload)),
	)
	if err != nil {
		metrics.ObserveBackendQuery(index, 0, time.Since(start))
		return Response{}, fmt.Errorf("%w: %v", domain.ErrBackend, err)
	}
	defer res.Body.Close()
	metrics.ObserveBackendQuery(index, res.StatusCode, time.Since(start))

	if res.IsError() {
		return Response{}, fmt.Errorf("%w: search on %s returned %s", domain.ErrBackend, index, res.Status())
	}

	var r Response
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return Response{}, fmt.Errorf("%w: decode search response: %v", domain.ErrBackend, err)
	}
	return r, nil
}

// ListIndices returns the indices and aliases the proxy may expose: names
// matching the prefix, every alias, and a trailing wildcard entry covering
// the whole prefix family.
func (c *Client) ListIndices(ctx context.Context, prefix string) ([]string, error) {
	res, err := c.es.Indices.Get([]string{"*"}, c.es.Indices.Get.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("%w: list indices: %v", domain.ErrBackend, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, fmt.Errorf("%w: list indices returned %s", domain.ErrBackend, res.Status())
	}

	var indices map[string]json.RawMessage
	if err := json.NewDecoder(res.Body).Decode(&indices); err != nil {
		return nil, fmt.Errorf("%w: decode index listing: %v", domain.ErrBackend, err)
	}

	seen := make(map[string]struct{})
	var names []string
	for name := range indices {
		if strings.HasPrefix(name, prefix) {
			names = append(names, name)
			seen[name] = struct{}{}
		}
	}
	sort.Strings(names)

	aliases, err := c.listAliases(ctx)
	if err != nil {
		return nil, err
	}
	for _, alias := range aliases {
		if _, ok := seen[alias]; !ok {
			names = append(names, alias)
			seen[alias] = struct{}{}
		}
	}

	names = append(names, prefix+"-*")
	return names, nil
}

func (c *Client) listAliases(ctx context.Context) ([]string, error) {
	res, err := c.es.Indices.GetAlias(c.es.Indices.GetAlias.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("%w: list aliases: %v", domain.ErrBackend, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, fmt.Errorf("%w: list aliases returned %s", domain.ErrBackend, res.Status())
	}

	var listing map[string]struct {
		Aliases map[string]json.RawMessage `json:"aliases"`
	}
	if err := json.NewDecoder(res.Body).Decode(&listing); err != nil {
		return nil, fmt.Errorf("%w: decode alias listing: %v", domain.ErrBackend, err)
	}

	seen := make(map[string]struct{})
	var names []string
	for _, entry := range listing {
		for alias := range entry.Aliases {
			if _, ok := seen[alias]; !ok {
				names = append(names, alias)
				seen[alias] = struct{}{}
			}
		}
	}
	sort.Strings(names)
	return names, nil
}

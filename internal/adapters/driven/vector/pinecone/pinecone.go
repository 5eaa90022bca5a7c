// Package pinecone provides the networked primary vector backend,
// speaking the Pinecone data-plane REST API.
package pinecone

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/citeview-labs/citeview-cli/internal/core/domain"
	"github.com/citeview-labs/citeview-cli/internal/core/ports/driven"
	"github.com/citeview-labs/citeview-cli/internal/logger"
)

// BackendName identifies this backend in logs and stats.
const BackendName = "pinecone"

// Ensure Client implements the interface.
var _ driven.VectorBackend = (*Client)(nil)

// Default configuration values.
const (
	DefaultTimeout = 30 * time.Second

	// DefaultUpsertBatch is the vectors-per-request batch size.
	// Pinecone recommends batches of at most 100.
	DefaultUpsertBatch = 100

	// Conservative data-plane rate limit.
	requestsPerSecond = 10.0
	burstSize         = 20
)

// Config holds configuration for the Pinecone client.
type Config struct {
	// APIKey is the Pinecone API key (required).
	APIKey string

	// Host is the index data-plane host, e.g.
	// "my-index-abc123.svc.us-east-1.pinecone.io" (required).
	Host string

	// Timeout is the request timeout (default: 30s).
	Timeout time.Duration
}

// Client is the Pinecone vector backend.
type Client struct {
	client  *http.Client
	limiter *rate.Limiter
	baseURL string
	apiKey  string
}

// NewClient creates a Pinecone client. Returns nil (not an error) when
// the backend is unconfigured, so the façade can treat it as absent.
func NewClient(cfg Config) *Client {
	if cfg.APIKey == "" || cfg.Host == "" {
		return nil
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	host := cfg.Host
	if !strings.HasPrefix(host, "http") {
		host = "https://" + host
	}

	return &Client{
		client:  &http.Client{Timeout: cfg.Timeout},
		limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), burstSize),
		baseURL: strings.TrimSuffix(host, "/"),
		apiKey:  cfg.APIKey,
	}
}

// Name identifies the backend.
func (c *Client) Name() string { return BackendName }

// Available reports whether the index answers a stats request.
func (c *Client) Available(ctx context.Context) bool {
	var out statsResponse
	err := c.post(ctx, "/describe_index_stats", struct{}{}, &out)
	return err == nil
}

// vector is the wire format for one record.
type vector struct {
	ID       string         `json:"id"`
	Values   []float32      `json:"values"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

type upsertRequest struct {
	Vectors   []vector `json:"vectors"`
	Namespace string   `json:"namespace,omitempty"`
}

// Upsert writes records in batches. Existing IDs are overwritten.
func (c *Client) Upsert(ctx context.Context, namespace string, records []domain.VectorRecord) error {
	for start := 0; start < len(records); start += DefaultUpsertBatch {
		end := start + DefaultUpsertBatch
		if end > len(records) {
			end = len(records)
		}

		batch := records[start:end]
		vectors := make([]vector, len(batch))
		for i, rec := range batch {
			vectors[i] = vector{ID: rec.ID, Values: rec.Values, Metadata: rec.Metadata}
		}

		req := upsertRequest{Vectors: vectors, Namespace: namespace}
		if err := c.post(ctx, "/vectors/upsert", req, nil); err != nil {
			return fmt.Errorf("upsert batch at %d: %w", start, err)
		}
	}

	logger.Debug("Pinecone upsert: %d vectors into namespace %q", len(records), namespace)
	return nil
}

type queryRequest struct {
	Vector          []float32      `json:"vector"`
	TopK            int            `json:"topK"`
	Namespace       string         `json:"namespace,omitempty"`
	Filter          map[string]any `json:"filter,omitempty"`
	IncludeMetadata bool           `json:"includeMetadata"`
}

type queryResponse struct {
	Matches []struct {
		ID       string         `json:"id"`
		Score    float64        `json:"score"`
		Metadata map[string]any `json:"metadata"`
	} `json:"matches"`
}

// Query returns the topK nearest records, best first.
func (c *Client) Query(
	ctx context.Context, namespace string, vec []float32, topK int, filter driven.QueryFilter,
) ([]domain.RetrievalResult, error) {
	req := queryRequest{
		Vector:          vec,
		TopK:            topK,
		Namespace:       namespace,
		Filter:          translateFilter(filter),
		IncludeMetadata: true,
	}

	var resp queryResponse
	if err := c.post(ctx, "/query", req, &resp); err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}

	results := make([]domain.RetrievalResult, len(resp.Matches))
	for i, m := range resp.Matches {
		results[i] = domain.RetrievalResult{ChunkID: m.ID, Score: m.Score, Metadata: m.Metadata}
	}
	return results, nil
}

type deleteRequest struct {
	Filter    map[string]any `json:"filter,omitempty"`
	DeleteAll bool           `json:"deleteAll,omitempty"`
	Namespace string         `json:"namespace,omitempty"`
}

// DeleteByDocument removes all vectors whose metadata names the
// document.
func (c *Client) DeleteByDocument(ctx context.Context, namespace, documentID string) error {
	req := deleteRequest{
		Filter:    map[string]any{"document_id": documentID},
		Namespace: namespace,
	}
	if err := c.post(ctx, "/vectors/delete", req, nil); err != nil {
		return fmt.Errorf("delete by document: %w", err)
	}
	return nil
}

// DeleteNamespace removes an entire namespace.
func (c *Client) DeleteNamespace(ctx context.Context, namespace string) error {
	req := deleteRequest{DeleteAll: true, Namespace: namespace}
	if err := c.post(ctx, "/vectors/delete", req, nil); err != nil {
		return fmt.Errorf("delete namespace: %w", err)
	}
	return nil
}

type statsResponse struct {
	Namespaces map[string]struct {
		VectorCount int `json:"vectorCount"`
	} `json:"namespaces"`
}

// Stats reports per-namespace vector counts, or Available=false when
// the index is unreachable.
func (c *Client) Stats(ctx context.Context) domain.IndexStats {
	var resp statsResponse
	if err := c.post(ctx, "/describe_index_stats", struct{}{}, &resp); err != nil {
		logger.Warn("Pinecone stats unavailable: %v", err)
		return domain.IndexStats{Backend: BackendName, Available: false}
	}

	counts := make(map[string]int, len(resp.Namespaces))
	for name, ns := range resp.Namespaces {
		counts[name] = ns.VectorCount
	}
	return domain.IndexStats{Backend: BackendName, Available: true, VectorCounts: counts}
}

// Close releases resources.
func (c *Client) Close() error {
	c.client.CloseIdleConnections()
	return nil
}

// translateFilter maps the portable filter to Pinecone's syntax:
// equality stays as-is, slices become $in.
func translateFilter(filter driven.QueryFilter) map[string]any {
	if len(filter) == 0 {
		return nil
	}

	out := make(map[string]any, len(filter))
	for key, val := range filter {
		if members, ok := val.([]string); ok {
			out[key] = map[string]any{"$in": members}
			continue
		}
		out[key] = val
	}
	return out
}

// post sends one rate-limited JSON request to the data plane.
func (c *Client) post(ctx context.Context, path string, body, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	jsonBody, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(jsonBody))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Api-Key", c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrBackendUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, readErr := io.ReadAll(resp.Body)
		if readErr != nil {
			return fmt.Errorf("pinecone error (status %d): failed to read response", resp.StatusCode)
		}
		return fmt.Errorf("pinecone error (status %d): %s", resp.StatusCode, string(respBody))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

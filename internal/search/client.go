// Package search talks to the document search service and manages the
// per-index client registry.
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/yunseol/ingrid/internal/config"
)

// Document is one ranked search hit. The relevance score arrives under the
// engine-specific "@search.score" key.
type Document map[string]any

// Client is the contract the workers' search tools depend on.
type Client interface {
	Search(ctx context.Context, searchText string, top int, filter string, selectFields []string) ([]Document, error)
}

// HTTPClient queries one index of an Azure-AI-Search-style REST service.
type HTTPClient struct {
	endpoint   string
	index      string
	apiKey     string
	apiVersion string
	client     *http.Client
}

func NewHTTPClient(cfg config.SearchConfig, index string) *HTTPClient {
	apiVersion := cfg.APIVersion
	if apiVersion == "" {
		apiVersion = "2024-07-01"
	}

	return &HTTPClient{
		endpoint:   strings.TrimSuffix(cfg.Endpoint, "/"),
		index:      index,
		apiKey:     cfg.APIKey,
		apiVersion: apiVersion,
		client:     &http.Client{Timeout: 15 * time.Second},
	}
}

func (c *HTTPClient) Search(ctx context.Context, searchText string, top int, filter string, selectFields []string) ([]Document, error) {
	endpointURL := fmt.Sprintf("%s/indexes/%s/docs/search?api-version=%s", c.endpoint, c.index, c.apiVersion)

	requestBody := map[string]any{
		"search": searchText,
		"top":    top,
	}
	if filter != "" {
		requestBody["filter"] = filter
	}
	if len(selectFields) > 0 {
		requestBody["select"] = strings.Join(selectFields, ",")
	}

	payload, err := json.Marshal(requestBody)
	if err != nil {
		return nil, fmt.Errorf("encode search request: %w", err)
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodPost, endpointURL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build search request: %w", err)
	}
	request.Header.Set("Content-Type", "application/json")
	request.Header.Set("api-key", c.apiKey)

	httpResp, err := c.client.Do(request)
	if err != nil {
		return nil, fmt.Errorf("search request: %w", err)
	}
	defer httpResp.Body.Close()

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("read search response: %w", err)
	}

	if httpResp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search endpoint returned %d: %s", httpResp.StatusCode, strings.TrimSpace(string(body)))
	}

	var decoded struct {
		Value []Document `json:"value"`
	}
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	return decoded.Value, nil
}

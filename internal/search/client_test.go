package search

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/yunseol/ingrid/internal/config"
)

func TestHTTPClientSearch(t *testing.T) {
	var gotPath, gotKey string
	var gotBody map[string]any

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path + "?" + r.URL.RawQuery
		gotKey = r.Header.Get("api-key")
		json.NewDecoder(r.Body).Decode(&gotBody)

		json.NewEncoder(w).Encode(map[string]any{
			"value": []map[string]any{
				{"id": "ing-001", "korean_name": "글리세린", "@search.score": 4.2},
			},
		})
	}))
	defer server.Close()

	client := NewHTTPClient(config.SearchConfig{
		Endpoint:   server.URL,
		APIKey:     "secret",
		APIVersion: "2024-07-01",
	}, "ingredients")

	documents, err := client.Search(context.Background(), "glycerin", 5,
		"order_status eq 'ordered'", []string{"id", "korean_name"})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}

	if gotPath != "/indexes/ingredients/docs/search?api-version=2024-07-01" {
		t.Errorf("path: got %q", gotPath)
	}
	if gotKey != "secret" {
		t.Errorf("api-key header: got %q", gotKey)
	}
	if gotBody["search"] != "glycerin" || gotBody["top"] != float64(5) {
		t.Errorf("request body: got %v", gotBody)
	}
	if gotBody["filter"] != "order_status eq 'ordered'" {
		t.Errorf("filter: got %v", gotBody["filter"])
	}
	if gotBody["select"] != "id,korean_name" {
		t.Errorf("select: got %v", gotBody["select"])
	}

	if len(documents) != 1 {
		t.Fatalf("len(documents): got %d, want 1", len(documents))
	}
	if documents[0]["id"] != "ing-001" || documents[0]["@search.score"] != 4.2 {
		t.Errorf("documents[0]: got %v", documents[0])
	}
}

func TestHTTPClientSearchOmitsEmptyFilter(t *testing.T) {
	var gotBody map[string]any

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&gotBody)
		json.NewEncoder(w).Encode(map[string]any{"value": []map[string]any{}})
	}))
	defer server.Close()

	client := NewHTTPClient(config.SearchConfig{Endpoint: server.URL}, "ingredients")
	if _, err := client.Search(context.Background(), "q", 10, "", nil); err != nil {
		t.Fatalf("Search: %v", err)
	}

	if _, present := gotBody["filter"]; present {
		t.Error("expected the filter key to be omitted")
	}
}

func TestHTTPClientSearchErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "index not found", http.StatusNotFound)
	}))
	defer server.Close()

	client := NewHTTPClient(config.SearchConfig{Endpoint: server.URL}, "missing")
	if _, err := client.Search(context.Background(), "q", 10, "", nil); err == nil {
		t.Error("expected an error for a non-200 response")
	}
}

func TestRegistry(t *testing.T) {
	registry := NewRegistry()

	if _, ok := registry.Get("ingredients"); ok {
		t.Error("expected an empty registry to miss")
	}

	client := NewHTTPClient(config.SearchConfig{Endpoint: "http://localhost"}, "ingredients")
	registry.Register("ingredients", client)

	got, ok := registry.Get("ingredients")
	if !ok || got != Client(client) {
		t.Error("expected the registered client back")
	}

	if indexes := registry.Indexes(); len(indexes) != 1 || indexes[0] != "ingredients" {
		t.Errorf("Indexes: got %v", indexes)
	}
}

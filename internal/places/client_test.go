package places

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

const resultsBody = `{"results":[{"place_id":"p1","name":"Chez Marcel"}]}`

func float64Ptr(value float64) *float64 { return &value }

func TestSearchTextQueryUsesTextSearch(t *testing.T) {
	var gotPath string
	var gotQuery map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = singleValues(r)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(resultsBody)) //nolint:errcheck
	}))
	defer server.Close()

	client := NewClient(ClientConfig{APIKey: "test-key", BaseURL: server.URL})
	results, err := client.Search(context.Background(), Query{Text: "tartare paris"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if gotPath != textSearchPath {
		t.Fatalf("unexpected path: %s", gotPath)
	}
	if gotQuery["query"] != "tartare paris" || gotQuery["type"] != "restaurant" || gotQuery["key"] != "test-key" {
		t.Fatalf("unexpected query params: %#v", gotQuery)
	}
	if string(results) != `[{"place_id":"p1","name":"Chez Marcel"}]` {
		t.Fatalf("results should pass through verbatim, got %s", results)
	}
}

func TestSearchCoordinatesUseNearbySearch(t *testing.T) {
	var gotPath string
	var gotQuery map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = singleValues(r)
		w.Write([]byte(resultsBody)) //nolint:errcheck
	}))
	defer server.Close()

	client := NewClient(ClientConfig{APIKey: "test-key", Radius: 2500, BaseURL: server.URL})
	_, err := client.Search(context.Background(), Query{Latitude: float64Ptr(48.85), Longitude: float64Ptr(2.35)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if gotPath != nearbySearchPath {
		t.Fatalf("unexpected path: %s", gotPath)
	}
	if gotQuery["radius"] != "2500" {
		t.Fatalf("unexpected radius: %s", gotQuery["radius"])
	}
	if gotQuery["location"] != "48.85,2.35" {
		t.Fatalf("unexpected location: %s", gotQuery["location"])
	}
}

func TestSearchTextTakesPrecedenceOverCoordinates(t *testing.T) {
	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Write([]byte(resultsBody)) //nolint:errcheck
	}))
	defer server.Close()

	client := NewClient(ClientConfig{APIKey: "test-key", BaseURL: server.URL})
	_, err := client.Search(context.Background(), Query{
		Text:      "tartare",
		Latitude:  float64Ptr(48.85),
		Longitude: float64Ptr(2.35),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotPath != textSearchPath {
		t.Fatalf("text query should win over coordinates, hit %s", gotPath)
	}
}

func TestSearchWithoutInputReturnsErrNoQuery(t *testing.T) {
	requests := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
	}))
	defer server.Close()

	client := NewClient(ClientConfig{APIKey: "test-key", BaseURL: server.URL})
	_, err := client.Search(context.Background(), Query{})
	if !errors.Is(err, ErrNoQuery) {
		t.Fatalf("expected ErrNoQuery, got %v", err)
	}
	if requests != 0 {
		t.Fatalf("no provider request should be issued, got %d", requests)
	}
}

func TestSearchWithoutAPIKeyReturnsErrMissingAPIKey(t *testing.T) {
	client := NewClient(ClientConfig{})
	_, err := client.Search(context.Background(), Query{Text: "tartare"})
	if !errors.Is(err, ErrMissingAPIKey) {
		t.Fatalf("expected ErrMissingAPIKey, got %v", err)
	}
}

func TestSearchPropagatesProviderStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	client := NewClient(ClientConfig{APIKey: "test-key", BaseURL: server.URL})
	_, err := client.Search(context.Background(), Query{Text: "tartare"})
	if !errors.Is(err, ErrProviderStatus) {
		t.Fatalf("expected ErrProviderStatus, got %v", err)
	}
}

func TestSearchEmptyResultsReturnsEmptyArray(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"ZERO_RESULTS"}`)) //nolint:errcheck
	}))
	defer server.Close()

	client := NewClient(ClientConfig{APIKey: "test-key", BaseURL: server.URL})
	results, err := client.Search(context.Background(), Query{Text: "tartare"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(results) != "[]" {
		t.Fatalf("expected empty array, got %s", results)
	}
}

func singleValues(r *http.Request) map[string]string {
	values := map[string]string{}
	for key, list := range r.URL.Query() {
		if len(list) > 0 {
			values[key] = list[0]
		}
	}
	return values
}

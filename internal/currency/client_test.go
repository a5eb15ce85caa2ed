package currency

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestConvertMultipliesByReferenceRate(t *testing.T) {
	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Write([]byte(`{"provider":"test","base":"EUR","rates":{"USD":1.08,"EUR":1}}`)) //nolint:errcheck
	}))
	defer server.Close()

	client := NewClient(ClientConfig{BaseURL: server.URL, Reference: "USD"})
	converted, err := client.Convert(context.Background(), "eur", 12.5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotPath != "/v4/latest/EUR" {
		t.Fatalf("expected uppercased code in path, got %s", gotPath)
	}
	if converted != 12.5*1.08 {
		t.Fatalf("unexpected converted amount: %v", converted)
	}
}

func TestConvertSameCurrencySkipsProvider(t *testing.T) {
	requests := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
	}))
	defer server.Close()

	client := NewClient(ClientConfig{BaseURL: server.URL, Reference: "USD"})
	converted, err := client.Convert(context.Background(), "usd", 42)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if converted != 42 {
		t.Fatalf("expected amount unchanged, got %v", converted)
	}
	if requests != 0 {
		t.Fatalf("no provider request expected, got %d", requests)
	}
}

func TestConvertMissingReferenceRateKeepsOriginalAmount(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"provider":"test","base":"EUR","rates":{"GBP":0.85}}`)) //nolint:errcheck
	}))
	defer server.Close()

	client := NewClient(ClientConfig{BaseURL: server.URL, Reference: "USD"})
	converted, err := client.Convert(context.Background(), "eur", 19.9)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if converted != 19.9 {
		t.Fatalf("expected original amount on missing rate, got %v", converted)
	}
}

func TestConvertMalformedBodyKeepsOriginalAmount(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json`)) //nolint:errcheck
	}))
	defer server.Close()

	client := NewClient(ClientConfig{BaseURL: server.URL})
	converted, err := client.Convert(context.Background(), "eur", 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if converted != 7 {
		t.Fatalf("expected original amount on malformed body, got %v", converted)
	}
}

func TestConvertNonPositiveRateKeepsOriginalAmount(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"rates":{"USD":0}}`)) //nolint:errcheck
	}))
	defer server.Close()

	client := NewClient(ClientConfig{BaseURL: server.URL})
	converted, err := client.Convert(context.Background(), "eur", 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if converted != 7 {
		t.Fatalf("expected original amount on zero rate, got %v", converted)
	}
}

func TestConvertProviderStatusPropagates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient(ClientConfig{BaseURL: server.URL})
	_, err := client.Convert(context.Background(), "eur", 7)
	if !errors.Is(err, ErrProviderStatus) {
		t.Fatalf("expected ErrProviderStatus, got %v", err)
	}
}

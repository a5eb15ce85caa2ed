package restaurant

import (
	"errors"
	"testing"
)

func TestParseDescriptorTextSearchResult(t *testing.T) {
	raw := `{
		"place_id": "ChIJabc123",
		"name": "Chez Marcel",
		"formatted_address": "12 Quai des Grands Augustins, Paris, France",
		"geometry": {"location": {"lat": 48.854, "lng": 2.342}},
		"rating": 4.5,
		"types": ["restaurant", "food"]
	}`

	descriptor, err := ParseDescriptor(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if descriptor.PlaceID != "ChIJabc123" {
		t.Fatalf("unexpected place id: %s", descriptor.PlaceID)
	}
	if descriptor.Name != "Chez Marcel" {
		t.Fatalf("unexpected name: %s", descriptor.Name)
	}
	if descriptor.Address != "12 Quai des Grands Augustins, Paris, France" {
		t.Fatalf("unexpected address: %s", descriptor.Address)
	}
	if descriptor.Latitude != 48.854 || descriptor.Longitude != 2.342 {
		t.Fatalf("unexpected coordinates: %v,%v", descriptor.Latitude, descriptor.Longitude)
	}
}

func TestParseDescriptorNearbyResultFallsBackToVicinity(t *testing.T) {
	raw := `{
		"place_id": "ChIJdef456",
		"name": "Bistro du Coin",
		"vicinity": "3 Rue Mouffetard, Paris",
		"geometry": {"location": {"lat": 48.842, "lng": 2.349}}
	}`

	descriptor, err := ParseDescriptor(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if descriptor.Address != "3 Rue Mouffetard, Paris" {
		t.Fatalf("expected vicinity as address, got %s", descriptor.Address)
	}
}

func TestParseDescriptorRejectsMalformedJSON(t *testing.T) {
	_, err := ParseDescriptor("{not json")
	if !errors.Is(err, ErrInvalidDescriptor) {
		t.Fatalf("expected ErrInvalidDescriptor, got %v", err)
	}
}

func TestParseDescriptorRejectsMissingPlaceID(t *testing.T) {
	_, err := ParseDescriptor(`{"name": "No Identifier", "geometry": {"location": {"lat": 1, "lng": 2}}}`)
	if !errors.Is(err, ErrInvalidDescriptor) {
		t.Fatalf("expected ErrInvalidDescriptor, got %v", err)
	}
}

package restaurant

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidDescriptor indicates the submitted place payload could not be parsed.
var ErrInvalidDescriptor = errors.New("restaurant: invalid place descriptor")

// Descriptor carries the subset of a provider search result needed to create
// a Restaurant row. Clients re-submit the provider payload verbatim as an
// opaque JSON string when creating a rating.
type Descriptor struct {
	PlaceID   string
	Name      string
	Address   string
	Latitude  float64
	Longitude float64
}

type descriptorPayload struct {
	PlaceID          string `json:"place_id"`
	Name             string `json:"name"`
	FormattedAddress string `json:"formatted_address"`
	Vicinity         string `json:"vicinity"`
	Geometry         struct {
		Location struct {
			Lat float64 `json:"lat"`
			Lng float64 `json:"lng"`
		} `json:"location"`
	} `json:"geometry"`
}

// ParseDescriptor decodes a serialized provider search result.
func ParseDescriptor(raw string) (Descriptor, error) {
	var payload descriptorPayload
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return Descriptor{}, fmt.Errorf("%w: %v", ErrInvalidDescriptor, err)
	}

	placeID := strings.TrimSpace(payload.PlaceID)
	if placeID == "" {
		return Descriptor{}, fmt.Errorf("%w: missing place_id", ErrInvalidDescriptor)
	}

	// Nearby-search results carry vicinity instead of formatted_address.
	address := payload.FormattedAddress
	if address == "" {
		address = payload.Vicinity
	}

	return Descriptor{
		PlaceID:   placeID,
		Name:      payload.Name,
		Address:   address,
		Latitude:  payload.Geometry.Location.Lat,
		Longitude: payload.Geometry.Location.Lng,
	}, nil
}

package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

var amenityLabels = map[string]string{
	"wifi":            "WiFi",
	"tv":              "TV",
	"air_conditioner": "Air conditioning",
	"bathtub":         "Bathtub",
}

var amenityOrder = []string{"wifi", "tv", "air_conditioner", "bathtub"}

// Amenities is the canonical amenity set of a room. The backend sends it either
// as an object or as a string holding JSON; both decode to the same map.
type Amenities map[string]bool

func (a *Amenities) UnmarshalJSON(data []byte) error {
	out, err := decodeAmenities(data)
	if err != nil {
		return err
	}
	*a = out
	return nil
}

func decodeAmenities(data []byte) (Amenities, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return Amenities{}, nil
	}

	if data[0] == '"' {
		var encoded string
		if err := json.Unmarshal(data, &encoded); err != nil {
			return nil, fmt.Errorf("decode amenities: %w", err)
		}
		encoded = strings.TrimSpace(encoded)
		if encoded == "" {
			return Amenities{}, nil
		}
		data = []byte(encoded)
	}

	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode amenities: %w", err)
	}
	out := Amenities{}
	for key, value := range raw {
		out[key] = truthy(value)
	}
	return out, nil
}

// UnmarshalJSON decodes a room. An unreadable amenities value leaves the room
// with no amenities instead of failing the whole payload; AmenitiesErr reports it.
func (r *Room) UnmarshalJSON(data []byte) error {
	type plain Room
	var raw struct {
		plain
		Amenities json.RawMessage `json:"amenities"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*r = Room(raw.plain)
	amenities, err := decodeAmenities(raw.Amenities)
	if err != nil {
		r.amenitiesErr = err
		amenities = Amenities{}
	}
	r.Amenities = amenities
	return nil
}

func (r Room) AmenitiesErr() error {
	return r.amenitiesErr
}

func truthy(value any) bool {
	switch v := value.(type) {
	case bool:
		return v
	case float64:
		return v != 0
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "", "0", "false", "no":
			return false
		}
		return true
	case nil:
		return false
	}
	return true
}

// Labels lists enabled amenities, known ones first in a fixed order.
func (a Amenities) Labels() []string {
	labels := []string{}
	for _, key := range amenityOrder {
		if a[key] {
			labels = append(labels, amenityLabels[key])
		}
	}
	extra := []string{}
	for key, on := range a {
		if _, known := amenityLabels[key]; known || !on {
			continue
		}
		extra = append(extra, humanize(key))
	}
	sort.Strings(extra)
	return append(labels, extra...)
}

func humanize(key string) string {
	words := strings.Fields(strings.ReplaceAll(key, "_", " "))
	if len(words) == 0 {
		return key
	}
	words[0] = strings.ToUpper(words[0][:1]) + words[0][1:]
	return strings.Join(words, " ")
}

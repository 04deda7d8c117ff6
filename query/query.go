package query

import (
	"net/url"
	"strconv"
	"strings"
)

// Filters is an applied filter snapshot for the room search.
type Filters struct {
	Keyword    string `json:"keyword"`
	TypeID     string `json:"type_id"`
	PriceRange string `json:"price_range"`
	Capacity   string `json:"capacity"`
}

// PriceRanges are the preset ranges offered by the room listing.
var PriceRanges = []string{
	"0-1000000",
	"1000000-2000000",
	"2000000-5000000",
	"5000000-10000000",
	"10000000-",
}

func (f Filters) IsZero() bool {
	return strings.TrimSpace(f.Keyword) == "" &&
		strings.TrimSpace(f.TypeID) == "" &&
		strings.TrimSpace(f.PriceRange) == "" &&
		strings.TrimSpace(f.Capacity) == ""
}

// Build maps a filter snapshot to request parameters. Empty filters are
// omitted; page and size are always present.
func Build(f Filters, page, size int) url.Values {
	q := url.Values{}

	if keyword := strings.TrimSpace(f.Keyword); keyword != "" {
		q.Set("keyword", keyword)
	}
	if typeID := strings.TrimSpace(f.TypeID); typeID != "" {
		q.Set("typeId", typeID)
	}

	lo, hi := ParsePriceRange(f.PriceRange)
	if lo != nil {
		q.Set("minPrice", strconv.FormatInt(*lo, 10))
	}
	if hi != nil {
		q.Set("maxPrice", strconv.FormatInt(*hi, 10))
	}

	if capacity, ok := ParseCapacity(f.Capacity); ok {
		q.Set("capacity", strconv.Itoa(capacity))
	}

	q.Set("page", strconv.Itoa(page))
	q.Set("size", strconv.Itoa(size))
	return q
}

// ParsePriceRange splits "min-max" on the first dash. A side that is empty or
// not a non-negative integer is returned as nil.
func ParsePriceRange(input string) (*int64, *int64) {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, nil
	}
	minPart, maxPart, found := strings.Cut(input, "-")
	if !found {
		return parseBound(minPart), nil
	}
	return parseBound(minPart), parseBound(maxPart)
}

func parseBound(input string) *int64 {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil
	}
	value, err := strconv.ParseInt(input, 10, 64)
	if err != nil || value < 0 {
		return nil
	}
	return &value
}

// ParseCapacity reports the guest count when input is a positive integer.
func ParseCapacity(input string) (int, bool) {
	input = strings.TrimSpace(input)
	if input == "" {
		return 0, false
	}
	value, err := strconv.Atoi(input)
	if err != nil || value <= 0 {
		return 0, false
	}
	return value, true
}

package listings

import (
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
)

// ErrInvalidCriteria indicates malformed search parameters. It is reported
// before any composition work starts.
var ErrInvalidCriteria = errors.New("invalid filter parameters")

// FilterCriteria is an immutable description of one search. A zero value
// on any dimension means that dimension is unconstrained; for the price
// bounds this includes an explicit zero, matching the historical contract
// that price_from=0 cannot be expressed.
type FilterCriteria struct {
	Categories []int64
	Text       string
	Location   string
	PriceFrom  int64
	PriceTo    int64
}

// ParseCriteria builds FilterCriteria from raw query parameters.
// Non-numeric or negative price bounds and malformed category ids are
// rejected, never coerced.
func ParseCriteria(q url.Values) (FilterCriteria, error) {
	var c FilterCriteria

	for _, raw := range q["cat"] {
		if raw == "" {
			continue
		}
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return FilterCriteria{}, fmt.Errorf("%w: category id %q is not an integer", ErrInvalidCriteria, raw)
		}
		c.Categories = append(c.Categories, id)
	}

	c.Text = q.Get("text")
	c.Location = q.Get("location")

	var err error
	if c.PriceFrom, err = parsePriceBound(q.Get("price_from"), "price_from"); err != nil {
		return FilterCriteria{}, err
	}
	if c.PriceTo, err = parsePriceBound(q.Get("price_to"), "price_to"); err != nil {
		return FilterCriteria{}, err
	}

	return c, nil
}

func parsePriceBound(raw, name string) (int64, error) {
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s %q is not an integer", ErrInvalidCriteria, name, raw)
	}
	if v < 0 {
		return 0, fmt.Errorf("%w: %s must not be negative", ErrInvalidCriteria, name)
	}
	return v, nil
}

// Compose returns the subset of the snapshot matching every specified
// dimension, ordered by price descending. The sort is stable, so listings
// with equal prices keep their insertion order and repeated calls with
// identical inputs paginate identically. The snapshot is never mutated.
func Compose(snapshot []ListingView, c FilterCriteria) []ListingView {
	result := make([]ListingView, 0, len(snapshot))
	for _, v := range snapshot {
		if c.matches(v) {
			result = append(result, v)
		}
	}

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Price > result[j].Price
	})
	return result
}

func (c FilterCriteria) matches(v ListingView) bool {
	if len(c.Categories) > 0 && !containsID(c.Categories, v.CategoryID) {
		return false
	}
	if c.Text != "" && !containsFold(v.Name, c.Text) {
		return false
	}
	if c.Location != "" && !anyContainsFold(v.AuthorLocations, c.Location) {
		return false
	}
	if c.PriceFrom > 0 && v.Price < c.PriceFrom {
		return false
	}
	if c.PriceTo > 0 && v.Price > c.PriceTo {
		return false
	}
	return true
}

func containsID(ids []int64, id int64) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

func anyContainsFold(values []string, needle string) bool {
	for _, v := range values {
		if containsFold(v, needle) {
			return true
		}
	}
	return false
}

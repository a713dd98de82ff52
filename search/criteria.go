package search

import (
	"net/url"
	"strconv"
	"strings"
)

type SortKey string

const (
	SortNewest    SortKey = "newest"
	SortPriceAsc  SortKey = "price_asc"
	SortPriceDesc SortKey = "price_desc"
	SortRating    SortKey = "rating_desc"
)

// Criteria is the transient search state for one listing request. Zero value
// means "no filter active": every record passes and the newest sort applies.
type Criteria struct {
	Query         string
	PriceMin      *float64
	PriceMax      *float64
	Amenities     []string
	MinRating     float64
	FavoritesOnly bool
	Sort          SortKey
}

// ParseCriteria builds a Criteria from listing query parameters. Unparsable
// numeric values deactivate the corresponding filter rather than failing the
// whole request.
func ParseCriteria(query url.Values) Criteria {
	c := Criteria{
		Query: strings.TrimSpace(query.Get("q")),
		Sort:  SortNewest,
	}

	if v, err := strconv.ParseFloat(query.Get("priceMin"), 64); err == nil {
		c.PriceMin = &v
	}
	if v, err := strconv.ParseFloat(query.Get("priceMax"), 64); err == nil {
		c.PriceMax = &v
	}
	if v, err := strconv.ParseFloat(query.Get("minRating"), 64); err == nil {
		c.MinRating = v
	}
	if v, err := strconv.ParseBool(query.Get("favoritesOnly")); err == nil {
		c.FavoritesOnly = v
	}

	for _, raw := range strings.Split(query.Get("amenities"), ",") {
		if a := strings.TrimSpace(raw); a != "" {
			c.Amenities = append(c.Amenities, a)
		}
	}

	switch SortKey(query.Get("sort")) {
	case SortPriceAsc, SortPriceDesc, SortRating:
		c.Sort = SortKey(query.Get("sort"))
	}
	return c
}

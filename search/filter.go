package search

import (
	"strings"

	"github.com/dwello-app/rental_marketplace/models"
)

// Filter returns the subsequence of properties satisfying every active
// criterion. Stats are joined by property id; a missing entry defaults to the
// zero value, so inactive rating/favorite filters never drop a record that
// simply has no stats row yet. The input slice is not mutated and the call is
// deterministic for a fixed input pair.
func Filter(props []models.Property, stats map[string]models.PropertyStats, c Criteria) []models.Property {
	out := make([]models.Property, 0, len(props))
	query := strings.ToLower(c.Query)

	for _, p := range props {
		st := stats[p.PropID]

		if query != "" &&
			!strings.Contains(strings.ToLower(p.Title), query) &&
			!strings.Contains(strings.ToLower(p.City), query) {
			continue
		}
		if c.PriceMin != nil && p.Price < *c.PriceMin {
			continue
		}
		if c.PriceMax != nil && p.Price > *c.PriceMax {
			continue
		}
		if !hasAllAmenities(p.Amenities, c.Amenities) {
			continue
		}
		if st.AvgRating < c.MinRating {
			continue
		}
		if c.FavoritesOnly && st.FavoriteCount < 1 {
			continue
		}
		out = append(out, p)
	}
	return out
}

// hasAllAmenities reports whether every required amenity is present (AND
// semantics). An empty requirement always passes.
func hasAllAmenities(have, required []string) bool {
	if len(required) == 0 {
		return true
	}
	set := make(map[string]bool, len(have))
	for _, a := range have {
		set[strings.ToLower(a)] = true
	}
	for _, r := range required {
		if !set[strings.ToLower(r)] {
			return false
		}
	}
	return true
}

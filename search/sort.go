package search

import (
	"sort"

	"github.com/dwello-app/rental_marketplace/models"
)

// Order returns a newly ordered copy of props for the given sort key. Ties
// break by property id ascending so the ordering is deterministic across
// calls. Missing stats rate as 0 for the rating sort.
func Order(props []models.Property, stats map[string]models.PropertyStats, key SortKey) []models.Property {
	out := make([]models.Property, len(props))
	copy(out, props)

	less := func(i, j int) bool {
		a, b := out[i], out[j]
		switch key {
		case SortPriceAsc:
			if a.Price != b.Price {
				return a.Price < b.Price
			}
		case SortPriceDesc:
			if a.Price != b.Price {
				return a.Price > b.Price
			}
		case SortRating:
			ra, rb := stats[a.PropID].AvgRating, stats[b.PropID].AvgRating
			if ra != rb {
				return ra > rb
			}
		default: // SortNewest
			if !a.CreatedAt.Equal(b.CreatedAt) {
				return a.CreatedAt.After(b.CreatedAt)
			}
		}
		return a.PropID < b.PropID
	}

	sort.SliceStable(out, less)
	return out
}

package compare

import "github.com/dwello-app/rental_marketplace/models"

// Hydrate arranges fetched records in selection order, the left-to-right
// display order of the comparison view. Ids that resolved to nothing —
// deleted properties or malformed values the fetch skipped — are dropped
// from the result, not treated as errors.
func Hydrate(ids []string, fetched []models.Property) []models.Property {
	byID := make(map[string]models.Property, len(fetched))
	for _, p := range fetched {
		byID[p.PropID] = p
	}

	out := make([]models.Property, 0, len(ids))
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			out = append(out, p)
		}
	}
	return out
}

package search

import (
	"net/url"
	"reflect"
	"testing"
	"time"

	"github.com/dwello-app/rental_marketplace/models"
)

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func fixtures() ([]models.Property, map[string]models.PropertyStats) {
	props := []models.Property{
		{PropID: "a", Title: "Sunny Loft", City: "Austin", Price: 1000, Amenities: []string{"wifi", "parking"}, CreatedAt: day("2024-01-01")},
		{PropID: "b", Title: "Garden Flat", City: "Boston", Price: 2000, Amenities: []string{"wifi"}, CreatedAt: day("2024-02-01")},
		{PropID: "c", Title: "Harbor Studio", City: "Boston", Price: 1500, Amenities: []string{"gym", "wifi", "parking"}, CreatedAt: day("2024-03-01")},
	}
	stats := map[string]models.PropertyStats{
		"a": {PropertyID: "a", AvgRating: 4.5, ReviewCount: 10, FavoriteCount: 3},
		"b": {PropertyID: "b", AvgRating: 3.0, ReviewCount: 2, FavoriteCount: 0},
		// no entry for "c": defaults to zero values
	}
	return props, stats
}

func ids(props []models.Property) []string {
	out := make([]string, 0, len(props))
	for _, p := range props {
		out = append(out, p.PropID)
	}
	return out
}

func TestFilterInactiveCriteriaIsIdentity(t *testing.T) {
	props, stats := fixtures()
	got := Filter(props, stats, Criteria{})
	if !reflect.DeepEqual(ids(got), []string{"a", "b", "c"}) {
		t.Fatalf("expected all records, got %v", ids(got))
	}
}

func TestFilterIdempotent(t *testing.T) {
	props, stats := fixtures()
	min := 1200.0
	c := Criteria{Query: "boston", PriceMin: &min}
	once := Filter(props, stats, c)
	twice := Filter(once, stats, c)
	if !reflect.DeepEqual(ids(once), ids(twice)) {
		t.Fatalf("filter not idempotent: %v vs %v", ids(once), ids(twice))
	}
}

func TestFilter(t *testing.T) {
	props, stats := fixtures()
	min1500 := 1500.0
	max1500 := 1500.0

	cases := []struct {
		name string
		c    Criteria
		want []string
	}{
		{"query matches title", Criteria{Query: "loft"}, []string{"a"}},
		{"query matches city case-insensitive", Criteria{Query: "BOSTON"}, []string{"b", "c"}},
		{"price min", Criteria{PriceMin: &min1500}, []string{"b", "c"}},
		{"price max", Criteria{PriceMax: &max1500}, []string{"a", "c"}},
		{"amenities AND semantics", Criteria{Amenities: []string{"wifi", "parking"}}, []string{"a", "c"}},
		{"min rating inclusive", Criteria{MinRating: 3.0}, []string{"a", "b"}},
		{"missing stats kept at zero threshold", Criteria{MinRating: 0}, []string{"a", "b", "c"}},
		{"missing stats excluded above zero", Criteria{MinRating: 3}, []string{"a", "b"}},
		{"favorites only means at least one favoriter", Criteria{FavoritesOnly: true}, []string{"a"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Filter(props, stats, tc.c)
			if !reflect.DeepEqual(ids(got), tc.want) {
				t.Fatalf("expected %v got %v", tc.want, ids(got))
			}
		})
	}
}

func TestFilterAmenitySubsetProperty(t *testing.T) {
	props, stats := fixtures()
	required := []string{"wifi", "parking"}
	for _, p := range Filter(props, stats, Criteria{Amenities: required}) {
		have := make(map[string]bool)
		for _, a := range p.Amenities {
			have[a] = true
		}
		for _, r := range required {
			if !have[r] {
				t.Fatalf("property %s missing required amenity %s", p.PropID, r)
			}
		}
	}
}

func TestOrder(t *testing.T) {
	props, stats := fixtures()

	cases := []struct {
		name string
		key  SortKey
		want []string
	}{
		{"price ascending", SortPriceAsc, []string{"a", "c", "b"}},
		{"price descending", SortPriceDesc, []string{"b", "c", "a"}},
		{"rating descending, missing stats last", SortRating, []string{"a", "b", "c"}},
		{"newest default", SortNewest, []string{"c", "b", "a"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Order(props, stats, tc.key)
			if !reflect.DeepEqual(ids(got), tc.want) {
				t.Fatalf("expected %v got %v", tc.want, ids(got))
			}
			if !reflect.DeepEqual(ids(props), []string{"a", "b", "c"}) {
				t.Fatal("input slice was mutated")
			}
		})
	}
}

func TestOrderMonotonicPrice(t *testing.T) {
	props, stats := fixtures()
	asc := Order(props, stats, SortPriceAsc)
	for i := 1; i < len(asc); i++ {
		if asc[i-1].Price > asc[i].Price {
			t.Fatalf("price not non-decreasing at %d", i)
		}
	}
	desc := Order(props, stats, SortPriceDesc)
	for i := 1; i < len(desc); i++ {
		if desc[i-1].Price < desc[i].Price {
			t.Fatalf("price not non-increasing at %d", i)
		}
	}
}

func TestOrderTieBreakByID(t *testing.T) {
	props := []models.Property{
		{PropID: "z", Price: 1000},
		{PropID: "m", Price: 1000},
		{PropID: "a", Price: 1000},
	}
	got := Order(props, nil, SortPriceAsc)
	if !reflect.DeepEqual(ids(got), []string{"a", "m", "z"}) {
		t.Fatalf("expected id tie-break ordering, got %v", ids(got))
	}
}

func TestParseCriteria(t *testing.T) {
	q := url.Values{}
	q.Set("q", " loft ")
	q.Set("priceMin", "1500")
	q.Set("amenities", "wifi, parking,")
	q.Set("minRating", "3.5")
	q.Set("favoritesOnly", "true")
	q.Set("sort", "price_asc")

	c := ParseCriteria(q)
	if c.Query != "loft" {
		t.Fatalf("query: got %q", c.Query)
	}
	if c.PriceMin == nil || *c.PriceMin != 1500 || c.PriceMax != nil {
		t.Fatal("price bounds parsed wrong")
	}
	if !reflect.DeepEqual(c.Amenities, []string{"wifi", "parking"}) {
		t.Fatalf("amenities: got %v", c.Amenities)
	}
	if c.MinRating != 3.5 || !c.FavoritesOnly || c.Sort != SortPriceAsc {
		t.Fatalf("unexpected criteria %+v", c)
	}
}

func TestParseCriteriaDefaults(t *testing.T) {
	c := ParseCriteria(url.Values{})
	if c.Sort != SortNewest || c.PriceMin != nil || c.PriceMax != nil || len(c.Amenities) != 0 {
		t.Fatalf("unexpected defaults %+v", c)
	}
}

func TestExampleScenarioPriceMin(t *testing.T) {
	props := []models.Property{
		{PropID: "a", Price: 1000, CreatedAt: day("2024-01-01")},
		{PropID: "b", Price: 2000, CreatedAt: day("2024-02-01")},
	}
	min := 1500.0
	got := Filter(props, nil, Criteria{PriceMin: &min})
	if !reflect.DeepEqual(ids(got), []string{"b"}) {
		t.Fatalf("expected [b] got %v", ids(got))
	}
}

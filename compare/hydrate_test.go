package compare

import (
	"reflect"
	"testing"

	"github.com/dwello-app/rental_marketplace/models"
)

func hydratedIDs(props []models.Property) []string {
	out := make([]string, 0, len(props))
	for _, p := range props {
		out = append(out, p.PropID)
	}
	return out
}

func TestHydrate(t *testing.T) {
	fetched := []models.Property{
		{PropID: "b", Title: "Garden Flat"},
		{PropID: "a", Title: "Sunny Loft"},
	}

	cases := []struct {
		name string
		ids  []string
		want []string
	}{
		{"deleted id dropped silently", []string{"a", "b", "c"}, []string{"a", "b"}},
		{"selection order preserved over fetch order", []string{"b", "a"}, []string{"b", "a"}},
		{"malformed id dropped", []string{"a", "not-an-id", "b"}, []string{"a", "b"}},
		{"empty selection", nil, []string{}},
		{"nothing resolvable", []string{"x", "y"}, []string{}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Hydrate(tc.ids, fetched)
			if !reflect.DeepEqual(hydratedIDs(got), tc.want) {
				t.Fatalf("expected %v got %v", tc.want, hydratedIDs(got))
			}
		})
	}
}

func TestHydrateRoundTripsHandoff(t *testing.T) {
	var tr Tracker
	for _, id := range []string{"a", "b", "c"} {
		if err := tr.Toggle(id); err != nil {
			t.Fatal(err)
		}
	}

	// "c" was deleted server-side; only a and b come back from the fetch.
	fetched := []models.Property{
		{PropID: "a"},
		{PropID: "b"},
	}

	got := Hydrate(ParseIDs(tr.Encode()), fetched)
	if !reflect.DeepEqual(hydratedIDs(got), []string{"a", "b"}) {
		t.Fatalf("expected [a b] got %v", hydratedIDs(got))
	}
}

// Package compare tracks the bounded property selection behind the
// side-by-side comparison view.
package compare

import (
	"errors"
	"strings"
)

// MaxSelection caps how many properties fit in one comparison.
const MaxSelection = 3

// ErrSelectionFull is returned when a toggle would exceed MaxSelection. The
// selection is left unchanged; callers surface it as a non-fatal notice.
var ErrSelectionFull = errors.New("comparison selection is full")

// Tracker holds the ordered selection. Order is append order and determines
// left-to-right display order, so it is never sorted.
type Tracker struct {
	ids []string
}

// Toggle removes id if selected, otherwise appends it. Adding beyond
// MaxSelection fails with ErrSelectionFull.
func (t *Tracker) Toggle(id string) error {
	for i, cur := range t.ids {
		if cur == id {
			t.ids = append(t.ids[:i], t.ids[i+1:]...)
			return nil
		}
	}
	if len(t.ids) >= MaxSelection {
		return ErrSelectionFull
	}
	t.ids = append(t.ids, id)
	return nil
}

func (t *Tracker) Has(id string) bool {
	for _, cur := range t.ids {
		if cur == id {
			return true
		}
	}
	return false
}

func (t *Tracker) Len() int { return len(t.ids) }

func (t *Tracker) Clear() { t.ids = nil }

// IDs returns a copy of the selection in append order.
func (t *Tracker) IDs() []string {
	out := make([]string, len(t.ids))
	copy(out, t.ids)
	return out
}

// Encode serializes the selection for the comparison hand-off parameter.
func (t *Tracker) Encode() string {
	return strings.Join(t.ids, ",")
}

// ParseIDs decodes a comma-joined hand-off string. An empty or absent value
// is an empty selection, not an error; blank segments are skipped.
func ParseIDs(s string) []string {
	var out []string
	for _, raw := range strings.Split(s, ",") {
		if id := strings.TrimSpace(raw); id != "" {
			out = append(out, id)
		}
	}
	return out
}

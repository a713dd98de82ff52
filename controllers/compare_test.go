package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func resetSelections() {
	selectionsMu.Lock()
	selections = make(map[string]*viewerSelection)
	selectionsMu.Unlock()
}

func toggleCompareRequest(userID, propertyID string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/properties/compare",
		strings.NewReader(`{"propertyID":"`+propertyID+`"}`))
	return req.WithContext(context.WithValue(req.Context(), UserIDKey, userID))
}

func selectionIDs(userID string) []string {
	selectionsMu.Lock()
	defer selectionsMu.Unlock()
	sel, ok := selections[userID]
	if !ok {
		return nil
	}
	return sel.tracker.IDs()
}

func TestToggleCompareCapacity(t *testing.T) {
	resetSelections()
	handler := ToggleCompare()

	codes := make([]int, 0, 4)
	for _, id := range []string{"p1", "p2", "p3", "p4"} {
		rec := httptest.NewRecorder()
		handler(rec, toggleCompareRequest("u1", id))
		codes = append(codes, rec.Code)
	}

	for i, code := range codes[:3] {
		if code != http.StatusOK {
			t.Fatalf("toggle %d: expected 200, got %d", i+1, code)
		}
	}
	if codes[3] != http.StatusConflict {
		t.Fatalf("fourth toggle: expected 409, got %d", codes[3])
	}

	got := selectionIDs("u1")
	if len(got) != 3 || got[0] != "p1" || got[1] != "p2" || got[2] != "p3" {
		t.Fatalf("selection changed on rejected add: %v", got)
	}
}

func TestClearCompareDropsSelection(t *testing.T) {
	resetSelections()
	toggle := ToggleCompare()
	toggle(httptest.NewRecorder(), toggleCompareRequest("u1", "p1"))

	req := httptest.NewRequest(http.MethodDelete, "/api/properties/compare", nil)
	req = req.WithContext(context.WithValue(req.Context(), UserIDKey, "u1"))
	rec := httptest.NewRecorder()
	ClearCompare()(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if got := selectionIDs("u1"); got != nil {
		t.Fatalf("expected cleared selection, got %v", got)
	}
}

func TestCompareSelectionIdleEviction(t *testing.T) {
	resetSelections()
	handler := ToggleCompare()

	rec := httptest.NewRecorder()
	handler(rec, toggleCompareRequest("u1", "p1"))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	// Age the entry past the idle TTL; any later toggle sweeps it.
	selectionsMu.Lock()
	selections["u1"].touched = time.Now().Add(-selectionIdleTTL - time.Minute)
	selectionsMu.Unlock()

	handler(httptest.NewRecorder(), toggleCompareRequest("u2", "p9"))

	if got := selectionIDs("u1"); got != nil {
		t.Fatalf("expected idle selection evicted, still have %v", got)
	}
	if got := selectionIDs("u2"); len(got) != 1 || got[0] != "p9" {
		t.Fatalf("active selection lost: %v", got)
	}
}

package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/dwello-app/rental_marketplace/compare"
	"github.com/dwello-app/rental_marketplace/config"
	"github.com/dwello-app/rental_marketplace/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Per-viewer comparison selections. Session-scoped working state, never
// persisted; a restart simply empties every selection, and entries idle past
// the TTL are swept on the next toggle so departed viewers don't accumulate.
const selectionIdleTTL = 30 * time.Minute

type viewerSelection struct {
	tracker compare.Tracker
	touched time.Time
}

var (
	selectionsMu sync.Mutex
	selections   = make(map[string]*viewerSelection)
)

func pruneSelectionsLocked(now time.Time) {
	for userID, sel := range selections {
		if now.Sub(sel.touched) > selectionIdleTTL {
			delete(selections, userID)
		}
	}
}

// ToggleCompare adds or removes one property from the viewer's comparison
// selection. A fourth addition is rejected without changing the selection.
func ToggleCompare() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := r.Context().Value(UserIDKey).(string)
		if !ok {
			http.Error(w, "User ID missing in context", http.StatusUnauthorized)
			return
		}

		var body struct {
			PropertyID string `json:"propertyID"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.PropertyID == "" {
			http.Error(w, "propertyID is required", http.StatusBadRequest)
			return
		}

		now := time.Now()
		selectionsMu.Lock()
		pruneSelectionsLocked(now)
		sel, ok := selections[userID]
		if !ok {
			sel = &viewerSelection{}
			selections[userID] = sel
		}
		sel.touched = now
		err := sel.tracker.Toggle(body.PropertyID)
		ids := sel.tracker.IDs()
		encoded := sel.tracker.Encode()
		selectionsMu.Unlock()

		if errors.Is(err, compare.ErrSelectionFull) {
			http.Error(w, "You can compare at most 3 properties", http.StatusConflict)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(models.APIResponse{
			Success: true,
			Message: "Selection updated",
			Data:    map[string]interface{}{"ids": ids, "handoff": encoded},
		})
	}
}

func ClearCompare() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := r.Context().Value(UserIDKey).(string)
		if !ok {
			http.Error(w, "User ID missing in context", http.StatusUnauthorized)
			return
		}

		selectionsMu.Lock()
		delete(selections, userID)
		selectionsMu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(models.APIResponse{Success: true, Message: "Selection cleared"})
	}
}

// CompareProperties re-hydrates a comparison hand-off. The selection arrives
// as a comma-joined id string; an empty or absent parameter is an empty
// selection, and ids that no longer resolve (deleted properties) are dropped
// from the result without error. Request order is preserved since it is the
// left-to-right display order.
func CompareProperties() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := r.Context().Value(UserIDKey).(string)
		if !ok {
			http.Error(w, "User ID missing in context", http.StatusUnauthorized)
			return
		}

		ids := compare.ParseIDs(r.URL.Query().Get("ids"))
		if len(ids) == 0 {
			// No hand-off parameter: fall back to the stored selection.
			selectionsMu.Lock()
			if sel, ok := selections[userID]; ok {
				sel.touched = time.Now()
				ids = sel.tracker.IDs()
			}
			selectionsMu.Unlock()
		}
		if len(ids) > compare.MaxSelection {
			http.Error(w, "Comparison is limited to 3 properties", http.StatusConflict)
			return
		}
		if len(ids) == 0 {
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(models.APIResponse{
				Success: true,
				Message: "No selection",
				Data:    []models.Property{},
			})
			return
		}

		properties, err := getPropertiesByIDs(r.Context(), ids)
		if err != nil {
			log.Printf("Error hydrating comparison for user %s: %v", userID, err)
			http.Error(w, "Failed to fetch comparison properties", http.StatusInternalServerError)
			return
		}

		stats, err := loadStats(r.Context(), ids)
		if err != nil {
			log.Printf("Error loading stats for comparison: %v", err)
		}
		favorites, err := loadFavoriteSet(r.Context(), userID)
		if err != nil {
			favorites = map[string]bool{}
		}

		ordered := compare.Hydrate(ids, properties)
		for i := range ordered {
			ordered[i].Stats = stats[ordered[i].PropID]
			ordered[i].IsFavorite = favorites[ordered[i].PropID]
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(models.APIResponse{
			Success: true,
			Message: "Fetched comparison properties",
			Data:    ordered,
		})
	}
}

// getPropertiesByIDs fetches non-deleted properties by id list. Missing ids
// are simply absent from the result.
func getPropertiesByIDs(ctx context.Context, ids []string) ([]models.Property, error) {
	if len(ids) == 0 {
		return []models.Property{}, nil
	}

	objIDs := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		objID, err := primitive.ObjectIDFromHex(id)
		if err != nil {
			// Malformed ids behave like deleted ones: dropped, not fatal.
			continue
		}
		objIDs = append(objIDs, objID)
	}

	cursor, err := config.PropertyCollection.Find(ctx, bson.M{
		"_id":     bson.M{"$in": objIDs},
		"deleted": false,
	})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var properties []models.Property
	if err := cursor.All(ctx, &properties); err != nil {
		return nil, err
	}
	return properties, nil
}

package api

import (
	"database/sql"
	"log/slog"
	"net/http"
	"strings"

	"github.com/erazemk/minirent/internal/store"
)

// AmenitiesHandler manages the amenity catalogue.
type AmenitiesHandler struct {
	DB *sql.DB
}

type amenityRequest struct {
	Name string `json:"name"`
}

// List handles GET /api/amenities.
func (h *AmenitiesHandler) List(w http.ResponseWriter, r *http.Request) {
	amenities, err := store.ListAmenities(r.Context(), h.DB)
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, emptyIfNil(amenities))
}

// Create handles POST /api/amenities.
func (h *AmenitiesHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req amenityRequest
	if err := decodeJSON(w, r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		jsonError(w, http.StatusBadRequest, "name required")
		return
	}

	a, err := store.CreateAmenity(r.Context(), h.DB, name)
	if err != nil {
		writeError(w, r, err)
		return
	}

	claims := GetClaims(r.Context())
	slog.Info("amenity created", "user", claims.Username, "amenity", a.Name)
	jsonResponse(w, http.StatusCreated, a)
}

// Delete handles DELETE /api/amenities/{id}. The amenity is detached from
// every property.
func (h *AmenitiesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	a, err := store.GetAmenity(r.Context(), h.DB, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if a == nil {
		jsonError(w, http.StatusNotFound, "amenity not found")
		return
	}

	if err := store.DeleteAmenity(r.Context(), h.DB, id); err != nil {
		writeError(w, r, err)
		return
	}

	claims := GetClaims(r.Context())
	slog.Info("amenity deleted", "user", claims.Username, "amenity", a.Name)
	jsonResponse(w, http.StatusOK, map[string]string{"message": "amenity deleted"})
}

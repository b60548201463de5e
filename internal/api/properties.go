package api

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/erazemk/minirent/internal/db"
	"github.com/erazemk/minirent/internal/model"
	"github.com/erazemk/minirent/internal/rental"
	"github.com/erazemk/minirent/internal/store"
)

// PropertiesHandler handles property endpoints.
type PropertiesHandler struct {
	DB     *sql.DB
	Engine *rental.Engine
}

type propertyRequest struct {
	Title            string  `json:"title"`
	Description      string  `json:"description"`
	Address          string  `json:"address"`
	City             string  `json:"city"`
	Bedrooms         int     `json:"bedrooms"`
	Bathrooms        int     `json:"bathrooms"`
	AreaM2           float64 `json:"area_m2"`
	MonthlyRentCents int64   `json:"monthly_rent_cents"`
	// OwnerID lets an admin create a property on behalf of an owner.
	OwnerID int64 `json:"owner_id"`
}

func (req *propertyRequest) validate() error {
	req.Title = strings.TrimSpace(req.Title)
	req.Address = strings.TrimSpace(req.Address)
	req.City = strings.TrimSpace(req.City)
	switch {
	case req.Title == "" || req.Address == "" || req.City == "":
		return fmt.Errorf("%w: title, address, and city required", model.ErrValidation)
	case req.Bedrooms < 0 || req.Bathrooms < 0 || req.AreaM2 < 0:
		return fmt.Errorf("%w: room counts and area must not be negative", model.ErrValidation)
	case req.MonthlyRentCents < 0:
		return fmt.Errorf("%w: monthly rent must not be negative", model.ErrValidation)
	}
	return nil
}

func (req *propertyRequest) apply(p *model.Property) {
	p.Title = req.Title
	p.Description = strings.TrimSpace(req.Description)
	p.Address = req.Address
	p.City = req.City
	p.Bedrooms = req.Bedrooms
	p.Bathrooms = req.Bathrooms
	p.AreaM2 = req.AreaM2
	p.MonthlyRentCents = req.MonthlyRentCents
}

type propertyStatusRequest struct {
	Status string `json:"status"`
}

type amenitiesRequest struct {
	AmenityIDs []int64 `json:"amenity_ids"`
}

// List handles GET /api/properties.
// Query: status, owner_id, city, max_rent_cents, limit, offset.
func (h *PropertiesHandler) List(w http.ResponseWriter, r *http.Request) {
	var filter model.PropertyFilter
	q := r.URL.Query()

	if v := q.Get("status"); v != "" {
		status, err := model.ParsePropertyStatus(v)
		if err != nil {
			writeError(w, r, err)
			return
		}
		filter.Status = status
	}
	filter.City = strings.TrimSpace(q.Get("city"))

	var err error
	if filter.OwnerID, err = queryInt(r, "owner_id"); err != nil {
		writeError(w, r, err)
		return
	}
	if filter.MaxRentCents, err = queryInt(r, "max_rent_cents"); err != nil {
		writeError(w, r, err)
		return
	}
	limit, err := queryInt(r, "limit")
	if err != nil {
		writeError(w, r, err)
		return
	}
	offset, err := queryInt(r, "offset")
	if err != nil {
		writeError(w, r, err)
		return
	}
	filter.Limit, filter.Offset = int(limit), int(offset)

	properties, err := store.ListProperties(r.Context(), h.DB, filter)
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, emptyIfNil(properties))
}

// Create handles POST /api/properties.
func (h *PropertiesHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req propertyRequest
	if err := decodeJSON(w, r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, r, err)
		return
	}

	claims := GetClaims(r.Context())
	ownerID := claims.UserID
	if req.OwnerID != 0 && req.OwnerID != claims.UserID {
		if claims.Role != model.RoleAdmin {
			jsonError(w, http.StatusForbidden, "only admins can create properties for other owners")
			return
		}
		owner, err := store.GetUser(r.Context(), h.DB, req.OwnerID)
		if err != nil {
			writeError(w, r, err)
			return
		}
		if owner == nil || owner.DeletedAt != nil || !model.RoleAtLeast(owner.Role, model.RoleOwner) {
			writeError(w, r, fmt.Errorf("%w: owner %d does not exist", model.ErrValidation, req.OwnerID))
			return
		}
		ownerID = owner.ID
	}

	p := &model.Property{OwnerID: ownerID, Status: model.PropertyAvailable}
	req.apply(p)
	created, err := store.CreateProperty(r.Context(), h.DB, p)
	if err != nil {
		writeError(w, r, err)
		return
	}

	slog.Info("property created", "user", claims.Username, "property", created.ID, "title", created.Title)
	jsonResponse(w, http.StatusCreated, created)
}

// Get handles GET /api/properties/{id}.
func (h *PropertiesHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	p, err := store.GetProperty(r.Context(), h.DB, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if p == nil {
		writeError(w, r, fmt.Errorf("property %d: %w", id, model.ErrNotFound))
		return
	}
	jsonResponse(w, http.StatusOK, p)
}

// Update handles PUT /api/properties/{id}. Status is not part of the body;
// it has its own endpoint.
func (h *PropertiesHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req propertyRequest
	if err := decodeJSON(w, r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, r, err)
		return
	}

	claims := GetClaims(r.Context())
	var updated *model.Property
	err = db.WithTx(r.Context(), h.DB, func(ctx context.Context, tx db.DBTX) error {
		p, err := managedProperty(ctx, tx, id, claims.UserID, claims.Role)
		if err != nil {
			return err
		}
		req.apply(p)
		if err := store.UpdateProperty(ctx, tx, p); err != nil {
			return err
		}
		updated, err = store.GetProperty(ctx, tx, id)
		return err
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	slog.Info("property updated", "user", claims.Username, "property", id)
	jsonResponse(w, http.StatusOK, updated)
}

// SetStatus handles PUT /api/properties/{id}/status.
func (h *PropertiesHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req propertyStatusRequest
	if err := decodeJSON(w, r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	status, err := model.ParsePropertyStatus(req.Status)
	if err != nil {
		writeError(w, r, err)
		return
	}

	p, err := h.Engine.SetPropertyStatus(r.Context(), id, status, actorFrom(r))
	if err != nil {
		writeError(w, r, err)
		return
	}

	claims := GetClaims(r.Context())
	slog.Info("property status changed", "user", claims.Username, "property", id, "status", status.String())
	jsonResponse(w, http.StatusOK, p)
}

// Delete handles DELETE /api/properties/{id}.
func (h *PropertiesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := h.Engine.DeleteProperty(r.Context(), id, actorFrom(r)); err != nil {
		writeError(w, r, err)
		return
	}

	claims := GetClaims(r.Context())
	slog.Info("property deleted", "user", claims.Username, "property", id)
	jsonResponse(w, http.StatusOK, map[string]string{"message": "property deleted"})
}

// SetAmenities handles PUT /api/properties/{id}/amenities, replacing the
// property's amenity set.
func (h *PropertiesHandler) SetAmenities(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req amenitiesRequest
	if err := decodeJSON(w, r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	claims := GetClaims(r.Context())
	var updated *model.Property
	err = db.WithTx(r.Context(), h.DB, func(ctx context.Context, tx db.DBTX) error {
		if _, err := managedProperty(ctx, tx, id, claims.UserID, claims.Role); err != nil {
			return err
		}
		for _, aid := range req.AmenityIDs {
			a, err := store.GetAmenity(ctx, tx, aid)
			if err != nil {
				return err
			}
			if a == nil {
				return fmt.Errorf("%w: unknown amenity %d", model.ErrValidation, aid)
			}
		}
		if err := store.SetPropertyAmenities(ctx, tx, id, req.AmenityIDs); err != nil {
			return err
		}
		updated, err = store.GetProperty(ctx, tx, id)
		return err
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	slog.Info("property amenities set", "user", claims.Username, "property", id, "amenities", len(req.AmenityIDs))
	jsonResponse(w, http.StatusOK, updated)
}

// managedProperty loads a live property the user may edit: its owner or
// any admin.
func managedProperty(ctx context.Context, q db.DBTX, id, userID int64, role string) (*model.Property, error) {
	p, err := store.GetProperty(ctx, q, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, fmt.Errorf("property %d: %w", id, model.ErrNotFound)
	}
	if p.OwnerID != userID && role != model.RoleAdmin {
		return nil, fmt.Errorf("property %d: %w", id, model.ErrForbidden)
	}
	return p, nil
}

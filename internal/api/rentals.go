package api

import (
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/erazemk/minirent/internal/model"
	"github.com/erazemk/minirent/internal/rental"
	"github.com/erazemk/minirent/internal/store"
)

// RentalsHandler exposes the rental lifecycle over HTTP.
type RentalsHandler struct {
	DB     *sql.DB
	Engine *rental.Engine
}

type createRentalRequest struct {
	PropertyID           int64  `json:"property_id"`
	TenantID             *int64 `json:"tenant_id"`
	TenantName           string `json:"tenant_name"`
	TenantEmail          string `json:"tenant_email"`
	TenantPhone          string `json:"tenant_phone"`
	StartDate            string `json:"start_date"`
	MonthlyRentCents     *int64 `json:"monthly_rent_cents"`
	SecurityDepositCents int64  `json:"security_deposit_cents"`
	Notes                string `json:"notes"`
	InquiryID            int64  `json:"inquiry_id"`
}

func (req createRentalRequest) toEngine() (rental.CreateRequest, error) {
	start, err := parseDate(req.StartDate)
	if err != nil {
		return rental.CreateRequest{}, err
	}
	return rental.CreateRequest{
		PropertyID:           req.PropertyID,
		TenantID:             req.TenantID,
		TenantName:           req.TenantName,
		TenantEmail:          req.TenantEmail,
		TenantPhone:          req.TenantPhone,
		StartDate:            start,
		MonthlyRentCents:     req.MonthlyRentCents,
		SecurityDepositCents: req.SecurityDepositCents,
		Notes:                req.Notes,
		InquiryID:            req.InquiryID,
	}, nil
}

type rentalStatusRequest struct {
	Status string `json:"status"`
}

type endRentalRequest struct {
	EndDate string `json:"end_date"`
	Notes   string `json:"notes"`
}

// Create handles POST /api/rentals. A rental created by the property owner
// starts active; anyone else's request waits for approval.
func (h *RentalsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createRentalRequest
	if err := decodeJSON(w, r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	claims := GetClaims(r.Context())
	if req.TenantID != nil && *req.TenantID != claims.UserID && claims.Role == model.RoleTenant {
		jsonError(w, http.StatusForbidden, "tenants can only request rentals for themselves")
		return
	}

	creq, err := req.toEngine()
	if err != nil {
		writeError(w, r, err)
		return
	}

	created, err := h.Engine.Create(r.Context(), creq, actorFrom(r))
	if err != nil {
		writeError(w, r, err)
		return
	}

	slog.Info("rental created", "user", claims.Username, "rental", created.ID,
		"property", created.PropertyID, "status", created.Status.String())
	jsonResponse(w, http.StatusCreated, created)
}

// List handles GET /api/rentals. Admins see every rental; everyone else sees
// the rentals they created, rent, or own the property of.
// Query: property_id, status, limit, offset.
func (h *RentalsHandler) List(w http.ResponseWriter, r *http.Request) {
	propertyID, err := queryInt(r, "property_id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.list(w, r, propertyID)
}

// ListForProperty handles GET /api/properties/{id}/rentals.
func (h *RentalsHandler) ListForProperty(w http.ResponseWriter, r *http.Request) {
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
	h.list(w, r, id)
}

func (h *RentalsHandler) list(w http.ResponseWriter, r *http.Request, propertyID int64) {
	filter := model.RentalFilter{PropertyID: propertyID}
	if v := r.URL.Query().Get("status"); v != "" {
		status, err := model.ParseRentalStatus(v)
		if err != nil {
			writeError(w, r, err)
			return
		}
		filter.Status = status
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

	actor := actorFrom(r)
	visibleTo := actor.UserID
	if actor.IsAdmin {
		visibleTo = 0
	}

	rentals, err := store.ListRentals(r.Context(), h.DB, filter, visibleTo)
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, emptyIfNil(rentals))
}

// Get handles GET /api/rentals/{id}.
func (h *RentalsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	rec, err := h.Engine.Get(r.Context(), id, actorFrom(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, rec)
}

// UpdateStatus handles PUT /api/rentals/{id}/status.
func (h *RentalsHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req rentalStatusRequest
	if err := decodeJSON(w, r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	to, err := model.ParseRentalStatus(req.Status)
	if err != nil {
		writeError(w, r, err)
		return
	}

	h.transition(w, r, "rental status changed", func() (*model.Rental, error) {
		return h.Engine.UpdateStatus(r.Context(), id, to, actorFrom(r))
	})
}

// Approve handles POST /api/rentals/{id}/approve.
func (h *RentalsHandler) Approve(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.transition(w, r, "rental approved", func() (*model.Rental, error) {
		return h.Engine.Approve(r.Context(), id, actorFrom(r))
	})
}

// Reject handles POST /api/rentals/{id}/reject.
func (h *RentalsHandler) Reject(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.transition(w, r, "rental rejected", func() (*model.Rental, error) {
		return h.Engine.Reject(r.Context(), id, actorFrom(r))
	})
}

// End handles POST /api/rentals/{id}/end.
func (h *RentalsHandler) End(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req endRentalRequest
	if err := decodeJSON(w, r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	end, err := parseDate(req.EndDate)
	if err != nil {
		writeError(w, r, err)
		return
	}

	h.transition(w, r, "rental ended", func() (*model.Rental, error) {
		return h.Engine.End(r.Context(), id, rental.EndRequest{EndDate: end, Notes: req.Notes}, actorFrom(r))
	})
}

// Delete handles DELETE /api/rentals/{id}.
func (h *RentalsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.Engine.Delete(r.Context(), id, actorFrom(r)); err != nil {
		writeError(w, r, err)
		return
	}

	claims := GetClaims(r.Context())
	slog.Info("rental deleted", "user", claims.Username, "rental", id)
	jsonResponse(w, http.StatusOK, map[string]string{"message": "rental deleted"})
}

// transition runs one engine status change and writes its outcome.
func (h *RentalsHandler) transition(w http.ResponseWriter, r *http.Request, event string, fn func() (*model.Rental, error)) {
	rec, err := fn()
	if err != nil {
		writeError(w, r, err)
		return
	}
	claims := GetClaims(r.Context())
	slog.Info(event, "user", claims.Username, "rental", rec.ID, "property", rec.PropertyID, "status", rec.Status.String())
	jsonResponse(w, http.StatusOK, rec)
}

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

// InquiriesHandler handles contact requests from prospective tenants.
type InquiriesHandler struct {
	DB     *sql.DB
	Engine *rental.Engine
}

type createInquiryRequest struct {
	PropertyID *int64 `json:"property_id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	Message    string `json:"message"`
}

type inquiryStatusRequest struct {
	Status string `json:"status"`
}

type convertInquiryRequest struct {
	StartDate            string `json:"start_date"`
	MonthlyRentCents     *int64 `json:"monthly_rent_cents"`
	SecurityDepositCents int64  `json:"security_deposit_cents"`
	Notes                string `json:"notes"`
}

// Create handles POST /api/inquiries. No authentication is required.
func (h *InquiriesHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createInquiryRequest
	if err := decodeJSON(w, r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	in := &model.Inquiry{
		PropertyID: req.PropertyID,
		Name:       strings.TrimSpace(req.Name),
		Email:      strings.TrimSpace(req.Email),
		Phone:      strings.TrimSpace(req.Phone),
		Message:    strings.TrimSpace(req.Message),
	}
	if in.Name == "" || in.Message == "" || !strings.Contains(in.Email, "@") {
		jsonError(w, http.StatusBadRequest, "name, valid email, and message required")
		return
	}

	if in.PropertyID != nil {
		p, err := store.GetProperty(r.Context(), h.DB, *in.PropertyID)
		if err != nil {
			writeError(w, r, err)
			return
		}
		if p == nil {
			writeError(w, r, fmt.Errorf("property %d: %w", *in.PropertyID, model.ErrNotFound))
			return
		}
	}

	created, err := store.CreateInquiry(r.Context(), h.DB, in)
	if err != nil {
		writeError(w, r, err)
		return
	}

	slog.Info("inquiry received", "inquiry", created.ID, "email", created.Email)
	jsonResponse(w, http.StatusCreated, created)
}

// List handles GET /api/inquiries. Owners see inquiries about their own
// properties; admins see all.
func (h *InquiriesHandler) List(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())
	ownerID := claims.UserID
	if claims.Role == model.RoleAdmin {
		ownerID = 0
	}

	inquiries, err := store.ListInquiries(r.Context(), h.DB, ownerID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, emptyIfNil(inquiries))
}

// Get handles GET /api/inquiries/{id}.
func (h *InquiriesHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	claims := GetClaims(r.Context())
	in, _, err := visibleInquiry(r.Context(), h.DB, id, claims.UserID, claims.Role)
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, in)
}

// UpdateStatus handles PUT /api/inquiries/{id}/status. A new inquiry may be
// accepted or rejected; conversion has its own endpoint.
func (h *InquiriesHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req inquiryStatusRequest
	if err := decodeJSON(w, r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	to, err := model.ParseInquiryStatus(req.Status)
	if err != nil {
		writeError(w, r, err)
		return
	}

	claims := GetClaims(r.Context())
	var updated *model.Inquiry
	err = db.WithTx(r.Context(), h.DB, func(ctx context.Context, tx db.DBTX) error {
		in, _, err := visibleInquiry(ctx, tx, id, claims.UserID, claims.Role)
		if err != nil {
			return err
		}
		if in.Status != model.InquiryNew || (to != model.InquiryAccepted && to != model.InquiryRejected) {
			return fmt.Errorf("inquiry %d from %s to %s: %w", id, in.Status, to, model.ErrInvalidTransition)
		}
		if err := store.SetInquiryStatus(ctx, tx, id, to); err != nil {
			return err
		}
		updated, err = store.GetInquiry(ctx, tx, id)
		return err
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	slog.Info("inquiry status changed", "user", claims.Username, "inquiry", id, "status", to.String())
	jsonResponse(w, http.StatusOK, updated)
}

// Convert handles POST /api/inquiries/{id}/convert. The inquiry becomes a
// rental of its property through the lifecycle engine and is linked to it.
func (h *InquiriesHandler) Convert(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req convertInquiryRequest
	if err := decodeJSON(w, r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	start, err := parseDate(req.StartDate)
	if err != nil {
		writeError(w, r, err)
		return
	}

	claims := GetClaims(r.Context())
	in, p, err := visibleInquiry(r.Context(), h.DB, id, claims.UserID, claims.Role)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if p == nil {
		writeError(w, r, fmt.Errorf("inquiry %d has no live property to rent: %w", id, model.ErrPreconditionFailed))
		return
	}
	if in.Status == model.InquiryConverted || in.Status == model.InquiryRejected {
		writeError(w, r, fmt.Errorf("inquiry %d is %s: %w", id, in.Status, model.ErrPreconditionFailed))
		return
	}

	created, err := h.Engine.Create(r.Context(), rental.CreateRequest{
		PropertyID:           p.ID,
		TenantName:           in.Name,
		TenantEmail:          in.Email,
		TenantPhone:          in.Phone,
		StartDate:            start,
		MonthlyRentCents:     req.MonthlyRentCents,
		SecurityDepositCents: req.SecurityDepositCents,
		Notes:                req.Notes,
		InquiryID:            in.ID,
	}, actorFrom(r))
	if err != nil {
		writeError(w, r, err)
		return
	}

	slog.Info("inquiry converted", "user", claims.Username, "inquiry", id, "rental", created.ID, "status", created.Status.String())
	jsonResponse(w, http.StatusCreated, created)
}

// visibleInquiry loads an inquiry the user may handle: admins see all,
// owners see inquiries about their live properties. The property is nil
// when the inquiry names none or it has been deleted.
func visibleInquiry(ctx context.Context, q db.DBTX, id, userID int64, role string) (*model.Inquiry, *model.Property, error) {
	in, err := store.GetInquiry(ctx, q, id)
	if err != nil {
		return nil, nil, err
	}
	if in == nil {
		return nil, nil, fmt.Errorf("inquiry %d: %w", id, model.ErrNotFound)
	}

	var p *model.Property
	if in.PropertyID != nil {
		p, err = store.GetProperty(ctx, q, *in.PropertyID)
		if err != nil {
			return nil, nil, err
		}
	}
	if role != model.RoleAdmin && (p == nil || p.OwnerID != userID) {
		return nil, nil, fmt.Errorf("inquiry %d: %w", id, model.ErrNotFound)
	}
	return in, p, nil
}

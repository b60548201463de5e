package api

import (
	"database/sql"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/erazemk/minirent/internal/model"
	"github.com/erazemk/minirent/internal/rental"
	"github.com/erazemk/minirent/internal/store"
)

// PaymentsHandler records money received against rentals.
type PaymentsHandler struct {
	DB     *sql.DB
	Engine *rental.Engine
}

type createPaymentRequest struct {
	AmountCents int64  `json:"amount_cents"`
	PaidAt      string `json:"paid_at"`
	Method      string `json:"method"`
	Notes       string `json:"notes"`
}

type paymentsResponse struct {
	Payments   []model.Payment `json:"payments"`
	TotalCents int64           `json:"total_cents"`
}

// Create handles POST /api/rentals/{id}/payments. Only the property owner
// or an admin records payments.
func (h *PaymentsHandler) Create(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req createPaymentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.AmountCents <= 0 {
		jsonError(w, http.StatusBadRequest, "amount must be positive")
		return
	}
	if req.Method == "" {
		req.Method = model.PaymentTransfer
	}
	req.Method = strings.ToLower(strings.TrimSpace(req.Method))
	if !model.ValidPaymentMethod(req.Method) {
		jsonError(w, http.StatusBadRequest, "method must be transfer, cash, or card")
		return
	}
	paidAt, err := parseDate(req.PaidAt)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if paidAt.IsZero() {
		paidAt = time.Now().UTC()
	}

	actor := actorFrom(r)
	rec, err := h.Engine.Get(r.Context(), id, actor)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if !actor.IsAdmin && rec.PropertyOwnerID != actor.UserID {
		jsonError(w, http.StatusForbidden, "only the property owner or an admin can record payments")
		return
	}

	recordedBy := actor.UserID
	pm, err := store.CreatePayment(r.Context(), h.DB, &model.Payment{
		RentalID:    rec.ID,
		AmountCents: req.AmountCents,
		PaidAt:      paidAt,
		Method:      req.Method,
		Notes:       strings.TrimSpace(req.Notes),
		RecordedBy:  &recordedBy,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	claims := GetClaims(r.Context())
	slog.Info("payment recorded", "user", claims.Username, "rental", rec.ID, "amount_cents", pm.AmountCents, "method", pm.Method)
	jsonResponse(w, http.StatusCreated, pm)
}

// List handles GET /api/rentals/{id}/payments.
func (h *PaymentsHandler) List(w http.ResponseWriter, r *http.Request) {
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

	payments, err := store.ListPayments(r.Context(), h.DB, rec.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	total, err := store.PaymentTotal(r.Context(), h.DB, rec.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, paymentsResponse{Payments: emptyIfNil(payments), TotalCents: total})
}

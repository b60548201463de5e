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
	"github.com/erazemk/minirent/internal/store"
)

// ReviewsHandler handles property reviews.
type ReviewsHandler struct {
	DB *sql.DB
}

type createReviewRequest struct {
	Stars int    `json:"stars"`
	Title string `json:"title"`
	Body  string `json:"body"`
}

// List handles GET /api/properties/{id}/reviews.
func (h *ReviewsHandler) List(w http.ResponseWriter, r *http.Request) {
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

	reviews, err := store.ListReviews(r.Context(), h.DB, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, emptyIfNil(reviews))
}

// Create handles POST /api/properties/{id}/reviews. Only users who have
// rented the property may review it, once.
func (h *ReviewsHandler) Create(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req createReviewRequest
	if err := decodeJSON(w, r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Stars < 1 || req.Stars > 5 {
		jsonError(w, http.StatusBadRequest, "stars must be between 1 and 5")
		return
	}

	claims := GetClaims(r.Context())
	var created *model.Review
	err = db.WithTx(r.Context(), h.DB, func(ctx context.Context, tx db.DBTX) error {
		p, err := store.GetProperty(ctx, tx, id)
		if err != nil {
			return err
		}
		if p == nil {
			return fmt.Errorf("property %d: %w", id, model.ErrNotFound)
		}
		if p.OwnerID == claims.UserID {
			return fmt.Errorf("owners cannot review their own property: %w", model.ErrForbidden)
		}
		rented, err := store.HasRented(ctx, tx, claims.UserID, id)
		if err != nil {
			return err
		}
		if !rented {
			return fmt.Errorf("only past or current renters can review: %w", model.ErrForbidden)
		}
		created, err = store.CreateReview(ctx, tx, &model.Review{
			PropertyID: id,
			UserID:     claims.UserID,
			Stars:      req.Stars,
			Title:      strings.TrimSpace(req.Title),
			Body:       strings.TrimSpace(req.Body),
		})
		return err
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	slog.Info("review created", "user", claims.Username, "property", id, "review", created.ID, "stars", created.Stars)
	jsonResponse(w, http.StatusCreated, created)
}

// Delete handles DELETE /api/reviews/{id}. Authors and admins may delete.
func (h *ReviewsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	rv, err := store.GetReview(r.Context(), h.DB, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if rv == nil {
		writeError(w, r, fmt.Errorf("review %d: %w", id, model.ErrNotFound))
		return
	}

	claims := GetClaims(r.Context())
	if rv.UserID != claims.UserID && claims.Role != model.RoleAdmin {
		jsonError(w, http.StatusForbidden, "only the author or an admin can delete a review")
		return
	}

	if err := store.DeleteReview(r.Context(), h.DB, id); err != nil {
		writeError(w, r, err)
		return
	}

	slog.Info("review deleted", "user", claims.Username, "review", id, "property", rv.PropertyID)
	jsonResponse(w, http.StatusOK, map[string]string{"message": "review deleted"})
}

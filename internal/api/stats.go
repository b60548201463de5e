package api

import (
	"database/sql"
	"log/slog"
	"net/http"
	"time"

	"github.com/erazemk/minirent/internal/model"
	"github.com/erazemk/minirent/internal/stats"
	"github.com/erazemk/minirent/internal/store"
)

// StatsHandler serves owner portfolio statistics.
type StatsHandler struct {
	DB *sql.DB
	// Stats runs refreshes; when nil, refreshes run inline.
	Stats *stats.Scheduler
}

type statsResponse struct {
	Owners     []model.OwnerStats `json:"owners"`
	LastReport *stats.Report      `json:"last_report,omitempty"`
}

// Mine handles GET /api/stats/me. The snapshot is served when one exists;
// otherwise the figures are computed live.
func (h *StatsHandler) Mine(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())
	st, err := store.GetOwnerStats(r.Context(), h.DB, claims.UserID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if st == nil {
		st, err = store.GetOwnerPortfolio(r.Context(), h.DB, claims.UserID)
		if err != nil {
			writeError(w, r, err)
			return
		}
	}
	if st == nil {
		jsonError(w, http.StatusNotFound, "no statistics for this user")
		return
	}
	jsonResponse(w, http.StatusOK, st)
}

// List handles GET /api/stats.
func (h *StatsHandler) List(w http.ResponseWriter, r *http.Request) {
	owners, err := store.ListOwnerStats(r.Context(), h.DB)
	if err != nil {
		writeError(w, r, err)
		return
	}
	resp := statsResponse{Owners: emptyIfNil(owners)}
	if h.Stats != nil {
		resp.LastReport = h.Stats.Last()
	}
	jsonResponse(w, http.StatusOK, resp)
}

// Refresh handles POST /api/stats/refresh.
func (h *StatsHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var report *stats.Report
	var err error
	if h.Stats != nil {
		report, err = h.Stats.RunNow(r.Context())
	} else {
		report, err = stats.Refresh(r.Context(), h.DB, time.Now())
	}
	if err != nil {
		writeError(w, r, err)
		return
	}

	claims := GetClaims(r.Context())
	slog.Info("stats refreshed", "user", claims.Username, "owners", report.Owners, "drift", len(report.Drift))
	jsonResponse(w, http.StatusOK, report)
}

package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/crucial707/threatwatch/internal/middleware"
	"github.com/crucial707/threatwatch/internal/repo"
)

type ReportHandler struct {
	Repo *repo.ReportRepo
}

//
// ==========================
// List Reports
// ==========================
//

func (h *ReportHandler) ListReports(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := middleware.OwnerID(r.Context())
	if !ok {
		JSONError(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	// Default pagination
	limit := 50
	offset := 0

	if l := r.URL.Query().Get("limit"); l != "" {
		if val, err := strconv.Atoi(l); err == nil && val > 0 && val <= 200 {
			limit = val
		}
	}
	if o := r.URL.Query().Get("offset"); o != "" {
		if val, err := strconv.Atoi(o); err == nil && val >= 0 {
			offset = val
		}
	}

	reports, err := h.Repo.ListByOwner(r.Context(), ownerID, limit, offset)
	if err != nil {
		JSONError(w, "failed to fetch reports", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(reports)
}

//
// ==========================
// Download Report
// ==========================
//

func (h *ReportHandler) DownloadReport(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := middleware.OwnerID(r.Context())
	if !ok {
		JSONError(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	id := chi.URLParam(r, "id")

	report, err := h.Repo.GetByID(r.Context(), id)
	if err != nil {
		JSONError(w, "failed to fetch report", http.StatusInternalServerError)
		return
	}
	if report == nil || report.OwnerID != ownerID {
		JSONError(w, "report not found", http.StatusNotFound)
		return
	}

	http.Redirect(w, r, report.ArtifactLocation, http.StatusTemporaryRedirect)
}

//
// ==========================
// Get Report By ID
// ==========================
//

func (h *ReportHandler) GetReport(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := middleware.OwnerID(r.Context())
	if !ok {
		JSONError(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	id := chi.URLParam(r, "id")

	report, err := h.Repo.GetByID(r.Context(), id)
	if err != nil {
		JSONError(w, "failed to fetch report", http.StatusInternalServerError)
		return
	}
	if report == nil || report.OwnerID != ownerID {
		JSONError(w, "report not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(report)
}

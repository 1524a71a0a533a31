package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/crucial707/threatwatch/internal/repo"
)

// AuditHandler exposes the search audit trail. Audit records are operational
// data, not owner scoped.
type AuditHandler struct {
	Repo *repo.SearchAuditRepo
}

func (h *AuditHandler) ListAuditRecords(w http.ResponseWriter, r *http.Request) {
	// Default pagination
	limit := 100
	offset := 0

	if l := r.URL.Query().Get("limit"); l != "" {
		if val, err := strconv.Atoi(l); err == nil && val > 0 && val <= 500 {
			limit = val
		}
	}
	if o := r.URL.Query().Get("offset"); o != "" {
		if val, err := strconv.Atoi(o); err == nil && val >= 0 {
			offset = val
		}
	}

	records, err := h.Repo.List(r.Context(), limit, offset)
	if err != nil {
		JSONError(w, "failed to fetch audit records", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(records)
}

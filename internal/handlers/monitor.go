package handlers

import (
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/crucial707/threatwatch/internal/middleware"
	"github.com/crucial707/threatwatch/internal/queue"
	"github.com/crucial707/threatwatch/internal/repo"
	"github.com/crucial707/threatwatch/internal/schedule"
)

type MonitorHandler struct {
	Repo  *repo.MonitorRepo
	Queue queue.Enqueuer
	Now   func() time.Time
}

func (h *MonitorHandler) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now().UTC()
}

//
// ==========================
// Create Monitor
// ==========================
//

func (h *MonitorHandler) CreateMonitor(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := middleware.OwnerID(r.Context())
	if !ok {
		JSONError(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var input struct {
		Query     string `json:"query" validate:"required,min=2,max=500"`
		Frequency string `json:"frequency" validate:"required,oneof=daily weekly monthly"`
	}

	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		JSONError(w, "invalid JSON", http.StatusBadRequest)
		return
	}

	// ===== Validate input =====
	validate := validator.New()
	if err := validate.Struct(input); err != nil {
		fields := map[string]string{}
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			for _, fe := range verrs {
				fields[strings.ToLower(fe.Field())] = fe.Tag()
			}
		}
		JSONValidationError(w, "invalid monitor", fields, http.StatusBadRequest)
		return
	}

	nextRun, err := schedule.FirstRun(input.Frequency, h.now())
	if err != nil {
		JSONError(w, "unsupported frequency", http.StatusBadRequest)
		return
	}

	monitor, err := h.Repo.Create(r.Context(), ownerID, input.Query, input.Frequency, nextRun)
	if err != nil {
		JSONError(w, "failed to create monitor", http.StatusInternalServerError)
		return
	}

	// An initial scan runs right away; the schedule covers subsequent runs.
	if err := h.Queue.Enqueue(r.Context(), monitor.ID); err != nil {
		slog.Error("enqueue initial scan", "monitor_id", monitor.ID, "error", err)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(monitor)
}

//
// ==========================
// List Monitors
// ==========================
//

func (h *MonitorHandler) ListMonitors(w http.ResponseWriter, r *http.Request) {
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

	monitors, err := h.Repo.ListByOwner(r.Context(), ownerID, limit, offset)
	if err != nil {
		JSONError(w, "failed to fetch monitors", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(monitors)
}

//
// ==========================
// Get Monitor By ID
// ==========================
//

func (h *MonitorHandler) GetMonitor(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := middleware.OwnerID(r.Context())
	if !ok {
		JSONError(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	id := chi.URLParam(r, "id")

	monitor, err := h.Repo.GetByID(r.Context(), id)
	if err != nil {
		JSONError(w, "failed to fetch monitor", http.StatusInternalServerError)
		return
	}
	if monitor == nil || monitor.OwnerID != ownerID {
		JSONError(w, "monitor not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(monitor)
}

//
// ==========================
// Deactivate Monitor
// ==========================
//

func (h *MonitorHandler) DeactivateMonitor(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := middleware.OwnerID(r.Context())
	if !ok {
		JSONError(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	id := chi.URLParam(r, "id")

	monitor, err := h.Repo.GetByID(r.Context(), id)
	if err != nil {
		JSONError(w, "failed to fetch monitor", http.StatusInternalServerError)
		return
	}
	if monitor == nil || monitor.OwnerID != ownerID {
		JSONError(w, "monitor not found", http.StatusNotFound)
		return
	}

	if err := h.Repo.Deactivate(r.Context(), id); err != nil {
		if err == sql.ErrNoRows {
			JSONError(w, "monitor not found", http.StatusNotFound)
			return
		}
		JSONError(w, "failed to deactivate monitor", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

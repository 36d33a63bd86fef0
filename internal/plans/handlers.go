package plans

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"smart-planner-backend/internal/ai"
	"smart-planner-backend/internal/planner"
	"smart-planner-backend/internal/store"
)

func UpdateHandler(plans *store.Plans) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			ID      int     `json:"id"`
			Summary *string `json:"summary"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		if body.ID == 0 || body.Summary == nil {
			http.Error(w, "id and summary are required", http.StatusBadRequest)
			return
		}

		if err := plans.UpdateSummary(r.Context(), body.ID, *body.Summary); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				http.Error(w, "plan not found", http.StatusNotFound)
				return
			}
			http.Error(w, "db error", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"ok": true})
	}
}

// GenerateHandler triggers a cascade run. Re-triggering the same scope is
// safe: regeneration fully replaces whatever the previous run wrote.
func GenerateHandler(p *planner.Planner) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Scope string `json:"scope"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		w.Header().Set("Content-Type", "application/json")

		if err := p.RunCascade(r.Context(), body.Scope, time.Now()); err != nil {
			w.WriteHeader(statusFor(err))
			_ = json.NewEncoder(w).Encode(map[string]any{"error": err.Error()})
			return
		}

		_ = json.NewEncoder(w).Encode(map[string]any{"success": true})
	}
}

func statusFor(err error) int {
	var validation *planner.ValidationError
	var upstream *ai.UpstreamError
	var malformed *ai.MalformedResponseError

	switch {
	case errors.As(err, &validation):
		return http.StatusBadRequest
	case errors.As(err, &upstream), errors.As(err, &malformed):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

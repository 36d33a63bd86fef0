package settings

import (
	"encoding/json"
	"net/http"

	"smart-planner-backend/internal/fetcher"
	"smart-planner-backend/internal/store"
)

func GetHandler(settings *store.Settings) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, err := settings.Get(r.Context())
		if err != nil {
			http.Error(w, "db error", http.StatusInternalServerError)
			return
		}
		if s.DynamicSources == nil {
			s.DynamicSources = []fetcher.Source{}
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(s)
	}
}

func UpdateHandler(settings *store.Settings) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			WorkingDays    *[]int            `json:"working_days"`
			DynamicSources *[]fetcher.Source `json:"dynamic_sources"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		if body.WorkingDays == nil && body.DynamicSources == nil {
			http.Error(w, "no valid fields to update", http.StatusBadRequest)
			return
		}

		if body.WorkingDays != nil {
			for _, d := range *body.WorkingDays {
				if d < 0 || d > 6 {
					http.Error(w, "working days must be weekday indices 0-6", http.StatusBadRequest)
					return
				}
			}
			if err := settings.SetWorkingDays(r.Context(), *body.WorkingDays); err != nil {
				http.Error(w, "db error", http.StatusInternalServerError)
				return
			}
		}

		if body.DynamicSources != nil {
			if err := settings.SetDynamicSources(r.Context(), *body.DynamicSources); err != nil {
				http.Error(w, "db error", http.StatusInternalServerError)
				return
			}
		}

		s, err := settings.Get(r.Context())
		if err != nil {
			http.Error(w, "db error", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(s)
	}
}

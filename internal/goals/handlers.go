package goals

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"smart-planner-backend/internal/planner"
	"smart-planner-backend/internal/store"
)

type goalResponse struct {
	planner.Goal
	MonthlyPlans []planner.MonthlyPlan `json:"monthly_plans"`
}

func ListHandler(goals *store.Goals, plans *store.Plans) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		year, err := strconv.Atoi(r.URL.Query().Get("year"))
		if err != nil {
			year = time.Now().Year()
		}

		list, err := goals.ListGoals(r.Context(), year)
		if err != nil {
			http.Error(w, "db error", http.StatusInternalServerError)
			return
		}

		out := make([]goalResponse, 0, len(list))
		for _, g := range list {
			monthly, err := plans.ListPlansByGoal(r.Context(), g.ID)
			if err != nil {
				http.Error(w, "db error", http.StatusInternalServerError)
				return
			}
			if monthly == nil {
				monthly = []planner.MonthlyPlan{}
			}
			out = append(out, goalResponse{Goal: g, MonthlyPlans: monthly})
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(out)
	}
}

func CreateHandler(goals *store.Goals) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Title       string  `json:"title"`
			Description string  `json:"description"`
			Year        int     `json:"year"`
			Multiplier  float64 `json:"multiplier"`
			Frequency   string  `json:"frequency"`
			Category    string  `json:"category"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		if body.Title == "" || body.Description == "" || body.Year == 0 {
			http.Error(w, "title, description, and year are required", http.StatusBadRequest)
			return
		}
		if body.Multiplier == 0 {
			body.Multiplier = 3
		}

		g, err := goals.CreateGoal(r.Context(), planner.Goal{
			Title:       body.Title,
			Description: body.Description,
			Year:        body.Year,
			Multiplier:  body.Multiplier,
			Frequency:   body.Frequency,
			Category:    body.Category,
		})
		if err != nil {
			http.Error(w, "db error", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(g)
	}
}

func UpdateHandler(goals *store.Goals) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			ID int `json:"id"`
			store.GoalPatch
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		if body.ID == 0 {
			http.Error(w, "id is required", http.StatusBadRequest)
			return
		}

		if err := goals.UpdateGoal(r.Context(), body.ID, body.GoalPatch); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				http.Error(w, "goal not found", http.StatusNotFound)
				return
			}
			http.Error(w, "db error", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"ok": true})
	}
}

func DeleteHandler(goals *store.Goals) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.Atoi(r.URL.Query().Get("id"))
		if err != nil || id == 0 {
			http.Error(w, "id is required", http.StatusBadRequest)
			return
		}

		if err := goals.DeleteGoal(r.Context(), id); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				http.Error(w, "goal not found", http.StatusNotFound)
				return
			}
			http.Error(w, "db error", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"ok": true})
	}
}

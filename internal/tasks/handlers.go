package tasks

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

func intParam(r *http.Request, name string) int {
	v, _ := strconv.Atoi(r.URL.Query().Get(name))
	return v
}

func ListHandler(tasks *store.Tasks) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key := planner.ScopeKey{
			Scope: r.URL.Query().Get("scope"),
			Year:  intParam(r, "year"),
			Month: intParam(r, "month"),
			Week:  intParam(r, "week"),
			Day:   intParam(r, "day"),
		}

		list, err := tasks.ListTasks(r.Context(), key)
		if err != nil {
			http.Error(w, "db error", http.StatusInternalServerError)
			return
		}
		if list == nil {
			list = []planner.Task{}
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(list)
	}
}

// CreateHandler adds a manual task; it lands after the generated ones because
// the store assigns the next sort order in its scope.
func CreateHandler(tasks *store.Tasks) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Title       string `json:"title"`
			Description string `json:"description"`
			Scope       string `json:"scope"`
			Year        int    `json:"scope_year"`
			Month       int    `json:"scope_month"`
			Week        int    `json:"scope_week"`
			Day         int    `json:"scope_day"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		if body.Title == "" || body.Year == 0 {
			http.Error(w, "title and scope_year are required", http.StatusBadRequest)
			return
		}

		// The scope tag decides which coordinates must be present.
		switch body.Scope {
		case planner.ScopeMonth:
			if body.Month == 0 {
				http.Error(w, "month task needs scope_month", http.StatusBadRequest)
				return
			}
		case planner.ScopeWeek:
			if body.Month == 0 || body.Week == 0 {
				http.Error(w, "week task needs scope_month and scope_week", http.StatusBadRequest)
				return
			}
		case planner.ScopeDay:
			if body.Month == 0 || body.Day == 0 {
				http.Error(w, "day task needs scope_month and scope_day", http.StatusBadRequest)
				return
			}
		default:
			http.Error(w, "scope must be month, week, or day", http.StatusBadRequest)
			return
		}

		t, err := tasks.CreateTask(r.Context(), planner.Task{
			Title:       body.Title,
			Description: body.Description,
			Scope:       body.Scope,
			Year:        body.Year,
			Month:       body.Month,
			Week:        body.Week,
			Day:         body.Day,
		})
		if err != nil {
			http.Error(w, "db error", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(t)
	}
}

func UpdateHandler(tasks *store.Tasks) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			ID int `json:"id"`
			store.TaskPatch
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		if body.ID == 0 {
			http.Error(w, "id is required", http.StatusBadRequest)
			return
		}

		if err := tasks.UpdateTask(r.Context(), body.ID, body.TaskPatch); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				http.Error(w, "task not found", http.StatusNotFound)
				return
			}
			http.Error(w, "db error", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"ok": true})
	}
}

func DeleteHandler(tasks *store.Tasks) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.Atoi(r.URL.Query().Get("id"))
		if err != nil || id == 0 {
			http.Error(w, "id is required", http.StatusBadRequest)
			return
		}

		if err := tasks.DeleteTask(r.Context(), id); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				http.Error(w, "task not found", http.StatusNotFound)
				return
			}
			http.Error(w, "db error", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"ok": true})
	}
}

// TimetableHandler lays today's (or the requested day's) tasks out in fixed
// two-hour blocks for the timetable view.
func TimetableHandler(tasks *store.Tasks) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		year, month, day := intParam(r, "year"), intParam(r, "month"), intParam(r, "day")
		if year == 0 || month == 0 || day == 0 {
			now := time.Now()
			year, month, day = now.Year(), int(now.Month()), now.Day()
		}

		list, err := tasks.ListTasks(r.Context(), planner.ScopeKey{
			Scope: planner.ScopeDay, Year: year, Month: month, Day: day,
		})
		if err != nil {
			http.Error(w, "db error", http.StatusInternalServerError)
			return
		}

		slots := planner.BuildTimetable(list)
		if slots == nil {
			slots = []planner.TimetableSlot{}
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(slots)
	}
}

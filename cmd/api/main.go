package main

import (
	"net/http"

	"github.com/rs/cors"
	"go.uber.org/zap"

	"smart-planner-backend/internal/ai"
	"smart-planner-backend/internal/chat"
	"smart-planner-backend/internal/config"
	"smart-planner-backend/internal/db"
	"smart-planner-backend/internal/fetcher"
	"smart-planner-backend/internal/goals"
	"smart-planner-backend/internal/planner"
	"smart-planner-backend/internal/plans"
	"smart-planner-backend/internal/settings"
	"smart-planner-backend/internal/store"
	"smart-planner-backend/internal/tasks"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	cfg := config.Load()

	database, err := db.Connect(cfg.ConnString())
	if err != nil {
		logger.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer database.Close()
	logger.Info("connected to postgres", zap.String("db", cfg.DBName))

	goalStore := &store.Goals{DB: database}
	taskStore := &store.Tasks{DB: database}
	planStore := &store.Plans{DB: database}
	settingsStore := &store.Settings{DB: database}
	chatStore := &store.Chat{DB: database}

	model := ai.New(cfg.OpenRouterKey, cfg.OpenRouterModel, cfg.AppURL)

	p := planner.New(goalStore, taskStore, planStore, settingsStore, model, logger)
	p.Sources = &fetcher.ContextBuilder{
		Fetcher: fetcher.New(),
		Sources: settingsStore,
	}

	mux := http.NewServeMux()

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	// ----- GOALS API -----
	mux.HandleFunc("/goals", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			goals.ListHandler(goalStore, planStore)(w, r)
		case http.MethodPost:
			goals.CreateHandler(goalStore)(w, r)
		case http.MethodPatch:
			goals.UpdateHandler(goalStore)(w, r)
		case http.MethodDelete:
			goals.DeleteHandler(goalStore)(w, r)
		case http.MethodOptions:
			w.WriteHeader(http.StatusOK)
		default:
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		}
	})

	// ----- TASKS API -----
	mux.HandleFunc("/tasks", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			tasks.ListHandler(taskStore)(w, r)
		case http.MethodPost:
			tasks.CreateHandler(taskStore)(w, r)
		case http.MethodPatch:
			tasks.UpdateHandler(taskStore)(w, r)
		case http.MethodDelete:
			tasks.DeleteHandler(taskStore)(w, r)
		case http.MethodOptions:
			w.WriteHeader(http.StatusOK)
		default:
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		}
	})

	mux.HandleFunc("/tasks/timetable", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			tasks.TimetableHandler(taskStore)(w, r)
		case http.MethodOptions:
			w.WriteHeader(http.StatusOK)
		default:
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		}
	})

	// ----- MONTHLY PLANS API -----
	mux.HandleFunc("/plans", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPatch:
			plans.UpdateHandler(planStore)(w, r)
		case http.MethodOptions:
			w.WriteHeader(http.StatusOK)
		default:
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		}
	})

	// ----- CASCADE TRIGGER -----
	mux.HandleFunc("/plan/generate", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			plans.GenerateHandler(p)(w, r)
		case http.MethodOptions:
			w.WriteHeader(http.StatusOK)
		default:
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		}
	})

	// ----- SETTINGS API -----
	mux.HandleFunc("/settings", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			settings.GetHandler(settingsStore)(w, r)
		case http.MethodPatch:
			settings.UpdateHandler(settingsStore)(w, r)
		case http.MethodOptions:
			w.WriteHeader(http.StatusOK)
		default:
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		}
	})

	// ----- GOAL-SETTING CHAT -----
	mux.HandleFunc("/chat", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			chat.HistoryHandler(chatStore)(w, r)
		case http.MethodPost:
			chat.MessageHandler(chatStore, p)(w, r)
		case http.MethodOptions:
			w.WriteHeader(http.StatusOK)
		default:
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		}
	})

	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	})

	handler := c.Handler(mux)

	logger.Info("api server is running", zap.String("addr", cfg.ListenAddr))
	if err := http.ListenAndServe(cfg.ListenAddr, handler); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

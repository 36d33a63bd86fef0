package chat

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"

	"smart-planner-backend/internal/ai"
	"smart-planner-backend/internal/planner"
	"smart-planner-backend/internal/store"
)

func HistoryHandler(chat *store.Chat) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID := r.URL.Query().Get("sessionId")
		if sessionID == "" {
			http.Error(w, "sessionId is required", http.StatusBadRequest)
			return
		}

		msgs, err := chat.Messages(r.Context(), sessionID)
		if err != nil {
			http.Error(w, "db error", http.StatusInternalServerError)
			return
		}
		if msgs == nil {
			msgs = []store.ChatMessage{}
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(msgs)
	}
}

// MessageHandler runs one turn of the goal-setting conversation: persist the
// user message, ask the model for a reply with the full history, persist that,
// and report whether the reply finalized a goal list.
func MessageHandler(chat *store.Chat, p *planner.Planner) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			SessionID string `json:"sessionId"`
			Message   string `json:"message"`
			Year      int    `json:"year"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		if body.Message == "" || body.Year == 0 {
			http.Error(w, "message and year are required", http.StatusBadRequest)
			return
		}
		if body.SessionID == "" {
			body.SessionID = uuid.NewString()
		}

		if err := chat.Append(r.Context(), body.SessionID, "user", body.Message); err != nil {
			http.Error(w, "db error", http.StatusInternalServerError)
			return
		}

		stored, err := chat.Messages(r.Context(), body.SessionID)
		if err != nil {
			http.Error(w, "db error", http.StatusInternalServerError)
			return
		}
		history := make([]ai.Message, 0, len(stored))
		for _, m := range stored {
			history = append(history, ai.Message{Role: m.Role, Content: m.Content})
		}

		reply, err := p.GenerateGoalReply(r.Context(), history, body.Year)
		if err != nil {
			var upstream *ai.UpstreamError
			if errors.As(err, &upstream) {
				http.Error(w, err.Error(), http.StatusBadGateway)
				return
			}
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		if err := chat.Append(r.Context(), body.SessionID, "assistant", reply); err != nil {
			http.Error(w, "db error", http.StatusInternalServerError)
			return
		}

		goals := p.TryExtractFinalizedGoals(reply)

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"sessionId":     body.SessionID,
			"response":      reply,
			"goalsComplete": goals != nil,
			"goals":         goals,
		})
	}
}

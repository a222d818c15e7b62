package logs

import (
	"encoding/json"
	"net/http"

	"github.com/voicecart/voicecart/models"
	"github.com/voicecart/voicecart/nlu"
)

// recentLimit caps how many interaction logs the dashboard fetches.
const recentLimit = 20

type Entry struct {
	UserInput string           `json:"user_input"`
	Intent    nlu.IntentResult `json:"intent"`
	Response  string           `json:"response"`
	Sentiment string           `json:"sentiment"`
}

type LogsProvider interface {
	Recent(limit int) ([]models.InteractionLog, error)
	CountBySentiment() (models.SentimentCounts, error)
}

type LogsHandler struct {
	repo LogsProvider
}

func NewLogsHandler(r LogsProvider) *LogsHandler {
	return &LogsHandler{
		repo: r,
	}
}

// HandleGetLogs returns the most recent interactions, newest first.
func (h *LogsHandler) HandleGetLogs(w http.ResponseWriter, r *http.Request) {
	rows, err := h.repo.Recent(recentLimit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to retrieve logs")
		return
	}

	entries := make([]Entry, len(rows))
	for i, row := range rows {
		entries[i] = Entry{
			UserInput: row.UserInput,
			Intent: nlu.IntentResult{
				Intent:   nlu.Intent(row.Intent),
				Product:  row.Product,
				Quantity: row.Quantity,
				Metric:   row.Metric,
			},
			Response:  row.Response,
			Sentiment: row.Sentiment,
		}
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(entries); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// HandleGetSentiment returns aggregate sentiment counts across all logs.
func (h *LogsHandler) HandleGetSentiment(w http.ResponseWriter, r *http.Request) {
	counts, err := h.repo.CountBySentiment()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to analyze sentiment")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(counts); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}

package leaderboard

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/netpong/netpong/internal/middleware"
)

// standingsResponse is the leaderboard document: standings sorted by
// wins descending, ties broken by username.
type standingsResponse struct {
	Standings []standingEntry `json:"standings"`
}

type standingEntry struct {
	Username string `json:"username"`
	Wins     int    `json:"wins"`
}

type winsResponse struct {
	Username string `json:"username"`
	Wins     int    `json:"wins"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// NewRouter builds the leaderboard's HTTP surface
func NewRouter(service *Service, logger *slog.Logger) http.Handler {
	h := &httpHandler{service: service, logger: logger}

	r := mux.NewRouter()
	r.Use(middleware.Recovery(logger, panicHandler))
	r.Use(middleware.Logging(logger))

	r.HandleFunc("/leaderboard", h.standings).Methods(http.MethodGet)
	r.HandleFunc("/leaderboard/{username}", h.wins).Methods(http.MethodGet)
	r.HandleFunc("/health", h.health).Methods(http.MethodGet)

	return r
}

type httpHandler struct {
	service *Service
	logger  *slog.Logger
}

func (h *httpHandler) standings(w http.ResponseWriter, r *http.Request) {
	limit := DefaultLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "limit must be a positive integer"})
			return
		}
		limit = parsed
	}

	records, err := h.service.Standings(r.Context(), limit)
	if err != nil {
		h.logger.Error("leaderboard read failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
		return
	}

	resp := standingsResponse{Standings: make([]standingEntry, 0, len(records))}
	for _, rec := range records {
		resp.Standings = append(resp.Standings, standingEntry{
			Username: rec.Username,
			Wins:     rec.Wins,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *httpHandler) wins(w http.ResponseWriter, r *http.Request) {
	username := mux.Vars(r)["username"]

	wins, err := h.service.Wins(r.Context(), username)
	if err != nil {
		h.logger.Error("win count read failed",
			slog.String("username", username),
			slog.String("error", err.Error()),
		)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
		return
	}

	writeJSON(w, http.StatusOK, winsResponse{Username: username, Wins: wins})
}

func (h *httpHandler) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func panicHandler(w http.ResponseWriter, _ *http.Request, _ any) {
	writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

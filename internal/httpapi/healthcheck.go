package httpapi

import (
	"log/slog"
	"net/http"

	"github.com/redis/go-redis/v9"

	"iss-tracker/internal/utils"
)

type healthchecker interface {
	handleHealthz(w http.ResponseWriter, r *http.Request)
}

type healthcheckerImpl struct {
	rdb *redis.Client
}

func NewHealthchecker(rdb *redis.Client) healthchecker {
	return &healthcheckerImpl{rdb: rdb}
}

func (h *healthcheckerImpl) handleHealthz(w http.ResponseWriter, r *http.Request) {
	if err := h.rdb.Ping(r.Context()).Err(); err != nil {
		slog.Error("failed to check cache connectivity", "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to check cache connectivity")
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func registerHealthcheck(mux *http.ServeMux, rdb *redis.Client) {
	healthchecker := NewHealthchecker(rdb)
	mux.HandleFunc("GET /healthz", healthchecker.handleHealthz)
}

package controller

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"iss-tracker/internal/modules/tracker/service"
	"iss-tracker/internal/modules/tracker/types"
	"iss-tracker/internal/utils"
)

type trackerController interface {
	RegisterRoutes(mux *http.ServeMux)
}

type trackerControllerImpl struct {
	queries *service.Queries
}

func NewTrackerController(queries *service.Queries) trackerController {
	return &trackerControllerImpl{queries: queries}
}

func (c *trackerControllerImpl) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /epochs", c.handleEpochs)
	mux.HandleFunc("GET /epochs/range", c.handleRange)
	mux.HandleFunc("GET /epochs/{epoch}", c.handleEpoch)
	mux.HandleFunc("GET /epochs/{epoch}/speed", c.handleSpeed)
	mux.HandleFunc("GET /epochs/{epoch}/location", c.handleLocation)
	mux.HandleFunc("GET /now", c.handleNow)
}

func (c *trackerControllerImpl) handleEpochs(w http.ResponseWriter, r *http.Request) {
	limit, offset, err := parseEpochsQuery(r)
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	records, err := c.queries.Epochs(r.Context(), limit, offset)
	if err != nil {
		if errors.Is(err, service.ErrInvalidArgument) {
			utils.WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
		slog.Error("epochs: get dataset failed", "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to fetch orbital data")
		return
	}
	if records == nil {
		records = []types.StateVector{}
	}
	utils.WriteJSON(w, http.StatusOK, records)
}

func (c *trackerControllerImpl) handleRange(w http.ResponseWriter, r *http.Request) {
	rng, count, avg, err := c.queries.Range(r.Context())
	if err != nil {
		if errors.Is(err, service.ErrEmptyDataset) {
			utils.WriteError(w, http.StatusNotFound, "no orbital data available")
			return
		}
		slog.Error("range: get dataset failed", "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to fetch orbital data")
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]any{
		"first_epoch":   rng.First.Format(time.RFC3339),
		"last_epoch":    rng.Last.Format(time.RFC3339),
		"epoch_count":   count,
		"average_speed": avg,
	})
}

func (c *trackerControllerImpl) handleEpoch(w http.ResponseWriter, r *http.Request) {
	epoch := r.PathValue("epoch")
	if epoch == "" {
		utils.WriteError(w, http.StatusBadRequest, "missing epoch")
		return
	}

	matches, err := c.queries.Epoch(r.Context(), epoch)
	if err != nil {
		c.writeLookupError(w, "epoch", err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, matches)
}

func (c *trackerControllerImpl) handleSpeed(w http.ResponseWriter, r *http.Request) {
	epoch := r.PathValue("epoch")
	if epoch == "" {
		utils.WriteError(w, http.StatusBadRequest, "missing epoch")
		return
	}

	speed, err := c.queries.Speed(r.Context(), epoch)
	if err != nil {
		c.writeLookupError(w, "speed", err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]float64{"instantaneous_speed": speed})
}

func (c *trackerControllerImpl) handleLocation(w http.ResponseWriter, r *http.Request) {
	epoch := r.PathValue("epoch")
	if epoch == "" {
		utils.WriteError(w, http.StatusBadRequest, "missing epoch")
		return
	}

	loc, err := c.queries.Location(r.Context(), epoch)
	if err != nil {
		c.writeLookupError(w, "location", err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, loc)
}

func (c *trackerControllerImpl) handleNow(w http.ResponseWriter, r *http.Request) {
	sv, err := c.queries.Nearest(r.Context())
	if err != nil {
		slog.Error("now: nearest lookup failed", "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to fetch orbital data")
		return
	}
	utils.WriteJSON(w, http.StatusOK, nowResponse{
		StateVector:        sv,
		InstantaneousSpeed: service.InstantaneousSpeed(sv),
	})
}

// nowResponse is a state vector plus its speed, flattened via embedding.
type nowResponse struct {
	types.StateVector
	InstantaneousSpeed float64 `json:"instantaneous_speed"`
}

// writeLookupError maps epoch-lookup failures: unknown epoch is a 404,
// everything else is a generic 500 with detail logged server-side only.
func (c *trackerControllerImpl) writeLookupError(w http.ResponseWriter, op string, err error) {
	if errors.Is(err, service.ErrEpochNotFound) {
		utils.WriteError(w, http.StatusNotFound, service.ErrEpochNotFound.Error())
		return
	}
	slog.Error(op+": get dataset failed", "error", err)
	utils.WriteError(w, http.StatusInternalServerError, "failed to fetch orbital data")
}

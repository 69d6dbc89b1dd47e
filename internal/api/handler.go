package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/Nhlanhla999/Epidemiologist-Data-Science-Tool/internal/core"
	"github.com/Nhlanhla999/Epidemiologist-Data-Science-Tool/internal/domain/model"
	"github.com/Nhlanhla999/Epidemiologist-Data-Science-Tool/internal/domain/repository"
)

const defaultRunListLimit = 20

// Defaults fill optional request fields.
type Defaults struct {
	ClusterThreshold  int
	ClusterResolution float64
}

type Handler struct {
	service  *core.OutbreakService
	defaults Defaults
}

func NewHandler(service *core.OutbreakService, defaults Defaults) *Handler {
	return &Handler{service: service, defaults: defaults}
}

// DatasetInput selects the cases a request works on: a generated dataset
// when Generate is set, otherwise the ingested Records. Seed drives the
// synthesis of missing optional columns.
type DatasetInput struct {
	Generate *core.GeneratorConfig `json:"generate,omitempty"`
	Records  []model.CaseRecord    `json:"records,omitempty"`
	Seed     int64                 `json:"seed"`
}

type SummaryRequest struct {
	Dataset       DatasetInput `json:"dataset"`
	InfectionType string       `json:"infection_type"`
}

type SIRRequest struct {
	model.SIRParams
}

type CompareRequest struct {
	model.SIRParams
	Controls model.ControlMeasures `json:"controls"`
}

type ClusterRequest struct {
	Dataset        DatasetInput `json:"dataset"`
	Threshold      *int         `json:"threshold,omitempty"`
	Resolution     *float64     `json:"resolution,omitempty"`
	WithFacilities bool         `json:"with_facilities"`
}

type ClusterResponse struct {
	Threshold  int                 `json:"threshold"`
	Resolution float64             `json:"resolution"`
	Clusters   []model.ClusterCell `json:"clusters"`
}

type RealtimeRequest struct {
	Dataset DatasetInput `json:"dataset"`
	core.RealtimeParams
	Seed       int64    `json:"seed"`
	Threshold  *int     `json:"threshold,omitempty"`
	Resolution *float64 `json:"resolution,omitempty"`
	// Stream switches the response to newline-delimited JSON, one snapshot
	// per line, written as each day completes.
	Stream bool `json:"stream"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (h *Handler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/health", h.Health).Methods(http.MethodGet)
	r.HandleFunc("/cases/generate", h.GenerateCases).Methods(http.MethodPost)
	r.HandleFunc("/cases/summary", h.Summary).Methods(http.MethodPost)
	r.HandleFunc("/sir", h.RunSIR).Methods(http.MethodPost)
	r.HandleFunc("/sir/compare", h.CompareScenarios).Methods(http.MethodPost)
	r.HandleFunc("/clusters", h.Clusters).Methods(http.MethodPost)
	r.HandleFunc("/realtime", h.Realtime).Methods(http.MethodPost)
	r.HandleFunc("/facilities", h.Facilities).Methods(http.MethodGet)
	r.HandleFunc("/runs", h.ListRuns).Methods(http.MethodGet)
	r.HandleFunc("/runs/{id}", h.GetRun).Methods(http.MethodGet)
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

func (h *Handler) GenerateCases(w http.ResponseWriter, r *http.Request) {
	var req core.GeneratorConfig
	if !decode(w, r, &req) {
		return
	}

	ds, err := h.service.GenerateDataset(req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ds)
}

func (h *Handler) Summary(w http.ResponseWriter, r *http.Request) {
	var req SummaryRequest
	if !decode(w, r, &req) {
		return
	}

	ds, err := h.dataset(req.Dataset)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.service.Summarize(ds, req.InfectionType))
}

func (h *Handler) RunSIR(w http.ResponseWriter, r *http.Request) {
	var req SIRRequest
	if !decode(w, r, &req) {
		return
	}

	run, err := h.service.RunSIR(r.Context(), req.SIRParams)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, run)
}

func (h *Handler) CompareScenarios(w http.ResponseWriter, r *http.Request) {
	var req CompareRequest
	if !decode(w, r, &req) {
		return
	}

	run, err := h.service.CompareScenarios(r.Context(), req.SIRParams, req.Controls)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, run)
}

func (h *Handler) Clusters(w http.ResponseWriter, r *http.Request) {
	var req ClusterRequest
	if !decode(w, r, &req) {
		return
	}

	ds, err := h.dataset(req.Dataset)
	if err != nil {
		writeError(w, err)
		return
	}

	threshold, resolution := h.clusterSettings(req.Threshold, req.Resolution)
	clusters, err := h.service.DetectClusters(r.Context(), ds.Cases, resolution, threshold, req.WithFacilities)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ClusterResponse{
		Threshold:  threshold,
		Resolution: resolution,
		Clusters:   clusters,
	})
}

func (h *Handler) Realtime(w http.ResponseWriter, r *http.Request) {
	var req RealtimeRequest
	if !decode(w, r, &req) {
		return
	}

	ds, err := h.dataset(req.Dataset)
	if err != nil {
		writeError(w, err)
		return
	}

	threshold, resolution := h.clusterSettings(req.Threshold, req.Resolution)
	simReq := core.SimulationRequest{
		Dataset:    ds,
		Params:     req.RealtimeParams,
		Seed:       req.Seed,
		Resolution: resolution,
		Threshold:  threshold,
	}

	if !req.Stream {
		result, err := h.service.Simulate(r.Context(), simReq)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, result)
		return
	}

	h.streamRealtime(w, r, simReq)
}

func (h *Handler) streamRealtime(w http.ResponseWriter, r *http.Request, simReq core.SimulationRequest) {
	flusher, _ := w.(http.Flusher)
	encoder := json.NewEncoder(w)
	started := false

	err := h.service.StreamSimulation(r.Context(), simReq, func(snap model.DaySnapshot) error {
		if !started {
			w.Header().Set("Content-Type", "application/x-ndjson")
			w.WriteHeader(http.StatusOK)
			started = true
		}
		if err := encoder.Encode(snap); err != nil {
			return fmt.Errorf("failed to write snapshot for day %d: %w", snap.Day, err)
		}
		if flusher != nil {
			flusher.Flush()
		}
		return nil
	})

	switch {
	case err == nil:
		if !started {
			w.Header().Set("Content-Type", "application/x-ndjson")
			w.WriteHeader(http.StatusOK)
		}
	case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
		log.Printf("Realtime stream stopped by client: %v", err)
	case !started:
		writeError(w, err)
	default:
		log.Printf("Realtime stream aborted: %v", err)
	}
}

func (h *Handler) Facilities(w http.ResponseWriter, r *http.Request) {
	bounds, err := repository.ParseBBox(r.URL.Query().Get("bbox"))
	if err != nil {
		writeError(w, err)
		return
	}

	facilities, err := h.service.FacilitiesIn(r.Context(), bounds)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, facilities)
}

func (h *Handler) ListRuns(w http.ResponseWriter, r *http.Request) {
	limit := defaultRunListLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, model.Invalid("limit", "must be an integer"))
			return
		}
		limit = n
	}

	runs, err := h.service.ListRuns(r.Context(), r.URL.Query().Get("kind"), limit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, runs)
}

func (h *Handler) GetRun(w http.ResponseWriter, r *http.Request) {
	run, err := h.service.GetRun(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, run)
}

func (h *Handler) dataset(in DatasetInput) (model.Dataset, error) {
	if in.Generate != nil {
		return h.service.GenerateDataset(*in.Generate)
	}
	return h.service.DatasetFromRecords(in.Records, in.Seed)
}

func (h *Handler) clusterSettings(threshold *int, resolution *float64) (int, float64) {
	t, res := h.defaults.ClusterThreshold, h.defaults.ClusterResolution
	if threshold != nil {
		t = *threshold
	}
	if resolution != nil {
		res = *resolution
	}
	return t, res
}

func decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Invalid request body"})
		return false
	}
	return true
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, model.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, model.ErrRunNotFound):
		status = http.StatusNotFound
	case errors.Is(err, model.ErrFacilitiesUnavailable):
		status = http.StatusServiceUnavailable
	default:
		log.Printf("Error handling request: %v", err)
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Error writing response: %v", err)
	}
}

package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/loadwise/palletizer/internal/export"
	"github.com/loadwise/palletizer/internal/generator"
	"github.com/loadwise/palletizer/internal/geometry"
	"github.com/loadwise/palletizer/internal/metrics"
	"github.com/loadwise/palletizer/internal/optimizer"
	"github.com/loadwise/palletizer/internal/pallet"
	"github.com/loadwise/palletizer/internal/report"
	"github.com/loadwise/palletizer/internal/storage"
)

type contextKey string

const requestIDContextKey contextKey = "requestID"

// Handler wires optimizer and storage dependencies into HTTP handlers.
type Handler struct {
	optimizer optimizer.Optimizer
	storage   storage.Storage
	units     pallet.Units

	clock func() time.Time

	// The last solve's inputs and outcome, kept together so derived
	// views always pair the solution with the config it was solved
	// against even when the stored config changes afterwards.
	mu           sync.RWMutex
	lastItems    []pallet.Item
	lastSolution *optimizer.Solution
	lastConfig   pallet.Config
}

// HandlerOption configures Handler behaviour.
type HandlerOption func(*Handler)

// WithClock overrides the time source, primarily for tests.
func WithClock(clock func() time.Time) HandlerOption {
	return func(h *Handler) {
		h.clock = clock
	}
}

// NewHandler constructs a Handler with the provided dependencies.
func NewHandler(opt optimizer.Optimizer, store storage.Storage, units pallet.Units, opts ...HandlerOption) *Handler {
	h := &Handler{
		optimizer: opt,
		storage:   store,
		units:     units,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	_ = r
	resp := healthResponse{
		Status:    "ok",
		Timestamp: h.clock(),
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	_ = r
	cfg, err := h.storage.GetConfig()
	if err != nil {
		writeInternalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.configResponse(cfg))
}

func (h *Handler) handlePutConfig(w http.ResponseWriter, r *http.Request) {
	var req palletConfigRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request", "unable to parse JSON payload")
		return
	}

	cfg, err := h.configFromRequest(req)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid pallet configuration", err.Error())
		return
	}

	if err := h.storage.SetConfig(cfg); err != nil {
		if errors.Is(err, storage.ErrInvalidConfig) {
			writeError(w, http.StatusBadRequest, "Invalid pallet configuration", err.Error())
			return
		}
		writeInternalError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, h.configResponse(cfg))
}

func (h *Handler) configFromRequest(req palletConfigRequest) (pallet.Config, error) {
	if req.Count < 1 {
		return pallet.Config{}, errors.New("count must be >= 1")
	}
	if req.Preset == "" || req.Preset == pallet.PresetCustom {
		if req.CapacityMassKg <= 0 || req.CapacityVolumeM3 <= 0 {
			return pallet.Config{}, errors.New("custom configurations need positive capacity_mass_kg and capacity_volume_m3")
		}
		return pallet.NewCustomConfig(req.Count, req.CapacityMassKg, req.CapacityVolumeM3, h.units), nil
	}
	return pallet.NewPresetConfig(req.Preset, req.Count, h.units)
}

func (h *Handler) configResponse(cfg pallet.Config) palletConfigResponse {
	return palletConfigResponse{
		Config:           cfg,
		CapacityMassKg:   h.units.Kilograms(cfg.CapacityMass),
		CapacityVolumeM3: h.units.CubicMetres(cfg.CapacityVolume),
		Presets:          pallet.PresetNames(),
	}
}

func (h *Handler) handleGetItems(w http.ResponseWriter, r *http.Request) {
	_ = r
	items, err := h.storage.GetItems()
	if err != nil {
		writeInternalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.itemsResponse(items))
}

func (h *Handler) handlePutItems(w http.ResponseWriter, r *http.Request) {
	var req itemsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request", "unable to parse JSON payload")
		return
	}
	if len(req.Items) == 0 {
		writeError(w, http.StatusBadRequest, "Invalid items", "items must contain at least one entry")
		return
	}

	items, err := pallet.NewBatch(req.Items, h.units)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid items", err.Error())
		return
	}

	if err := h.storeItems(w, items); err != nil {
		return
	}
	writeJSON(w, http.StatusOK, h.itemsResponse(items))
}

func (h *Handler) handleGenerateItems(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request", "unable to parse JSON payload")
		return
	}
	if req.Count < 1 {
		writeError(w, http.StatusBadRequest, "Invalid request", "count must be a positive integer")
		return
	}

	items, err := generator.Generate(req.Seed, req.Category, req.Count, h.units)
	if err != nil {
		writeInternalError(w, err)
		return
	}

	if err := h.storeItems(w, items); err != nil {
		return
	}
	writeJSON(w, http.StatusOK, h.itemsResponse(items))
}

func (h *Handler) handleImportItems(w http.ResponseWriter, r *http.Request) {
	items, err := export.ParseItems(r.Body, h.units)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid item file", err.Error())
		return
	}

	if err := h.storeItems(w, items); err != nil {
		return
	}
	writeJSON(w, http.StatusOK, h.itemsResponse(items))
}

// storeItems persists a batch, writing the error response itself when
// storage rejects it.
func (h *Handler) storeItems(w http.ResponseWriter, items []pallet.Item) error {
	err := h.storage.SetItems(items)
	if err == nil {
		return nil
	}
	if errors.Is(err, storage.ErrInvalidBatch) {
		writeError(w, http.StatusBadRequest, "Invalid items", err.Error())
	} else {
		writeInternalError(w, err)
	}
	return err
}

func (h *Handler) itemsResponse(items []pallet.Item) itemsResponse {
	var volume, mass int64
	fragile := 0
	for _, item := range items {
		volume += item.Volume
		mass += item.Mass
		if item.Fragile {
			fragile++
		}
	}
	return itemsResponse{
		Items:         items,
		Count:         len(items),
		TotalVolumeM3: h.units.CubicMetres(volume),
		TotalMassKg:   h.units.Kilograms(mass),
		FragileItems:  fragile,
	}
}

func (h *Handler) handleOptimize(w http.ResponseWriter, r *http.Request) {
	items, err := h.storage.GetItems()
	if err != nil {
		writeInternalError(w, err)
		return
	}
	cfg, err := h.storage.GetConfig()
	if err != nil {
		writeInternalError(w, err)
		return
	}

	start := time.Now()
	sol, err := h.optimizer.Optimize(r.Context(), items, cfg)
	elapsed := time.Since(start)

	if err != nil {
		writeOptimizeError(w, err)
		return
	}

	rep := metrics.Compute(items, sol, cfg, h.units)
	rec := export.NewRecord(items, sol, cfg, rep, h.clock())
	if err := h.storage.SetLastRecord(rec); err != nil {
		writeInternalError(w, err)
		return
	}

	h.mu.Lock()
	h.lastItems = items
	h.lastSolution = sol
	h.lastConfig = cfg
	h.mu.Unlock()

	writeJSON(w, http.StatusOK, optimizeResponse{
		Record:      rec,
		KPIs:        report.ComputeKPIs(items, rep),
		SolveTimeMs: elapsed.Milliseconds(),
	})
}

func writeOptimizeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, optimizer.ErrInvalidConfiguration):
		writeError(w, http.StatusBadRequest, "Invalid configuration", err.Error())
	case errors.Is(err, optimizer.ErrInfeasible):
		suggestion := "Increase pallet count or capacities, or reduce the item batch"
		writeError(w, http.StatusUnprocessableEntity, "No feasible load plan", err.Error(), suggestion)
	case errors.Is(err, optimizer.ErrSolverInvalid):
		writeError(w, http.StatusInternalServerError, "Solver error", err.Error())
	default:
		writeInternalError(w, err)
	}
}

func (h *Handler) handleCompare(w http.ResponseWriter, r *http.Request) {
	var req compareRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request", "unable to parse JSON payload")
		return
	}

	items, err := h.storage.GetItems()
	if err != nil {
		writeInternalError(w, err)
		return
	}

	// Two independent solves sharing no state, run sequentially.
	scenarioA, err := h.runScenario(r.Context(), items, req.ScenarioA)
	if err != nil {
		writeOptimizeError(w, err)
		return
	}
	scenarioB, err := h.runScenario(r.Context(), items, req.ScenarioB)
	if err != nil {
		writeOptimizeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, compareResponse{
		ScenarioA:      scenarioA,
		ScenarioB:      scenarioB,
		Recommendation: recommend(scenarioA.Metrics, scenarioB.Metrics),
	})
}

func (h *Handler) runScenario(ctx context.Context, items []pallet.Item, req palletConfigRequest) (scenarioResult, error) {
	cfg, err := h.configFromRequest(req)
	if err != nil {
		return scenarioResult{}, errors.Join(optimizer.ErrInvalidConfiguration, err)
	}
	sol, err := h.optimizer.Optimize(ctx, items, cfg)
	if err != nil {
		return scenarioResult{}, err
	}
	return scenarioResult{
		Config:  cfg,
		Status:  sol.Status(),
		Metrics: metrics.Compute(items, sol, cfg, h.units),
	}, nil
}

func recommend(a, b metrics.Report) string {
	switch {
	case b.ItemsLoaded > a.ItemsLoaded:
		return "scenario B is superior: it loads more items"
	case a.VolumeUtilization > b.VolumeUtilization:
		return "scenario A has better volumetric utilization"
	default:
		return "scenarios are equivalent: consider other factors"
	}
}

func (h *Handler) handleGetResult(w http.ResponseWriter, r *http.Request) {
	_ = r
	rec, err := h.lastRecord(w)
	if err != nil {
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (h *Handler) handleResultCSV(w http.ResponseWriter, r *http.Request) {
	_ = r
	rec, err := h.lastRecord(w)
	if err != nil {
		return
	}
	w.Header().Set("Content-Type", "text/csv")
	if err := export.WriteAllocationCSV(w, rec, h.units); err != nil {
		writeInternalError(w, err)
	}
}

func (h *Handler) handleResultSAP(w http.ResponseWriter, r *http.Request) {
	_ = r
	rec, err := h.lastRecord(w)
	if err != nil {
		return
	}
	w.Header().Set("Content-Type", "text/csv")
	if err := export.WriteSAPDelimited(w, rec, h.units); err != nil {
		writeInternalError(w, err)
	}
}

func (h *Handler) handleResultOracle(w http.ResponseWriter, r *http.Request) {
	_ = r
	rec, err := h.lastRecord(w)
	if err != nil {
		return
	}
	writeJSON(w, http.StatusOK, export.BuildOracleShipment(rec, h.units))
}

func (h *Handler) handleResultLayout(w http.ResponseWriter, r *http.Request) {
	_ = r
	h.mu.RLock()
	items := h.lastItems
	sol := h.lastSolution
	cfg := h.lastConfig
	h.mu.RUnlock()

	if sol == nil {
		writeError(w, http.StatusNotFound, "No result", storage.ErrNoResult.Error())
		return
	}
	writeJSON(w, http.StatusOK, layoutResponse{
		Placements:    geometry.Project(items, sol, cfg),
		PalletSpacing: geometry.PalletSpacing,
	})
}

func (h *Handler) handleCostReport(w http.ResponseWriter, r *http.Request) {
	var rates report.CostRates
	if err := json.NewDecoder(r.Body).Decode(&rates); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request", "unable to parse JSON payload")
		return
	}

	rec, err := h.lastRecord(w)
	if err != nil {
		return
	}

	h.mu.RLock()
	items := h.lastItems
	h.mu.RUnlock()

	writeJSON(w, http.StatusOK, costReportResponse{
		Costs: report.Costs(rec.Metrics, rates),
		KPIs:  report.ComputeKPIs(items, rec.Metrics),
	})
}

// lastRecord fetches the stored result, writing the error response when
// none exists.
func (h *Handler) lastRecord(w http.ResponseWriter) (export.Record, error) {
	rec, err := h.storage.GetLastRecord()
	if err == nil {
		return rec, nil
	}
	if errors.Is(err, storage.ErrNoResult) {
		writeError(w, http.StatusNotFound, "No result", err.Error())
	} else {
		writeInternalError(w, err)
	}
	return export.Record{}, err
}

func requestIDFromContext(ctx context.Context) string {
	if v := ctx.Value(requestIDContextKey); v != nil {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}

type palletConfigRequest struct {
	Preset           string  `json:"preset"`
	Count            int     `json:"count"`
	CapacityMassKg   float64 `json:"capacity_mass_kg"`
	CapacityVolumeM3 float64 `json:"capacity_volume_m3"`
}

type palletConfigResponse struct {
	Config           pallet.Config `json:"config"`
	CapacityMassKg   float64       `json:"capacity_mass_kg"`
	CapacityVolumeM3 float64       `json:"capacity_volume_m3"`
	Presets          []string      `json:"presets"`
}

type itemsRequest struct {
	Items []pallet.ItemSpec `json:"items"`
}

type itemsResponse struct {
	Items         []pallet.Item `json:"items"`
	Count         int           `json:"count"`
	TotalVolumeM3 float64       `json:"total_volume_m3"`
	TotalMassKg   float64       `json:"total_mass_kg"`
	FragileItems  int           `json:"fragile_items"`
}

type generateRequest struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
	Seed     int64  `json:"seed"`
}

type optimizeResponse struct {
	export.Record
	KPIs        report.KPIs `json:"kpis"`
	SolveTimeMs int64       `json:"solve_time_ms"`
}

type compareRequest struct {
	ScenarioA palletConfigRequest `json:"scenario_a"`
	ScenarioB palletConfigRequest `json:"scenario_b"`
}

type scenarioResult struct {
	Config  pallet.Config         `json:"config"`
	Status  optimizer.SolveStatus `json:"status"`
	Metrics metrics.Report        `json:"metrics"`
}

type compareResponse struct {
	ScenarioA      scenarioResult `json:"scenario_a"`
	ScenarioB      scenarioResult `json:"scenario_b"`
	Recommendation string         `json:"recommendation"`
}

type layoutResponse struct {
	Placements    []geometry.Placement `json:"placements"`
	PalletSpacing float64              `json:"pallet_spacing"`
}

type costReportResponse struct {
	Costs report.CostBreakdown `json:"costs"`
	KPIs  report.KPIs          `json:"kpis"`
}

type healthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

type errorResponse struct {
	Error      string `json:"error"`
	Details    string `json:"details,omitempty"`
	Suggestion string `json:"suggestion,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	if status != 0 {
		w.WriteHeader(status)
	}
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message, details string, suggestion ...string) {
	resp := errorResponse{
		Error:   message,
		Details: details,
	}
	if len(suggestion) > 0 {
		resp.Suggestion = suggestion[0]
	}
	writeJSON(w, status, resp)
}

func writeInternalError(w http.ResponseWriter, err error) {
	writeError(w, http.StatusInternalServerError, "Internal error", err.Error())
}

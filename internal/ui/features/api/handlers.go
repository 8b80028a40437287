package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/leapstack-labs/metacatalog/internal/catalog"
	"github.com/leapstack-labs/metacatalog/internal/fraud"
	"github.com/leapstack-labs/metacatalog/internal/lineage"
	"github.com/leapstack-labs/metacatalog/pkg/core"
)

// Handlers provides HTTP handlers for the JSON API.
type Handlers struct {
	service *catalog.Service
	logger  *slog.Logger
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(svc *catalog.Service, logger *slog.Logger) *Handlers {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Handlers{service: svc, logger: logger}
}

// FraudResponse is the body of GET /api/fraud.
type FraudResponse struct {
	Claims     []fraud.AssessedClaim `json:"claims"`
	Total      int                   `json:"totalClaims"`
	Suspicious int                   `json:"suspiciousClaims"`
	Rate       json.Number           `json:"fraudPercentage"`
	Elevated   bool                  `json:"elevated"`
	Rules      []string              `json:"rules"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// ListAssets returns the assets matching the search, kind and regTag query
// parameters.
func (h *Handlers) ListAssets(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := catalog.Filter{
		Search: q.Get("search"),
		Kind:   q.Get("kind"),
		RegTag: q.Get("regTag"),
	}

	assets, err := h.service.List(r.Context(), filter)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, assets)
}

// GetAsset returns one asset.
func (h *Handlers) GetAsset(w http.ResponseWriter, r *http.Request) {
	asset, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, asset)
}

// Lineage returns the computed lineage graph.
func (h *Handlers) Lineage(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.service.Snapshot(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, lineage.Build(snapshot))
}

// Fraud returns the fraud report.
func (h *Handlers) Fraud(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.service.Snapshot(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}

	report := fraud.EvaluateAssets(snapshot)
	h.writeJSON(w, http.StatusOK, FraudResponse{
		Claims:     report.Claims,
		Total:      report.Total,
		Suspicious: report.Suspicious,
		Rate:       json.Number(report.RateString()),
		Elevated:   report.Elevated(),
		Rules:      fraud.Rules,
	})
}

func (h *Handlers) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	if errors.Is(err, core.ErrNotFound) {
		status = http.StatusNotFound
	} else {
		h.logger.Error("api request failed", slog.String("error", err.Error()))
	}
	h.writeJSON(w, status, errorResponse{Error: err.Error()})
}

func (h *Handlers) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Warn("failed to write response", slog.String("error", err.Error()))
	}
}

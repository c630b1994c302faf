package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/rhuss/cortex/pkg/api"
	"github.com/rhuss/cortex/pkg/dataset"
	"github.com/rhuss/cortex/pkg/engine"
	"github.com/rhuss/cortex/pkg/history"
	"github.com/rhuss/cortex/pkg/observability"
	"github.com/rhuss/cortex/pkg/session"
)

// Handler exposes the engine over HTTP.
type Handler struct {
	engine  *engine.Engine
	history history.Store
	logger  *slog.Logger
}

// NewHandler creates the HTTP handler. The history store can be nil; the
// history endpoint then returns 404.
func NewHandler(eng *engine.Engine, hist history.Store, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{engine: eng, history: hist, logger: logger}
}

// Routes builds the route table.
func (h *Handler) Routes(metricsEnabled bool, metricsPath string) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /v1/sessions", h.createSession)
	mux.HandleFunc("GET /v1/sessions/{id}", h.getSession)
	mux.HandleFunc("DELETE /v1/sessions/{id}", h.deleteSession)
	mux.HandleFunc("PUT /v1/sessions/{id}/dataset", h.replaceDataset)
	mux.HandleFunc("POST /v1/sessions/{id}/query", h.query)
	mux.HandleFunc("GET /v1/sessions/{id}/history", h.listHistory)
	mux.HandleFunc("GET /healthz", h.health)

	if metricsEnabled {
		if metricsPath == "" {
			metricsPath = "/metrics"
		}
		mux.Handle("GET "+metricsPath, promhttp.Handler())
	}

	return mux
}

// createSessionRequest is the JSON form of dataset upload. CSV uploads
// send text/csv bodies instead, with the dataset name in the query string.
type createSessionRequest struct {
	Name string           `json:"name"`
	Rows []map[string]any `json:"rows"`
}

type sessionResponse struct {
	SessionID string          `json:"session_id"`
	Schema    *dataset.Schema `json:"schema"`
	Turns     int             `json:"turns"`
}

func (h *Handler) createSession(w http.ResponseWriter, r *http.Request) {
	ds, err := h.readDataset(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	sess, err := h.engine.Sessions().Create(ds)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "creating session: "+err.Error())
		return
	}
	observability.SessionsActive.Set(float64(h.engine.Sessions().Count()))

	writeJSON(w, http.StatusCreated, sessionResponse{
		SessionID: sess.ID(),
		Schema:    sess.Schema(),
	})
}

// readDataset parses the uploaded dataset from the request body,
// dispatching on Content-Type: text/csv or JSON.
func (h *Handler) readDataset(r *http.Request) (*dataset.Dataset, error) {
	if r.Header.Get("Content-Type") == "text/csv" {
		name := r.URL.Query().Get("name")
		if name == "" {
			name = "dataset"
		}
		return dataset.LoadCSV(name, r.Body)
	}

	var req createSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return nil, errors.New("decoding request body: " + err.Error())
	}
	if req.Name == "" {
		req.Name = "dataset"
	}
	return dataset.FromRows(req.Name, req.Rows)
}

func (h *Handler) getSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.lookup(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse{
		SessionID: sess.ID(),
		Schema:    sess.Schema(),
		Turns:     sess.Turns(),
	})
}

func (h *Handler) deleteSession(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if !api.ValidateSessionID(id) {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}
	h.engine.Sessions().Delete(id)
	observability.SessionsActive.Set(float64(h.engine.Sessions().Count()))
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) replaceDataset(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.lookup(w, r)
	if !ok {
		return
	}
	ds, err := h.readDataset(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := sess.ReplaceDataset(ds); err != nil {
		writeError(w, http.StatusInternalServerError, "replacing dataset: "+err.Error())
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse{
		SessionID: sess.ID(),
		Schema:    sess.Schema(),
		Turns:     sess.Turns(),
	})
}

type queryRequest struct {
	Query string `json:"query"`

	// ChartHint is optional chart steering appended verbatim to the
	// question, e.g. "as a bar chart".
	ChartHint string `json:"chart_hint"`
}

func (h *Handler) query(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "decoding request body: "+err.Error())
		return
	}
	if req.Query == "" {
		writeError(w, http.StatusBadRequest, "query is required")
		return
	}

	resp, err := h.engine.Ask(r.Context(), engine.Query{
		SessionID: id,
		Text:      req.Query,
		ChartHint: req.ChartHint,
	})
	switch {
	case errors.Is(err, session.ErrNotFound):
		writeError(w, http.StatusNotFound, "session not found")
		return
	case err != nil:
		h.logger.Error("query failed", "session_id", id, "error", err)
		writeError(w, http.StatusBadGateway, "reasoning backend unavailable")
		return
	}

	// Semantic failures travel inside the envelope with status 200; the
	// caller inspects the success flag.
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) listHistory(w http.ResponseWriter, r *http.Request) {
	if h.history == nil {
		writeError(w, http.StatusNotFound, "history is not enabled")
		return
	}
	id := r.PathValue("id")

	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	entries, err := h.history.List(r.Context(), id, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "listing history: "+err.Error())
		return
	}
	if entries == nil {
		entries = []history.Entry{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"entries": entries})
}

func (h *Handler) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// lookup resolves the session from the path, writing a 404 on failure.
func (h *Handler) lookup(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	sess, err := h.engine.Sessions().Get(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "session not found")
		return nil, false
	}
	return sess, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encoding response failed", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

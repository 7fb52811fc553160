package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"
)

// maxPageSize bounds airport search responses; the directory holds several
// thousand entries and the UI pages through them incrementally.
const maxPageSize = 100

// Handlers holds the dependencies for all HTTP handlers.
type Handlers struct {
	store     DirectoryStore
	cache     CurrencyCache
	refresher RefreshTrigger
	locale    string
	log       *slog.Logger
}

// NewHandlers constructs Handlers with all required dependencies. locale is
// the place-hierarchy language used by the manual refresh endpoint.
func NewHandlers(store DirectoryStore, cache CurrencyCache, refresher RefreshTrigger, locale string, log *slog.Logger) *Handlers {
	return &Handlers{
		store:     store,
		cache:     cache,
		refresher: refresher,
		locale:    locale,
		log:       log,
	}
}

// writeJSON encodes v as JSON and writes it with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// GetCurrencies handles GET /api/v1/currencies.
// Serves the full cached currency list; Redis snapshot hit → return,
// otherwise read the current generation from Postgres and repopulate.
func (h *Handlers) GetCurrencies(w http.ResponseWriter, r *http.Request) {
	cached, err := h.cache.GetCurrencies(r.Context())
	if err != nil {
		h.log.Warn("currency cache get failed", "err", err)
	}
	if cached != nil {
		writeJSON(w, http.StatusOK, cached)
		return
	}

	codes, err := h.store.ListCurrencies(r.Context())
	if err != nil {
		h.log.Error("currency list failed", "err", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	if codes == nil {
		codes = []string{}
	}

	if err := h.cache.SetCurrencies(r.Context(), codes); err != nil {
		h.log.Warn("currency cache set failed after db read", "err", err)
	}

	writeJSON(w, http.StatusOK, codes)
}

type airportResponse struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// SearchAirports handles GET /api/v1/airports?search=&offset=&limit=.
// Case-insensitive substring search over display labels, paginated; limit is
// capped at maxPageSize regardless of the requested value. Pure read — never
// triggers a refresh.
func (h *Handlers) SearchAirports(w http.ResponseWriter, r *http.Request) {
	search := r.URL.Query().Get("search")

	offset, ok := queryInt(r, "offset", 0)
	if !ok || offset < 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid offset"})
		return
	}

	limit, ok := queryInt(r, "limit", maxPageSize)
	if !ok || limit <= 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid limit"})
		return
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}

	airports, err := h.store.SearchAirports(r.Context(), search, offset, limit)
	if err != nil {
		h.log.Error("airport search failed", "search", search, "err", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := make([]airportResponse, 0, len(airports))
	for _, a := range airports {
		resp = append(resp, airportResponse{ID: a.ID, Label: a.Name})
	}

	writeJSON(w, http.StatusOK, resp)
}

// queryInt parses an optional integer query parameter.
func queryInt(r *http.Request, name string, fallback int) (int, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return v, true
}

// RefreshReferenceData handles POST /api/v1/refresh (bearer-authenticated).
// Kicks both refresh cycles immediately and reports per-collection outcome.
// Failures stay contained: the previous generation keeps serving and the
// response only carries a status string per collection.
func (h *Handlers) RefreshReferenceData(w http.ResponseWriter, r *http.Request) {
	statuses := map[string]string{"currencies": "ok", "airports": "ok"}

	if err := h.refresher.RefreshCurrencies(r.Context()); err != nil {
		h.log.Error("manual currency refresh failed", "err", err)
		statuses["currencies"] = "failed"
	}

	if err := h.refresher.RefreshAirports(r.Context(), h.locale); err != nil {
		h.log.Error("manual airport refresh failed", "locale", h.locale, "err", err)
		statuses["airports"] = "failed"
	}

	writeJSON(w, http.StatusOK, statuses)
}

type dbPinger interface {
	Ping(ctx context.Context) error
}

type redisPinger interface {
	Ping(ctx context.Context) error
}

// HealthHandlerFunc returns an http.HandlerFunc that checks db and redis
// connectivity. Returns 200 when both respond, 503 otherwise.
func HealthHandlerFunc(db dbPinger, redis redisPinger, log *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()

		status := http.StatusOK
		dbStatus := "ok"
		redisStatus := "ok"

		if err := db.Ping(ctx); err != nil {
			log.Error("health check: db ping failed", "err", err)
			dbStatus = "error"
			status = http.StatusServiceUnavailable
		}

		if err := redis.Ping(ctx); err != nil {
			log.Error("health check: redis ping failed", "err", err)
			redisStatus = "error"
			status = http.StatusServiceUnavailable
		}

		overall := "ok"
		if status != http.StatusOK {
			overall = "degraded"
		}

		writeJSON(w, status, map[string]string{
			"status": overall,
			"db":     dbStatus,
			"redis":  redisStatus,
		})
	}
}

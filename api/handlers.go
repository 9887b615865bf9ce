package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/zbmed-semtec/mlentory/explore"
	"github.com/zbmed-semtec/mlentory/search"
)

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("failed to encode response", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}

// handleSearchModels serves GET /models: faceted model search with
// query parameters q, page, page_size, facets, and facet filters of the
// form filter.<facet>=<value>.
func (s *Server) handleSearchModels(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	req := search.Request{
		Query:   query.Get("q"),
		Filters: map[string][]string{},
	}
	if raw := query.Get("page"); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil || page < 1 {
			s.writeError(w, http.StatusBadRequest, "page must be a positive integer")
			return
		}
		req.Page = page
	}
	if raw := query.Get("page_size"); raw != "" {
		size, err := strconv.Atoi(raw)
		if err != nil || size < 1 {
			s.writeError(w, http.StatusBadRequest, "page_size must be a positive integer")
			return
		}
		req.PageSize = size
	}
	if raw := query.Get("facets"); raw != "" {
		req.Facets = strings.Split(raw, ",")
	}
	for key, values := range query {
		if facet, ok := strings.CutPrefix(key, "filter."); ok {
			req.Filters[facet] = values
		}
	}

	resp, err := s.search.Search(r.Context(), req)
	if err != nil {
		s.logger.Error("search failed", "error", err)
		s.writeError(w, http.StatusInternalServerError, "search failed")
		return
	}
	s.writeJSON(w, http.StatusOK, resp)
}

// handleGetModel serves GET /models/{id}.
func (s *Server) handleGetModel(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	doc, err := s.search.GetModel(r.Context(), id)
	if err != nil {
		if errors.Is(err, search.ErrModelNotFound) {
			s.writeError(w, http.StatusNotFound, "model not found")
			return
		}
		s.logger.Error("model lookup failed", "model", id, "error", err)
		s.writeError(w, http.StatusInternalServerError, "model lookup failed")
		return
	}
	s.writeJSON(w, http.StatusOK, doc)
}

// handleGraph serves GET /graph/{id}: the depth-1 neighborhood of an
// entity. Optional query parameters: direction, relationships
// (comma-separated), label.
func (s *Server) handleGraph(w http.ResponseWriter, r *http.Request) {
	req := explore.Request{
		EntityID:    chi.URLParam(r, "id"),
		Direction:   r.URL.Query().Get("direction"),
		EntityLabel: r.URL.Query().Get("label"),
	}
	if raw := r.URL.Query().Get("relationships"); raw != "" {
		req.Relationships = strings.Split(raw, ",")
	}

	result, err := s.explore.Explore(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, explore.ErrUnsupported):
			s.writeError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, explore.ErrEntityNotFound):
			s.writeError(w, http.StatusNotFound, "entity not found")
		default:
			s.logger.Error("graph exploration failed", "entity", req.EntityID, "error", err)
			s.writeError(w, http.StatusInternalServerError, "graph exploration failed")
		}
		return
	}
	s.writeJSON(w, http.StatusOK, result)
}

// handlePlatformStats serves GET /stats/platform.
func (s *Server) handlePlatformStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.search.PlatformStats(r.Context())
	if err != nil {
		s.logger.Error("platform stats failed", "error", err)
		s.writeError(w, http.StatusInternalServerError, "platform stats failed")
		return
	}
	s.writeJSON(w, http.StatusOK, stats)
}

// handleHealth serves GET /health: pings every registered store and
// reports per-store status.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := map[string]string{"status": "ok"}
	healthy := true
	for name, check := range s.checks {
		if err := check(r.Context()); err != nil {
			healthy = false
			status[name] = err.Error()
			s.logger.Warn("health check failed", "store", name, "error", err)
			continue
		}
		status[name] = "ok"
	}
	if !healthy {
		status["status"] = "degraded"
		s.writeJSON(w, http.StatusInternalServerError, status)
		return
	}
	s.writeJSON(w, http.StatusOK, status)
}

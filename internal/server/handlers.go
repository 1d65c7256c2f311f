package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/hyperjump/fandex/internal/models"
	"github.com/hyperjump/fandex/internal/search"
)

const defaultListLimit = 10

func (s *Server) handleSearchGet(w http.ResponseWriter, r *http.Request) {
	query, err := parseSearchParams(r.URL.Query())
	if err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.search(w, r, query)
}

func (s *Server) handleSearchPost(w http.ResponseWriter, r *http.Request) {
	var query models.SearchQuery
	if err := json.NewDecoder(r.Body).Decode(&query); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	s.search(w, r, &query)
}

func (s *Server) handleDomainSearch(w http.ResponseWriter, r *http.Request) {
	query, err := parseSearchParams(r.URL.Query())
	if err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	query.Domain = models.Domain(chi.URLParam(r, "domain"))
	s.search(w, r, query)
}

// search answers for one domain when the query names one, else for all.
func (s *Server) search(w http.ResponseWriter, r *http.Request, query *models.SearchQuery) {
	s.logger.Debug("search request",
		zap.String("query", query.Query),
		zap.String("domain", string(query.Domain)),
		zap.Int("limit", query.Limit),
		zap.Bool("remote", query.Remote))

	if query.Domain == "" {
		response, err := s.service.SearchAll(r.Context(), query)
		if err != nil {
			s.respondSearchError(w, err)
			return
		}
		s.respondJSON(w, http.StatusOK, response)
		return
	}
	response, err := s.service.Search(r.Context(), query)
	if err != nil {
		s.respondSearchError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, response)
}

func (s *Server) handleSuggest(w http.ResponseWriter, r *http.Request) {
	d, ok := s.pathDomain(w, r)
	if !ok {
		return
	}
	limit, err := intParam(r.URL.Query(), "limit")
	if err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if limit <= 0 {
		limit = defaultListLimit
	}
	partial := r.URL.Query().Get("q")
	suggestions, err := s.service.Suggest(d, partial, limit)
	if err != nil {
		s.respondSearchError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"domain":      d,
		"query":       partial,
		"suggestions": suggestions,
	})
}

func (s *Server) handleGetItem(w http.ResponseWriter, r *http.Request) {
	d, ok := s.pathDomain(w, r)
	if !ok {
		return
	}
	item, found := s.service.Item(d, chi.URLParam(r, "id"))
	if !found {
		s.respondError(w, http.StatusNotFound, "item not found")
		return
	}
	s.respondJSON(w, http.StatusOK, item)
}

func (s *Server) handleSimilar(w http.ResponseWriter, r *http.Request) {
	d, ok := s.pathDomain(w, r)
	if !ok {
		return
	}
	limit, err := intParam(r.URL.Query(), "limit")
	if err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if limit <= 0 {
		limit = defaultListLimit
	}
	id := chi.URLParam(r, "id")
	recs, err := s.service.Similar(d, id, limit)
	if err != nil {
		s.respondSearchError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"domain":  d,
		"id":      id,
		"similar": recs,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type domainStatus struct {
	Items    int        `json:"items"`
	Source   string     `json:"source,omitempty"`
	LoadedAt *time.Time `json:"loaded_at,omitempty"`
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	domains := make(map[models.Domain]domainStatus)
	for _, d := range s.service.Domains() {
		var st domainStatus
		if s.store != nil {
			if snap := s.store.Snapshot(d); snap != nil {
				loaded := snap.LoadedAt
				st = domainStatus{Items: len(snap.Items), Source: snap.Source, LoadedAt: &loaded}
			}
		}
		domains[d] = st
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"domains":        domains,
		"remote_enabled": s.service.RemoteEnabled(),
	})
}

// pathDomain parses the {domain} URL parameter, answering 404 when unknown.
func (s *Server) pathDomain(w http.ResponseWriter, r *http.Request) (models.Domain, bool) {
	d, err := models.ParseDomain(chi.URLParam(r, "domain"))
	if err != nil {
		s.respondError(w, http.StatusNotFound, err.Error())
		return "", false
	}
	return d, true
}

func (s *Server) respondSearchError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, models.ErrUnknownDomain), errors.Is(err, search.ErrItemNotFound):
		s.respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		s.logger.Warn("search aborted", zap.Error(err))
		s.respondError(w, http.StatusServiceUnavailable, err.Error())
	default:
		s.respondError(w, http.StatusBadRequest, err.Error())
	}
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}

package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"github.com/andreiashu/tripgeo"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// writeLookupError maps library errors to HTTP statuses.
func writeLookupError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, tripgeo.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, tripgeo.ErrUnknownTerrain):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

// intParam parses an optional integer query parameter.
func intParam(r *http.Request, name string, def int) (int, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer", name)
	}
	return n, nil
}

// floatParam parses a required finite float query parameter.
func floatParam(r *http.Request, name string) (float64, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return 0, fmt.Errorf("%s is required", name)
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("%s must be a finite number", name)
	}
	return f, nil
}

type healthResponse struct {
	Status string `json:"status"`
	Cities int    `json:"cities"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Cities: s.catalog.Len()})
}

type searchResponse struct {
	Query string `json:"query"`
	searchHits
}

// searchHits is the cacheable part of a search response. The query is
// echoed per request since differently cased queries share a cache entry.
type searchHits struct {
	Results     []tripgeo.City       `json:"results"`
	Suggestions []tripgeo.Suggestion `json:"suggestions,omitempty"`
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	limit, err := intParam(r, "limit", 0)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	key := fmt.Sprintf("search:%s:%d", strings.ToLower(strings.TrimSpace(q)), limit)
	if s.cache != nil {
		if cached, ok := s.cache.Get(key); ok {
			s.metrics.cacheLookup.WithLabelValues("hit").Inc()
			writeJSON(w, http.StatusOK, searchResponse{Query: q, searchHits: cached.(searchHits)})
			return
		}
		s.metrics.cacheLookup.WithLabelValues("miss").Inc()
	}

	hits := searchHits{Results: s.catalog.Search(q, limit)}
	if len(hits.Results) == 0 {
		hits.Suggestions = s.catalog.Suggest(q, 0, limit)
	}
	if s.cache != nil {
		s.cache.SetDefault(key, hits)
	}
	writeJSON(w, http.StatusOK, searchResponse{Query: q, searchHits: hits})
}

func (s *Server) handleLookup(w http.ResponseWriter, r *http.Request) {
	city, err := s.catalog.Lookup(mux.Vars(r)["name"])
	if err != nil {
		writeLookupError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, city)
}

type nearbyResponse struct {
	Origin tripgeo.City         `json:"origin"`
	Nearby []tripgeo.NearbyCity `json:"nearby"`
}

func (s *Server) handleNearby(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	k, err := intParam(r, "k", tripgeo.DefaultNearbyCount)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	origin, err := s.catalog.Lookup(name)
	if err != nil {
		writeLookupError(w, err)
		return
	}
	nearby, err := s.catalog.NearbyCities(name, k)
	if err != nil {
		writeLookupError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, nearbyResponse{Origin: origin, Nearby: nearby})
}

func (s *Server) handleNearest(w http.ResponseWriter, r *http.Request) {
	lat, err := floatParam(r, "lat")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	lng, err := floatParam(r, "lng")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if !tripgeo.ValidCoordinates(lat, lng) {
		writeError(w, http.StatusBadRequest, "lat must be within [-90, 90] and lng within [-180, 180]")
		return
	}
	city, err := s.catalog.Nearest(lat, lng)
	if err != nil {
		writeLookupError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, city)
}

func (s *Server) handleRoute(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	from, to := q.Get("from"), q.Get("to")
	if from == "" || to == "" {
		writeError(w, http.StatusBadRequest, "from and to are required")
		return
	}
	terrain, err := tripgeo.ParseTerrain(q.Get("terrain"))
	if err != nil {
		writeLookupError(w, err)
		return
	}
	route, err := s.catalog.Route(from, to, terrain)
	if err != nil {
		writeLookupError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, route)
}

type travelTimeResponse struct {
	DistanceKm float64         `json:"distance_km"`
	Terrain    tripgeo.Terrain `json:"terrain"`
	Hours      float64         `json:"hours"`
}

func (s *Server) handleTravelTime(w http.ResponseWriter, r *http.Request) {
	d, err := floatParam(r, "distance_km")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	terrain, err := tripgeo.ParseTerrain(r.URL.Query().Get("terrain"))
	if err != nil {
		writeLookupError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, travelTimeResponse{
		DistanceKm: d,
		Terrain:    terrain,
		Hours:      tripgeo.EstimateTravelTimeHours(d, terrain),
	})
}

func (s *Server) handlePopularSources(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.catalog.PopularSourceCities())
}

func (s *Server) handleDestinationShortcuts(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, tripgeo.DestinationShortcuts())
}

func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxExtractBody))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("body exceeds %d bytes", maxExtractBody))
			return
		}
		writeError(w, http.StatusBadRequest, "could not read body")
		return
	}
	writeJSON(w, http.StatusOK, s.catalog.ExtractCities(string(body)))
}

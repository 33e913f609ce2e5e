package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"bridgehub/pkg/models"
)

const defaultHistoryHours = 24

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"service":     "BRIDGE Hub",
		"version":     "1.0.0",
		"description": "Collective fraud intelligence coordinator",
		"status":      "operational",
		"endpoints": map[string]string{
			"health":     "GET /health",
			"ingest":     "POST /ingest",
			"advisories": "GET /advisories",
			"stats":      "GET /stats",
			"metrics":    "GET /metrics",
		},
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.state.Health())
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.state.GraphStats())
}

func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	var sub models.Submission
	if err := json.NewDecoder(r.Body).Decode(&sub); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}

	identity := r.Header.Get(entityHeader)
	if identity == "" || identity != sub.EntityID {
		writeError(w, http.StatusBadRequest, "entity identity header does not match payload")
		return
	}

	ack, err := s.ingest.Process(sub)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusAccepted, ack)
}

func (s *Server) handleAdvisories(w http.ResponseWriter, r *http.Request) {
	limit := 10
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "invalid limit parameter")
			return
		}
		limit = n
	}

	var tier models.Tier
	if raw := r.URL.Query().Get("severity"); raw != "" {
		parsed, ok := models.ParseTier(raw)
		if !ok {
			writeError(w, http.StatusBadRequest, "invalid severity parameter")
			return
		}
		tier = parsed
	}

	writeJSON(w, http.StatusOK, s.store.Recent(limit, tier))
}

func (s *Server) handleAdvisory(w http.ResponseWriter, r *http.Request) {
	adv, ok := s.store.Get(r.PathValue("advisory_id"))
	if !ok {
		writeError(w, http.StatusNotFound, "Advisory not found")
		return
	}
	writeJSON(w, http.StatusOK, adv)
}

func (s *Server) handlePattern(w http.ResponseWriter, r *http.Request) {
	window, ok := historyWindow(w, r)
	if !ok {
		return
	}

	history, found := s.state.PatternHistory(r.PathValue("fingerprint"), window)
	if !found {
		writeError(w, http.StatusNotFound, "Pattern not found")
		return
	}
	writeJSON(w, http.StatusOK, history)
}

func (s *Server) handleEntityActivity(w http.ResponseWriter, r *http.Request) {
	window, ok := historyWindow(w, r)
	if !ok {
		return
	}

	activity, found := s.state.EntityActivity(r.PathValue("entity_id"), window)
	if !found {
		writeError(w, http.StatusNotFound, "No recent activity for entity")
		return
	}
	writeJSON(w, http.StatusOK, activity)
}

func historyWindow(w http.ResponseWriter, r *http.Request) (time.Duration, bool) {
	hours := defaultHistoryHours
	if raw := r.URL.Query().Get("hours"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "invalid hours parameter")
			return 0, false
		}
		hours = n
	}
	return time.Duration(hours) * time.Hour, true
}

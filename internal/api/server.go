package api

import (
	"encoding/json"
	"net/http"

	"bridgehub/internal/advisory"
	"bridgehub/internal/hub"
	"bridgehub/internal/logger"
	"bridgehub/internal/metrics"
	"bridgehub/internal/pipeline"
)

// Header names the request gateway enforces.
const (
	apiKeyHeader = "x-api-key"
	entityHeader = "X-Entity-ID"
)

// Config controls the API surface.
type Config struct {
	APIKey string
}

// Server translates external HTTP requests into component calls. It
// owns no state itself; everything is delegated to the pipeline, the
// read-only hub state, and the advisory store.
type Server struct {
	cfg     Config
	ingest  *pipeline.Ingest
	state   *hub.State
	store   *advisory.Store
	metrics *metrics.Metrics
}

// New creates the API server.
func New(cfg Config, ingest *pipeline.Ingest, state *hub.State, store *advisory.Store, m *metrics.Metrics) *Server {
	return &Server{cfg: cfg, ingest: ingest, state: state, store: store, metrics: m}
}

// Handler builds the route table. Health and the root banner are open;
// everything else requires the API key.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", s.handleRoot)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /stats", s.requireAPIKey(s.handleStats))
	mux.HandleFunc("POST /ingest", s.requireAPIKey(s.handleIngest))
	mux.HandleFunc("GET /advisories", s.requireAPIKey(s.handleAdvisories))
	mux.HandleFunc("GET /advisories/{advisory_id}", s.requireAPIKey(s.handleAdvisory))
	mux.HandleFunc("GET /patterns/{fingerprint}", s.requireAPIKey(s.handlePattern))
	mux.HandleFunc("GET /entities/{entity_id}/activity", s.requireAPIKey(s.handleEntityActivity))
	if s.metrics != nil {
		metricsHandler := s.metrics.Handler()
		mux.HandleFunc("GET /metrics", s.requireAPIKey(func(w http.ResponseWriter, r *http.Request) {
			metricsHandler.ServeHTTP(w, r)
		}))
	}

	return mux
}

func (s *Server) requireAPIKey(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get(apiKeyHeader) != s.cfg.APIKey {
			writeError(w, http.StatusUnauthorized, "Invalid API key")
			return
		}
		next(w, r)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Errorf("Failed to encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

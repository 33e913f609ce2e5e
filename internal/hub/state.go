package hub

import (
	"fmt"
	"strings"
	"time"

	"bridgehub/internal/advisory"
	"bridgehub/internal/graph"
	"bridgehub/pkg/models"
)

// Pattern node count at which health degrades.
const graphNodeLimit = 10000

// activeWindow bounds the "active entities" figure in graph stats.
const activeWindow = 60 * time.Minute

// State is the read-only view of hub internals served to monitoring
// and dashboard clients. Visibility, not control: stats are computed
// on demand, never cached.
type State struct {
	graph *graph.Graph
	store *advisory.Store
	start time.Time
	now   func() time.Time
}

// PatternHistory describes one fingerprint's recent activity.
type PatternHistory struct {
	Fingerprint        string               `json:"fingerprint"`
	FirstSeen          time.Time            `json:"first_seen"`
	LastSeen           time.Time            `json:"last_seen"`
	ObservationCount   int                  `json:"observation_count"`
	EntityCount        int                  `json:"entity_count"`
	TimeSpanSeconds    float64              `json:"time_span_seconds"`
	RecentParticipants []string             `json:"recent_participants"`
	Observations       []models.Observation `json:"observations"`
}

// EntityActivity summarizes one participant's recent submissions.
type EntityActivity struct {
	EntityID           string    `json:"entity_id"`
	ObservationCount   int       `json:"observation_count"`
	UniquePatterns     int       `json:"unique_patterns"`
	RecentFingerprints []string  `json:"recent_fingerprints"`
	FirstObservation   time.Time `json:"first_observation"`
	LastSubmission     time.Time `json:"last_submission"`
}

// New creates the read-only state facade. A nil clock defaults to
// time.Now.
func New(g *graph.Graph, store *advisory.Store, now func() time.Time) *State {
	if now == nil {
		now = time.Now
	}
	return &State{graph: g, store: store, start: now(), now: now}
}

// GraphStats returns current graph metrics.
func (s *State) GraphStats() models.GraphStats {
	return s.graph.Stats(activeWindow)
}

// Health reports liveness, degrading when the graph or advisory store
// approach their bounds.
func (s *State) Health() models.HealthStatus {
	now := s.now()

	patterns, _ := s.graph.Counts()
	graphHealthy := patterns < graphNodeLimit
	advisoriesHealthy := s.store.Len() < s.store.Cap()

	status := "HEALTHY"
	message := "All systems operational"
	if !graphHealthy || !advisoriesHealthy {
		status = "DEGRADED"
		var issues []string
		if !graphHealthy {
			issues = append(issues, "Graph memory approaching limit")
		}
		if !advisoriesHealthy {
			issues = append(issues, "Advisory queue large")
		}
		message = fmt.Sprintf("Issues detected: %s", strings.Join(issues, "; "))
	}

	return models.HealthStatus{
		Status:        status,
		UptimeSeconds: now.Sub(s.start).Seconds(),
		Timestamp:     now.UTC(),
		Message:       message,
	}
}

// PatternHistory returns observation history for a fingerprint within
// the window. The boolean is false for unknown fingerprints.
func (s *State) PatternHistory(fingerprint string, window time.Duration) (*PatternHistory, bool) {
	firstSeen, lastSeen, count, ok := s.graph.PatternInfo(fingerprint)
	if !ok {
		return nil, false
	}

	observations := s.graph.RecentObservations(fingerprint, window)
	participants := make([]string, 0, len(observations))
	seen := make(map[string]struct{}, len(observations))
	for _, obs := range observations {
		if _, dup := seen[obs.EntityID]; dup {
			continue
		}
		seen[obs.EntityID] = struct{}{}
		participants = append(participants, obs.EntityID)
	}

	span := 0.0
	if len(observations) > 1 {
		span = observations[len(observations)-1].Timestamp.Sub(observations[0].Timestamp).Seconds()
	}

	return &PatternHistory{
		Fingerprint:        fingerprint,
		FirstSeen:          firstSeen,
		LastSeen:           lastSeen,
		ObservationCount:   count,
		EntityCount:        len(participants),
		TimeSpanSeconds:    span,
		RecentParticipants: participants,
		Observations:       observations,
	}, true
}

// EntityActivity summarizes a participant's submissions within the
// window. The boolean is false when the participant has no recent
// observations.
func (s *State) EntityActivity(entityID string, window time.Duration) (*EntityActivity, bool) {
	observations := s.graph.EntityObservations(entityID, window)
	if len(observations) == 0 {
		return nil, false
	}

	fingerprints := make([]string, 0, len(observations))
	seen := make(map[string]struct{}, len(observations))
	for _, obs := range observations {
		if _, dup := seen[obs.Fingerprint]; dup {
			continue
		}
		seen[obs.Fingerprint] = struct{}{}
		fingerprints = append(fingerprints, obs.Fingerprint)
	}

	return &EntityActivity{
		EntityID:           entityID,
		ObservationCount:   len(observations),
		UniquePatterns:     len(fingerprints),
		RecentFingerprints: fingerprints,
		FirstObservation:   observations[0].Timestamp,
		LastSubmission:     observations[len(observations)-1].Timestamp,
	}, true
}

package correlator

import (
	"time"

	"bridgehub/internal/graph"
	"bridgehub/pkg/models"
)

// Config controls correlation detection.
//
// A pattern appearing once is noise. The same pattern appearing across
// multiple participants in a short window is intelligence.
type Config struct {
	EntityThreshold int
	TimeWindow      time.Duration

	// Confidence boundaries: HIGH needs at least HighEntityMin entities
	// within HighMaxSpan; MEDIUM needs MediumEntityMin within
	// MediumMaxSpan; everything else is LOW.
	HighEntityMin   int
	HighMaxSpan     time.Duration
	MediumEntityMin int
	MediumMaxSpan   time.Duration
}

// Correlator decides whether a fingerprint is co-observed by enough
// distinct participants within the configured window.
type Correlator struct {
	cfg Config
}

// New creates a correlator, filling unset config fields with defaults.
func New(cfg Config) *Correlator {
	if cfg.EntityThreshold <= 0 {
		cfg.EntityThreshold = 2
	}
	if cfg.TimeWindow <= 0 {
		cfg.TimeWindow = 300 * time.Second
	}
	if cfg.HighEntityMin <= 0 {
		cfg.HighEntityMin = 3
	}
	if cfg.HighMaxSpan <= 0 {
		cfg.HighMaxSpan = 180 * time.Second
	}
	if cfg.MediumEntityMin <= 0 {
		cfg.MediumEntityMin = 2
	}
	if cfg.MediumMaxSpan <= 0 {
		cfg.MediumMaxSpan = 300 * time.Second
	}
	return &Correlator{cfg: cfg}
}

// Detect returns the correlation for fingerprint given the current graph
// state, or nil when fewer than EntityThreshold distinct participants
// observed it within the window.
func (c *Correlator) Detect(fingerprint string, g *graph.Graph) *models.Correlation {
	observations := g.RecentObservations(fingerprint, c.cfg.TimeWindow)
	if len(observations) == 0 {
		return nil
	}

	unique := make(map[string]struct{}, len(observations))
	for _, obs := range observations {
		unique[obs.EntityID] = struct{}{}
	}
	entityCount := len(unique)
	if entityCount < c.cfg.EntityThreshold {
		return nil
	}

	span := 0.0
	if len(observations) > 1 {
		span = observations[len(observations)-1].Timestamp.Sub(observations[0].Timestamp).Seconds()
	}

	return &models.Correlation{
		Fingerprint:     fingerprint,
		EntityCount:     entityCount,
		TimeSpanSeconds: span,
		Confidence:      c.confidence(entityCount, span),
		Observations:    observations,
	}
}

// confidence grades a correlation: more participants in a tighter span
// means higher confidence. Boundaries are inclusive on both axes.
func (c *Correlator) confidence(entityCount int, spanSeconds float64) models.Confidence {
	switch {
	case entityCount >= c.cfg.HighEntityMin && spanSeconds <= c.cfg.HighMaxSpan.Seconds():
		return models.ConfidenceHigh
	case entityCount >= c.cfg.MediumEntityMin && spanSeconds <= c.cfg.MediumMaxSpan.Seconds():
		return models.ConfidenceMedium
	default:
		return models.ConfidenceLow
	}
}

package escalator

import (
	"fmt"
	"time"

	"bridgehub/pkg/models"
)

// Config controls escalation thresholds. Not every correlation is
// fraud; the entity-count thresholds keep false positives down.
type Config struct {
	CriticalThreshold int
	HighThreshold     int
	MediumThreshold   int
}

// Escalator converts correlations into intent alerts. Pure except for
// the injected clock used to stamp alerts.
type Escalator struct {
	cfg Config
	now func() time.Time
}

// New creates an escalator, filling unset config fields with defaults.
// A nil clock defaults to time.Now.
func New(cfg Config, now func() time.Time) *Escalator {
	if cfg.CriticalThreshold <= 0 {
		cfg.CriticalThreshold = 4
	}
	if cfg.HighThreshold <= 0 {
		cfg.HighThreshold = 3
	}
	if cfg.MediumThreshold <= 0 {
		cfg.MediumThreshold = 2
	}
	if now == nil {
		now = time.Now
	}
	return &Escalator{cfg: cfg, now: now}
}

// Evaluate escalates a correlation to an intent alert, or returns nil
// when the entity count is below the medium threshold. submitted is the
// severity reported on the triggering submission.
func (e *Escalator) Evaluate(corr *models.Correlation, submitted models.Severity) *models.IntentAlert {
	tier, ok := e.tier(corr.EntityCount)
	if !ok {
		return nil
	}

	now := e.now().UTC()
	return &models.IntentAlert{
		AlertID:         alertID(now, corr.Fingerprint),
		Fingerprint:     corr.Fingerprint,
		Severity:        tier,
		Confidence:      corr.Confidence,
		EntityCount:     corr.EntityCount,
		TimeSpanSeconds: corr.TimeSpanSeconds,
		FraudScore:      FraudScore(corr, submitted),
		Rationale: fmt.Sprintf("Pattern observed by %d distinct participants within %.0f seconds (confidence %s)",
			corr.EntityCount, corr.TimeSpanSeconds, corr.Confidence),
		Timestamp: now,
	}
}

func (e *Escalator) tier(entityCount int) (models.Tier, bool) {
	switch {
	case entityCount >= e.cfg.CriticalThreshold:
		return models.TierCritical, true
	case entityCount >= e.cfg.HighThreshold:
		return models.TierHigh, true
	case entityCount >= e.cfg.MediumThreshold:
		return models.TierMedium, true
	default:
		return "", false
	}
}

// FraudScore summarizes alert strength on a 0-100 scale:
// base min(80, 20*entities), plus a confidence bonus, minus a recency
// penalty for spans over 10 minutes, adjusted by submitted severity.
func FraudScore(corr *models.Correlation, submitted models.Severity) int {
	score := corr.EntityCount * 20
	if score > 80 {
		score = 80
	}

	switch corr.Confidence {
	case models.ConfidenceHigh:
		score += 10
	case models.ConfidenceMedium:
		score += 5
	}

	if corr.TimeSpanSeconds > 600 {
		score -= 10
	}

	switch submitted {
	case models.SeverityLow:
		score -= 5
	case models.SeverityHigh:
		score += 5
	case models.SeverityCritical:
		score += 10
	}

	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	return score
}

func alertID(ts time.Time, fingerprint string) string {
	prefix := fingerprint
	if len(prefix) > 8 {
		prefix = prefix[:8]
	}
	return "ALT-" + ts.Format("20060102150405") + "-" + prefix
}

package pipeline

import (
	"fmt"
	"sync"
	"time"

	"bridgehub/internal/advisory"
	"bridgehub/internal/correlator"
	"bridgehub/internal/escalator"
	"bridgehub/internal/graph"
	"bridgehub/internal/logger"
	"bridgehub/internal/metrics"
	"bridgehub/pkg/models"
)

// Config controls submission handling.
type Config struct {
	// MaxClockSkew bounds how far ahead of server time a submission
	// timestamp may be (default 60s).
	MaxClockSkew time.Duration
	// TierMemoryAge bounds how long a fired severity tier suppresses
	// re-advising a fingerprint; aligned with the graph max age so a
	// pruned pattern can advise again.
	TierMemoryAge time.Duration
}

// Ack is the response returned for an accepted submission.
type Ack struct {
	Status              string `json:"status"`
	Fingerprint         string `json:"fingerprint"`
	EntityID            string `json:"entity_id"`
	CorrelationDetected bool   `json:"correlation_detected"`
	Message             string `json:"message"`
}

// Ingest is the single entry point for submissions: validate, record
// the observation, correlate, escalate, advise. Submissions are
// serialized so that correlation always sees the observation it just
// wrote and two concurrent submissions for one fingerprint cannot
// double-fire the same advisory.
type Ingest struct {
	mu         sync.Mutex
	cfg        Config
	graph      *graph.Graph
	correlator *correlator.Correlator
	escalator  *escalator.Escalator
	store      *advisory.Store
	writers    []AdvisoryWriter
	metrics    *metrics.Metrics
	now        func() time.Time

	firedTiers map[string]tierMemory
}

type tierMemory struct {
	tier models.Tier
	at   time.Time
}

// NewIngest wires the pipeline. metrics may be nil; a nil clock
// defaults to time.Now.
func NewIngest(cfg Config, g *graph.Graph, c *correlator.Correlator, e *escalator.Escalator, store *advisory.Store, m *metrics.Metrics, writers []AdvisoryWriter, now func() time.Time) *Ingest {
	if cfg.MaxClockSkew <= 0 {
		cfg.MaxClockSkew = 60 * time.Second
	}
	if cfg.TierMemoryAge <= 0 {
		cfg.TierMemoryAge = time.Hour
	}
	if now == nil {
		now = time.Now
	}
	return &Ingest{
		cfg:        cfg,
		graph:      g,
		correlator: c,
		escalator:  e,
		store:      store,
		writers:    writers,
		metrics:    m,
		now:        now,
		firedTiers: make(map[string]tierMemory),
	}
}

// Process handles one submission. A non-nil error means the submission
// was rejected and left no trace in the graph or advisory store.
func (p *Ingest) Process(sub models.Submission) (*Ack, error) {
	started := time.Now()

	severity, ts, err := p.validate(&sub)
	if err != nil {
		if p.metrics != nil {
			p.metrics.SubmissionsRejected.Inc()
		}
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.graph.AddObservation(sub.EntityID, sub.Fingerprint, severity, ts)
	logger.Infof("Ingested fingerprint from %s: %s (severity=%s)",
		sub.EntityID, models.ShortFingerprint(sub.Fingerprint, 12), severity)

	corr := p.correlator.Detect(sub.Fingerprint, p.graph)
	if corr != nil {
		logger.Infof("Correlation detected for %s: %d entities, %.1fs span, confidence=%s",
			models.ShortFingerprint(sub.Fingerprint, 12), corr.EntityCount, corr.TimeSpanSeconds, corr.Confidence)
		if p.metrics != nil {
			p.metrics.CorrelationsDetected.Inc()
		}

		if alert := p.escalator.Evaluate(corr, severity); alert != nil {
			if p.metrics != nil {
				p.metrics.AlertsEscalated.Inc()
			}
			if p.shouldAdvise(sub.Fingerprint, alert.Severity) {
				adv := advisory.Build(alert)
				p.store.Append(adv)
				logger.Warnf("Advisory generated: %s (%s, score=%d, entities=%d)",
					adv.AdvisoryID, adv.Severity, adv.FraudScore, adv.EntityCount)
				if p.metrics != nil {
					p.metrics.AdvisoriesGenerated.WithLabelValues(string(adv.Severity)).Inc()
				}
				for _, w := range p.writers {
					if err := w.WriteAdvisory(adv); err != nil {
						logger.Errorf("Failed to write advisory %s: %v", adv.AdvisoryID, err)
					}
				}
			} else {
				logger.Debugf("Advisory suppressed for %s: tier %s already advised",
					models.ShortFingerprint(sub.Fingerprint, 12), alert.Severity)
			}
		}
	}

	if p.metrics != nil {
		p.metrics.FingerprintsIngested.Inc()
		p.metrics.IngestLatency.Observe(time.Since(started).Seconds())
		patterns, observations := p.graph.Counts()
		p.metrics.GraphPatterns.Set(float64(patterns))
		p.metrics.GraphObservations.Set(float64(observations))
	}

	return &Ack{
		Status:              "accepted",
		Fingerprint:         models.ShortFingerprint(sub.Fingerprint, 16),
		EntityID:            sub.EntityID,
		CorrelationDetected: corr != nil,
		Message:             "Fingerprint ingested successfully",
	}, nil
}

func (p *Ingest) validate(sub *models.Submission) (models.Severity, time.Time, error) {
	if sub.EntityID == "" {
		return "", time.Time{}, fmt.Errorf("entity_id is required")
	}
	if sub.Fingerprint == "" {
		return "", time.Time{}, fmt.Errorf("fingerprint is required")
	}
	severity, ok := models.ParseSeverity(sub.Severity)
	if !ok {
		return "", time.Time{}, fmt.Errorf("unknown severity: %s", sub.Severity)
	}

	now := p.now().UTC()
	ts := sub.Timestamp
	if ts.IsZero() {
		ts = now
	} else {
		ts = ts.UTC()
		if ts.Sub(now) > p.cfg.MaxClockSkew {
			return "", time.Time{}, fmt.Errorf("timestamp is too far in the future")
		}
	}
	return severity, ts, nil
}

// shouldAdvise implements the re-fire rule: at most one advisory per
// (fingerprint, tier); only a strictly higher tier fires again. Tier
// memory expires with the graph so a pruned pattern starts over.
func (p *Ingest) shouldAdvise(fingerprint string, tier models.Tier) bool {
	now := p.now()
	mem, ok := p.firedTiers[fingerprint]
	if ok && now.Sub(mem.at) > p.cfg.TierMemoryAge {
		delete(p.firedTiers, fingerprint)
		ok = false
	}
	if ok && tier.Rank() <= mem.tier.Rank() {
		return false
	}
	p.firedTiers[fingerprint] = tierMemory{tier: tier, at: now}
	return true
}

// SweepTierMemory drops expired tier memories. Called from the pruner
// tick alongside graph pruning.
func (p *Ingest) SweepTierMemory() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	now := p.now()
	removed := 0
	for fp, mem := range p.firedTiers {
		if now.Sub(mem.at) > p.cfg.TierMemoryAge {
			delete(p.firedTiers, fp)
			removed++
		}
	}
	return removed
}

// Close closes all advisory writers.
func (p *Ingest) Close() error {
	var firstErr error
	for _, w := range p.writers {
		if err := w.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

package pruner

import (
	"context"
	"time"

	"bridgehub/internal/graph"
	"bridgehub/internal/logger"
)

// Pruner periodically evicts observations older than the configured
// maximum age, bounding memory and the temporal scope of correlation
// evidence. A fault in one tick never stops the loop.
type Pruner struct {
	graph    *graph.Graph
	interval time.Duration
	maxAge   time.Duration
	hooks    []func()
}

// New creates a pruner. hooks run after each graph prune (e.g. the
// pipeline's tier-memory sweep).
func New(g *graph.Graph, interval, maxAge time.Duration, hooks ...func()) *Pruner {
	if interval <= 0 {
		interval = 300 * time.Second
	}
	if maxAge <= 0 {
		maxAge = time.Hour
	}
	return &Pruner{graph: g, interval: interval, maxAge: maxAge, hooks: hooks}
}

// Run ticks until ctx is cancelled, returning within one interval of
// cancellation.
func (p *Pruner) Run(ctx context.Context) {
	logger.Infof("Pruner started: interval=%s max_age=%s", p.interval, p.maxAge)
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Infof("Pruner stopped")
			return
		case <-ticker.C:
			p.tick()
		}
	}
}

func (p *Pruner) tick() {
	defer func() {
		if r := recover(); r != nil {
			logger.Errorf("Pruner tick panicked: %v", r)
		}
	}()

	edges, nodes := p.graph.Prune(p.maxAge)
	if edges > 0 || nodes > 0 {
		logger.Infof("Pruned %d expired observations, %d orphan nodes", edges, nodes)
	}
	for _, hook := range p.hooks {
		hook()
	}
}

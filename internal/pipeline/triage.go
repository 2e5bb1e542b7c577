package pipeline

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/sentra-ops/incident-triage/internal/domain"
)

// Triager scores incidents and flags duplicates. It keeps a sliding window
// of recently seen incidents so duplicate detection spans batch boundaries:
// a re-report arriving in a later batch still matches the original as long
// as both fall inside the retention window.
type Triager struct {
	resolver  domain.RegionResolver
	logger    *slog.Logger
	clock     clockwork.Clock
	retention time.Duration

	mu     sync.Mutex
	recent []domain.Incident
}

// NewTriager creates a Triager. Pass a nil resolver to label regions from
// the static table only. Retention must cover at least the duplicate time
// window; shorter values would let cross-batch re-reports slip through.
func NewTriager(resolver domain.RegionResolver, logger *slog.Logger, clock clockwork.Clock, retention time.Duration) *Triager {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Triager{
		resolver:  resolver,
		logger:    logger,
		clock:     clock,
		retention: retention,
	}
}

// TriageBatch ingests a batch into the retention window, then scores each
// incident, flags duplicates against everything retained, prepends the
// duplicate marker reason where flagged, and enriches the region label.
func (tr *Triager) TriageBatch(ctx context.Context, batch []domain.Incident) []domain.TriagedIncident {
	retained := tr.ingest(batch)
	now := tr.clock.Now()

	out := make([]domain.TriagedIncident, 0, len(batch))
	for _, inc := range batch {
		result := domain.CalculatePriorityWithReasons(inc.Severity, inc.Status, inc.CreatedAt, inc.SensorVerified)
		dup := domain.IsPotentialDuplicate(inc, retained)

		reasons := result.Reasons
		if dup {
			reasons = append([]string{domain.DuplicateMarkerReason}, reasons...)
		}

		triaged := domain.TriagedIncident{
			Incident:      inc,
			PriorityScore: result.Score,
			Reasons:       reasons,
			IsDuplicate:   dup,
			TriagedAt:     now,
		}
		out = append(out, domain.EnrichWithRegion(ctx, triaged, tr.resolver, tr.logger))
	}
	return out
}

// Feed assembles a prioritized feed from the retained incidents.
func (tr *Triager) Feed(opts domain.FeedOptions) []domain.TriagedIncident {
	tr.mu.Lock()
	snapshot := make([]domain.Incident, len(tr.recent))
	copy(snapshot, tr.recent)
	tr.mu.Unlock()

	return domain.BuildFeed(snapshot, opts)
}

// ingest upserts the batch into the window (a report reappearing with the
// same ID replaces its older revision) and prunes entries past retention.
// Returns a snapshot of the retained incidents.
func (tr *Triager) ingest(batch []domain.Incident) []domain.Incident {
	tr.mu.Lock()
	defer tr.mu.Unlock()

	byID := make(map[string]int, len(tr.recent))
	for i := range tr.recent {
		byID[tr.recent[i].ID] = i
	}
	for _, inc := range batch {
		if i, ok := byID[inc.ID]; ok {
			tr.recent[i] = inc
			continue
		}
		byID[inc.ID] = len(tr.recent)
		tr.recent = append(tr.recent, inc)
	}

	cutoff := tr.clock.Now().Add(-tr.retention)
	kept := tr.recent[:0]
	for _, inc := range tr.recent {
		if !inc.CreatedAt.Before(cutoff) {
			kept = append(kept, inc)
		}
	}
	tr.recent = kept

	snapshot := make([]domain.Incident, len(tr.recent))
	copy(snapshot, tr.recent)
	return snapshot
}

package pipeline

import (
	"context"
	"log/slog"

	"github.com/sentra-ops/incident-triage/internal/domain"
)

// ReportTransformer implements Transformer using the domain boundary
// normalization: raw report JSON in, normalized Incident out.
type ReportTransformer struct {
	logger *slog.Logger
}

// NewTransformer creates a ReportTransformer.
func NewTransformer(logger *slog.Logger) *ReportTransformer {
	return &ReportTransformer{logger: logger}
}

func (t *ReportTransformer) Transform(_ context.Context, raw domain.RawEvent) (domain.Incident, error) {
	return domain.ParseRawEvent(raw)
}

package pipeline

import (
	"context"
	"log/slog"

	"github.com/couchcryptid/fg-probability-service/internal/domain"
	"github.com/couchcryptid/fg-probability-service/internal/observability"
)

// ScoringTransformer implements Transformer by decoding an AttemptRequest,
// scoring it against a model and serializing the result.
type ScoringTransformer struct {
	model   *domain.Model
	metrics *observability.Metrics
	logger  *slog.Logger
}

// NewTransformer creates a ScoringTransformer for the given model.
func NewTransformer(model *domain.Model, metrics *observability.Metrics, logger *slog.Logger) *ScoringTransformer {
	return &ScoringTransformer{
		model:   model,
		metrics: metrics,
		logger:  logger,
	}
}

func (t *ScoringTransformer) Transform(_ context.Context, raw domain.RawEvent) (domain.OutputEvent, error) {
	req, err := domain.ParseRawEvent(raw)
	if err != nil {
		return domain.OutputEvent{}, err
	}

	scored, err := domain.ScoreRequest(t.model, req)
	if err != nil {
		return domain.OutputEvent{}, err
	}
	t.metrics.Probability.Observe(scored.Probability)
	t.logger.Debug("request scored",
		"id", scored.ID,
		"probability", scored.Probability,
		"offset", raw.Offset,
	)

	return domain.SerializeScoredAttempt(scored)
}

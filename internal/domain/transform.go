package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// ParseRawEvent decodes a RawEvent's value into an AttemptRequest. Requests
// without an ID take the message key, or failing that a hash of the payload.
func ParseRawEvent(raw RawEvent) (AttemptRequest, error) {
	var req AttemptRequest
	if err := json.Unmarshal(raw.Value, &req); err != nil {
		return AttemptRequest{}, fmt.Errorf("%w: %w", ErrMalformedRequest, err)
	}
	if req.ID == "" {
		if len(raw.Key) > 0 {
			req.ID = string(raw.Key)
		} else {
			req.ID = generateID(raw.Value)
		}
	}
	return req, nil
}

// generateID produces a deterministic ID from the request payload so that a
// replayed message maps to the same result key.
func generateID(payload []byte) string {
	hash := sha256.Sum256(payload)
	return "fg-" + hex.EncodeToString(hash[:8])
}

// ScoreRequest evaluates a request against m and stamps the result with the
// package clock.
func ScoreRequest(m *Model, req AttemptRequest) (ScoredAttempt, error) {
	var overrides []Attempt
	if req.Overrides != nil {
		overrides = append(overrides, *req.Overrides)
	}

	ev, err := m.Evaluate(req.Attempt, overrides...)
	if err != nil {
		return ScoredAttempt{}, fmt.Errorf("score request %s: %w", req.ID, err)
	}

	return ScoredAttempt{
		ID:              req.ID,
		Request:         req,
		Resolved:        ev.Resolved,
		Terms:           ev.Terms,
		LinearPredictor: ev.LinearPredictor,
		Probability:     ev.Probability,
		ScoredAt:        clock.Now().UTC(),
	}, nil
}

// SerializeScoredAttempt converts a result into an OutputEvent keyed by the
// request ID.
func SerializeScoredAttempt(s ScoredAttempt) (OutputEvent, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return OutputEvent{}, fmt.Errorf("serialize scored attempt: %w", err)
	}
	return OutputEvent{
		Key:   []byte(s.ID),
		Value: data,
		Headers: map[string]string{
			"probability": strconv.FormatFloat(s.Probability, 'f', -1, 64),
			"scored_at":   s.ScoredAt.Format(time.RFC3339),
		},
	}, nil
}

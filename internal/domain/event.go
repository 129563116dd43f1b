package domain

import (
	"context"
	"time"
)

// RawEvent is an unprocessed scoring request read from the source topic.
type RawEvent struct {
	Key       []byte
	Value     []byte
	Headers   map[string]string
	Topic     string
	Partition int
	Offset    int64
	Timestamp time.Time
	Commit    func(ctx context.Context) error
}

// AttemptRequest is the JSON body of a scoring request. Overrides, when
// present, are merged onto Attempt before scoring.
type AttemptRequest struct {
	ID        string   `json:"id,omitempty"`
	Attempt   Attempt  `json:"attempt"`
	Overrides *Attempt `json:"overrides,omitempty"`
}

// ScoredAttempt is the result published for one request.
type ScoredAttempt struct {
	ID              string         `json:"id"`
	Request         AttemptRequest `json:"request"`
	Resolved        Attempt        `json:"resolved"`
	Terms           Terms          `json:"terms"`
	LinearPredictor float64        `json:"linear_predictor"`
	Probability     float64        `json:"probability"`
	ScoredAt        time.Time      `json:"scored_at"`
}

// OutputEvent is the serialized form destined for the sink topic.
type OutputEvent struct {
	Key     []byte
	Value   []byte
	Headers map[string]string
}

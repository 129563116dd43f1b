package domain

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testRequestID = "req-123"

func freezeClock(t *testing.T) time.Time {
	t.Helper()
	now := time.Date(2015, time.November, 22, 18, 5, 0, 0, time.UTC)
	SetClock(clockwork.NewFakeClockAt(now))
	t.Cleanup(func() { SetClock(nil) })
	return now
}

func TestParseRawEvent(t *testing.T) {
	t.Run("explicit id", func(t *testing.T) {
		raw := RawEvent{
			Key:   []byte("ignored-key"),
			Value: []byte(`{"id":"req-123","attempt":{"kicker_code":"AH-2600","temp":40,"wind":10,"yfog":67,"chanceOfRain":10,"is_dome":1,"is_turf":1},"overrides":{"home":"DEN"}}`),
		}
		req, err := ParseRawEvent(raw)
		require.NoError(t, err)
		assert.Equal(t, testRequestID, req.ID)
		assert.Equal(t, 67.0, *req.Attempt.YFOG)
		require.NotNil(t, req.Overrides)
		assert.Equal(t, "DEN", *req.Overrides.Home)
	})

	t.Run("id from key", func(t *testing.T) {
		raw := RawEvent{Key: []byte("kafka-key"), Value: []byte(`{"attempt":{"home":"GB"}}`)}
		req, err := ParseRawEvent(raw)
		require.NoError(t, err)
		assert.Equal(t, "kafka-key", req.ID)
		assert.Nil(t, req.Overrides)
	})

	t.Run("deterministic hashed id", func(t *testing.T) {
		raw := RawEvent{Value: []byte(`{"attempt":{"home":"GB"}}`)}
		first, err := ParseRawEvent(raw)
		require.NoError(t, err)
		second, err := ParseRawEvent(raw)
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(first.ID, "fg-"))
		assert.Equal(t, first.ID, second.ID)
	})

	t.Run("invalid json", func(t *testing.T) {
		_, err := ParseRawEvent(RawEvent{Value: []byte("{nope")})
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrMalformedRequest)
	})
}

func TestScoreRequest(t *testing.T) {
	now := freezeClock(t)
	m := newTestModel(t)

	scored, err := ScoreRequest(m, AttemptRequest{
		ID:        testRequestID,
		Attempt:   domeAttempt(),
		Overrides: &Attempt{Home: Ptr("DEN")},
	})
	require.NoError(t, err)

	assert.Equal(t, testRequestID, scored.ID)
	assert.Equal(t, 0.7039, scored.Probability)
	assert.Equal(t, now, scored.ScoredAt)
	assert.Equal(t, "DEN", *scored.Resolved.Home)
	assert.Nil(t, scored.Request.Attempt.Home, "request echo keeps the caller's input")
}

func TestScoreRequest_Error(t *testing.T) {
	m := newTestModel(t)

	_, err := ScoreRequest(m, AttemptRequest{ID: testRequestID, Attempt: Attempt{Home: Ptr("GB")}})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrValidation)
	assert.Contains(t, err.Error(), testRequestID)
}

func TestSerializeScoredAttempt(t *testing.T) {
	now := freezeClock(t)
	m := newTestModel(t)

	scored, err := ScoreRequest(m, AttemptRequest{ID: testRequestID, Attempt: domeAttempt()})
	require.NoError(t, err)

	out, err := SerializeScoredAttempt(scored)
	require.NoError(t, err)
	assert.Equal(t, []byte(testRequestID), out.Key)
	assert.Equal(t, "0.68957", out.Headers["probability"])
	assert.Equal(t, now.Format(time.RFC3339), out.Headers["scored_at"])

	var roundtrip ScoredAttempt
	require.NoError(t, json.Unmarshal(out.Value, &roundtrip))
	assert.Equal(t, scored.Probability, roundtrip.Probability)
	assert.Equal(t, scored.Terms, roundtrip.Terms)
	assert.Equal(t, testKicker, *roundtrip.Resolved.KickerCode)
}

package messaging

import (
	"testing"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEvent(t *testing.T) {
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.FixedZone("CET", 3600))
	event := NewEvent(EventDecisionAccepted, at, map[string]string{"decision_id": "d1"})

	id, err := ulid.ParseStrict(event.ID)
	require.NoError(t, err)
	assert.Equal(t, ulid.Timestamp(at), id.Time())
	assert.Equal(t, time.UTC, event.Timestamp.Location())
	assert.Equal(t, EventDecisionAccepted, event.Type)

	other := NewEvent(EventDecisionAccepted, at, nil)
	assert.NotEqual(t, event.ID, other.ID)
}

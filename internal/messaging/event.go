package messaging

import (
	"crypto/rand"
	"time"

	"github.com/oklog/ulid/v2"
)

// EventType is the kind of settlement event; it is also the subject suffix
type EventType string

const (
	EventDecisionCreated   EventType = "decision.created"
	EventDecisionAccepted  EventType = "decision.accepted"
	EventDecisionDeclined  EventType = "decision.declined"
	EventDecisionExpired   EventType = "decision.expired"
	EventRewardDistributed EventType = "reward.distributed"
)

// Event is the envelope published for every committed settlement
type Event struct {
	ID        string    `json:"event_id"`
	Type      EventType `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data"`
}

// NewEvent stamps an event with a ULID taken at the given time
func NewEvent(eventType EventType, at time.Time, data any) *Event {
	id := ulid.MustNew(ulid.Timestamp(at), rand.Reader)
	return &Event{
		ID:        id.String(),
		Type:      eventType,
		Timestamp: at.UTC(),
		Data:      data,
	}
}

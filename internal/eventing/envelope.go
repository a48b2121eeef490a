package eventing

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"time"
)

// Envelope wraps an event payload for delivery to stream clients.
type Envelope struct {
	EventID    string          `json:"event_id"`
	EventName  string          `json:"event"`
	OccurredAt time.Time       `json:"occurred_at"`
	Payload    json.RawMessage `json:"payload"`
}

// BuildEnvelope marshals event under the given wire name.
func BuildEnvelope(name string, event any, occurredAt time.Time) (Envelope, error) {
	if event == nil {
		return Envelope{}, ErrNilEvent
	}
	if name == "" {
		return Envelope{}, ErrInvalidEventType
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return Envelope{}, err
	}
	if occurredAt.IsZero() {
		occurredAt = time.Now()
	}
	return Envelope{
		EventID:    NewEventID(),
		EventName:  name,
		OccurredAt: occurredAt.UTC(),
		Payload:    payload,
	}, nil
}

// NewEventID generates a random UUIDv4-shaped identifier.
func NewEventID() string {
	var buf [16]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return hex.EncodeToString(buf[:])
	}
	buf[6] = (buf[6] & 0x0f) | 0x40
	buf[8] = (buf[8] & 0x3f) | 0x80
	return hex.EncodeToString(buf[:])
}

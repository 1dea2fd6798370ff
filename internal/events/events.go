// Package events publishes routing lifecycle events to Kafka using a
// CloudEvents-style envelope.
package events

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/citypath/service-routing/internal/domain/geo"
)

// TopicRoutingEvents is the default topic for routing events.
const TopicRoutingEvents = "routing.events"

// RouteComputed is emitted after a route has been successfully computed.
const RouteComputed = "routing.route.computed"

// RouteComputedEvent is the payload for RouteComputed.
type RouteComputedEvent struct {
	RouteID     uuid.UUID      `json:"route_id"`
	Origin      geo.Coordinate `json:"origin"`
	Destination geo.Coordinate `json:"destination"`
	Mode        string         `json:"mode"`
	DistanceM   float64        `json:"distance_m"`
	DurationS   float64        `json:"duration_s"`
	NodeCount   int            `json:"node_count"`
	OccurredAt  time.Time      `json:"occurred_at"`
}

// CloudEvent is the envelope wrapping every published event.
type CloudEvent struct {
	ID     string          `json:"id"`
	Source string          `json:"source"`
	Type   string          `json:"type"`
	Time   time.Time       `json:"time"`
	Data   json.RawMessage `json:"data"`
}

// NewCloudEvent wraps data in a CloudEvent envelope.
func NewCloudEvent(source, eventType string, data interface{}) (CloudEvent, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return CloudEvent{}, fmt.Errorf("failed to marshal event data: %w", err)
	}
	return CloudEvent{
		ID:     uuid.New().String(),
		Source: source,
		Type:   eventType,
		Time:   time.Now().UTC(),
		Data:   raw,
	}, nil
}

// ParseCloudEvent decodes a CloudEvent envelope from raw bytes.
func ParseCloudEvent(raw []byte) (CloudEvent, error) {
	var ce CloudEvent
	if err := json.Unmarshal(raw, &ce); err != nil {
		return CloudEvent{}, fmt.Errorf("failed to parse cloud event: %w", err)
	}
	return ce, nil
}

// ParseData decodes the event payload into v.
func (e CloudEvent) ParseData(v interface{}) error {
	return json.Unmarshal(e.Data, v)
}

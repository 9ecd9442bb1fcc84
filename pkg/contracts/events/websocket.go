// Package events contains the event contracts pushed to dashboard clients over WebSocket.
package events

import (
	"time"

	"github.com/phetchalermchai/it-inventory/pkg/contracts/domain"
)

// MessageType defines the type of WebSocket message
type MessageType string

const (
	// Sent once to each client after it connects
	MessageTypeConnection MessageType = "connection"

	// Sent to every client after the served dataset changes
	MessageTypeDatasetReplaced MessageType = "dataset:replaced"
)

// BaseMessage represents the base structure for all WebSocket messages
type BaseMessage struct {
	ID        string      `json:"id,omitempty"`
	Type      MessageType `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	TraceID   string      `json:"trace_id,omitempty"`
}

// WebSocketMessage represents a complete WebSocket message
type WebSocketMessage struct {
	BaseMessage
	Data any `json:"data,omitempty"`
}

// ConnectionEvent greets a newly registered client
type ConnectionEvent struct {
	Status   string `json:"status"`
	ClientID string `json:"client_id"`
	Message  string `json:"message"`
}

// DatasetReplaced announces a new dataset together with its headline figures,
// so clients can refresh without a round trip.
type DatasetReplaced struct {
	Dataset    domain.DatasetInfo       `json:"dataset"`
	Summary    domain.AggregateSummary  `json:"summary"`
	Allocation []domain.AllocationSlice `json:"allocation"`
}

// NewMessage builds a message of the given type stamped with the current time
func NewMessage(t MessageType, traceID string, data any) WebSocketMessage {
	return WebSocketMessage{
		BaseMessage: BaseMessage{
			Type:      t,
			Timestamp: time.Now().UTC(),
			TraceID:   traceID,
		},
		Data: data,
	}
}

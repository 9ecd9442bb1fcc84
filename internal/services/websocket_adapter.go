package services

import (
	"context"

	"github.com/phetchalermchai/it-inventory/internal/infrastructure"
	"github.com/phetchalermchai/it-inventory/internal/inventory"
	"github.com/phetchalermchai/it-inventory/pkg/contracts/events"
)

// WebSocketHub interface for WebSocket communication
type WebSocketHub interface {
	Broadcast(messageType string, data interface{})
}

// WebSocketDatasetListener pushes dataset replacements to WebSocket clients
type WebSocketDatasetListener struct {
	hub WebSocketHub
}

// NewWebSocketDatasetListener creates a listener broadcasting on hub
func NewWebSocketDatasetListener(hub WebSocketHub) *WebSocketDatasetListener {
	return &WebSocketDatasetListener{hub: hub}
}

// OnDatasetReplaced implements DatasetListener
func (w *WebSocketDatasetListener) OnDatasetReplaced(ctx context.Context, ds *inventory.Dataset) {
	if w.hub == nil || ds == nil {
		return
	}

	report := inventory.Summarize(ds.Records)
	w.hub.Broadcast(string(events.MessageTypeDatasetReplaced), events.NewMessage(
		events.MessageTypeDatasetReplaced,
		infrastructure.GetTraceID(ctx),
		events.DatasetReplaced{
			Dataset:    ds.Info(),
			Summary:    report.Summary,
			Allocation: report.Allocation,
		},
	))
}

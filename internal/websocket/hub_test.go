package websocket

import (
	"encoding/json"
	"testing"
	"time"

	gorilla "github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phetchalermchai/it-inventory/internal/config"
	"github.com/phetchalermchai/it-inventory/internal/shared/testutil"
	"github.com/phetchalermchai/it-inventory/pkg/contracts/events"
)

func newTestHub(t *testing.T, opts Options) *Hub {
	t.Helper()
	logger, _ := testutil.NewTestLogger(t)
	hub := NewHub(logger, opts)
	hub.Start()
	t.Cleanup(hub.Stop)
	return hub
}

func decodeMessage(t *testing.T, data []byte) events.WebSocketMessage {
	t.Helper()
	var msg events.WebSocketMessage
	require.NoError(t, json.Unmarshal(data, &msg))
	return msg
}

func TestOptionsFrom(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.WebSocketConfig
		want Options
	}{
		{
			name: "zero config keeps defaults",
			cfg:  config.WebSocketConfig{},
			want: DefaultOptions(),
		},
		{
			name: "configured values",
			cfg:  config.WebSocketConfig{SendBuffer: 4, PingPeriod: 5 * time.Second, PongWait: 10 * time.Second},
			want: Options{SendBuffer: 4, PingPeriod: 5 * time.Second, PongWait: 10 * time.Second, WriteWait: 10 * time.Second, MaxMessageSize: 512},
		},
		{
			name: "ping period clamped below pong wait",
			cfg:  config.WebSocketConfig{PingPeriod: 20 * time.Second, PongWait: 10 * time.Second},
			want: Options{SendBuffer: 16, PingPeriod: 9 * time.Second, PongWait: 10 * time.Second, WriteWait: 10 * time.Second, MaxMessageSize: 512},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, OptionsFrom(tt.cfg))
		})
	}
}

func TestHub_RegisterSendsConnectionMessage(t *testing.T) {
	hub := newTestHub(t, DefaultOptions())
	client := NewClientWithConnection(hub, newMockConnection(), "trace-1", nil)

	hub.Register(client)

	select {
	case data := <-client.send:
		msg := decodeMessage(t, data)
		assert.Equal(t, events.MessageTypeConnection, msg.Type)
		assert.Equal(t, "trace-1", msg.TraceID)
		payload, ok := msg.Data.(map[string]any)
		require.True(t, ok)
		assert.Equal(t, client.ID(), payload["client_id"])
		assert.Equal(t, "connected", payload["status"])
	case <-time.After(time.Second):
		t.Fatal("no connection message")
	}
	assert.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 10*time.Millisecond)
}

func TestHub_BroadcastReachesEveryClient(t *testing.T) {
	hub := newTestHub(t, DefaultOptions())

	clients := []*Client{
		NewClientWithConnection(hub, newMockConnection(), "", nil),
		NewClientWithConnection(hub, newMockConnection(), "", nil),
	}
	for _, c := range clients {
		hub.Register(c)
		<-c.send
	}

	hub.Broadcast(string(events.MessageTypeDatasetReplaced), map[string]int{"records": 5})

	for _, c := range clients {
		select {
		case data := <-c.send:
			msg := decodeMessage(t, data)
			assert.Equal(t, events.MessageTypeDatasetReplaced, msg.Type)
			assert.False(t, msg.Timestamp.IsZero())
		case <-time.After(time.Second):
			t.Fatalf("client %s got no broadcast", c.ID())
		}
	}
	assert.Eventually(t, func() bool { return hub.Stats().MessagesSent == 2 }, time.Second, 10*time.Millisecond)
}

func TestHub_BroadcastPassesPreparedMessage(t *testing.T) {
	hub := newTestHub(t, DefaultOptions())
	client := NewClientWithConnection(hub, newMockConnection(), "", nil)
	hub.Register(client)
	<-client.send

	prepared := events.NewMessage(events.MessageTypeDatasetReplaced, "trace-xyz", map[string]string{"k": "v"})
	hub.Broadcast(string(events.MessageTypeDatasetReplaced), prepared)

	select {
	case data := <-client.send:
		msg := decodeMessage(t, data)
		assert.Equal(t, "trace-xyz", msg.TraceID)
	case <-time.After(time.Second):
		t.Fatal("no broadcast")
	}
}

func TestHub_SlowClientIsDropped(t *testing.T) {
	opts := DefaultOptions()
	opts.SendBuffer = 1
	hub := newTestHub(t, opts)

	client := NewClientWithConnection(hub, newMockConnection(), "", nil)
	hub.Register(client)
	// the connection message fills the buffer

	hub.Broadcast("dataset:replaced", "one")

	assert.Eventually(t, func() bool { return hub.ClientCount() == 0 }, time.Second, 10*time.Millisecond)
	assert.Eventually(t, func() bool { return hub.Stats().MessagesDropped == 1 }, time.Second, 10*time.Millisecond)

	<-client.send
	_, ok := <-client.send
	assert.False(t, ok, "send channel closed after drop")
}

func TestHub_StopClosesClients(t *testing.T) {
	logger, handler := testutil.NewTestLogger(t)
	hub := NewHub(logger, DefaultOptions())
	hub.Start()

	client := NewClientWithConnection(hub, newMockConnection(), "", nil)
	hub.Register(client)
	<-client.send

	hub.Stop()
	hub.Stop()

	_, ok := <-client.send
	assert.False(t, ok)
	assert.Equal(t, 0, hub.ClientCount())
	assert.True(t, handler.ContainsMessage("Hub shutting down"))

	// calls after Stop return instead of blocking
	hub.Broadcast("dataset:replaced", nil)
	hub.Unregister(client)
}

func TestClient_Pumps(t *testing.T) {
	hub := newTestHub(t, DefaultOptions())
	conn := newMockConnection()
	client := NewClientWithConnection(hub, conn, "", nil)

	client.Serve()
	assert.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 10*time.Millisecond)

	conn.incoming <- mockMessage{Type: gorilla.TextMessage, Data: []byte(`{"type":"heartbeat"}`)}
	hub.Broadcast("dataset:replaced", "payload")

	assert.Eventually(t, func() bool { return len(conn.messages()) >= 2 }, time.Second, 10*time.Millisecond)
	written := conn.messages()
	assert.Equal(t, gorilla.TextMessage, written[0].Type)
	assert.Equal(t, events.MessageTypeConnection, decodeMessage(t, written[0].Data).Type)

	conn.Close()
	assert.Eventually(t, func() bool { return hub.ClientCount() == 0 }, time.Second, 10*time.Millisecond)
	conn.mu.Lock()
	defer conn.mu.Unlock()
	assert.Equal(t, hub.Options().MaxMessageSize, conn.readLimit)
}

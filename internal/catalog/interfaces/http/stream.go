package http

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"asset-catalog/internal/catalog/application/events"
	"asset-catalog/internal/eventing"
	"asset-catalog/internal/observability/metrics"
)

type streamMessage struct {
	event   string
	payload []byte
}

// SSEBroker fans out catalog change events to connected clients. Slow
// clients drop messages rather than block publishers.
type SSEBroker struct {
	mu      sync.Mutex
	clients map[chan streamMessage]struct{}
}

// NewSSEBroker constructs a broker.
func NewSSEBroker() *SSEBroker {
	return &SSEBroker{clients: make(map[chan streamMessage]struct{})}
}

// Attach subscribes the broker to asset and station change events.
func (b *SSEBroker) Attach(bus eventing.Bus) {
	if b == nil || bus == nil {
		return
	}
	eventing.Handle(bus, func(_ context.Context, changed events.AssetChanged) error {
		return b.Notify(events.NameAssetUpdated, changed, changed.OccurredAt)
	})
	eventing.Handle(bus, func(_ context.Context, changed events.StationChanged) error {
		return b.Notify(events.NameStationUpdated, changed, changed.OccurredAt)
	})
}

// Notify broadcasts event under name.
func (b *SSEBroker) Notify(name string, event any, occurredAt time.Time) error {
	if b == nil {
		return nil
	}
	env, err := eventing.BuildEnvelope(name, event, occurredAt)
	if err != nil {
		return err
	}
	payload, err := json.Marshal(env)
	if err != nil {
		return err
	}
	b.broadcast(streamMessage{event: name, payload: payload})
	return nil
}

// Subscribe registers a new client channel.
func (b *SSEBroker) Subscribe() chan streamMessage {
	if b == nil {
		return nil
	}
	ch := make(chan streamMessage, 16)
	b.mu.Lock()
	b.clients[ch] = struct{}{}
	b.mu.Unlock()
	metrics.AddStreamClients(1)
	return ch
}

// Unsubscribe removes a client channel.
func (b *SSEBroker) Unsubscribe(ch chan streamMessage) {
	if b == nil || ch == nil {
		return
	}
	b.mu.Lock()
	delete(b.clients, ch)
	b.mu.Unlock()
	close(ch)
	metrics.AddStreamClients(-1)
}

func (b *SSEBroker) broadcast(msg streamMessage) {
	b.mu.Lock()
	clients := make([]chan streamMessage, 0, len(b.clients))
	for ch := range b.clients {
		clients = append(clients, ch)
	}
	b.mu.Unlock()
	for _, ch := range clients {
		select {
		case ch <- msg:
		default:
		}
	}
}

// StreamHandler serves the change event stream.
type StreamHandler struct {
	broker *SSEBroker
}

// NewStreamHandler constructs a stream handler.
func NewStreamHandler(broker *SSEBroker) *StreamHandler {
	return &StreamHandler{broker: broker}
}

// ServeHTTP handles GET /api/v1/events.
func (h *StreamHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if h == nil || h.broker == nil {
		http.Error(w, "stream not ready", http.StatusServiceUnavailable)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "stream unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch := h.broker.Subscribe()
	if ch == nil {
		http.Error(w, "stream not ready", http.StatusServiceUnavailable)
		return
	}
	defer h.broker.Unsubscribe(ch)

	_, _ = w.Write([]byte("event: ready\ndata: {}\n\n"))
	flusher.Flush()

	notify := r.Context().Done()
	for {
		select {
		case msg, ok := <-ch:
			if !ok {
				return
			}
			_, _ = w.Write([]byte("event: " + msg.event + "\n"))
			_, _ = w.Write([]byte("data: "))
			_, _ = w.Write(msg.payload)
			_, _ = w.Write([]byte("\n\n"))
			flusher.Flush()
		case <-notify:
			return
		}
	}
}

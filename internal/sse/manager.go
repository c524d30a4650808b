package sse

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/soundvaultapp/soundvault-server/internal/id"
)

// Client represents one connected SSE client.
type Client struct {
	ConnectedAt time.Time
	EventChan   chan Event
	Done        chan struct{}
	ID          string
}

// Manager fans events out to connected clients.
type Manager struct {
	logger            *slog.Logger
	events            chan Event
	heartbeatInterval time.Duration

	mu      sync.RWMutex
	clients map[string]*Client

	shutdownMu sync.RWMutex
	shutdown   bool
}

// NewManager creates an SSE manager.
func NewManager(logger *slog.Logger) *Manager {
	return &Manager{
		logger:            logger,
		events:            make(chan Event, 256),
		heartbeatInterval: 30 * time.Second,
		clients:           make(map[string]*Client),
	}
}

// Start runs the broadcast loop until the context is cancelled. Call once
// at startup, in a goroutine.
func (m *Manager) Start(ctx context.Context) {
	ticker := time.NewTicker(m.heartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case event := <-m.events:
			m.broadcast(event)
		case <-ticker.C:
			m.broadcast(NewHeartbeatEvent())
		case <-ctx.Done():
			m.closeAllClients()
			return
		}
	}
}

// Emit queues an event for broadcast. Safe to call from any goroutine;
// drops the event if the manager is shut down or the queue is full.
func (m *Manager) Emit(event any) {
	e, ok := event.(Event)
	if !ok {
		return
	}

	m.shutdownMu.RLock()
	defer m.shutdownMu.RUnlock()
	if m.shutdown {
		return
	}

	select {
	case m.events <- e:
	default:
		m.logger.Warn("sse event queue full, dropping event", "type", e.Type)
	}
}

// Subscribe registers a new client.
func (m *Manager) Subscribe() *Client {
	client := &Client{
		ID:          id.MustGenerate("sse"),
		ConnectedAt: time.Now(),
		EventChan:   make(chan Event, 32),
		Done:        make(chan struct{}),
	}

	m.mu.Lock()
	m.clients[client.ID] = client
	m.mu.Unlock()

	m.logger.Debug("sse client connected", "client_id", client.ID)
	return client
}

// Unsubscribe removes a client and releases its channels.
func (m *Manager) Unsubscribe(clientID string) {
	m.mu.Lock()
	client, ok := m.clients[clientID]
	if ok {
		delete(m.clients, clientID)
	}
	m.mu.Unlock()

	if ok {
		close(client.Done)
		m.logger.Debug("sse client disconnected", "client_id", clientID)
	}
}

// Shutdown stops accepting events and disconnects all clients.
func (m *Manager) Shutdown() {
	m.shutdownMu.Lock()
	m.shutdown = true
	m.shutdownMu.Unlock()

	m.closeAllClients()
}

// broadcast delivers an event to every connected client, skipping any
// whose buffer is full rather than blocking the loop.
func (m *Manager) broadcast(event Event) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, client := range m.clients {
		select {
		case client.EventChan <- event:
		case <-client.Done:
		default:
			m.logger.Debug("sse client buffer full, skipping", "client_id", client.ID)
		}
	}
}

func (m *Manager) closeAllClients() {
	m.mu.Lock()
	clients := m.clients
	m.clients = make(map[string]*Client)
	m.mu.Unlock()

	for _, client := range clients {
		close(client.Done)
	}
}

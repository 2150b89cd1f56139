package ws

import (
	"sync"

	"policytracker/internal/logger"
)

// Event is the envelope pushed to connected dashboards.
type Event struct {
	Type string `json:"type"` // "policy_created", "notification"
	Data any    `json:"data"`
}

// Manager tracks live dashboard connections per agent. One agent may
// hold several connections (multiple tabs or devices).
type Manager struct {
	clients    map[string]map[*Client]bool // userID -> connections
	register   chan *Client
	unregister chan *Client
	mu         sync.RWMutex
}

func NewManager() *Manager {
	return &Manager{
		clients:    make(map[string]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

func (m *Manager) Run() {
	for {
		select {
		case client := <-m.register:
			m.mu.Lock()
			if m.clients[client.UserID] == nil {
				m.clients[client.UserID] = make(map[*Client]bool)
			}
			m.clients[client.UserID][client] = true
			m.mu.Unlock()
			logger.Debug("ws client registered", "user_id", client.UserID)

		case client := <-m.unregister:
			m.mu.Lock()
			if conns, ok := m.clients[client.UserID]; ok {
				if _, ok := conns[client]; ok {
					close(client.Send)
					delete(conns, client)
					if len(conns) == 0 {
						delete(m.clients, client.UserID)
					}
				}
			}
			m.mu.Unlock()
			logger.Debug("ws client unregistered", "user_id", client.UserID)
		}
	}
}

// PushToUser delivers an event to every connection the agent holds.
// A connection with a full send buffer is skipped rather than blocked on.
func (m *Manager) PushToUser(userID string, event Event) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for client := range m.clients[userID] {
		select {
		case client.Send <- event:
		default:
			logger.Warn("ws send buffer full, dropping event", "user_id", userID, "type", event.Type)
		}
	}
}

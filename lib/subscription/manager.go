package subscription

import (
	"sync"

	"github.com/nbd-wtf/go-nostr"
)

// Manager tracks the active subscriptions of a single WebSocket
// connection. Both the inbound frame path and the broadcast fan-in path
// touch it, so access is serialized internally; no lock is held while
// the caller sends frames.
type Manager struct {
	mu            sync.Mutex
	subscriptions map[string]nostr.Filters
}

func NewManager() *Manager {
	return &Manager{subscriptions: make(map[string]nostr.Filters)}
}

// Add registers filters under the subscription id, replacing any prior
// binding for the same id.
func (m *Manager) Add(id string, filters nostr.Filters) {
	m.mu.Lock()
	m.subscriptions[id] = filters
	m.mu.Unlock()
}

// Remove drops the subscription id. Removing an unknown id is a no-op.
func (m *Manager) Remove(id string) {
	m.mu.Lock()
	delete(m.subscriptions, id)
	m.mu.Unlock()
}

// Matching returns the ids of every subscription whose filters match the
// event. Order is unspecified.
func (m *Manager) Matching(event *nostr.Event) []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	var matched []string
	for id, filters := range m.subscriptions {
		if filters.Match(event) {
			matched = append(matched, id)
		}
	}

	return matched
}

// Count reports the number of active subscriptions.
func (m *Manager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.subscriptions)
}

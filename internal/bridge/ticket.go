package bridge

import (
	"fmt"
	"sort"
	"sync"
	"time"
)

// Ticket is an open conversation window between one client and one
// manager. At most one ticket per client may be open at a time.
type Ticket struct {
	ClientID  int64     `json:"client_id"`
	ManagerID int64     `json:"manager_id"`
	Topic     string    `json:"topic"` // menu topic the ticket was opened from; "" for manager-initiated
	SLAHours  int       `json:"sla_hours"`
	OpenedAt  time.Time `json:"opened_at"`
}

// Registry is the structured reply-binding table: it tracks open tickets
// by client and maps messages sent into manager chats back to the client
// they concern. This replaces reconstructing the binding from rendered
// message text, though the inline marker is still emitted as a wire
// contract and parsed as a fallback.
type Registry struct {
	mu       sync.RWMutex
	byClient map[int64]Ticket
	bindings map[bindingKey]int64
}

// bindingKey identifies one message in one manager's chat.
type bindingKey struct {
	managerID int64
	messageID int
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		byClient: make(map[int64]Ticket),
		bindings: make(map[bindingKey]int64),
	}
}

// Open records a new open ticket. It fails without changing state when
// the client already has one.
func (r *Registry) Open(t Ticket) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byClient[t.ClientID]; ok {
		return fmt.Errorf("bridge: client %d already has an open ticket", t.ClientID)
	}
	if t.OpenedAt.IsZero() {
		t.OpenedAt = time.Now()
	}
	r.byClient[t.ClientID] = t
	return nil
}

// Close removes the client's open ticket and returns it. Reply bindings
// are kept: managers may still answer old messages after a ticket is
// closed, and those answers must still reach the client.
func (r *Registry) Close(clientID int64) (Ticket, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.byClient[clientID]
	if ok {
		delete(r.byClient, clientID)
	}
	return t, ok
}

// Get returns the client's open ticket, if any.
func (r *Registry) Get(clientID int64) (Ticket, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.byClient[clientID]
	return t, ok
}

// Bind associates a message sent into a manager's chat with the client
// it concerns.
func (r *Registry) Bind(managerID int64, messageID int, clientID int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bindings[bindingKey{managerID, messageID}] = clientID
}

// Resolve returns the client bound to the replied-to message in the
// manager's chat.
func (r *Registry) Resolve(managerID int64, replyToID int) (int64, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.bindings[bindingKey{managerID, replyToID}]
	return id, ok
}

// OpenTickets returns all open tickets, oldest first.
func (r *Registry) OpenTickets() []Ticket {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Ticket, 0, len(r.byClient))
	for _, t := range r.byClient {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].OpenedAt.Equal(out[j].OpenedAt) {
			return out[i].OpenedAt.Before(out[j].OpenedAt)
		}
		return out[i].ClientID < out[j].ClientID
	})
	return out
}

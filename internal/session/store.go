package session

import (
	"fmt"
	"sort"
	"sync"
)

// Store is the in-memory table of all known client sessions, backed by an
// append-only registration log.
//
// Concurrency contract: message handling for one client must be serialized
// — callers wrap each unit of per-client work in Acquire(id)/release.
// MergeRefresh takes the exclusive side of the same gate, so a full-table
// resync never overlaps any per-client mutation.
type Store struct {
	logPath string

	gate sync.RWMutex // read side: per-client work; write side: MergeRefresh

	mu       sync.RWMutex // guards sessions and the append ordering
	sessions map[int64]*Session

	locksMu sync.Mutex
	locks   map[int64]*sync.Mutex
}

// Open loads the session log at path and returns a ready Store.
func Open(path string) (*Store, error) {
	records, err := readLog(path)
	if err != nil {
		return nil, err
	}
	s := &Store{
		logPath:  path,
		sessions: make(map[int64]*Session, len(records)),
		locks:    make(map[int64]*sync.Mutex),
	}
	for _, rec := range records {
		s.sessions[rec.ID] = &Session{Record: rec}
	}
	return s, nil
}

// Acquire serializes per-client work. It blocks while a MergeRefresh is in
// progress and while another holder works on the same client id. The
// returned function releases both holds.
func (s *Store) Acquire(id int64) func() {
	s.gate.RLock()
	mu := s.clientLock(id)
	mu.Lock()
	return func() {
		mu.Unlock()
		s.gate.RUnlock()
	}
}

func (s *Store) clientLock(id int64) *sync.Mutex {
	s.locksMu.Lock()
	defer s.locksMu.Unlock()
	mu, ok := s.locks[id]
	if !ok {
		mu = &sync.Mutex{}
		s.locks[id] = mu
	}
	return mu
}

// Get returns a copy of the session for id, or false if the client has
// never authorized.
func (s *Store) Get(id int64) (Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[id]
	if !ok {
		return Session{}, false
	}
	return *sess, true
}

// Register appends a registration record to the durable log and inserts
// the session with default transient flags. Registering an already-known
// client is a no-op.
func (s *Store) Register(rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[rec.ID]; ok {
		return nil
	}
	if err := appendRecord(s.logPath, rec); err != nil {
		return err
	}
	s.sessions[rec.ID] = &Session{Record: rec}
	return nil
}

// SetChatting updates the open-ticket flag. No-op if unchanged.
func (s *Store) SetChatting(id int64, chatting bool) {
	s.update(id, func(sess *Session) bool {
		if sess.Chatting == chatting {
			return false
		}
		sess.Chatting = chatting
		return true
	})
}

// SetLastText updates the remembered topic text. No-op if unchanged.
func (s *Store) SetLastText(id int64, text string) {
	s.update(id, func(sess *Session) bool {
		if sess.LastText == text {
			return false
		}
		sess.LastText = text
		return true
	})
}

// SetDocumenting updates the documents-routing flag. No-op if unchanged.
func (s *Store) SetDocumenting(id int64, documenting bool) {
	s.update(id, func(sess *Session) bool {
		if sess.Documenting == documenting {
			return false
		}
		sess.Documenting = documenting
		return true
	})
}

// SetAwaitingBody updates the ticket-body-expected flag. No-op if unchanged.
func (s *Store) SetAwaitingBody(id int64, awaiting bool) {
	s.update(id, func(sess *Session) bool {
		if sess.AwaitingBody == awaiting {
			return false
		}
		sess.AwaitingBody = awaiting
		return true
	})
}

// SetMenuKey updates the client's active menu position. No-op if unchanged.
func (s *Store) SetMenuKey(id int64, key string) {
	s.update(id, func(sess *Session) bool {
		if sess.MenuKey == key {
			return false
		}
		sess.MenuKey = key
		return true
	})
}

func (s *Store) update(id int64, apply func(*Session) bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok := s.sessions[id]; ok {
		apply(sess)
	}
}

// ListByManager returns copies of every session assigned to the given
// manager, sorted by (enterprise, name, id).
func (s *Store) ListByManager(managerID int64) []Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Session
	for _, sess := range s.sessions {
		if sess.Manager == managerID {
			out = append(out, *sess)
		}
	}
	sortSessions(out)
	return out
}

// All returns copies of every session, sorted by (enterprise, name, id).
func (s *Store) All() []Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		out = append(out, *sess)
	}
	sortSessions(out)
	return out
}

func sortSessions(sessions []Session) {
	sort.Slice(sessions, func(i, j int) bool {
		a, b := sessions[i], sessions[j]
		if a.Enterprise != b.Enterprise {
			return a.Enterprise < b.Enterprise
		}
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		return a.ID < b.ID
	})
}

// Count returns the number of known sessions.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// MergeRefresh reloads the durable log and rebuilds the table: sessions no
// longer present upstream are dropped, new ones appear with default
// transient flags, and clients present in both keep their in-memory
// transient state. It holds the exclusive gate for the whole merge, so no
// per-client mutation can interleave.
func (s *Store) MergeRefresh() error {
	s.gate.Lock()
	defer s.gate.Unlock()

	records, err := readLog(s.logPath)
	if err != nil {
		return fmt.Errorf("session: refresh: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	fresh := make(map[int64]*Session, len(records))
	for _, rec := range records {
		next := &Session{Record: rec}
		if prev, ok := s.sessions[rec.ID]; ok {
			next.Chatting = prev.Chatting
			next.LastText = prev.LastText
			next.Documenting = prev.Documenting
			next.AwaitingBody = prev.AwaitingBody
			next.MenuKey = prev.MenuKey
		}
		fresh[rec.ID] = next
	}
	s.sessions = fresh
	return nil
}

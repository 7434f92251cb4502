package session

import "sync"

// Registry tracks the sessions the HTTP layer is serving. Each user has at
// most one current session; registering a new one abandons the previous.
type Registry struct {
	mu     sync.Mutex
	byID   map[string]*Session
	byUser map[string]string
}

func NewRegistry() *Registry {
	return &Registry{
		byID:   make(map[string]*Session),
		byUser: make(map[string]string),
	}
}

func (r *Registry) Put(s *Session) {
	r.mu.Lock()
	prevID, hadPrev := r.byUser[s.UserID]
	var prev *Session
	if hadPrev && prevID != s.ID {
		prev = r.byID[prevID]
		delete(r.byID, prevID)
	}
	r.byID[s.ID] = s
	r.byUser[s.UserID] = s.ID
	r.mu.Unlock()

	if prev != nil {
		prev.Abandon()
	}
}

func (r *Registry) Get(id string) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.byID[id]
	return s, ok
}

func (r *Registry) Current(userID string) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id, ok := r.byUser[userID]
	if !ok {
		return nil, false
	}
	s, ok := r.byID[id]
	return s, ok
}

// Remove abandons and forgets the session.
func (r *Registry) Remove(id string) bool {
	r.mu.Lock()
	s, ok := r.byID[id]
	if ok {
		delete(r.byID, id)
		if r.byUser[s.UserID] == id {
			delete(r.byUser, s.UserID)
		}
	}
	r.mu.Unlock()

	if ok {
		s.Abandon()
	}
	return ok
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byID)
}

// Active counts sessions still being answered. Finished sessions stay
// registered so their results and retries remain reachable.
func (r *Registry) Active() int {
	r.mu.Lock()
	sessions := make([]*Session, 0, len(r.byID))
	for _, s := range r.byID {
		sessions = append(sessions, s)
	}
	r.mu.Unlock()

	n := 0
	for _, s := range sessions {
		if s.State() == StateInProgress {
			n++
		}
	}
	return n
}

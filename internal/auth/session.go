package auth

import "sync"

// Event is delivered to observers whenever the signed-in user changes.
type Event struct {
	User     *User
	Caps     Capabilities
	SignedIn bool
}

// Session holds the signed-in user of one person and fans out changes to
// observers. Observers are called outside the lock.
type Session struct {
	mu     sync.Mutex
	user   *User
	nextID int
	subs   map[int]func(Event)
}

func NewSession() *Session {
	return &Session{subs: make(map[int]func(Event))}
}

func (s *Session) Current() (User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return User{}, false
	}
	return *s.user, true
}

func (s *Session) Capabilities() Capabilities {
	u, ok := s.Current()
	if !ok {
		return Capabilities{}
	}
	return u.Capabilities()
}

func (s *Session) SignIn(u User) {
	s.mu.Lock()
	cp := u
	s.user = &cp
	s.mu.Unlock()
	s.emit()
}

func (s *Session) SignOut() {
	s.mu.Lock()
	s.user = nil
	s.mu.Unlock()
	s.emit()
}

// SetRole updates the role of the signed-in user, if any.
func (s *Session) SetRole(r Role) {
	s.mu.Lock()
	if s.user == nil {
		s.mu.Unlock()
		return
	}
	s.user.Role = r
	s.mu.Unlock()
	s.emit()
}

// Subscribe registers fn and returns the function that removes it.
func (s *Session) Subscribe(fn func(Event)) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, id)
			s.mu.Unlock()
		})
	}
}

func (s *Session) emit() {
	s.mu.Lock()
	ev := Event{}
	if s.user != nil {
		u := *s.user
		ev = Event{User: &u, Caps: u.Capabilities(), SignedIn: true}
	}
	fns := make([]func(Event), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(ev)
	}
}

// Registry keeps one Session per user id for the lifetime of the process.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*Session
}

func NewRegistry() *Registry {
	return &Registry{sessions: make(map[string]*Session)}
}

func (r *Registry) For(uid string) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[uid]
	if !ok {
		s = NewSession()
		r.sessions[uid] = s
	}
	return s
}

// Lookup returns the session only if one exists.
func (r *Registry) Lookup(uid string) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[uid]
	return s, ok
}

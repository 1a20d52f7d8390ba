package layout

import "sync"

// RevealTracker remembers which sections already played their entrance so
// each plays at most once. An edit session keeps one across the reloads
// that follow every change. The hero is never tracked.
type RevealTracker struct {
	mu      sync.Mutex
	tracked map[string]bool
	played  map[string]bool
}

func NewRevealTracker(p Page) *RevealTracker {
	t := &RevealTracker{tracked: make(map[string]bool), played: make(map[string]bool)}
	for _, s := range p.Sections {
		if s.Reveal {
			t.tracked[s.ID] = true
		}
	}
	return t
}

// Enter reports whether the section should animate now.
func (t *RevealTracker) Enter(id string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.tracked[id] || t.played[id] {
		return false
	}
	t.played[id] = true
	return true
}

func (t *RevealTracker) Played(id string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.played[id]
}

// Apply marks the sections of p that already played.
func (t *RevealTracker) Apply(p *Page) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for i := range p.Sections {
		p.Sections[i].Played = t.played[p.Sections[i].ID]
	}
}

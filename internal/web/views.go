package web

import (
	"sync"
	"time"
)

const viewIdle = 12 * time.Hour

type viewEntry struct {
	view *ListView
	seen time.Time
}

// Views keeps one ListView per browser session id. Idle views are dropped
// lazily, at most once a minute.
type Views struct {
	mu        sync.Mutex
	repo      Repository
	m         map[string]*viewEntry
	lastSweep time.Time
}

func NewViews(repo Repository) *Views {
	return &Views{repo: repo, m: map[string]*viewEntry{}}
}

func (vs *Views) Get(sid string) *ListView {
	vs.mu.Lock()
	defer vs.mu.Unlock()

	now := time.Now()
	if now.Sub(vs.lastSweep) > time.Minute {
		for k, e := range vs.m {
			if now.Sub(e.seen) > viewIdle {
				delete(vs.m, k)
			}
		}
		vs.lastSweep = now
	}

	e, ok := vs.m[sid]
	if !ok {
		e = &viewEntry{view: NewListView(vs.repo)}
		vs.m[sid] = e
	}
	e.seen = now
	return e.view
}

func (vs *Views) Len() int {
	vs.mu.Lock()
	defer vs.mu.Unlock()
	return len(vs.m)
}

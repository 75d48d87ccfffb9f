package application

import (
	"container/list"
	"log/slog"
	"sync"
	"time"
)

const (
	DefaultWorkspaceIdleTTL = 30 * time.Minute
	DefaultMaxWorkspaces    = 1000
)

// Workspaces hands out one Workspace per client key. Entries idle longer
// than the TTL are dropped, and past the cap the least recently used entry
// goes first.
type Workspaces struct {
	mu      sync.Mutex
	service *InventoryService
	idleTTL time.Duration
	max     int
	now     func() time.Time
	order   *list.List // front is most recently used
	byKey   map[string]*list.Element
}

type workspaceEntry struct {
	key      string
	ws       *Workspace
	lastUsed time.Time
}

type WorkspacesOption func(*Workspaces)

// WithIdleTTL sets how long an unused workspace is kept. Zero disables expiry.
func WithIdleTTL(d time.Duration) WorkspacesOption {
	return func(r *Workspaces) { r.idleTTL = d }
}

// WithMaxWorkspaces caps the number of live workspaces. Zero disables the cap.
func WithMaxWorkspaces(n int) WorkspacesOption {
	return func(r *Workspaces) { r.max = n }
}

func withClock(now func() time.Time) WorkspacesOption {
	return func(r *Workspaces) { r.now = now }
}

func NewWorkspaces(service *InventoryService, opts ...WorkspacesOption) *Workspaces {
	r := &Workspaces{
		service: service,
		idleTTL: DefaultWorkspaceIdleTTL,
		max:     DefaultMaxWorkspaces,
		now:     time.Now,
		order:   list.New(),
		byKey:   make(map[string]*list.Element),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Get returns the workspace for key, creating it on first use.
func (r *Workspaces) Get(key string) *Workspace {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.now()
	r.expireLocked(now)

	if el, ok := r.byKey[key]; ok {
		entry := el.Value.(*workspaceEntry)
		entry.lastUsed = now
		r.order.MoveToFront(el)
		return entry.ws
	}

	entry := &workspaceEntry{key: key, ws: NewWorkspace(r.service), lastUsed: now}
	r.byKey[key] = r.order.PushFront(entry)
	for r.max > 0 && r.order.Len() > r.max {
		r.removeLocked(r.order.Back())
	}
	return entry.ws
}

// Sweep drops every workspace idle past the TTL and reports how many went.
func (r *Workspaces) Sweep() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.expireLocked(r.now())
}

func (r *Workspaces) expireLocked(now time.Time) int {
	if r.idleTTL <= 0 {
		return 0
	}
	var dropped int
	for el := r.order.Back(); el != nil; el = r.order.Back() {
		if now.Sub(el.Value.(*workspaceEntry).lastUsed) < r.idleTTL {
			break
		}
		r.removeLocked(el)
		dropped++
	}
	if dropped > 0 {
		logger.Debug("expired idle workspaces", slog.Int("count", dropped), slog.Int("live", r.order.Len()))
	}
	return dropped
}

func (r *Workspaces) removeLocked(el *list.Element) {
	entry := r.order.Remove(el).(*workspaceEntry)
	delete(r.byKey, entry.key)
}

func (r *Workspaces) Drop(key string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if el, ok := r.byKey[key]; ok {
		r.removeLocked(el)
	}
}

func (r *Workspaces) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.order.Len()
}

package analytics

import (
	"sync"
	"time"

	"github.com/matribhumi/matribhumi-admin/internal/travelapi"
)

// Snapshot is the last successfully resolved report for a window, kept so a
// failed refresh can re-render the previous data instead of blanking the
// screen.
type Snapshot struct {
	Window    Window
	Report    travelapi.Report
	Degraded  bool
	FetchedAt time.Time
}

// ViewState serialises commits of resolved reports under a last-request-wins
// policy: activating a window invalidates every ticket issued before it, so
// a slow fetch for a superseded window can never overwrite the result of the
// latest one.
type ViewState struct {
	mu     sync.Mutex
	gen    uint64
	window Window
	snap   *Snapshot
}

// Ticket authorises one commit for the window generation it was issued at.
type Ticket struct {
	state *ViewState
	gen   uint64
}

// Activate records the window as the latest requested one and returns the
// ticket its fetch must commit with.
func (s *ViewState) Activate(window Window) Ticket {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen++
	s.window = window
	return Ticket{state: s, gen: s.gen}
}

// Commit stores the snapshot if no newer window was activated since the
// ticket was issued. Superseded results are discarded, not merged.
func (t Ticket) Commit(snap Snapshot) bool {
	if t.state == nil {
		return false
	}
	t.state.mu.Lock()
	defer t.state.mu.Unlock()
	if t.gen != t.state.gen {
		return false
	}
	copied := snap
	t.state.snap = &copied
	return true
}

// Snapshot returns the last committed snapshot, false when nothing has been
// committed yet.
func (s *ViewState) Snapshot() (Snapshot, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.snap == nil {
		return Snapshot{}, false
	}
	return *s.snap, true
}

// Window returns the latest activated window.
func (s *ViewState) Window() Window {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.window
}

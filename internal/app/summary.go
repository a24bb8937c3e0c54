package app

import (
	"sort"
	"sync"

	"github.com/dshills/netedit/internal/network"
	"github.com/dshills/netedit/internal/notify"
)

// Summary is a derived view of the network, recomputed after every
// committed group, undo, redo or clear.
type Summary struct {
	mu        sync.RWMutex
	net       *network.Network
	counts    map[network.Kind]int
	total     int
	refreshes int
}

func newSummary(net *network.Network, n *notify.Notifier) *Summary {
	s := &Summary{net: net}
	s.Refresh()
	n.Subscribe(func(notify.Event) { s.Refresh() })
	return s
}

// Refresh recomputes the summary from the network.
func (s *Summary) Refresh() {
	counts := s.net.CountByKind()
	total := s.net.Len()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.counts = counts
	s.total = total
	s.refreshes++
}

// Total returns the element count at the last refresh.
func (s *Summary) Total() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.total
}

// Count returns the number of elements of kind at the last refresh.
func (s *Summary) Count(kind network.Kind) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.counts[kind]
}

// Kinds returns the kinds present at the last refresh, sorted.
func (s *Summary) Kinds() []network.Kind {
	s.mu.RLock()
	defer s.mu.RUnlock()

	kinds := make([]network.Kind, 0, len(s.counts))
	for k := range s.counts {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}

// Refreshes returns how many times the summary was recomputed.
func (s *Summary) Refreshes() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.refreshes
}

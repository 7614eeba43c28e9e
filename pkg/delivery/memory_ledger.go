package delivery

import (
	"context"
	"sync"
	"time"
)

// MemoryLedger keeps both sets in process memory.
type MemoryLedger struct {
	mu        sync.Mutex
	processed map[string]time.Time
	sent      map[string]time.Time
}

func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{
		processed: make(map[string]time.Time),
		sent:      make(map[string]time.Time),
	}
}

func (m *MemoryLedger) TryAdmit(_ context.Context, eventID string, now time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.processed[eventID]; ok {
		return false, nil
	}
	m.processed[eventID] = now
	return true, nil
}

// IsAdmitted reports whether eventID is still in the processed set.
func (m *MemoryLedger) IsAdmitted(eventID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	_, ok := m.processed[eventID]
	return ok
}

func (m *MemoryLedger) TryMarkSent(_ context.Context, eventID string, now time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.sent[eventID]; ok {
		return false, nil
	}
	m.sent[eventID] = now
	return true, nil
}

func (m *MemoryLedger) UnmarkSent(_ context.Context, eventID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.sent, eventID)
	return nil
}

func (m *MemoryLedger) Sweep(_ context.Context, cutoff time.Time) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	// A sent entry goes with its processed entry. Sent entries written after
	// their processed entry expired age out on their own timestamp.
	removed := 0
	for id, seen := range m.processed {
		if seen.Before(cutoff) {
			delete(m.processed, id)
			removed++
			if _, ok := m.sent[id]; ok {
				delete(m.sent, id)
				removed++
			}
		}
	}
	for id, seen := range m.sent {
		if _, ok := m.processed[id]; !ok && seen.Before(cutoff) {
			delete(m.sent, id)
			removed++
		}
	}
	return removed
}

// Len returns the sizes of the processed and sent sets.
func (m *MemoryLedger) Len() (processed, sent int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.processed), len(m.sent)
}

package backup

import (
	"fmt"
)

// CountPolicy caps the number of generations kept.
type CountPolicy struct {
	MaxCount int
}

// Evict returns the generation to delete before a new one is created.
// When len(gens) >= MaxCount the lowest id is chosen; otherwise nothing.
// At most one generation is ever returned, even if gens is far over the cap.
func (p CountPolicy) Evict(gens []Generation) (Generation, bool) {
	if len(gens) == 0 || len(gens) < p.MaxCount {
		return Generation{}, false
	}
	oldest := gens[0]
	for _, g := range gens[1:] {
		if g.ID < oldest.ID {
			oldest = g
		}
	}
	return oldest, true
}

// EnforceRetention removes at most one generation from gens according to policy.
// It returns the evicted generation, or nil when nothing was removed.
func (m *Manager) EnforceRetention(gens []Generation, policy CountPolicy) (*Generation, error) {
	victim, ok := policy.Evict(gens)
	if !ok {
		return nil, nil
	}
	if err := m.fs.RemoveTree(victim.Path); err != nil {
		return nil, fmt.Errorf("removing generation %d: %w", victim.ID, err)
	}
	return &victim, nil
}

package scheduler

import (
	"maps"

	"go.trai.ch/permc/internal/core/domain"
)

// StatusMap returns a copy of the internal permutation status map.
// This is exported for testing purposes only.
func (s *Scheduler) StatusMap() map[int]domain.PermutationStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return maps.Clone(s.status)
}

package assignment

import (
	"math/rand/v2"
	"sync"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// RandSource supplies the tie-break draw. *rand.Rand satisfies it.
type RandSource interface {
	IntN(n int) int
}

// LockedRand makes a RandSource safe for concurrent requests.
type LockedRand struct {
	mu  sync.Mutex
	src RandSource
}

// NewLockedRand wraps src; a nil src gets a freshly seeded PCG generator.
func NewLockedRand(src RandSource) *LockedRand {
	if src == nil {
		src = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &LockedRand{src: src}
}

// IntN implements RandSource.
func (r *LockedRand) IntN(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.src.IntN(n)
}

// LeastLoaded returns the candidates sharing the minimum load, in input
// order. A candidate missing from loads counts as zero.
func LeastLoaded(candidates []domain.StaffMember, loads map[string]int) []domain.StaffMember {
	if len(candidates) == 0 {
		return nil
	}
	minLoad := loads[candidates[0].ID]
	for _, c := range candidates[1:] {
		if load := loads[c.ID]; load < minLoad {
			minLoad = load
		}
	}
	least := make([]domain.StaffMember, 0, len(candidates))
	for _, c := range candidates {
		if loads[c.ID] == minLoad {
			least = append(least, c)
		}
	}
	return least
}

// Select picks one of the least-loaded candidates uniformly at random.
// ok is false when there are no candidates. With a single least-loaded
// candidate no random draw is made.
func Select(candidates []domain.StaffMember, loads map[string]int, rng RandSource) (staff domain.StaffMember, ok bool) {
	least := LeastLoaded(candidates, loads)
	switch len(least) {
	case 0:
		return domain.StaffMember{}, false
	case 1:
		return least[0], true
	}
	return least[rng.IntN(len(least))], true
}

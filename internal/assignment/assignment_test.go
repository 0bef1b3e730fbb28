package assignment

import (
	"math/rand/v2"
	"testing"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

type fixedRand struct {
	value int
	calls int
}

func (f *fixedRand) IntN(n int) int {
	f.calls++
	return f.value % n
}

func staff(ids ...string) []domain.StaffMember {
	out := make([]domain.StaffMember, 0, len(ids))
	for _, id := range ids {
		out = append(out, domain.StaffMember{ID: id, Name: "staff " + id, Department: "Network"})
	}
	return out
}

func TestComputeLoadsIncludesZeroEntries(t *testing.T) {
	tickets := []domain.Ticket{
		{ID: "1", AssignedStaffID: "a", Status: domain.TicketStatusOpen},
		{ID: "2", AssignedStaffID: "a", Status: domain.TicketStatusResolved},
		{ID: "3", AssignedStaffID: "outsider", Status: domain.TicketStatusOpen},
		{ID: "4", Status: domain.TicketStatusPending},
	}

	loads := ComputeLoads([]string{"a", "b"}, tickets, PolicyLifetime)

	if len(loads) != 2 {
		t.Fatalf("len(loads) = %d, want 2: %v", len(loads), loads)
	}
	if loads["a"] != 2 {
		t.Errorf("loads[a] = %d, want 2", loads["a"])
	}
	load, present := loads["b"]
	if !present || load != 0 {
		t.Errorf("loads[b] = %d (present=%v), want explicit 0", load, present)
	}
}

func TestComputeLoadsOpenPolicySkipsResolved(t *testing.T) {
	tickets := []domain.Ticket{
		{AssignedStaffID: "a", Status: domain.TicketStatusOpen},
		{AssignedStaffID: "a", Status: domain.TicketStatusResolved},
		{AssignedStaffID: "a", Status: domain.TicketStatusInProgress},
	}
	if got := ComputeLoads([]string{"a"}, tickets, PolicyOpen)["a"]; got != 2 {
		t.Errorf("open load = %d, want 2", got)
	}
	if got := ComputeLoads([]string{"a"}, tickets, PolicyLifetime)["a"]; got != 3 {
		t.Errorf("lifetime load = %d, want 3", got)
	}
}

func TestCountedStatuses(t *testing.T) {
	if got := PolicyLifetime.CountedStatuses(); got != nil {
		t.Errorf("lifetime statuses = %v, want nil", got)
	}
	open := PolicyOpen.CountedStatuses()
	if len(open) != 3 {
		t.Fatalf("open statuses = %v", open)
	}
	for _, status := range open {
		if status == domain.TicketStatusResolved {
			t.Errorf("open policy counts Resolved")
		}
	}
}

func TestSelectEmpty(t *testing.T) {
	rng := &fixedRand{}
	if _, ok := Select(nil, map[string]int{}, rng); ok {
		t.Fatal("expected NoStaffAvailable")
	}
	if rng.calls != 0 {
		t.Errorf("random source called %d times", rng.calls)
	}
}

func TestSelectSingleCandidateIsDeterministic(t *testing.T) {
	candidates := staff("only")
	rng := rand.New(rand.NewPCG(1, 2))
	for i := 0; i < 100; i++ {
		got, ok := Select(candidates, map[string]int{"only": 7}, rng)
		if !ok || got.ID != "only" {
			t.Fatalf("trial %d: got %q ok=%v", i, got.ID, ok)
		}
	}
}

func TestSelectSingleLeastLoadedSkipsDraw(t *testing.T) {
	rng := &fixedRand{value: 1}
	got, ok := Select(staff("a", "b", "c"), map[string]int{"a": 2, "b": 0, "c": 5}, rng)
	if !ok || got.ID != "b" {
		t.Fatalf("got %q ok=%v, want b", got.ID, ok)
	}
	if rng.calls != 0 {
		t.Errorf("random source called %d times", rng.calls)
	}
}

func TestSelectUsesInjectedSourceAmongTies(t *testing.T) {
	candidates := staff("a", "b", "c")
	loads := map[string]int{"a": 3, "b": 1, "c": 1}

	for value, want := range map[int]string{0: "b", 1: "c"} {
		got, ok := Select(candidates, loads, &fixedRand{value: value})
		if !ok || got.ID != want {
			t.Errorf("draw %d: got %q, want %q", value, got.ID, want)
		}
	}
}

func TestSelectLeastLoadedDistribution(t *testing.T) {
	candidates := staff("a", "b", "c")
	loads := map[string]int{"a": 3, "b": 1, "c": 1}
	rng := rand.New(rand.NewPCG(42, 7))

	const trials = 10000
	counts := map[string]int{}
	for i := 0; i < trials; i++ {
		got, ok := Select(candidates, loads, rng)
		if !ok {
			t.Fatal("unexpected NoStaffAvailable")
		}
		counts[got.ID]++
	}

	if counts["a"] != 0 {
		t.Fatalf("heavier candidate selected %d times", counts["a"])
	}
	for _, id := range []string{"b", "c"} {
		share := float64(counts[id]) / trials
		if share < 0.45 || share > 0.55 {
			t.Errorf("%s share = %.3f, want roughly half", id, share)
		}
	}
}

func TestSelectMissingLoadCountsAsZero(t *testing.T) {
	got, ok := Select(staff("a", "b"), map[string]int{"a": 1}, &fixedRand{})
	if !ok || got.ID != "b" {
		t.Fatalf("got %q, want b", got.ID)
	}
}

func TestLockedRandDelegates(t *testing.T) {
	src := &fixedRand{value: 4}
	r := NewLockedRand(src)
	if got := r.IntN(3); got != 1 {
		t.Errorf("IntN = %d, want 1", got)
	}
	if src.calls != 1 {
		t.Errorf("calls = %d", src.calls)
	}
	if got := NewLockedRand(nil).IntN(1); got != 0 {
		t.Errorf("seeded IntN(1) = %d", got)
	}
}

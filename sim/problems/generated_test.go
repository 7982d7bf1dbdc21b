package problems

import (
	"math"
	"math/rand"
	"testing"

	"github.com/bpsim/bpsim/sim"
)

func TestGenerate_MMc_ArrivalStream(t *testing.T) {
	// GIVEN a generated M/M/2 instance
	p, err := NewMMc(2, 500, rand.New(rand.NewSource(1)))
	if err != nil {
		t.Fatalf("NewMMc: %v", err)
	}
	if p.CaseCount() == 0 {
		t.Fatal("generated instance has no cases")
	}

	// THEN arrivals come out strictly ordered with their initial tasks
	last := -1.0
	for {
		at, first, ok := p.NextCase()
		if !ok {
			break
		}
		if at < last {
			t.Fatalf("arrival at %v after %v", at, last)
		}
		if first == nil || first.Type != "T" {
			t.Fatalf("initial task: got %v, want type T", first)
		}
		last = at
	}
}

func TestGenerate_Restart_ReplaysIdentically(t *testing.T) {
	p, err := NewMMc(1, 200, rand.New(rand.NewSource(2)))
	if err != nil {
		t.Fatalf("NewMMc: %v", err)
	}

	collect := func() []float64 {
		var out []float64
		for {
			at, first, ok := p.NextCase()
			if !ok {
				break
			}
			out = append(out, at, p.ProcessingTime(first, "R1"))
		}
		return out
	}

	first := collect()
	p.Restart()
	second := collect()

	if len(first) != len(second) {
		t.Fatalf("replay length: got %d, want %d", len(second), len(first))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("replay diverged at %d: %v != %v", i, second[i], first[i])
		}
	}
}

func TestGenerate_ProcessingTime_Repeatable(t *testing.T) {
	p, err := NewImbalanced(1.0, 200, rand.New(rand.NewSource(3)))
	if err != nil {
		t.Fatalf("NewImbalanced: %v", err)
	}
	_, task, ok := p.NextCase()
	if !ok {
		t.Fatal("no cases generated")
	}

	// Sampled once at generation; the oracle property predicters rely on.
	a := p.ProcessingTime(task, "R1")
	b := p.ProcessingTime(task, "R1")
	if a != b {
		t.Errorf("processing time not stable: %v != %v", a, b)
	}
}

func TestGenerate_MaxCasesCap(t *testing.T) {
	def := MMcDefinition(1)
	def.MaxCases = 5
	p, err := Generate(def, 1e9, rand.New(rand.NewSource(4)))
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if p.CaseCount() != 5 {
		t.Errorf("CaseCount: got %d, want 5", p.CaseCount())
	}
}

func TestGenerate_Validation(t *testing.T) {
	base := MMcDefinition(1)

	noResources := base
	noResources.Resources = nil
	if _, err := Generate(noResources, 100, rand.New(rand.NewSource(1))); err == nil {
		t.Error("definition without resources: want error")
	}

	badInitial := base
	badInitial.InitialTaskType = "missing"
	if _, err := Generate(badInitial, 100, rand.New(rand.NewSource(1))); err == nil {
		t.Error("unknown initial task type: want error")
	}

	badPool := base
	badPool.ResourcePools = map[string][]string{"T": {"R99"}}
	if _, err := Generate(badPool, 100, rand.New(rand.NewSource(1))); err == nil {
		t.Error("pool with unknown resource: want error")
	}
}

func TestSequential_RevealsSecondStage(t *testing.T) {
	// GIVEN a sequential instance
	p, err := NewSequential(500, rand.New(rand.NewSource(5)))
	if err != nil {
		t.Fatalf("NewSequential: %v", err)
	}
	_, first, ok := p.NextCase()
	if !ok {
		t.Fatal("no cases generated")
	}
	if first.Type != "T1" {
		t.Fatalf("initial task type: got %q, want T1", first.Type)
	}
	if got := first.DataString("optimal_resource"); got != "R1" {
		t.Errorf("optimal resource of T1: got %q, want R1", got)
	}

	// WHEN the first stage completes
	succ := p.CompleteTask(first)

	// THEN exactly one T2 follows, and T2 has no further successors
	if len(succ) != 1 || succ[0].Type != "T2" {
		t.Fatalf("successors of T1: got %v, want one T2", succ)
	}
	if got := succ[0].DataString("optimal_resource"); got != "R2" {
		t.Errorf("optimal resource of T2: got %q, want R2", got)
	}
	if rest := p.CompleteTask(succ[0]); len(rest) != 0 {
		t.Errorf("successors of T2: got %v, want none", rest)
	}
}

func TestImbalanced_SpreadValidation(t *testing.T) {
	for _, spread := range []float64{-0.1, 2, 2.5} {
		if _, err := NewImbalanced(spread, 100, rand.New(rand.NewSource(1))); err == nil {
			t.Errorf("spread %v: want error", spread)
		}
	}
}

func TestImbalanced_OptimalResourceIsFaster_OnAverage(t *testing.T) {
	// With full spread the optimal resource works at mean 0, the other at
	// twice the base mean. Averages over the instance must reflect that.
	p, err := NewImbalanced(1.8, 5000, rand.New(rand.NewSource(6)))
	if err != nil {
		t.Fatalf("NewImbalanced: %v", err)
	}

	sumOpt, sumOther, n := 0.0, 0.0, 0
	for {
		_, task, ok := p.NextCase()
		if !ok {
			break
		}
		opt := task.DataString("optimal_resource")
		other := "R1"
		if opt == "R1" {
			other = "R2"
		}
		sumOpt += p.ProcessingTime(task, opt)
		sumOther += p.ProcessingTime(task, other)
		n++
	}
	if n < 100 {
		t.Fatalf("too few cases to compare: %d", n)
	}
	if sumOpt/float64(n) >= sumOther/float64(n) {
		t.Errorf("optimal resource not faster: %v vs %v", sumOpt/float64(n), sumOther/float64(n))
	}
}

func TestMMcAnalyticalWaitingTime_MM1ClosedForm(t *testing.T) {
	// M/M/1: Wq = rho * ep / (1 - rho). With rate 0.1 and ep 9: 81.
	rate, ep := MMcParameters(1)
	got := MMcAnalyticalWaitingTime(1, rate, ep)
	want := (rate * ep) * ep / (1 - rate*ep)
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("analytical waiting time: got %v, want %v", got, want)
	}
}

func TestMMcAnalyticalWaitingTime_UnstableIsInfinite(t *testing.T) {
	if got := MMcAnalyticalWaitingTime(1, 0.2, 9); !math.IsInf(got, 1) {
		t.Errorf("unstable queue: got %v, want +Inf", got)
	}
}

func TestGeneratedProblem_ResourceWeightDefaultsToOne(t *testing.T) {
	p, err := NewMMc(1, 100, rand.New(rand.NewSource(7)))
	if err != nil {
		t.Fatalf("NewMMc: %v", err)
	}
	if got := p.ResourceWeight("R1"); got != 1 {
		t.Errorf("ResourceWeight: got %v, want 1", got)
	}
	var _ sim.ShiftProblem = p
}

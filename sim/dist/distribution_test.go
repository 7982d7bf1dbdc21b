package dist

import (
	"math"
	"math/rand"
	"testing"
)

// sampleMean draws n values and averages them.
func sampleMean(s Sampler, n int, seed int64) float64 {
	rng := rand.New(rand.NewSource(seed))
	sum := 0.0
	for i := 0; i < n; i++ {
		sum += s.Sample(rng)
	}
	return sum / float64(n)
}

func TestDeterministic(t *testing.T) {
	d := Deterministic{Value: 4.2}
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 3; i++ {
		if got := d.Sample(rng); got != 4.2 {
			t.Errorf("Sample: got %v, want 4.2", got)
		}
	}
	if d.Mean() != 4.2 {
		t.Errorf("Mean: got %v, want 4.2", d.Mean())
	}
}

func TestUniform_RangeAndMean(t *testing.T) {
	u := Uniform{Low: 2, High: 6}
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 1000; i++ {
		v := u.Sample(rng)
		if v < 2 || v >= 6 {
			t.Fatalf("sample %v outside [2, 6)", v)
		}
	}
	if u.Mean() != 4 {
		t.Errorf("Mean: got %v, want 4", u.Mean())
	}
	if got := sampleMean(u, 20000, 2); math.Abs(got-4) > 0.1 {
		t.Errorf("empirical mean: got %v, want ~4", got)
	}
}

func TestExponential_Mean(t *testing.T) {
	e := Exponential{MeanValue: 9}
	if got := sampleMean(e, 50000, 3); math.Abs(got-9) > 0.3 {
		t.Errorf("empirical mean: got %v, want ~9", got)
	}
}

func TestNormal_ClampedAtZero(t *testing.T) {
	n := Normal{Mu: 1, Sigma: 5}
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 1000; i++ {
		if v := n.Sample(rng); v < 0 {
			t.Fatalf("normal sample %v below zero", v)
		}
	}
}

func TestErlang_Mean(t *testing.T) {
	e := Erlang{K: 3, Rate: 0.5}
	if e.Mean() != 6 {
		t.Errorf("Mean: got %v, want 6", e.Mean())
	}
	if got := sampleMean(e, 20000, 4); math.Abs(got-6) > 0.3 {
		t.Errorf("empirical mean: got %v, want ~6", got)
	}
}

func TestEmpirical(t *testing.T) {
	e := Empirical{Values: []float64{1, 2, 3}}
	if e.Mean() != 2 {
		t.Errorf("Mean: got %v, want 2", e.Mean())
	}
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 100; i++ {
		v := e.Sample(rng)
		if v != 1 && v != 2 && v != 3 {
			t.Fatalf("sample %v not one of the observed values", v)
		}
	}
}

func TestCategorical_Proportions(t *testing.T) {
	c, err := NewCategorical(map[string]float64{"a": 3, "b": 1})
	if err != nil {
		t.Fatalf("NewCategorical: %v", err)
	}
	rng := rand.New(rand.NewSource(5))
	counts := map[string]int{}
	for i := 0; i < 10000; i++ {
		counts[c.Pick(rng)]++
	}
	frac := float64(counts["a"]) / 10000
	if math.Abs(frac-0.75) > 0.03 {
		t.Errorf("fraction of a: got %v, want ~0.75", frac)
	}
}

func TestCategorical_NoPositiveWeights(t *testing.T) {
	if _, err := NewCategorical(map[string]float64{"a": 0, "b": -1}); err == nil {
		t.Error("all non-positive weights: want error")
	}
}

func TestNew_FromSpec(t *testing.T) {
	tests := []struct {
		name     string
		spec     Spec
		wantMean float64
	}{
		{"deterministic", Spec{Type: "deterministic", Params: map[string]float64{"value": 5}}, 5},
		{"uniform", Spec{Type: "uniform", Params: map[string]float64{"low": 0, "high": 10}}, 5},
		{"exponential", Spec{Type: "exponential", Params: map[string]float64{"mean": 9}}, 9},
		{"normal", Spec{Type: "normal", Params: map[string]float64{"mean": 3, "std_dev": 1}}, 3},
		{"erlang", Spec{Type: "erlang", Params: map[string]float64{"k": 2, "rate": 1}}, 2},
		{"empirical", Spec{Type: "empirical", Values: []float64{2, 4}}, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := New(tt.spec)
			if err != nil {
				t.Fatalf("New: %v", err)
			}
			if got := s.Mean(); got != tt.wantMean {
				t.Errorf("Mean: got %v, want %v", got, tt.wantMean)
			}
		})
	}
}

func TestMustNew(t *testing.T) {
	s := MustNew(Spec{Type: "deterministic", Params: map[string]float64{"value": 2}})
	if s.Mean() != 2 {
		t.Errorf("Mean: got %v, want 2", s.Mean())
	}

	defer func() {
		if recover() == nil {
			t.Error("MustNew with invalid spec: want panic")
		}
	}()
	MustNew(Spec{Type: "zeta"})
}

func TestNew_Invalid(t *testing.T) {
	tests := []struct {
		name string
		spec Spec
	}{
		{"unknown type", Spec{Type: "zeta"}},
		{"missing param", Spec{Type: "exponential"}},
		{"non-positive mean", Spec{Type: "exponential", Params: map[string]float64{"mean": 0}}},
		{"uniform high < low", Spec{Type: "uniform", Params: map[string]float64{"low": 5, "high": 1}}},
		{"erlang k < 1", Spec{Type: "erlang", Params: map[string]float64{"k": 0, "rate": 1}}},
		{"empirical empty", Spec{Type: "empirical"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New(tt.spec); err == nil {
				t.Error("want error, got nil")
			}
		})
	}
}

// Package dist provides the probability distribution samplers that problem
// generators draw interarrival times, processing times and data fields from.
package dist

import (
	"fmt"
	"math/rand"
	"sort"
)

// Sampler draws one value from a distribution. Durations must be
// non-negative; samplers clamp at zero where the underlying distribution
// can go negative.
type Sampler interface {
	Sample(rng *rand.Rand) float64
	// Mean returns the expected value of the distribution.
	Mean() float64
}

// Deterministic always returns the same value.
type Deterministic struct {
	Value float64
}

func (d Deterministic) Sample(_ *rand.Rand) float64 { return d.Value }
func (d Deterministic) Mean() float64               { return d.Value }

// Uniform samples uniformly from [Low, High).
type Uniform struct {
	Low, High float64
}

func (u Uniform) Sample(rng *rand.Rand) float64 {
	return u.Low + rng.Float64()*(u.High-u.Low)
}

func (u Uniform) Mean() float64 { return (u.Low + u.High) / 2 }

// Exponential samples exponentially-distributed values with the given mean.
type Exponential struct {
	MeanValue float64
}

func (e Exponential) Sample(rng *rand.Rand) float64 {
	return rng.ExpFloat64() * e.MeanValue
}

func (e Exponential) Mean() float64 { return e.MeanValue }

// Normal samples Gaussian values clamped at zero.
type Normal struct {
	Mu, Sigma float64
}

func (n Normal) Sample(rng *rand.Rand) float64 {
	v := rng.NormFloat64()*n.Sigma + n.Mu
	if v < 0 {
		return 0
	}
	return v
}

func (n Normal) Mean() float64 { return n.Mu }

// Erlang samples the sum of K exponentials with the given rate. Useful for
// processing times with controlled variance: mean K/Rate, variance K/Rate².
type Erlang struct {
	K    int
	Rate float64
}

func (e Erlang) Sample(rng *rand.Rand) float64 {
	sum := 0.0
	for i := 0; i < e.K; i++ {
		sum += rng.ExpFloat64() / e.Rate
	}
	return sum
}

func (e Erlang) Mean() float64 { return float64(e.K) / e.Rate }

// Empirical draws one of the observed values uniformly.
type Empirical struct {
	Values []float64
}

func (e Empirical) Sample(rng *rand.Rand) float64 {
	if len(e.Values) == 0 {
		return 0
	}
	return e.Values[rng.Intn(len(e.Values))]
}

func (e Empirical) Mean() float64 {
	if len(e.Values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range e.Values {
		sum += v
	}
	return sum / float64(len(e.Values))
}

// Categorical picks a label with probability proportional to its weight.
// Iteration order is fixed at construction for reproducibility.
type Categorical struct {
	labels []string
	cdf    []float64
}

// NewCategorical creates a categorical distribution from label weights.
// Weights are normalized; non-positive weights are dropped.
func NewCategorical(weights map[string]float64) (*Categorical, error) {
	labels := make([]string, 0, len(weights))
	for l := range weights {
		labels = append(labels, l)
	}
	sort.Strings(labels)

	total := 0.0
	for _, l := range labels {
		if weights[l] > 0 {
			total += weights[l]
		}
	}
	if total <= 0 {
		return nil, fmt.Errorf("categorical distribution has no positive weights")
	}
	c := &Categorical{}
	cumulative := 0.0
	for _, l := range labels {
		if weights[l] <= 0 {
			continue
		}
		cumulative += weights[l] / total
		c.labels = append(c.labels, l)
		c.cdf = append(c.cdf, cumulative)
	}
	c.cdf[len(c.cdf)-1] = 1.0
	return c, nil
}

// Pick returns one label.
func (c *Categorical) Pick(rng *rand.Rand) string {
	u := rng.Float64()
	idx := sort.SearchFloat64s(c.cdf, u)
	if idx >= len(c.labels) {
		idx = len(c.labels) - 1
	}
	return c.labels[idx]
}

// Spec parameterizes a distribution in configuration files.
type Spec struct {
	Type   string             `yaml:"type"`
	Params map[string]float64 `yaml:"params,omitempty"`
	Values []float64          `yaml:"values,omitempty"`
}

// requireParam checks that all required keys exist in a params map.
func requireParam(params map[string]float64, keys ...string) error {
	for _, k := range keys {
		if _, ok := params[k]; !ok {
			return fmt.Errorf("distribution requires parameter %q", k)
		}
	}
	return nil
}

// New creates a Sampler from a Spec.
func New(spec Spec) (Sampler, error) {
	switch spec.Type {
	case "deterministic":
		if err := requireParam(spec.Params, "value"); err != nil {
			return nil, err
		}
		return Deterministic{Value: spec.Params["value"]}, nil

	case "uniform":
		if err := requireParam(spec.Params, "low", "high"); err != nil {
			return nil, err
		}
		if spec.Params["high"] < spec.Params["low"] {
			return nil, fmt.Errorf("uniform distribution has high < low")
		}
		return Uniform{Low: spec.Params["low"], High: spec.Params["high"]}, nil

	case "exponential":
		if err := requireParam(spec.Params, "mean"); err != nil {
			return nil, err
		}
		if spec.Params["mean"] <= 0 {
			return nil, fmt.Errorf("exponential distribution requires mean > 0")
		}
		return Exponential{MeanValue: spec.Params["mean"]}, nil

	case "normal":
		if err := requireParam(spec.Params, "mean", "std_dev"); err != nil {
			return nil, err
		}
		return Normal{Mu: spec.Params["mean"], Sigma: spec.Params["std_dev"]}, nil

	case "erlang":
		if err := requireParam(spec.Params, "k", "rate"); err != nil {
			return nil, err
		}
		k := int(spec.Params["k"])
		if k < 1 || spec.Params["rate"] <= 0 {
			return nil, fmt.Errorf("erlang distribution requires k >= 1 and rate > 0")
		}
		return Erlang{K: k, Rate: spec.Params["rate"]}, nil

	case "empirical":
		if len(spec.Values) == 0 {
			return nil, fmt.Errorf("empirical distribution has no values")
		}
		vals := make([]float64, len(spec.Values))
		copy(vals, spec.Values)
		return Empirical{Values: vals}, nil

	default:
		return nil, fmt.Errorf("unknown distribution type %q", spec.Type)
	}
}

// MustNew is New for hand-built specs in tests and problem constructors.
func MustNew(spec Spec) Sampler {
	s, err := New(spec)
	if err != nil {
		panic(err)
	}
	return s
}

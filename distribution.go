package domsift

import (
	"encoding/json"
	"fmt"
	"math"
	"math/rand"
	"sort"
)

// Distribution draws hyperparameter values for randomized search.
type Distribution interface {
	Sample(rng *rand.Rand) any
}

// Choice samples uniformly from an explicit, non-empty value list.
type Choice []any

func (c Choice) Sample(rng *rand.Rand) any {
	return c[rng.Intn(len(c))]
}

// Uniform samples evenly from [Min, Max).
type Uniform struct {
	Min, Max float64
}

func (u Uniform) Sample(rng *rand.Rand) any {
	return u.Min + rng.Float64()*(u.Max-u.Min)
}

// LogUniform samples exponents evenly between Min and Max, so each
// decade of the range is equally likely. Bounds must be positive.
type LogUniform struct {
	Min, Max float64
}

func (u LogUniform) Sample(rng *rand.Rand) any {
	lo, hi := math.Log(u.Min), math.Log(u.Max)
	return math.Exp(lo + rng.Float64()*(hi-lo))
}

// IntRange samples integers evenly from [Min, Max], inclusive on both
// ends.
type IntRange struct {
	Min, Max int
}

func (r IntRange) Sample(rng *rand.Rand) any {
	return r.Min + rng.Intn(r.Max-r.Min+1)
}

// ParamDistributions maps parameter names to the distributions a
// randomized search samples them from.
type ParamDistributions map[string]Distribution

// Names returns the parameter names in sorted order.
func (d ParamDistributions) Names() []string {
	names := make([]string, 0, len(d))
	for name := range d {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Sample draws one parameter assignment, visiting names in sorted
// order so a given rng state always produces the same assignment.
func (d ParamDistributions) Sample(rng *rand.Rand) Params {
	params := make(Params, len(d))
	for _, name := range d.Names() {
		params[name] = d[name].Sample(rng)
	}
	return params
}

// ParseParamDistributions decodes a JSON search space. Each value is
// either a bare scalar (a fixed value), an array (a uniform choice),
// or an object naming one distribution:
//
//	{
//	  "epochs": 100,
//	  "max_features": [0.25, 0.5, 1.0],
//	  "c": {"log_uniform": [0.0001, 100]},
//	  "learning_rate": {"uniform": [0.01, 0.5]},
//	  "max_depth": {"int_range": [2, 20]}
//	}
func ParseParamDistributions(data []byte) (ParamDistributions, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, Errorf(EINVALID, "param distributions: %v", err)
	}
	dists := make(ParamDistributions, len(raw))
	for name, msg := range raw {
		dist, err := parseDistribution(msg)
		if err != nil {
			return nil, Errorf(EINVALID, "param %q: %v", name, err)
		}
		dists[name] = dist
	}
	return dists, nil
}

func parseDistribution(msg json.RawMessage) (Distribution, error) {
	var arr []any
	if err := json.Unmarshal(msg, &arr); err == nil {
		if len(arr) == 0 {
			return nil, fmt.Errorf("choice list is empty")
		}
		return Choice(arr), nil
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(msg, &obj); err == nil {
		if len(obj) != 1 {
			return nil, fmt.Errorf("want exactly one distribution, got %d", len(obj))
		}
		for kind, args := range obj {
			switch kind {
			case "choice":
				var values []any
				if err := json.Unmarshal(args, &values); err != nil || len(values) == 0 {
					return nil, fmt.Errorf("choice wants a non-empty value list")
				}
				return Choice(values), nil
			case "uniform":
				bounds, err := parseBounds(args)
				if err != nil {
					return nil, fmt.Errorf("uniform %v", err)
				}
				return Uniform{Min: bounds[0], Max: bounds[1]}, nil
			case "log_uniform":
				bounds, err := parseBounds(args)
				if err != nil {
					return nil, fmt.Errorf("log_uniform %v", err)
				}
				if bounds[0] <= 0 {
					return nil, fmt.Errorf("log_uniform bounds must be positive")
				}
				return LogUniform{Min: bounds[0], Max: bounds[1]}, nil
			case "int_range":
				bounds, err := parseBounds(args)
				if err != nil {
					return nil, fmt.Errorf("int_range %v", err)
				}
				return IntRange{Min: int(bounds[0]), Max: int(bounds[1])}, nil
			default:
				return nil, fmt.Errorf("unknown distribution %q", kind)
			}
		}
	}

	var v any
	if err := json.Unmarshal(msg, &v); err != nil {
		return nil, fmt.Errorf("invalid value: %v", err)
	}
	return Choice{v}, nil
}

func parseBounds(args json.RawMessage) ([]float64, error) {
	var bounds []float64
	if err := json.Unmarshal(args, &bounds); err != nil || len(bounds) != 2 {
		return nil, fmt.Errorf("wants [min, max]")
	}
	if bounds[1] < bounds[0] {
		return nil, fmt.Errorf("bounds are inverted")
	}
	return bounds, nil
}

package domsift

import (
	"context"
	"sort"
)

// Params holds hyperparameter values by name. Values typically arrive
// from JSON param files or CLI flags, so numbers decode as float64;
// the accessors coerce between numeric types.
type Params map[string]any

// Float returns the named parameter as a float64, or def if the
// parameter is absent or not numeric.
func (p Params) Float(name string, def float64) float64 {
	switch v := p[name].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case int64:
		return float64(v)
	default:
		return def
	}
}

// Int returns the named parameter as an int, or def if the parameter is
// absent or not numeric. Fractional values are truncated.
func (p Params) Int(name string, def int) int {
	switch v := p[name].(type) {
	case float64:
		return int(v)
	case int:
		return v
	case int64:
		return int(v)
	default:
		return def
	}
}

// Bool returns the named parameter as a bool, or def if the parameter
// is absent or not a bool.
func (p Params) Bool(name string, def bool) bool {
	if v, ok := p[name].(bool); ok {
		return v
	}
	return def
}

// String returns the named parameter as a string, or def if the
// parameter is absent or not a string.
func (p Params) String(name string, def string) string {
	if v, ok := p[name].(string); ok {
		return v
	}
	return def
}

// Names returns the parameter names in sorted order.
func (p Params) Names() []string {
	names := make([]string, 0, len(p))
	for name := range p {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Clone returns a shallow copy of the params.
func (p Params) Clone() Params {
	out := make(Params, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// Check returns EINVALID if p contains a parameter not in allowed.
func (p Params) Check(allowed ...string) error {
	for name := range p {
		found := false
		for _, a := range allowed {
			if name == a {
				found = true
				break
			}
		}
		if !found {
			return Errorf(EINVALID, "unknown parameter %q", name)
		}
	}
	return nil
}

// Estimator is a trainable binary classifier over block features.
// Implementations must be usable for prediction from multiple
// goroutines once fitted.
type Estimator interface {
	// Fit trains the estimator on the design matrix x and labels y,
	// where y holds LabelContent/LabelBoilerplate values as floats.
	// Refitting replaces any previous state.
	Fit(ctx context.Context, x Matrix, y []float64) error

	// Predict returns a hard 0/1 label for each row of x.
	// Returns EINVALID if called before a successful Fit or if the
	// column count differs from the fitted data.
	Predict(x Matrix) ([]float64, error)

	// Score predicts labels for x and returns the mean accuracy
	// against y.
	Score(x Matrix, y []float64) (float64, error)
}

// EstimatorFactory builds estimators of one family from hyperparameter
// assignments. Factories are what hyperparameter search samples over.
type EstimatorFactory interface {
	// Name returns the family name used in CLI flags and model files.
	Name() string

	// New builds an estimator configured with the given params.
	// Returns EINVALID for unknown parameters or out-of-range values.
	New(params Params) (Estimator, error)
}

// EstimatorRegistry resolves estimator factories by family name.
// The zero value is not usable; create one with NewEstimatorRegistry.
type EstimatorRegistry struct {
	factories map[string]EstimatorFactory
}

// NewEstimatorRegistry creates an empty registry.
func NewEstimatorRegistry() *EstimatorRegistry {
	return &EstimatorRegistry{factories: make(map[string]EstimatorFactory)}
}

// Register adds a factory under its family name.
// If a factory is already registered under the name, it is replaced.
func (r *EstimatorRegistry) Register(f EstimatorFactory) {
	r.factories[f.Name()] = f
}

// Get returns the factory for a family name.
// Returns ENOTFOUND if no factory is registered under the name.
func (r *EstimatorRegistry) Get(name string) (EstimatorFactory, error) {
	f, ok := r.factories[name]
	if !ok {
		return nil, Errorf(ENOTFOUND, "unknown estimator %q (registered: %v)", name, r.Names())
	}
	return f, nil
}

// Names returns the registered family names in sorted order.
func (r *EstimatorRegistry) Names() []string {
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

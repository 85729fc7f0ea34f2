package domsift

// Model bundles a trained estimator with everything needed to apply it
// to unseen pages: the estimator family, the feature columns the
// estimator was fitted on, and the hyperparameters that built it.
type Model struct {
	Family    string
	Columns   []string
	Params    Params
	Estimator Estimator
}

// Validate returns an error if the model is missing a required part.
func (m *Model) Validate() error {
	if m.Family == "" {
		return Errorf(EINVALID, "model family required")
	}
	if len(m.Columns) == 0 {
		return Errorf(EINVALID, "model feature columns required")
	}
	if m.Estimator == nil {
		return Errorf(EINVALID, "model estimator required")
	}
	return nil
}

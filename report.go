package domsift

// FoldReport records the outcome of one cross-validation fold: the
// hyperparameters the inner search chose and the score they earned on
// the held-out partition.
type FoldReport struct {
	Fold   int     `json:"fold"`
	Params Params  `json:"params"`
	Score  float64 `json:"score"`

	// NoData marks a fold whose evaluation partition held no rows;
	// Score is NaN in that case.
	NoData bool `json:"no_data,omitempty"`
}

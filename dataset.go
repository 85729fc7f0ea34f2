package domsift

// Dataset is an assembled block feature dataset ready for training.
type Dataset struct {
	// X holds one row of feature values per block.
	X Matrix `json:"-"`

	// Y holds the content label for each row of X.
	Y []float64 `json:"-"`

	// Groups holds the page URL for each row. Splits operate on these
	// keys so blocks from one page never straddle a partition boundary.
	Groups []string `json:"-"`

	// Columns names the columns of X.
	Columns []string `json:"columns"`
}

// Validate returns an error if the dataset's parts disagree in shape.
func (d *Dataset) Validate() error {
	if d.X == nil {
		return Errorf(EINVALID, "dataset matrix required")
	}
	if d.X.Rows() != len(d.Y) {
		return Errorf(EINVALID, "dataset has %d rows but %d labels", d.X.Rows(), len(d.Y))
	}
	if d.X.Rows() != len(d.Groups) {
		return Errorf(EINVALID, "dataset has %d rows but %d group keys", d.X.Rows(), len(d.Groups))
	}
	if d.X.Cols() != len(d.Columns) {
		return Errorf(EINVALID, "dataset has %d columns but %d column names", d.X.Cols(), len(d.Columns))
	}
	return nil
}

// Subset returns a view of the dataset restricted to the given rows, in
// the given order. The view shares storage with the original.
func (d *Dataset) Subset(idx []int) *Dataset {
	return &Dataset{
		X:       SubsetRows(d.X, idx),
		Y:       SubsetFloats(d.Y, idx),
		Groups:  SubsetStrings(d.Groups, idx),
		Columns: d.Columns,
	}
}

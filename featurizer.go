package domsift

// FeatureTable holds featurized blocks sharing one feature schema. A
// table may describe a single page or the concatenation of many.
type FeatureTable struct {
	// Columns names the entries of each block's feature vector, in
	// order. The schema is a function of the featurizer's configuration
	// alone, so tables produced under the same configuration always
	// share columns and may be concatenated.
	Columns []string

	// Blocks holds one entry per eligible block. Blocks of one page
	// are contiguous and in document order.
	Blocks []*Block
}

// Append adds the blocks of other to the table.
// Returns ESCHEMA if the tables disagree on columns.
func (t *FeatureTable) Append(other *FeatureTable) error {
	if len(t.Columns) == 0 && len(t.Blocks) == 0 {
		t.Columns = other.Columns
	}
	if len(t.Columns) != len(other.Columns) {
		return Errorf(ESCHEMA, "cannot append table with %d columns to table with %d", len(other.Columns), len(t.Columns))
	}
	for i, col := range t.Columns {
		if other.Columns[i] != col {
			return Errorf(ESCHEMA, "column %d is %q, expected %q", i, other.Columns[i], col)
		}
	}
	t.Blocks = append(t.Blocks, other.Blocks...)
	return nil
}

// Featurizer extracts block-level features from HTML pages.
type Featurizer interface {
	// Featurize parses the document's HTML and returns one block per
	// eligible DOM region, each carrying a feature vector describing
	// the block and its DOM neighborhood.
	//
	// Returns EPARSE if the markup cannot be parsed into a usable
	// tree. A page with no eligible blocks yields an empty table, not
	// an error.
	Featurize(doc *Document) (*FeatureTable, error)

	// Columns returns the feature schema this featurizer emits,
	// without parsing any document.
	Columns() []string
}

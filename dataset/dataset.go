// Package dataset assembles block feature shards into training datasets.
// Shards are delimited files produced by the featurize command; blocks
// from one page share a URL, which downstream splitting uses as the
// grouping key.
package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"

	"github.com/fwojciec/domsift"
)

// Reserved columns carry block identity and labels rather than features.
const (
	URLColumn   = "url"
	PathColumn  = "path"
	LabelColumn = "content_label"
)

// AssembleOptions configures shard assembly.
type AssembleOptions struct {
	// FeatureColumns selects the feature columns to load, in order.
	// Nil selects every non-reserved column in shard header order.
	FeatureColumns []string

	// Sparse stores features in compressed sparse row form instead of
	// a dense matrix. Block feature vectors are mostly zeros.
	Sparse bool

	// Categorize stably sorts rows by URL so each page's blocks end up
	// contiguous in the assembled dataset.
	Categorize bool
}

// Assemble reads one or more feature shards into a single dataset. The
// first shard's header fixes the schema; any later shard whose column
// set disagrees fails with an ESCHEMA-coded error. Column order may
// vary between shards, values are matched by name.
func Assemble(shardPaths []string, opts AssembleOptions) (*domsift.Dataset, error) {
	if len(shardPaths) == 0 {
		return nil, domsift.Errorf(domsift.EINVALID, "at least one shard path required")
	}

	a := &assembly{opts: opts}
	for _, shardPath := range shardPaths {
		if err := a.readShard(shardPath); err != nil {
			return nil, err
		}
	}

	ds := &domsift.Dataset{X: a.x, Y: a.y, Groups: a.groups, Columns: a.features}
	if opts.Categorize {
		ds = ds.Subset(sortByGroup(a.groups))
	}
	return ds, nil
}

// assembly accumulates rows across shards. The schema and the feature
// selection are fixed when the first shard's header is read.
type assembly struct {
	opts     AssembleOptions
	schema   []string
	features []string
	x        domsift.RowAppender
	y        []float64
	groups   []string
}

func (a *assembly) readShard(shardPath string) error {
	f, err := os.Open(shardPath)
	if err != nil {
		return fmt.Errorf("open shard: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.ReuseRecord = true

	header, err := r.Read()
	if err == io.EOF {
		return domsift.Errorf(domsift.EPARSE, "shard %q has no header", shardPath)
	}
	if err != nil {
		return domsift.Errorf(domsift.EPARSE, "shard %q: %v", shardPath, err)
	}

	pos := make(map[string]int, len(header))
	for i, name := range header {
		if _, ok := pos[name]; ok {
			return domsift.Errorf(domsift.ESCHEMA, "shard %q has duplicate column %q", shardPath, name)
		}
		pos[name] = i
	}

	if a.schema == nil {
		a.schema = make([]string, len(header))
		copy(a.schema, header)
		a.features, err = selectFeatures(a.schema, a.opts.FeatureColumns)
		if err != nil {
			return err
		}
		if a.opts.Sparse {
			a.x = domsift.NewCSR(len(a.features))
		} else {
			a.x = domsift.NewDense(0, len(a.features), nil)
		}
	} else if err := checkSchema(shardPath, a.schema, header, pos); err != nil {
		return err
	}

	urlIdx, ok := pos[URLColumn]
	if !ok {
		return domsift.Errorf(domsift.ESCHEMA, "shard %q has no %q column", shardPath, URLColumn)
	}
	labelIdx, ok := pos[LabelColumn]
	if !ok {
		return domsift.Errorf(domsift.ESCHEMA, "shard %q has no %q column", shardPath, LabelColumn)
	}
	featIdx := make([]int, len(a.features))
	for i, name := range a.features {
		featIdx[i] = pos[name]
	}

	row := make([]float64, len(a.features))
	for line := 2; ; line++ {
		record, err := r.Read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return domsift.Errorf(domsift.EPARSE, "shard %q: %v", shardPath, err)
		}

		label, err := strconv.ParseFloat(record[labelIdx], 64)
		if err != nil {
			return domsift.Errorf(domsift.EPARSE, "shard %q line %d: bad label %q", shardPath, line, record[labelIdx])
		}
		for i, j := range featIdx {
			v, err := strconv.ParseFloat(record[j], 64)
			if err != nil {
				return domsift.Errorf(domsift.EPARSE, "shard %q line %d: bad value %q in column %q", shardPath, line, record[j], a.features[i])
			}
			row[i] = v
		}

		a.x.AppendRow(row)
		a.y = append(a.y, label)
		a.groups = append(a.groups, record[urlIdx])
	}
}

// selectFeatures resolves the feature columns against a shard header.
// A nil request selects every non-reserved column in header order.
func selectFeatures(header, requested []string) ([]string, error) {
	reserved := map[string]bool{URLColumn: true, PathColumn: true, LabelColumn: true}
	if requested == nil {
		var features []string
		for _, name := range header {
			if !reserved[name] {
				features = append(features, name)
			}
		}
		return features, nil
	}
	available := make(map[string]bool, len(header))
	for _, name := range header {
		available[name] = true
	}
	for _, name := range requested {
		if reserved[name] {
			return nil, domsift.Errorf(domsift.EINVALID, "column %q is reserved", name)
		}
		if !available[name] {
			return nil, domsift.Errorf(domsift.EINVALID, "unknown feature column %q", name)
		}
	}
	return append([]string(nil), requested...), nil
}

// checkSchema verifies that a later shard names exactly the columns the
// first shard fixed. Headers are known to be duplicate-free here, so
// equal length plus membership means set equality.
func checkSchema(shardPath string, schema, header []string, pos map[string]int) error {
	if len(header) != len(schema) {
		return domsift.Errorf(domsift.ESCHEMA, "shard %q has %d columns, want %d", shardPath, len(header), len(schema))
	}
	for _, name := range schema {
		if _, ok := pos[name]; !ok {
			return domsift.Errorf(domsift.ESCHEMA, "shard %q is missing column %q", shardPath, name)
		}
	}
	return nil
}

// sortByGroup returns a row permutation that is stably sorted by group
// key, so rows that share a key stay in their original relative order.
func sortByGroup(groups []string) []int {
	perm := make([]int, len(groups))
	for i := range perm {
		perm[i] = i
	}
	sort.SliceStable(perm, func(i, j int) bool {
		return groups[perm[i]] < groups[perm[j]]
	})
	return perm
}

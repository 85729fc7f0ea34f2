// Package split partitions grouped datasets for training and evaluation.
// All splits operate on group keys rather than rows, so every block of a
// page lands on the same side of every partition boundary.
package split

import (
	"math"
	"math/rand"
	"sort"

	"github.com/fwojciec/domsift"
)

// boundaryEps absorbs float error in cumulative proportion boundaries.
const boundaryEps = 1e-9

// RandomSplit partitions rows into len(proportions) partitions by group
// key. The unique keys are sorted, shuffled under the seed, and sliced
// at floor(cumsum(proportions)*len(keys)) boundaries; each row follows
// its key into the partition that claimed it.
//
// Proportions that sum to less than 1 leave the tail of the shuffled
// keys unassigned. The same groups, proportions and seed always produce
// the same partitions.
func RandomSplit(groups []string, proportions []float64, seed int64) ([][]int, error) {
	if len(groups) == 0 {
		return nil, domsift.Errorf(domsift.EINVALID, "no rows to split")
	}
	if len(proportions) == 0 {
		return nil, domsift.Errorf(domsift.EINVALID, "no proportions given")
	}
	sum := 0.0
	for _, p := range proportions {
		if p < 0 || p > 1 {
			return nil, domsift.Errorf(domsift.EINVALID, "proportion %v outside [0, 1]", p)
		}
		sum += p
	}
	if sum > 1+1e-9 {
		return nil, domsift.Errorf(domsift.EINVALID, "proportions sum to %v, must not exceed 1", sum)
	}

	keys := uniqueKeys(groups)
	rng := rand.New(rand.NewSource(seed))
	rng.Shuffle(len(keys), func(i, j int) {
		keys[i], keys[j] = keys[j], keys[i]
	})

	// Assign each key to the partition that claims its shuffled position.
	// The epsilon keeps proportions that sum to 1 covering every key even
	// when the cumulative sum lands just under an integer boundary.
	assign := make(map[string]int, len(keys))
	prev := 0
	cum := 0.0
	for part, p := range proportions {
		cum += p
		idx := int(math.Floor(float64(len(keys))*cum + boundaryEps))
		for _, key := range keys[prev:idx] {
			assign[key] = part
		}
		prev = idx
	}

	parts := make([][]int, len(proportions))
	for row, key := range groups {
		part, ok := assign[key]
		if !ok {
			continue
		}
		parts[part] = append(parts[part], row)
	}
	return parts, nil
}

// Fold is one train/eval partition of a grouped dataset. Train and Eval
// hold row indices and never share a group key.
type Fold struct {
	Train []int
	Eval  []int
}

// GroupKFold deals group keys into total near-equal folds and returns
// the first count of them. Fold i evaluates on the rows of its keys and
// trains on the rows of every other fold's keys, including the folds
// beyond count.
//
// When shuffle is true the sorted keys are shuffled under the seed
// before dealing; otherwise folds follow sorted key order and the seed
// is ignored.
func GroupKFold(groups []string, count, total int, seed int64, shuffle bool) ([]Fold, error) {
	if len(groups) == 0 {
		return nil, domsift.Errorf(domsift.EINVALID, "no rows to split")
	}
	if total < 2 {
		return nil, domsift.Errorf(domsift.EINVALID, "total folds is %d, need at least 2", total)
	}
	if count < 1 || count > total {
		return nil, domsift.Errorf(domsift.EINVALID, "fold count %d outside [1, %d]", count, total)
	}

	keys := uniqueKeys(groups)
	if len(keys) < total {
		return nil, domsift.Errorf(domsift.EINVALID, "%d groups cannot fill %d folds", len(keys), total)
	}
	if shuffle {
		rng := rand.New(rand.NewSource(seed))
		rng.Shuffle(len(keys), func(i, j int) {
			keys[i], keys[j] = keys[j], keys[i]
		})
	}

	// Contiguous slices sized like numpy's array_split: the first
	// len(keys)%total slices get one extra key.
	assign := make(map[string]int, len(keys))
	base := len(keys) / total
	extra := len(keys) % total
	pos := 0
	for fold := 0; fold < total; fold++ {
		size := base
		if fold < extra {
			size++
		}
		for _, key := range keys[pos : pos+size] {
			assign[key] = fold
		}
		pos += size
	}

	folds := make([]Fold, count)
	for row, key := range groups {
		fold := assign[key]
		for i := range folds {
			if fold == i {
				folds[i].Eval = append(folds[i].Eval, row)
			} else {
				folds[i].Train = append(folds[i].Train, row)
			}
		}
	}
	return folds, nil
}

// uniqueKeys returns the distinct group keys in sorted order.
func uniqueKeys(groups []string) []string {
	seen := make(map[string]struct{}, len(groups))
	keys := make([]string, 0, len(groups))
	for _, g := range groups {
		if _, ok := seen[g]; ok {
			continue
		}
		seen[g] = struct{}{}
		keys = append(keys, g)
	}
	sort.Strings(keys)
	return keys
}

// Package bloom provides approximate URL deduplication for featurize runs.
package bloom

import "github.com/bits-and-blooms/bloom/v3"

// URLSet tracks which page URLs a run has already accepted. Membership
// is approximate: a small fraction of new URLs may be reported as seen,
// but a URL added once is never reported new again.
type URLSet struct {
	filter *bloom.BloomFilter
	added  int
}

// NewURLSet sizes a set for the expected number of URLs at the given
// false positive rate.
func NewURLSet(expected uint, fpRate float64) *URLSet {
	return &URLSet{filter: bloom.NewWithEstimates(expected, fpRate)}
}

// Add records a URL and reports whether it was new.
func (s *URLSet) Add(url string) bool {
	if s.filter.TestAndAddString(url) {
		return false
	}
	s.added++
	return true
}

// Len returns the number of URLs accepted so far.
func (s *URLSet) Len() int {
	return s.added
}

// Package mock provides function-field test doubles for the domsift
// service interfaces. Tests set only the functions they expect to be
// called; calling an unset function panics with the field name.
package mock

import "github.com/fwojciec/domsift"

var _ domsift.Converter = (*Converter)(nil)

// Converter is a mock implementation of domsift.Converter.
type Converter struct {
	ConvertFn func(html string) (string, error)
}

func (c *Converter) Convert(html string) (string, error) {
	if c.ConvertFn == nil {
		panic("mock: ConvertFn not set")
	}
	return c.ConvertFn(html)
}
